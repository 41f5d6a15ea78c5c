package models

import "time"

// Phase is the state of a learner's session.
type Phase string

const (
	PhaseIdle       Phase = "IDLE"
	PhaseLearning   Phase = "LEARNING"
	PhaseRepetition Phase = "REPETITION"
)

// UserSession is the durable per-user session record. A nil Cursor means
// there is no active session; counters and timestamps are kept as history.
type UserSession struct {
	UserID       int64      `json:"user_id"`
	DeckID       int64      `json:"deck_id"`
	Cursor       *int       `json:"cursor"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at"`
	HardCount    int        `json:"hard_count"`
	HardestCount int        `json:"hardest_count"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Active reports whether the learner is inside a session.
func (s *UserSession) Active() bool {
	return s != nil && s.Cursor != nil
}

// Phase resolves the cursor against the learning queue length. Positions
// past the learning queue index the repetition queue.
func (s *UserSession) Phase(learningLen int) (Phase, int) {
	if !s.Active() {
		return PhaseIdle, 0
	}
	if *s.Cursor <= learningLen {
		return PhaseLearning, *s.Cursor
	}
	return PhaseRepetition, *s.Cursor - learningLen
}

// QueueEntry is one position of a learning or repetition queue.
type QueueEntry struct {
	UserID   int64 `json:"user_id"`
	Position int   `json:"position"`
	CardID   int64 `json:"card_id"`
}

// DuplicateStatus counts how many re-appearances of a card are still owed.
type DuplicateStatus struct {
	UserID  int64 `json:"user_id"`
	CardID  int64 `json:"card_id"`
	Pending int   `json:"pending"`
}
