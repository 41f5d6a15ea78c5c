package models

import "time"

// CardView is what a transport shows for the current card.
type CardView struct {
	UserID        int64  `json:"user_id"`
	DeckID        int64  `json:"deck_id"`
	Phase         Phase  `json:"phase"`
	Position      int    `json:"position"`
	Total         int    `json:"total"`
	CardID        int64  `json:"card_id"`
	Question      string `json:"question"`
	Answer        string `json:"answer,omitempty"`
	Revealed      bool   `json:"revealed"`
	ExpectsRating bool   `json:"expects_rating"`
}

// Summary is emitted once when a session completes.
type Summary struct {
	UserID       int64         `json:"user_id"`
	DeckID       int64         `json:"deck_id"`
	StartedAt    time.Time     `json:"started_at"`
	EndedAt      time.Time     `json:"ended_at"`
	Elapsed      time.Duration `json:"elapsed"`
	HardCount    int           `json:"hard_count"`
	HardestCount int           `json:"hardest_count"`
}

// Step is the outcome of moving forward: either the next card or the summary.
type Step struct {
	Card    *CardView `json:"card,omitempty"`
	Summary *Summary  `json:"summary,omitempty"`
}

// Completed reports whether the step ended the session.
func (s Step) Completed() bool {
	return s.Summary != nil
}

// StopResult acknowledges an explicit stop. Stopped is false when there was
// no session to stop.
type StopResult struct {
	UserID  int64 `json:"user_id"`
	Stopped bool  `json:"stopped"`
}

// SessionStatus is a read-only snapshot of a learner's session.
type SessionStatus struct {
	UserID          int64     `json:"user_id"`
	Phase           Phase     `json:"phase"`
	DeckID          int64     `json:"deck_id,omitempty"`
	Position        int       `json:"position,omitempty"`
	LearningTotal   int       `json:"learning_total"`
	RepetitionTotal int       `json:"repetition_total"`
	HardCount       int       `json:"hard_count"`
	HardestCount    int       `json:"hardest_count"`
	StartedAt       time.Time `json:"started_at,omitempty"`
}
