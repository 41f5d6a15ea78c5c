package models

import "strings"

// Rating is the learner's recall difficulty for a card.
type Rating string

const (
	RatingEasy    Rating = "EASY"
	RatingHard    Rating = "HARD"
	RatingHardest Rating = "HARDEST"
)

// ParseRating accepts the rating names case-insensitively.
func ParseRating(s string) (Rating, bool) {
	r := Rating(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// RatingFromPercent maps the recall percentage buttons onto ratings.
func RatingFromPercent(percent int) (Rating, bool) {
	switch percent {
	case 0:
		return RatingHardest, true
	case 25, 50:
		return RatingHard, true
	case 75, 100:
		return RatingEasy, true
	}
	return "", false
}

func (r Rating) Valid() bool {
	switch r {
	case RatingEasy, RatingHard, RatingHardest:
		return true
	}
	return false
}

// Duplicates is how many extra appearances the rating asks for.
func (r Rating) Duplicates() int {
	switch r {
	case RatingHardest:
		return 2
	case RatingHard:
		return 1
	}
	return 0
}
