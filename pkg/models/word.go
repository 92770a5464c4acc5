package models

import "time"

// Word represents a vocabulary entry together with its embedded scheduling state.
// A freshly created word has ReviewCount = 0, no stability/difficulty estimate yet
// and DueAt set to its creation time, so it is immediately due.
type Word struct {
	ID         int64  `json:"id" db:"id"`
	LessonID   int64  `json:"lesson_id" db:"lesson_id"`
	WordTypeID int64  `json:"word_type_id" db:"word_type_id"`
	Front      string `json:"front" db:"front"` // word in the studied language
	Back       string `json:"back" db:"back"`   // translation

	// Scheduling state, mutated only through review submission
	Stability      float64    `json:"stability" db:"stability"`
	Difficulty     float64    `json:"difficulty" db:"difficulty"`
	DueAt          time.Time  `json:"due_at" db:"due_at"`
	ReviewCount    int        `json:"review_count" db:"review_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
