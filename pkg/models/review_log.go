package models

import "time"

// ReviewLog is an immutable record of one review event. Rows are written exactly
// once when a rating is submitted and are never updated or deleted; they are the
// sole input to parameter optimization.
type ReviewLog struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	WordID      int64     `json:"word_id" db:"word_id"`
	Rating      int       `json:"rating" db:"rating"` // 1=Again 2=Hard 3=Good 4=Easy
	ReviewedAt  time.Time `json:"reviewed_at" db:"reviewed_at"`
	ElapsedDays float64   `json:"elapsed_days" db:"elapsed_days"` // days since previous review, 0 for the first
	LatencyMS   int64     `json:"latency_ms" db:"latency_ms"`     // response latency in milliseconds
}
