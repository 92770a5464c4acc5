package models

import "time"

// Language represents one language a user is studying
type Language struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Lesson groups words within a language
type Lesson struct {
	ID         int64     `json:"id" db:"id"`
	LanguageID int64     `json:"language_id" db:"language_id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// WordType categorizes words within a language (noun, verb, ...)
type WordType struct {
	ID         int64     `json:"id" db:"id"`
	LanguageID int64     `json:"language_id" db:"language_id"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
