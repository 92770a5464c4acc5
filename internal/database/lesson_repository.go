package database

import (
	"context"
	"fmt"

	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// LessonRepository handles database operations for lessons
type LessonRepository struct{}

// NewLessonRepository creates a new repository instance
func NewLessonRepository() *LessonRepository {
	return &LessonRepository{}
}

// GetByLanguage returns all lessons for a language
func (r *LessonRepository) GetByLanguage(ctx context.Context, languageID int64) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := DB.SelectContext(ctx, &lessons,
		"SELECT * FROM lessons WHERE language_id = $1 ORDER BY name", languageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lessons: %v", err)
	}
	return lessons, nil
}

// GetByID returns a lesson by ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*models.Lesson, error) {
	var lesson models.Lesson
	err := DB.GetContext(ctx, &lesson, "SELECT * FROM lessons WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %v", err)
	}
	return &lesson, nil
}

// Create inserts a new lesson
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	result, err := DB.ExecContext(ctx,
		"INSERT INTO lessons (language_id, name) VALUES ($1, $2)",
		lesson.LanguageID, lesson.Name)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %v", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		lesson.ID = id
		return nil
	}
	return DB.QueryRowContext(ctx,
		"SELECT id FROM lessons WHERE language_id = $1 AND name = $2",
		lesson.LanguageID, lesson.Name).Scan(&lesson.ID)
}

// Delete removes a lesson
func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM lessons WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %v", err)
	}
	return nil
}
