package database

import (
	"context"
	"fmt"

	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// LanguageRepository handles database operations for languages
type LanguageRepository struct{}

// NewLanguageRepository creates a new repository instance
func NewLanguageRepository() *LanguageRepository {
	return &LanguageRepository{}
}

// GetByUser returns all languages owned by a user
func (r *LanguageRepository) GetByUser(ctx context.Context, userID int64) ([]models.Language, error) {
	var languages []models.Language
	err := DB.SelectContext(ctx, &languages,
		"SELECT * FROM languages WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get languages: %v", err)
	}
	return languages, nil
}

// GetByID returns a language by ID
func (r *LanguageRepository) GetByID(ctx context.Context, id int64) (*models.Language, error) {
	var language models.Language
	err := DB.GetContext(ctx, &language, "SELECT * FROM languages WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get language: %v", err)
	}
	return &language, nil
}

// Create inserts a new language
func (r *LanguageRepository) Create(ctx context.Context, language *models.Language) error {
	result, err := DB.ExecContext(ctx,
		"INSERT INTO languages (user_id, name) VALUES ($1, $2)",
		language.UserID, language.Name)
	if err != nil {
		return fmt.Errorf("failed to create language: %v", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		language.ID = id
		return nil
	}
	return DB.QueryRowContext(ctx,
		"SELECT id FROM languages WHERE user_id = $1 AND name = $2",
		language.UserID, language.Name).Scan(&language.ID)
}

// Delete removes a language
func (r *LanguageRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM languages WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete language: %v", err)
	}
	return nil
}
