package database

import (
	"context"
	"fmt"

	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// WordTypeRepository handles database operations for word types
type WordTypeRepository struct{}

// NewWordTypeRepository creates a new repository instance
func NewWordTypeRepository() *WordTypeRepository {
	return &WordTypeRepository{}
}

// GetByLanguage returns all word types for a language
func (r *WordTypeRepository) GetByLanguage(ctx context.Context, languageID int64) ([]models.WordType, error) {
	var types []models.WordType
	err := DB.SelectContext(ctx, &types,
		"SELECT * FROM word_types WHERE language_id = $1 ORDER BY name", languageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get word types: %v", err)
	}
	return types, nil
}

// Create inserts a new word type
func (r *WordTypeRepository) Create(ctx context.Context, wordType *models.WordType) error {
	result, err := DB.ExecContext(ctx,
		"INSERT INTO word_types (language_id, name) VALUES ($1, $2)",
		wordType.LanguageID, wordType.Name)
	if err != nil {
		return fmt.Errorf("failed to create word type: %v", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		wordType.ID = id
		return nil
	}
	return DB.QueryRowContext(ctx,
		"SELECT id FROM word_types WHERE language_id = $1 AND name = $2",
		wordType.LanguageID, wordType.Name).Scan(&wordType.ID)
}

// Delete removes a word type
func (r *WordTypeRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM word_types WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete word type: %v", err)
	}
	return nil
}
