package database

import (
	"context"
	"fmt"
	"time"

	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// WordRepository handles database operations for words and their embedded
// scheduling state.
type WordRepository struct{}

// NewWordRepository creates a new repository instance
func NewWordRepository() *WordRepository {
	return &WordRepository{}
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := DB.GetContext(ctx, &word, "SELECT * FROM words WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %v", err)
	}
	return &word, nil
}

// WordByID is GetByID under the name the review orchestrator expects.
func (r *WordRepository) WordByID(ctx context.Context, id int64) (*models.Word, error) {
	return r.GetByID(ctx, id)
}

// GetByLesson returns all words in a lesson
func (r *WordRepository) GetByLesson(ctx context.Context, lessonID int64) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words,
		"SELECT * FROM words WHERE lesson_id = $1 ORDER BY id", lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words by lesson: %v", err)
	}
	return words, nil
}

// GetByLessonAndFront returns a word by its lesson and front text, or nil
// when no such word exists
func (r *WordRepository) GetByLessonAndFront(ctx context.Context, lessonID int64, front string) (*models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words,
		"SELECT * FROM words WHERE lesson_id = $1 AND front = $2", lessonID, front)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by front: %v", err)
	}
	if len(words) == 0 {
		return nil, nil
	}
	return &words[0], nil
}

// WordsForUser returns every word the user owns, across all languages and
// lessons, ordered by due date then ID
func (r *WordRepository) WordsForUser(ctx context.Context, userID int64) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, `
		SELECT w.* FROM words w
		JOIN lessons ls ON w.lesson_id = ls.id
		JOIN languages lg ON ls.language_id = lg.id
		WHERE lg.user_id = $1
		ORDER BY w.due_at ASC, w.id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get words for user: %v", err)
	}
	return words, nil
}

// DueWordsForUser returns the user's words with due_at <= now, oldest due
// first, ties broken by word ID
func (r *WordRepository) DueWordsForUser(ctx context.Context, userID int64, now time.Time) ([]models.Word, error) {
	var words []models.Word
	err := DB.SelectContext(ctx, &words, `
		SELECT w.* FROM words w
		JOIN lessons ls ON w.lesson_id = ls.id
		JOIN languages lg ON ls.language_id = lg.id
		WHERE lg.user_id = $1 AND w.due_at <= $2
		ORDER BY w.due_at ASC, w.id ASC
	`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due words: %v", err)
	}
	return words, nil
}

// Create inserts a new word. New words carry no scheduling estimate yet and
// are due immediately.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.DueAt.IsZero() {
		word.DueAt = time.Now()
	}
	result, err := DB.ExecContext(ctx, `
		INSERT INTO words (lesson_id, word_type_id, front, back, due_at)
		VALUES ($1, $2, $3, $4, $5)`,
		word.LessonID,
		word.WordTypeID,
		word.Front,
		word.Back,
		word.DueAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %v", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		word.ID = id
		return nil
	}
	return DB.QueryRowContext(ctx,
		"SELECT id FROM words WHERE lesson_id = $1 AND front = $2",
		word.LessonID, word.Front).Scan(&word.ID)
}

// Update modifies a word's content fields. Scheduling state is only ever
// written through CommitReview.
func (r *WordRepository) Update(ctx context.Context, word *models.Word) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE words SET
			word_type_id = $1,
			front = $2,
			back = $3,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $4`,
		word.WordTypeID,
		word.Front,
		word.Back,
		word.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update word: %v", err)
	}
	return nil
}

// Delete removes a word
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	_, err := DB.ExecContext(ctx, "DELETE FROM words WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete word: %v", err)
	}
	return nil
}

// CommitReview persists one review outcome: the word's new scheduling state
// and exactly one review log entry, inside a single transaction so the log
// never disagrees with the scheduling state.
func (r *WordRepository) CommitReview(ctx context.Context, word *models.Word, entry *models.ReviewLog) error {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE words SET
			stability = $1,
			difficulty = $2,
			due_at = $3,
			review_count = $4,
			last_reviewed_at = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6`,
		word.Stability,
		word.Difficulty,
		word.DueAt,
		word.ReviewCount,
		word.LastReviewedAt,
		word.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update scheduling state: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("word %d not found", word.ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_logs (user_id, word_id, rating, reviewed_at, elapsed_days, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.UserID,
		entry.WordID,
		entry.Rating,
		entry.ReviewedAt,
		entry.ElapsedDays,
		entry.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("failed to append review log: %v", err)
	}

	return tx.Commit()
}

// UserStatistics returns aggregate progress numbers for a user
func (r *WordRepository) UserStatistics(ctx context.Context, userID int64) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int
	err := DB.GetContext(ctx, &totalCount, `
		SELECT COUNT(*) FROM words w
		JOIN lessons ls ON w.lesson_id = ls.id
		JOIN languages lg ON ls.language_id = lg.id
		WHERE lg.user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count words: %v", err)
	}
	stats["total_words"] = totalCount

	var dueCount int
	err = DB.GetContext(ctx, &dueCount, `
		SELECT COUNT(*) FROM words w
		JOIN lessons ls ON w.lesson_id = ls.id
		JOIN languages lg ON ls.language_id = lg.id
		WHERE lg.user_id = $1 AND w.due_at <= $2`, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to count due words: %v", err)
	}
	stats["due_now"] = dueCount

	// Mastered: reviewed several times and stable for a month or more
	var mastered int
	err = DB.GetContext(ctx, &mastered, `
		SELECT COUNT(*) FROM words w
		JOIN lessons ls ON w.lesson_id = ls.id
		JOIN languages lg ON ls.language_id = lg.id
		WHERE lg.user_id = $1 AND w.review_count >= 5 AND w.stability >= 30`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count mastered words: %v", err)
	}
	stats["mastered"] = mastered

	var avgDifficulty float64
	err = DB.GetContext(ctx, &avgDifficulty, `
		SELECT COALESCE(AVG(w.difficulty), 0) FROM words w
		JOIN lessons ls ON w.lesson_id = ls.id
		JOIN languages lg ON ls.language_id = lg.id
		WHERE lg.user_id = $1 AND w.review_count > 0`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to average difficulty: %v", err)
	}
	stats["avg_difficulty"] = avgDifficulty

	return stats, nil
}
