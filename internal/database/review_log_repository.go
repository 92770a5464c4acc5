package database

import (
	"context"
	"fmt"

	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// ReviewLogRepository reads the append-only review log. Entries are written
// exclusively through WordRepository.CommitReview; there is deliberately no
// update or delete operation here.
type ReviewLogRepository struct{}

// NewReviewLogRepository creates a new repository instance
func NewReviewLogRepository() *ReviewLogRepository {
	return &ReviewLogRepository{}
}

// ReviewLogsForUser returns the user's full review history ordered by
// occurrence. The optimization pipeline consumes this as its sole input.
func (r *ReviewLogRepository) ReviewLogsForUser(ctx context.Context, userID int64) ([]models.ReviewLog, error) {
	var logs []models.ReviewLog
	err := DB.SelectContext(ctx, &logs, `
		SELECT * FROM review_logs
		WHERE user_id = $1
		ORDER BY reviewed_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get review logs: %v", err)
	}
	return logs, nil
}

// CountForUser returns the number of review log entries for a user
func (r *ReviewLogRepository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM review_logs WHERE user_id = $1", userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count review logs: %v", err)
	}
	return count, nil
}
