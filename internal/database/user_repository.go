package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kristynaumlaufova/verb-repetora-sub001/internal/fsrs"
	"github.com/kristynaumlaufova/verb-repetora-sub001/pkg/models"
)

// UserRepository handles database operations for users, including the
// per-user FSRS weight vector stored on the user row.
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = "id, username, first_name, last_name, fsrs_weights, notification_enabled, notification_hour, created_at, updated_at"

// scanUser scans one user row, decoding the weights JSON column.
func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var weightsJSON sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&weightsJSON,
		&user.NotificationEnabled,
		&user.NotificationHour,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if weightsJSON.Valid && weightsJSON.String != "" {
		if err := json.Unmarshal([]byte(weightsJSON.String), &user.FSRSWeights); err != nil {
			return nil, fmt.Errorf("failed to parse stored weights: %v", err)
		}
	}
	return &user, nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %v", err)
	}
	return user, nil
}

// GetByUsername returns a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %v", err)
	}
	return user, nil
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	result, err := DB.ExecContext(ctx, `
		INSERT INTO users (username, first_name, last_name, notification_enabled, notification_hour)
		VALUES ($1, $2, $3, $4, $5)`,
		user.Username,
		user.FirstName,
		user.LastName,
		user.NotificationEnabled,
		user.NotificationHour,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %v", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		user.ID = id
		return nil
	}
	// Postgres doesn't support LastInsertId
	return DB.QueryRowContext(ctx, "SELECT id FROM users WHERE username = $1", user.Username).Scan(&user.ID)
}

// Update modifies an existing user's profile and notification settings
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			notification_enabled = $3,
			notification_hour = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $5`,
		user.FirstName,
		user.LastName,
		user.NotificationEnabled,
		user.NotificationHour,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// UserIDs returns the IDs of all users, ordered for deterministic iteration
func (r *UserRepository) UserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := DB.SelectContext(ctx, &ids, "SELECT id FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %v", err)
	}
	return ids, nil
}

// GetUsersForNotification returns users who want reminders at the given hour
func (r *UserRepository) GetUsersForNotification(ctx context.Context, hour int) ([]models.User, error) {
	rows, err := DB.QueryContext(ctx,
		"SELECT id FROM users WHERE notification_enabled = true AND notification_hour = $1 ORDER BY id", hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %v", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user: %v", err)
		}
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// Weights returns the user's personal FSRS weight vector, or nil when the
// user has none and should use the defaults.
func (r *UserRepository) Weights(ctx context.Context, userID int64) ([]float64, error) {
	var weightsJSON sql.NullString
	err := DB.GetContext(ctx, &weightsJSON, "SELECT fsrs_weights FROM users WHERE id = $1", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weights for user %d: %v", userID, err)
	}
	if !weightsJSON.Valid || weightsJSON.String == "" {
		return nil, nil
	}

	var weights []float64
	if err := json.Unmarshal([]byte(weightsJSON.String), &weights); err != nil {
		return nil, fmt.Errorf("failed to parse weights for user %d: %v", userID, err)
	}
	return weights, nil
}

// SaveWeights atomically replaces the user's weight vector. The vector is
// validated first and written with a single UPDATE; a partial vector can
// never be observed.
func (r *UserRepository) SaveWeights(ctx context.Context, userID int64, weights []float64) error {
	if err := fsrs.ValidateWeights(weights); err != nil {
		return err
	}

	data, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %v", err)
	}

	result, err := DB.ExecContext(ctx,
		"UPDATE users SET fsrs_weights = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2",
		string(data), userID)
	if err != nil {
		return fmt.Errorf("failed to save weights for user %d: %v", userID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}
