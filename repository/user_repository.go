package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ohtopup/database"
	"ohtopup/models"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by their ID
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, username, email, role, points, total_points, weekly_points, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.Points,
		&user.TotalPoints,
		&user.WeeklyPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// GetByUsername retrieves a user by their username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, email, role, points, total_points, weekly_points, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.Points,
		&user.TotalPoints,
		&user.WeeklyPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}

	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, username, email string, role models.Role) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, role)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, role, points, total_points, weekly_points, created_at, updated_at
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, username, email, role).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.Points,
		&user.TotalPoints,
		&user.WeeklyPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	return &user, nil
}

// AddPoints adds loyalty points to a user's running totals
func (r *UserRepository) AddPoints(ctx context.Context, userID int64, points int64) error {
	if points <= 0 {
		return fmt.Errorf("points must be positive")
	}

	query := `
		UPDATE users
		SET points = points + $1,
		    total_points = total_points + $1,
		    weekly_points = weekly_points + $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, points, userID)
	if err != nil {
		return fmt.Errorf("failed to add points for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user with ID %d not found", userID)
	}

	return nil
}
