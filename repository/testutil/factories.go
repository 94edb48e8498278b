package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"ohtopup/database"
	"ohtopup/models"
)

// SeedUser inserts a user with a funded wallet and returns it. Both rows are
// written in one transaction so a failed seed leaves nothing behind.
func SeedUser(t *testing.T, db *database.DB, username string, role models.Role, balance float64) *models.User {
	ctx := context.Background()

	var user models.User
	err := db.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (username, email, role)
			VALUES ($1, $2, $3)
			RETURNING id, username, email, role, points, total_points, weekly_points, created_at, updated_at
		`, username, username+"@example.com", role).Scan(
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
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO wallets (user_id, balance)
			VALUES ($1, $2)
		`, user.ID, balance)
		return err
	})
	require.NoError(t, err)

	return &user
}

// WalletBalance reads a wallet balance directly, bypassing the repositories.
func WalletBalance(t *testing.T, db *database.DB, userID int64) float64 {
	var balance float64
	err := db.Pool.QueryRow(context.Background(),
		`SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}
