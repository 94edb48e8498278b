package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"ohtopup/database"
	"ohtopup/models"
)

// WalletRepository implements the service.WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUserID retrieves a user's wallet
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`
	return r.scanWallet(ctx, query, userID)
}

// GetForUpdate retrieves a wallet and row-locks it. Concurrent plays by the
// same user serialize on this lock, so balance checks made after it cannot
// be invalidated before commit.
func (r *WalletRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`
	return r.scanWallet(ctx, query, userID)
}

func (r *WalletRepository) scanWallet(ctx context.Context, query string, userID int64) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// Create creates a wallet with the given opening balance
func (r *WalletRepository) Create(ctx context.Context, userID int64, balance float64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		RETURNING user_id, balance, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID, balance).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// Credit adds funds to a wallet and returns the new balance
func (r *WalletRepository) Credit(ctx context.Context, userID int64, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2
		RETURNING balance
	`

	var balance float64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, fmt.Errorf("wallet for user %d not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit wallet for user %d: %w", userID, err)
	}

	return balance, nil
}

// Debit removes funds from a wallet and returns the new balance. The balance
// guard in the WHERE clause makes overdraft impossible even outside a
// row lock.
func (r *WalletRepository) Debit(ctx context.Context, userID int64, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance float64
	err := r.q.QueryRow(ctx, query, amount, userID).Scan(&balance)
	if err == pgx.ErrNoRows {
		wallet, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return 0, fmt.Errorf("failed to check wallet: %w", getErr)
		}
		if wallet == nil {
			return 0, fmt.Errorf("wallet for user %d not found", userID)
		}
		return 0, fmt.Errorf("insufficient balance: have %.2f, need %.2f", wallet.Balance, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit wallet for user %d: %w", userID, err)
	}

	return balance, nil
}
