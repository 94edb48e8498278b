package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"ohtopup/database"
	"ohtopup/models"
)

// TransactionRepository implements the service.TransactionRepository interface
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new wallet transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new wallet transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Record appends a balance-change row. Rows are never updated afterwards.
func (r *TransactionRepository) Record(ctx context.Context, txn *models.WalletTransaction) error {
	var metadataJSON []byte
	if txn.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(txn.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction metadata: %w", err)
		}
	}

	query := `
		INSERT INTO wallet_transactions (user_id, balance_before, balance_after, change_amount, transaction_type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.UserID,
		txn.BalanceBefore,
		txn.BalanceAfter,
		txn.ChangeAmount,
		txn.TransactionType,
		metadataJSON,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record wallet transaction for user %d: %w", txn.UserID, err)
	}

	return nil
}

// GetByUser returns a user's balance changes, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, user_id, balance_before, balance_after, change_amount, transaction_type, metadata, created_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var txns []*models.WalletTransaction
	for rows.Next() {
		var txn models.WalletTransaction
		var metadataJSON []byte

		err := rows.Scan(
			&txn.ID,
			&txn.UserID,
			&txn.BalanceBefore,
			&txn.BalanceAfter,
			&txn.ChangeAmount,
			&txn.TransactionType,
			&metadataJSON,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &txn.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}

		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet transactions: %w", err)
	}

	return txns, nil
}
