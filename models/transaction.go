package models

import "time"

// TransactionType categorizes a wallet balance change.
type TransactionType string

const (
	TransactionTypeInitial    TransactionType = "initial"
	TransactionTypeBetDebit   TransactionType = "bet_debit"
	TransactionTypeWinCredit  TransactionType = "win_credit"
	TransactionTypeAdjustment TransactionType = "adjustment"
)

// WalletTransaction is an append-only record of a single balance change.
// Rows are never updated or deleted; the sequence of changes for a user is
// the audit trail for their balance.
type WalletTransaction struct {
	ID              int64                  `json:"id"`
	UserID          int64                  `json:"user_id"`
	BalanceBefore   float64                `json:"balance_before"`
	BalanceAfter    float64                `json:"balance_after"`
	ChangeAmount    float64                `json:"change_amount"`
	TransactionType TransactionType        `json:"transaction_type"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}
