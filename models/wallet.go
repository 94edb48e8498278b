package models

import "time"

// Wallet holds a user's spendable balance. One wallet per user.
type Wallet struct {
	UserID    int64     `json:"user_id"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
