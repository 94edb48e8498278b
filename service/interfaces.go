package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ohtopup/events"
	"ohtopup/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID. Returns nil if not found.
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// GetByUsername retrieves a user by username. Returns nil if not found.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create creates a new user
	Create(ctx context.Context, username, email string, role models.Role) (*models.User, error)

	// AddPoints adds loyalty points to a user's running totals
	AddPoints(ctx context.Context, userID int64, points int64) error
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUserID retrieves a user's wallet. Returns nil if not found.
	GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error)

	// GetForUpdate retrieves a wallet and row-locks it for the duration of
	// the surrounding transaction. Returns nil if not found.
	GetForUpdate(ctx context.Context, userID int64) (*models.Wallet, error)

	// Create creates a wallet with the given opening balance
	Create(ctx context.Context, userID int64, balance float64) (*models.Wallet, error)

	// Credit adds funds to a wallet and returns the new balance
	Credit(ctx context.Context, userID int64, amount float64) (float64, error)

	// Debit removes funds from a wallet, failing on insufficient balance,
	// and returns the new balance
	Debit(ctx context.Context, userID int64, amount float64) (float64, error)
}

// TransactionRepository defines the interface for the wallet audit trail
type TransactionRepository interface {
	// Record appends a balance-change row
	Record(ctx context.Context, txn *models.WalletTransaction) error

	// GetByUser returns a user's balance changes, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.WalletTransaction, error)
}

// GameRecordRepository defines the interface for play history data access
type GameRecordRepository interface {
	// Create persists a play record
	Create(ctx context.Context, record *models.GameRecord) error

	// GetByID retrieves a single play. Returns nil if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*models.GameRecord, error)

	// GetByUser returns a page of a user's plays, newest first
	GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.GameRecord, error)

	// CountByUser returns the total number of plays for a user
	CountByUser(ctx context.Context, userID int64) (int64, error)

	// CountByUserSince counts a user's plays at or after the given time
	CountByUserSince(ctx context.Context, userID int64, since time.Time) (int64, error)

	// GetUserStats aggregates a user's play history
	GetUserStats(ctx context.Context, userID int64) (*models.UserGameStats, error)

	// GetResultsByUser returns a user's win/loss sequence, oldest first
	GetResultsByUser(ctx context.Context, userID int64) ([]bool, error)

	// GetSystemStats aggregates platform-wide play history
	GetSystemStats(ctx context.Context) (*models.SystemGameStats, error)
}

// SettingsRepository defines the interface for the settings singleton
type SettingsRepository interface {
	// GetOrCreate returns the settings row, provisioning defaults if absent
	GetOrCreate(ctx context.Context) (*models.GameSettings, error)

	// Update replaces the stored settings tree
	Update(ctx context.Context, settings *models.GameSettings) error

	// Delete removes the settings row so the next read re-provisions it
	Delete(ctx context.Context) error
}

// EventPublisher defines the interface for publishing events within a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional boundaries around repository operations
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	WalletRepository() WalletRepository
	TransactionRepository() TransactionRepository
	GameRecordRepository() GameRecordRepository
	SettingsRepository() SettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// GameService defines the dice play path
type GameService interface {
	// Play runs one dice play end to end and returns the result
	Play(ctx context.Context, userID int64, req *models.PlayRequest) (*models.PlayResult, error)
}

// SettingsService defines admin settings management
type SettingsService interface {
	// Get returns the current settings tree
	Get(ctx context.Context) (*models.GameSettings, error)

	// Update applies a partial update and returns the resulting tree
	Update(ctx context.Context, adminID int64, patch *models.GameSettingsPatch) (*models.GameSettings, error)

	// Reset restores the defaults while keeping the singleton row
	Reset(ctx context.Context, adminID int64) (*models.GameSettings, error)

	// ForceReset drops the row entirely and re-provisions it
	ForceReset(ctx context.Context, adminID int64) (*models.GameSettings, error)
}

// StatsService defines history and statistics queries
type StatsService interface {
	// GetHistory returns a page of a user's plays plus the total count
	GetHistory(ctx context.Context, userID int64, limit, offset int) ([]*models.GameRecord, int64, error)

	// GetUserStats aggregates a user's play history
	GetUserStats(ctx context.Context, userID int64) (*models.UserGameStats, error)

	// GetSystemStats aggregates platform-wide play history
	GetSystemStats(ctx context.Context) (*models.SystemGameStats, error)
}

// UserService defines account provisioning and lookup
type UserService interface {
	// GetOrCreateUser fetches a user by username, creating them with a
	// funded wallet on first sight
	GetOrCreateUser(ctx context.Context, username, email string) (*models.User, error)

	// GetUser fetches a user by ID
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// RiskLimiter tracks hourly win/loss exposure per user
type RiskLimiter interface {
	// HourlyLoss returns the user's recorded losses for the current clock hour
	HourlyLoss(ctx context.Context, userID int64) (float64, error)

	// HourlyWin returns the user's recorded winnings for the current clock hour
	HourlyWin(ctx context.Context, userID int64) (float64, error)

	// AddLoss records a loss against the current clock hour and returns the new total
	AddLoss(ctx context.Context, userID int64, amount float64) (float64, error)

	// AddWin records a win against the current clock hour and returns the new total
	AddWin(ctx context.Context, userID int64, amount float64) (float64, error)
}
