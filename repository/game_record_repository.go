package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"ohtopup/database"
	"ohtopup/models"
)

// GameRecordRepository implements the service.GameRecordRepository interface
type GameRecordRepository struct {
	q queryable
}

// NewGameRecordRepository creates a new game record repository
func NewGameRecordRepository(db *database.DB) *GameRecordRepository {
	return &GameRecordRepository{q: db.Pool}
}

// newGameRecordRepositoryWithTx creates a new game record repository with a transaction
func newGameRecordRepositoryWithTx(tx queryable) *GameRecordRepository {
	return &GameRecordRepository{q: tx}
}

const gameRecordColumns = `
	id, user_id, bet_amount, odds, difficulty, dice_count, dice, target_combination,
	is_win, winnings, payout, game_result, expected_value, house_edge,
	manipulation_applied, manipulation_type, played_at`

// Create persists a play record
func (r *GameRecordRepository) Create(ctx context.Context, record *models.GameRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	query := `
		INSERT INTO game_records (
			id, user_id, bet_amount, odds, difficulty, dice_count, dice, target_combination,
			is_win, winnings, payout, game_result, expected_value, house_edge,
			manipulation_applied, manipulation_type
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING played_at
	`

	err := r.q.QueryRow(ctx, query,
		record.ID,
		record.UserID,
		record.BetAmount,
		record.Odds,
		record.Difficulty,
		record.DiceCount,
		record.Dice,
		record.TargetCombination,
		record.IsWin,
		record.Winnings,
		record.Payout,
		record.GameResult,
		record.ExpectedValue,
		record.HouseEdge,
		record.ManipulationApplied,
		record.ManipulationType,
	).Scan(&record.PlayedAt)

	if err != nil {
		return fmt.Errorf("failed to create game record for user %d: %w", record.UserID, err)
	}

	return nil
}

// GetByID retrieves a single play
func (r *GameRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GameRecord, error) {
	query := `SELECT` + gameRecordColumns + `
		FROM game_records
		WHERE id = $1
	`

	record, err := r.scanRecord(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game record %s: %w", id, err)
	}

	return record, nil
}

// GetByUser returns a page of a user's plays, newest first
func (r *GameRecordRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]*models.GameRecord, error) {
	query := `SELECT` + gameRecordColumns + `
		FROM game_records
		WHERE user_id = $1
		ORDER BY played_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get game records for user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []*models.GameRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game records: %w", err)
	}

	return records, nil
}

func (r *GameRecordRepository) scanRecord(row pgx.Row) (*models.GameRecord, error) {
	var record models.GameRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.BetAmount,
		&record.Odds,
		&record.Difficulty,
		&record.DiceCount,
		&record.Dice,
		&record.TargetCombination,
		&record.IsWin,
		&record.Winnings,
		&record.Payout,
		&record.GameResult,
		&record.ExpectedValue,
		&record.HouseEdge,
		&record.ManipulationApplied,
		&record.ManipulationType,
		&record.PlayedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// CountByUser returns the total number of plays for a user
func (r *GameRecordRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM game_records WHERE user_id = $1`

	var count int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count game records for user %d: %w", userID, err)
	}

	return count, nil
}

// CountByUserSince counts a user's plays at or after the given time
func (r *GameRecordRepository) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM game_records WHERE user_id = $1 AND played_at >= $2`

	var count int64
	if err := r.q.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count game records for user %d since %s: %w", userID, since, err)
	}

	return count, nil
}

// GetUserStats aggregates a user's play history
func (r *GameRecordRepository) GetUserStats(ctx context.Context, userID int64) (*models.UserGameStats, error) {
	query := `
		SELECT
			COUNT(*) as total_games,
			COUNT(*) FILTER (WHERE is_win) as total_wins,
			COUNT(*) FILTER (WHERE NOT is_win) as total_losses,
			COALESCE(SUM(bet_amount), 0) as total_wagered,
			COALESCE(SUM(payout), 0) as total_winnings,
			COALESCE(MAX(payout) FILTER (WHERE is_win), 0) as biggest_win
		FROM game_records
		WHERE user_id = $1
	`

	var stats models.UserGameStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&stats.TotalGames,
		&stats.TotalWins,
		&stats.TotalLosses,
		&stats.TotalWagered,
		&stats.TotalWinnings,
		&stats.BiggestWin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get game stats for user %d: %w", userID, err)
	}

	stats.NetProfit = stats.TotalWinnings - stats.TotalWagered
	if stats.TotalGames > 0 {
		stats.WinRate = float64(stats.TotalWins) / float64(stats.TotalGames)
	}

	return &stats, nil
}

// GetResultsByUser returns a user's win/loss sequence, oldest first
func (r *GameRecordRepository) GetResultsByUser(ctx context.Context, userID int64) ([]bool, error) {
	query := `
		SELECT is_win
		FROM game_records
		WHERE user_id = $1
		ORDER BY played_at ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game results for user %d: %w", userID, err)
	}
	defer rows.Close()

	var results []bool
	for rows.Next() {
		var isWin bool
		if err := rows.Scan(&isWin); err != nil {
			return nil, fmt.Errorf("failed to scan game result: %w", err)
		}
		results = append(results, isWin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game results: %w", err)
	}

	return results, nil
}

// GetSystemStats aggregates platform-wide play history
func (r *GameRecordRepository) GetSystemStats(ctx context.Context) (*models.SystemGameStats, error) {
	query := `
		SELECT
			COUNT(*) as total_games,
			COUNT(*) FILTER (WHERE is_win) as total_wins,
			COUNT(DISTINCT user_id) as unique_players,
			COALESCE(SUM(bet_amount), 0) as total_wagered,
			COALESCE(SUM(payout), 0) as total_paid_out,
			COUNT(*) FILTER (WHERE manipulation_applied) as manipulated_games
		FROM game_records
	`

	var stats models.SystemGameStats
	err := r.q.QueryRow(ctx, query).Scan(
		&stats.TotalGames,
		&stats.TotalWins,
		&stats.UniquePlayers,
		&stats.TotalWagered,
		&stats.TotalPaidOut,
		&stats.ManipulatedGames,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get system game stats: %w", err)
	}

	stats.HouseProfit = stats.TotalWagered - stats.TotalPaidOut
	if stats.TotalGames > 0 {
		stats.ObservedWinRate = float64(stats.TotalWins) / float64(stats.TotalGames)
	}

	return &stats, nil
}
