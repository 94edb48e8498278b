package service

import (
	"context"
	"fmt"

	"ohtopup/models"
)

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

func (s *statsService) GetHistory(ctx context.Context, userID int64, limit, offset int) ([]*models.GameRecord, int64, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.GameRecordRepository().GetByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get game history: %w", err)
	}

	total, err := uow.GameRecordRepository().CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count game history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return records, total, nil
}

func (s *statsService) GetUserStats(ctx context.Context, userID int64) (*models.UserGameStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.GameRecordRepository().GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	results, err := uow.GameRecordRepository().GetResultsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game results: %w", err)
	}
	stats.BestWinStreak = bestStreak(results)

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}

func (s *statsService) GetSystemStats(ctx context.Context) (*models.SystemGameStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.GameRecordRepository().GetSystemStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get system stats: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stats, nil
}

// bestStreak returns the longest run of consecutive wins in the sequence.
func bestStreak(results []bool) int {
	best, current := 0, 0
	for _, isWin := range results {
		if isWin {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}
	return best
}
