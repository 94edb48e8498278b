package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohtopup/models"
)

func newStatsServiceMocks(ctx context.Context) (*MockUnitOfWorkFactory, *MockGameRecordRepository) {
	factory := new(MockUnitOfWorkFactory)
	uow := new(MockUnitOfWork)
	records := new(MockGameRecordRepository)

	uow.SetRepositories(nil, nil, nil, records, nil, nil)
	factory.On("Create").Return(uow)
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	return factory, records
}

func TestStatsService_GetUserStats_ComputesStreak(t *testing.T) {
	ctx := context.Background()
	factory, records := newStatsServiceMocks(ctx)

	records.On("GetUserStats", ctx, int64(42)).Return(&models.UserGameStats{
		TotalGames:  7,
		TotalWins:   4,
		TotalLosses: 3,
	}, nil)
	records.On("GetResultsByUser", ctx, int64(42)).
		Return([]bool{true, false, true, true, true, false, true}, nil)

	svc := NewStatsService(factory)
	stats, err := svc.GetUserStats(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, 3, stats.BestWinStreak)
}

func TestStatsService_GetHistory_ClampsPaging(t *testing.T) {
	ctx := context.Background()
	factory, records := newStatsServiceMocks(ctx)

	// Oversized limit and negative offset get clamped before the query.
	records.On("GetByUser", ctx, int64(42), maxHistoryLimit, 0).Return([]*models.GameRecord{}, nil)
	records.On("CountByUser", ctx, int64(42)).Return(int64(250), nil)

	svc := NewStatsService(factory)
	_, total, err := svc.GetHistory(ctx, 42, 500, -3)

	require.NoError(t, err)
	assert.Equal(t, int64(250), total)
	records.AssertExpectations(t)
}

func TestStatsService_GetHistory_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	factory, records := newStatsServiceMocks(ctx)

	records.On("GetByUser", ctx, int64(42), defaultHistoryLimit, 0).Return([]*models.GameRecord{}, nil)
	records.On("CountByUser", ctx, int64(42)).Return(int64(0), nil)

	svc := NewStatsService(factory)
	_, _, err := svc.GetHistory(ctx, 42, 0, 0)

	require.NoError(t, err)
	records.AssertExpectations(t)
}

func TestBestStreak(t *testing.T) {
	tests := []struct {
		name    string
		results []bool
		want    int
	}{
		{"empty history", nil, 0},
		{"all losses", []bool{false, false, false}, 0},
		{"all wins", []bool{true, true, true}, 3},
		{"streak at the end", []bool{false, true, true}, 2},
		{"streak in the middle", []bool{true, false, true, true, false, true}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bestStreak(tt.results))
		})
	}
}
