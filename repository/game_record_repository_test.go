package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohtopup/game"
	"ohtopup/models"
	"ohtopup/repository/testutil"
)

func seedRecord(t *testing.T, repo *GameRecordRepository, userID int64, betAmount, odds float64, isWin bool) *models.GameRecord {
	t.Helper()

	payout := 0.0
	result := models.GameResultLose
	if isWin {
		payout = betAmount * odds
		result = models.GameResultWin
	}

	record := &models.GameRecord{
		UserID:            userID,
		BetAmount:         betAmount,
		Odds:              odds,
		Difficulty:        game.DifficultyEasy,
		DiceCount:         2,
		Dice:              []int{3, 3},
		TargetCombination: game.TargetAnyDouble,
		IsWin:             isWin,
		Winnings:          payout,
		Payout:            payout,
		GameResult:        result,
		ExpectedValue:     betAmount * odds * game.FairProbability(game.DifficultyEasy),
		HouseEdge:         0.05,
		ManipulationType:  game.ModeFair,
	}
	if !isWin {
		record.Dice = []int{2, 5}
	}

	require.NoError(t, repo.Create(context.Background(), record))
	return record
}

func TestGameRecordRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	user := testutil.SeedUser(t, testDB.DB, "dice_player", models.RoleUser, 5000)
	repo := NewGameRecordRepository(testDB.DB)

	seedRecord(t, repo, user.ID, 100, 2.0, false)
	seedRecord(t, repo, user.ID, 200, 2.0, true)
	seedRecord(t, repo, user.ID, 300, 2.0, false)

	t.Run("Create assigns id and played_at", func(t *testing.T) {
		record := seedRecord(t, repo, user.ID, 150, 2.0, true)
		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.False(t, record.PlayedAt.IsZero())
	})

	t.Run("GetByID", func(t *testing.T) {
		created := seedRecord(t, repo, user.ID, 250, 3.0, true)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, created.Dice, got.Dice)
		assert.Equal(t, game.TargetAnyDouble, got.TargetCombination)
	})

	t.Run("GetByID missing returns nil", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetByUser pagination", func(t *testing.T) {
		page, err := repo.GetByUser(ctx, user.ID, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := repo.GetByUser(ctx, user.ID, 100, 2)
		require.NoError(t, err)
		assert.NotEmpty(t, rest)
	})

	t.Run("CountByUserSince", func(t *testing.T) {
		count, err := repo.CountByUserSince(ctx, user.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(5))

		count, err = repo.CountByUserSince(ctx, user.ID, time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("GetUserStats", func(t *testing.T) {
		stats, err := repo.GetUserStats(ctx, user.ID)
		require.NoError(t, err)

		assert.Equal(t, stats.TotalGames, stats.TotalWins+stats.TotalLosses)
		assert.Equal(t, stats.TotalWinnings-stats.TotalWagered, stats.NetProfit)
		assert.Greater(t, stats.BiggestWin, 0.0)
	})

	t.Run("GetUserStats for unknown user is empty", func(t *testing.T) {
		stats, err := repo.GetUserStats(ctx, 999999)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalGames)
		assert.Zero(t, stats.WinRate)
	})

	t.Run("GetResultsByUser returns oldest first", func(t *testing.T) {
		results, err := repo.GetResultsByUser(ctx, user.ID)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(results), 3)
		assert.False(t, results[0], "first seeded play was a loss")
		assert.True(t, results[1], "second seeded play was a win")
	})

	t.Run("GetSystemStats", func(t *testing.T) {
		stats, err := repo.GetSystemStats(ctx)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, stats.TotalGames, int64(5))
		assert.Equal(t, int64(1), stats.UniquePlayers)
		assert.Equal(t, stats.TotalWagered-stats.TotalPaidOut, stats.HouseProfit)
	})
}
