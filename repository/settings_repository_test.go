package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohtopup/game"
	"ohtopup/models"
	"ohtopup/repository/testutil"
)

func TestSettingsRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewSettingsRepository(testDB.DB)

	t.Run("GetOrCreate provisions defaults on first read", func(t *testing.T) {
		settings, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)
		require.NotNil(t, settings)

		defaults := models.DefaultGameSettings()
		assert.Equal(t, defaults.BetLimits, settings.BetLimits)
		assert.Equal(t, defaults.Risk, settings.Risk)
		assert.Len(t, settings.Difficulties, 5)
	})

	t.Run("Update round-trips the full tree", func(t *testing.T) {
		settings, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)

		settings.BetLimits.MaxBet = 50000
		settings.Manipulation.Enabled = true
		settings.Manipulation.Mode = game.ModeBiasedLoss
		settings.Manipulation.Bias = 0.3
		require.NoError(t, repo.Update(ctx, settings))

		got, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 50000.0, got.BetLimits.MaxBet)
		assert.True(t, got.Manipulation.Enabled)
		assert.Equal(t, game.ModeBiasedLoss, got.Manipulation.Mode)
		assert.Equal(t, 0.3, got.Manipulation.Bias)
	})

	t.Run("Delete then GetOrCreate restores defaults", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx))

		got, err := repo.GetOrCreate(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultGameSettings().BetLimits, got.BetLimits)
		assert.False(t, got.Manipulation.Enabled)
	})
}
