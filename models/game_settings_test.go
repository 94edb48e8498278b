package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ohtopup/game"
)

func TestDefaultGameSettings(t *testing.T) {
	s := DefaultGameSettings()

	assert.True(t, s.Enabled)
	assert.False(t, s.Maintenance)
	assert.Equal(t, 100.0, s.BetLimits.MinBet)
	assert.Equal(t, 10000.0, s.BetLimits.MaxBet)
	assert.Equal(t, 5, s.MaxDiceCount)
	assert.Len(t, s.Difficulties, 5)
	assert.False(t, s.Manipulation.Enabled)
	assert.Equal(t, game.ModeFair, s.Manipulation.Mode)
	assert.True(t, s.Manipulation.AdminOnly)
	assert.True(t, s.Manipulation.LogManipulations)

	require.NoError(t, game.ValidateConfig(s.Manipulation))
}

func TestPatchApplyUpdatesOnlyNamedFields(t *testing.T) {
	s := DefaultGameSettings()
	maxBet := 25000.0
	maxDice := 6

	patch := GameSettingsPatch{
		BetLimits:    &BetLimitsPatch{MaxBet: &maxBet},
		MaxDiceCount: &maxDice,
	}
	patch.Apply(s)

	assert.Equal(t, 25000.0, s.BetLimits.MaxBet)
	assert.Equal(t, 6, s.MaxDiceCount)
	// Siblings of the patched leaf are untouched.
	assert.Equal(t, 100.0, s.BetLimits.MinBet)
	assert.Equal(t, 0.0, s.BetLimits.EntryFee)
	// Unrelated subtrees are untouched.
	assert.True(t, s.Enabled)
	assert.Equal(t, 50000.0, s.Risk.MaxLossPerHour)
}

func TestPatchApplyNestedManipulation(t *testing.T) {
	s := DefaultGameSettings()
	enabled := true
	mode := game.ModeCustomProbability
	prob := 0.4

	patch := GameSettingsPatch{
		Manipulation: &ManipulationPatch{
			Enabled:        &enabled,
			Mode:           &mode,
			WinProbability: &prob,
		},
	}
	patch.Apply(s)

	assert.True(t, s.Manipulation.Enabled)
	assert.Equal(t, game.ModeCustomProbability, s.Manipulation.Mode)
	assert.Equal(t, 0.4, s.Manipulation.WinProbability)
	// Leaves not named in the patch keep their values.
	assert.True(t, s.Manipulation.AdminOnly)
	assert.True(t, s.Manipulation.LogManipulations)
}

func TestPatchApplyDifficultyLeaf(t *testing.T) {
	s := DefaultGameSettings()
	maxOdds := 3.0

	patch := GameSettingsPatch{
		Difficulties: map[game.Difficulty]DifficultyConfigPatch{
			game.DifficultyEasy: {MaxOdds: &maxOdds},
		},
	}
	patch.Apply(s)

	assert.Equal(t, 3.0, s.Difficulties[game.DifficultyEasy].MaxOdds)
	assert.Equal(t, 1.5, s.Difficulties[game.DifficultyEasy].MinOdds)
	// Other tiers keep their config.
	assert.Equal(t, 4.0, s.Difficulties[game.DifficultyMedium].MaxOdds)
}

func TestPatchApplyEmptyPatchIsNoop(t *testing.T) {
	s := DefaultGameSettings()
	want := *DefaultGameSettings()

	(&GameSettingsPatch{}).Apply(s)

	assert.Equal(t, want.BetLimits, s.BetLimits)
	assert.Equal(t, want.Risk, s.Risk)
	assert.Equal(t, want.Notifications, s.Notifications)
}
