package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestApplyFairWhenDisabled(t *testing.T) {
	src := NewSeededSource("disabled")
	cfg := ManipulationConfig{Enabled: false, Mode: ModeFixedWin}

	outcome := Apply(src, cfg, DifficultyEasy, 2)

	assert.False(t, outcome.ManipulationApplied)
	assert.Equal(t, ModeFair, outcome.ManipulationType)
	assert.Equal(t, CheckWinCondition(DifficultyEasy, outcome.Dice), outcome.IsWin)
}

func TestApplyFixedWin(t *testing.T) {
	src := NewSeededSource("fixed-win")
	cfg := ManipulationConfig{Enabled: true, Mode: ModeFixedWin}

	for _, d := range Difficulties {
		t.Run(string(d), func(t *testing.T) {
			count := MinDiceCount(d)
			outcome := Apply(src, cfg, d, count)

			assert.True(t, outcome.IsWin)
			assert.True(t, outcome.ManipulationApplied)
			assert.Equal(t, ModeFixedWin, outcome.ManipulationType)
			assert.True(t, CheckWinCondition(d, outcome.Dice),
				"declared win must show winning dice for %s: %v", d, outcome.Dice)
		})
	}
}

func TestApplyFixedLoss(t *testing.T) {
	src := NewSeededSource("fixed-loss")
	cfg := ManipulationConfig{Enabled: true, Mode: ModeFixedLoss}

	for _, d := range Difficulties {
		t.Run(string(d), func(t *testing.T) {
			count := MinDiceCount(d)
			for i := 0; i < 50; i++ {
				outcome := Apply(src, cfg, d, count)
				require.False(t, outcome.IsWin)
				require.False(t, CheckWinCondition(d, outcome.Dice),
					"declared loss must show losing dice for %s: %v", d, outcome.Dice)
			}
		})
	}
}

func TestApplyWinningDiceRespectTierBounds(t *testing.T) {
	src := NewSeededSource("tier-bounds")
	cfg := ManipulationConfig{Enabled: true, Mode: ModeFixedWin}

	for i := 0; i < 100; i++ {
		medium := Apply(src, cfg, DifficultyMedium, 2)
		require.GreaterOrEqual(t, medium.Dice[0], 4)

		hard := Apply(src, cfg, DifficultyHard, 2)
		require.GreaterOrEqual(t, hard.Dice[0], 5)

		expert := Apply(src, cfg, DifficultyExpert, 2)
		require.Equal(t, []int{6, 6}, expert.Dice)
	}
}

func TestApplyCustomProbabilityConverges(t *testing.T) {
	cfg := ManipulationConfig{
		Enabled:        true,
		Mode:           ModeCustomProbability,
		WinProbability: 0.75,
	}
	src := NewSeededSource("custom-probability")

	const n = 5000
	wins := 0
	for i := 0; i < n; i++ {
		outcome := Apply(src, cfg, DifficultyHard, 2)
		require.Equal(t, CheckWinCondition(DifficultyHard, outcome.Dice), outcome.IsWin)
		if outcome.IsWin {
			wins++
		}
	}

	rate := float64(wins) / n
	assert.InDelta(t, 0.75, rate, 0.03, "observed win rate %f", rate)
}

func TestApplyBiasedModes(t *testing.T) {
	const n = 5000
	fairRate := FairProbability(DifficultyEasy)

	// biased_win decides every roll: win with probability bias, forced loss
	// otherwise. biased_loss forces a loss with probability bias and lets one
	// fair roll through untouched otherwise, so its win rate is
	// (1-bias) * fair probability.
	runs := []struct {
		mode Mode
		bias float64
		want float64
	}{
		{ModeBiasedWin, 0.9, 0.9},
		{ModeBiasedLoss, 0.8, 0.2 * fairRate},
		{ModeBiasedLoss, 0.5, 0.5 * fairRate},
	}

	for _, run := range runs {
		t.Run(fmt.Sprintf("%s_bias_%v", run.mode, run.bias), func(t *testing.T) {
			src := NewSeededSource(fmt.Sprintf("bias-%s-%v", run.mode, run.bias))
			cfg := ManipulationConfig{Enabled: true, Mode: run.mode, Bias: run.bias}

			wins := 0
			for i := 0; i < n; i++ {
				outcome := Apply(src, cfg, DifficultyEasy, 2)
				if outcome.IsWin {
					wins++
				}
				if run.mode == ModeBiasedLoss {
					if outcome.ManipulationApplied {
						require.False(t, outcome.IsWin, "forced rolls under biased_loss must lose")
					} else {
						require.Equal(t, ModeFair, outcome.ManipulationType,
							"pass-through rolls must not be tagged as manipulated")
					}
				}
			}

			rate := float64(wins) / n
			assert.InDelta(t, run.want, rate, 0.03, "observed win rate %f", rate)
		})
	}
}

func TestApplyDifficultyBased(t *testing.T) {
	src := NewSeededSource("difficulty-based")
	cfg := ManipulationConfig{
		Enabled: true,
		Mode:    ModeDifficultyBased,
		DifficultySettings: map[Difficulty]DifficultyOverride{
			DifficultyEasy:   {ForceResult: boolPtr(true)},
			DifficultyHard:   {ForceResult: boolPtr(false)},
			DifficultyExpert: {WinProbability: floatPtr(1.0)},
		},
	}

	easy := Apply(src, cfg, DifficultyEasy, 2)
	assert.True(t, easy.IsWin)
	assert.True(t, easy.ManipulationApplied)

	hard := Apply(src, cfg, DifficultyHard, 2)
	assert.False(t, hard.IsWin)

	expert := Apply(src, cfg, DifficultyExpert, 2)
	assert.True(t, expert.IsWin)
	assert.Equal(t, []int{6, 6}, expert.Dice)

	// A tier without an override plays at its fair probability but is still
	// resolved by this mode and tagged accordingly.
	medium := Apply(src, cfg, DifficultyMedium, 2)
	assert.True(t, medium.ManipulationApplied)
	assert.Equal(t, ModeDifficultyBased, medium.ManipulationType)
	assert.Equal(t, CheckWinCondition(DifficultyMedium, medium.Dice), medium.IsWin)
}

func TestApplyInvalidConfigFallsBackToFair(t *testing.T) {
	src := NewSeededSource("invalid-config")
	cfg := ManipulationConfig{
		Enabled:        true,
		Mode:           ModeCustomProbability,
		WinProbability: 1.5,
	}

	outcome := Apply(src, cfg, DifficultyEasy, 2)

	assert.Equal(t, ModeFairFallback, outcome.ManipulationType)
	assert.True(t, outcome.ManipulationApplied)
	assert.Equal(t, CheckWinCondition(DifficultyEasy, outcome.Dice), outcome.IsWin)
}

func TestApplyLegendaryTooFewDiceFallsBackToFair(t *testing.T) {
	src := NewSeededSource("legendary-short")
	cfg := ManipulationConfig{Enabled: true, Mode: ModeFixedWin}

	outcome := Apply(src, cfg, DifficultyLegendary, 2)

	assert.Equal(t, ModeFairFallback, outcome.ManipulationType)
	assert.False(t, outcome.IsWin, "two dice can never satisfy three of a kind")
}

func TestApplySeededReproducibility(t *testing.T) {
	cfg := ManipulationConfig{Enabled: true, Mode: ModeBiasedWin, Bias: 0.5}

	a := Apply(NewSeededSource("replay"), cfg, DifficultyMedium, 3)
	b := Apply(NewSeededSource("replay"), cfg, DifficultyMedium, 3)

	assert.Equal(t, a, b)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ManipulationConfig
		wantErr bool
	}{
		{"zero value is valid", ManipulationConfig{}, false},
		{"fair mode is valid", ManipulationConfig{Mode: ModeFair}, false},
		{"fair_fallback is not a config value", ManipulationConfig{Mode: ModeFairFallback}, true},
		{"unknown mode", ManipulationConfig{Mode: Mode("rigged")}, true},
		{"bias above one", ManipulationConfig{Mode: ModeBiasedWin, Bias: 1.2}, true},
		{"negative bias", ManipulationConfig{Mode: ModeBiasedWin, Bias: -0.1}, true},
		{"probability above one", ManipulationConfig{Mode: ModeCustomProbability, WinProbability: 2}, true},
		{
			"unknown difficulty override",
			ManipulationConfig{
				Mode:               ModeDifficultyBased,
				DifficultySettings: map[Difficulty]DifficultyOverride{"nightmare": {}},
			},
			true,
		},
		{
			"override probability out of range",
			ManipulationConfig{
				Mode: ModeDifficultyBased,
				DifficultySettings: map[Difficulty]DifficultyOverride{
					DifficultyEasy: {WinProbability: floatPtr(1.5)},
				},
			},
			true,
		},
		{
			"well formed difficulty overrides",
			ManipulationConfig{
				Mode: ModeDifficultyBased,
				DifficultySettings: map[Difficulty]DifficultyOverride{
					DifficultyEasy: {WinProbability: floatPtr(0.5)},
					DifficultyHard: {ForceResult: boolPtr(false)},
				},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr {
				var cfgErr *ConfigError
				require.Error(t, err)
				assert.ErrorAs(t, err, &cfgErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
