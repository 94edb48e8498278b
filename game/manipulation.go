package game

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Mode selects how outcomes are decided.
type Mode string

const (
	ModeFair              Mode = "fair"
	ModeBiasedWin         Mode = "biased_win"
	ModeBiasedLoss        Mode = "biased_loss"
	ModeFixedWin          Mode = "fixed_win"
	ModeFixedLoss         Mode = "fixed_loss"
	ModeCustomProbability Mode = "custom_probability"
	ModeDifficultyBased   Mode = "difficulty_based"

	// ModeFairFallback tags an outcome resolved fairly because the configured
	// mode could not be honored. It is a result label, never a valid config
	// value.
	ModeFairFallback Mode = "fair_fallback"
)

func validMode(m Mode) bool {
	switch m {
	case ModeFair, ModeBiasedWin, ModeBiasedLoss, ModeFixedWin, ModeFixedLoss,
		ModeCustomProbability, ModeDifficultyBased:
		return true
	}
	return false
}

// DifficultyOverride carries the per-tier knobs for difficulty_based mode.
type DifficultyOverride struct {
	WinProbability *float64 `json:"win_probability,omitempty"`
	ForceResult    *bool    `json:"force_result,omitempty"`
}

// ManipulationConfig controls the outcome engine. The zero value is a fair,
// disabled engine.
type ManipulationConfig struct {
	Enabled            bool                              `json:"enabled"`
	Mode               Mode                              `json:"mode"`
	Bias               float64                           `json:"bias"`
	WinProbability     float64                           `json:"win_probability"`
	Seed               string                            `json:"seed"`
	DifficultySettings map[Difficulty]DifficultyOverride `json:"difficulty_settings,omitempty"`
	AdminOnly          bool                              `json:"admin_only"`
	LogManipulations   bool                              `json:"log_manipulations"`
}

// ConfigError reports a manipulation config that cannot be stored.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid manipulation config: %s: %s", e.Field, e.Message)
}

// ValidateConfig checks a manipulation config before it is persisted. The
// outcome engine itself never rejects a config; bad values that slip through
// degrade to fair play at apply time instead.
func ValidateConfig(cfg ManipulationConfig) error {
	if cfg.Mode != "" && !validMode(cfg.Mode) {
		return &ConfigError{Field: "mode", Message: fmt.Sprintf("unrecognized mode %q", cfg.Mode)}
	}
	if cfg.Bias < 0 || cfg.Bias > 1 {
		return &ConfigError{Field: "bias", Message: "must be between 0 and 1"}
	}
	if cfg.WinProbability < 0 || cfg.WinProbability > 1 {
		return &ConfigError{Field: "win_probability", Message: "must be between 0 and 1"}
	}
	for tier, override := range cfg.DifficultySettings {
		if !tier.Valid() {
			return &ConfigError{Field: "difficulty_settings", Message: fmt.Sprintf("unknown difficulty %q", tier)}
		}
		if override.WinProbability != nil && (*override.WinProbability < 0 || *override.WinProbability > 1) {
			return &ConfigError{
				Field:   fmt.Sprintf("difficulty_settings.%s.win_probability", tier),
				Message: "must be between 0 and 1",
			}
		}
	}
	return nil
}

// Outcome is a resolved play: the dice shown to the player and whether they
// won. The dice always satisfy CheckWinCondition exactly when IsWin is true.
type Outcome struct {
	Dice                []int
	IsWin               bool
	ManipulationApplied bool
	ManipulationType    Mode
}

// Apply resolves one play. It never fails: an unusable config falls back to a
// fair roll tagged fair_fallback, because by the time a play reaches the
// engine the wager has already been committed.
func Apply(src Source, cfg ManipulationConfig, difficulty Difficulty, diceCount int) Outcome {
	if !cfg.Enabled || cfg.Mode == "" || cfg.Mode == ModeFair {
		return fairOutcome(src, difficulty, diceCount, ModeFair)
	}

	if err := ValidateConfig(cfg); err != nil {
		logrus.WithError(err).WithField("mode", cfg.Mode).
			Error("Unusable manipulation config, resolving play fairly")
		return fairOutcome(src, difficulty, diceCount, ModeFairFallback)
	}

	if difficulty == DifficultyLegendary && diceCount < MinDiceCount(difficulty) {
		logrus.WithFields(logrus.Fields{
			"difficulty": difficulty,
			"dice_count": diceCount,
		}).Error("Unwinnable dice count reached outcome engine, resolving play fairly")
		return fairOutcome(src, difficulty, diceCount, ModeFairFallback)
	}

	var outcome Outcome
	switch cfg.Mode {
	case ModeFixedWin:
		outcome = Outcome{Dice: winningDice(src, difficulty, diceCount), IsWin: true}
	case ModeFixedLoss:
		outcome = Outcome{Dice: losingDice(src, difficulty, diceCount), IsWin: false}
	case ModeBiasedWin:
		outcome = probabilityOutcome(src, difficulty, diceCount, cfg.Bias)
	case ModeBiasedLoss:
		// With probability Bias the roll is forced to lose; otherwise one
		// fair roll passes through untouched.
		if src.Next() >= cfg.Bias {
			return fairOutcome(src, difficulty, diceCount, ModeFair)
		}
		outcome = Outcome{Dice: losingDice(src, difficulty, diceCount), IsWin: false}
	case ModeCustomProbability:
		outcome = probabilityOutcome(src, difficulty, diceCount, cfg.WinProbability)
	case ModeDifficultyBased:
		override, ok := cfg.DifficultySettings[difficulty]
		switch {
		case ok && override.ForceResult != nil && *override.ForceResult:
			outcome = Outcome{Dice: winningDice(src, difficulty, diceCount), IsWin: true}
		case ok && override.ForceResult != nil:
			outcome = Outcome{Dice: losingDice(src, difficulty, diceCount), IsWin: false}
		case ok && override.WinProbability != nil:
			outcome = probabilityOutcome(src, difficulty, diceCount, *override.WinProbability)
		default:
			// Tiers without an override play at their fair probability but
			// are still resolved, and tagged, by this mode.
			outcome = probabilityOutcome(src, difficulty, diceCount, FairProbability(difficulty))
		}
	default:
		return fairOutcome(src, difficulty, diceCount, ModeFairFallback)
	}

	outcome.ManipulationApplied = true
	outcome.ManipulationType = cfg.Mode

	if cfg.LogManipulations {
		logrus.WithFields(logrus.Fields{
			"category":   "bet_dice_manipulation",
			"mode":       cfg.Mode,
			"difficulty": difficulty,
			"is_win":     outcome.IsWin,
			"dice":       outcome.Dice,
		}).Warn("Outcome manipulation applied")
	}

	return outcome
}

func fairOutcome(src Source, difficulty Difficulty, diceCount int, tag Mode) Outcome {
	dice := RollDice(src, diceCount)
	return Outcome{
		Dice:                dice,
		IsWin:               CheckWinCondition(difficulty, dice),
		ManipulationApplied: tag == ModeFairFallback,
		ManipulationType:    tag,
	}
}

// probabilityOutcome decides the result with a single draw against p, then
// synthesizes dice consistent with the decision.
func probabilityOutcome(src Source, difficulty Difficulty, diceCount int, p float64) Outcome {
	if src.Next() < p {
		return Outcome{Dice: winningDice(src, difficulty, diceCount), IsWin: true}
	}
	return Outcome{Dice: losingDice(src, difficulty, diceCount), IsWin: false}
}

// winningDice synthesizes a roll that satisfies the tier's win condition.
// The matched value is still drawn from src so forced outcomes vary between
// plays and stay reproducible under a seed.
func winningDice(src Source, difficulty Difficulty, diceCount int) []int {
	dice := make([]int, diceCount)

	var value int
	switch difficulty {
	case DifficultyEasy:
		value = int(src.Next()*6) + 1
	case DifficultyMedium:
		value = int(src.Next()*3) + 4
	case DifficultyHard:
		value = int(src.Next()*2) + 5
	case DifficultyExpert:
		value = 6
	case DifficultyLegendary:
		value = int(src.Next()*6) + 1
	default:
		value = int(src.Next()*6) + 1
	}

	if difficulty == DifficultyLegendary {
		for i := range dice {
			dice[i] = value
		}
		return dice
	}

	dice[0] = value
	dice[1] = value
	for i := 2; i < diceCount; i++ {
		dice[i] = int(src.Next()*6) + 1
	}
	return dice
}

// losingDice rolls until the tier's win condition fails, then gives up after a
// bounded number of attempts and falls back to a roll that cannot win any
// tier. The bound only matters in theory; a fair roll loses most of the time.
func losingDice(src Source, difficulty Difficulty, diceCount int) []int {
	for attempts := 0; attempts < 64; attempts++ {
		dice := RollDice(src, diceCount)
		if !CheckWinCondition(difficulty, dice) {
			return dice
		}
	}

	dice := make([]int, diceCount)
	for i := range dice {
		dice[i] = i%6 + 1
	}
	return dice
}
