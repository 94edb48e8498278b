package models

import (
	"time"

	"ohtopup/game"
)

// BetLimits bounds the stake of a single play.
type BetLimits struct {
	MinBet   float64 `json:"min_bet"`
	MaxBet   float64 `json:"max_bet"`
	EntryFee float64 `json:"entry_fee"`
}

// DifficultyConfig bounds the odds a player may choose for a tier and states
// the fair win probability used for expected-value math.
type DifficultyConfig struct {
	MinOdds        float64 `json:"min_odds"`
	MaxOdds        float64 `json:"max_odds"`
	WinProbability float64 `json:"win_probability"`
}

// RiskSettings cap the platform's hourly and daily exposure.
type RiskSettings struct {
	MaxLossPerHour      float64 `json:"max_loss_per_hour"`
	MaxWinPerHour       float64 `json:"max_win_per_hour"`
	MaxDailyBetsPerUser int     `json:"max_daily_bets_per_user"`
	AutoShutdown        bool    `json:"auto_shutdown"`
}

// NotificationSettings control operator alerts.
type NotificationSettings struct {
	LargeWinAlert     bool    `json:"large_win_alert"`
	LargeWinThreshold float64 `json:"large_win_threshold"`
}

// GameSettings is the complete configuration tree for the dice game. Exactly
// one row exists; every read goes through get-or-create so the row is
// provisioned with defaults on first access.
type GameSettings struct {
	Enabled       bool                                 `json:"enabled"`
	Maintenance   bool                                 `json:"maintenance"`
	BetLimits     BetLimits                            `json:"bet_limits"`
	MaxDiceCount  int                                  `json:"max_dice_count"`
	Difficulties  map[game.Difficulty]DifficultyConfig `json:"difficulties"`
	Risk          RiskSettings                         `json:"risk"`
	Manipulation  game.ManipulationConfig              `json:"manipulation"`
	Notifications NotificationSettings                 `json:"notifications"`
	UpdatedAt     time.Time                            `json:"updated_at"`
}

// DefaultGameSettings returns the settings tree used to provision the
// singleton row and to restore it on reset.
func DefaultGameSettings() *GameSettings {
	return &GameSettings{
		Enabled:     true,
		Maintenance: false,
		BetLimits: BetLimits{
			MinBet:   100,
			MaxBet:   10000,
			EntryFee: 0,
		},
		MaxDiceCount: 5,
		Difficulties: map[game.Difficulty]DifficultyConfig{
			game.DifficultyEasy:      {MinOdds: 1.5, MaxOdds: 2.5, WinProbability: 0.1667},
			game.DifficultyMedium:    {MinOdds: 2.5, MaxOdds: 4.0, WinProbability: 0.0833},
			game.DifficultyHard:      {MinOdds: 4.0, MaxOdds: 6.0, WinProbability: 0.0556},
			game.DifficultyExpert:    {MinOdds: 6.0, MaxOdds: 12.0, WinProbability: 0.0278},
			game.DifficultyLegendary: {MinOdds: 10.0, MaxOdds: 20.0, WinProbability: 0.0463},
		},
		Risk: RiskSettings{
			MaxLossPerHour:      50000,
			MaxWinPerHour:       100000,
			MaxDailyBetsPerUser: 50,
			AutoShutdown:        false,
		},
		Manipulation: game.ManipulationConfig{
			Enabled:          false,
			Mode:             game.ModeFair,
			AdminOnly:        true,
			LogManipulations: true,
		},
		Notifications: NotificationSettings{
			LargeWinAlert:     true,
			LargeWinThreshold: 10000,
		},
	}
}

// BetLimitsPatch carries optional bet-limit updates.
type BetLimitsPatch struct {
	MinBet   *float64 `json:"min_bet,omitempty"`
	MaxBet   *float64 `json:"max_bet,omitempty"`
	EntryFee *float64 `json:"entry_fee,omitempty"`
}

// DifficultyConfigPatch carries optional per-tier updates.
type DifficultyConfigPatch struct {
	MinOdds        *float64 `json:"min_odds,omitempty"`
	MaxOdds        *float64 `json:"max_odds,omitempty"`
	WinProbability *float64 `json:"win_probability,omitempty"`
}

// RiskSettingsPatch carries optional risk-cap updates.
type RiskSettingsPatch struct {
	MaxLossPerHour      *float64 `json:"max_loss_per_hour,omitempty"`
	MaxWinPerHour       *float64 `json:"max_win_per_hour,omitempty"`
	MaxDailyBetsPerUser *int     `json:"max_daily_bets_per_user,omitempty"`
	AutoShutdown        *bool    `json:"auto_shutdown,omitempty"`
}

// ManipulationPatch carries optional outcome-engine updates.
type ManipulationPatch struct {
	Enabled            *bool                                       `json:"enabled,omitempty"`
	Mode               *game.Mode                                  `json:"mode,omitempty"`
	Bias               *float64                                    `json:"bias,omitempty"`
	WinProbability     *float64                                    `json:"win_probability,omitempty"`
	Seed               *string                                     `json:"seed,omitempty"`
	DifficultySettings map[game.Difficulty]game.DifficultyOverride `json:"difficulty_settings,omitempty"`
	AdminOnly          *bool                                       `json:"admin_only,omitempty"`
	LogManipulations   *bool                                       `json:"log_manipulations,omitempty"`
}

// NotificationSettingsPatch carries optional alert updates.
type NotificationSettingsPatch struct {
	LargeWinAlert     *bool    `json:"large_win_alert,omitempty"`
	LargeWinThreshold *float64 `json:"large_win_threshold,omitempty"`
}

// GameSettingsPatch is a partial update of the settings tree. Only fields
// present in the patch change; absent fields and untouched siblings keep
// their stored values.
type GameSettingsPatch struct {
	Enabled       *bool                                     `json:"enabled,omitempty"`
	Maintenance   *bool                                     `json:"maintenance,omitempty"`
	BetLimits     *BetLimitsPatch                           `json:"bet_limits,omitempty"`
	MaxDiceCount  *int                                      `json:"max_dice_count,omitempty"`
	Difficulties  map[game.Difficulty]DifficultyConfigPatch `json:"difficulties,omitempty"`
	Risk          *RiskSettingsPatch                        `json:"risk,omitempty"`
	Manipulation  *ManipulationPatch                        `json:"manipulation,omitempty"`
	Notifications *NotificationSettingsPatch                `json:"notifications,omitempty"`
}

// Apply merges the patch into the settings tree in place.
func (p *GameSettingsPatch) Apply(s *GameSettings) {
	if p.Enabled != nil {
		s.Enabled = *p.Enabled
	}
	if p.Maintenance != nil {
		s.Maintenance = *p.Maintenance
	}
	if p.MaxDiceCount != nil {
		s.MaxDiceCount = *p.MaxDiceCount
	}

	if p.BetLimits != nil {
		if p.BetLimits.MinBet != nil {
			s.BetLimits.MinBet = *p.BetLimits.MinBet
		}
		if p.BetLimits.MaxBet != nil {
			s.BetLimits.MaxBet = *p.BetLimits.MaxBet
		}
		if p.BetLimits.EntryFee != nil {
			s.BetLimits.EntryFee = *p.BetLimits.EntryFee
		}
	}

	if len(p.Difficulties) > 0 {
		if s.Difficulties == nil {
			s.Difficulties = make(map[game.Difficulty]DifficultyConfig)
		}
		for tier, patch := range p.Difficulties {
			cfg := s.Difficulties[tier]
			if patch.MinOdds != nil {
				cfg.MinOdds = *patch.MinOdds
			}
			if patch.MaxOdds != nil {
				cfg.MaxOdds = *patch.MaxOdds
			}
			if patch.WinProbability != nil {
				cfg.WinProbability = *patch.WinProbability
			}
			s.Difficulties[tier] = cfg
		}
	}

	if p.Risk != nil {
		if p.Risk.MaxLossPerHour != nil {
			s.Risk.MaxLossPerHour = *p.Risk.MaxLossPerHour
		}
		if p.Risk.MaxWinPerHour != nil {
			s.Risk.MaxWinPerHour = *p.Risk.MaxWinPerHour
		}
		if p.Risk.MaxDailyBetsPerUser != nil {
			s.Risk.MaxDailyBetsPerUser = *p.Risk.MaxDailyBetsPerUser
		}
		if p.Risk.AutoShutdown != nil {
			s.Risk.AutoShutdown = *p.Risk.AutoShutdown
		}
	}

	if p.Manipulation != nil {
		m := p.Manipulation
		if m.Enabled != nil {
			s.Manipulation.Enabled = *m.Enabled
		}
		if m.Mode != nil {
			s.Manipulation.Mode = *m.Mode
		}
		if m.Bias != nil {
			s.Manipulation.Bias = *m.Bias
		}
		if m.WinProbability != nil {
			s.Manipulation.WinProbability = *m.WinProbability
		}
		if m.Seed != nil {
			s.Manipulation.Seed = *m.Seed
		}
		if len(m.DifficultySettings) > 0 {
			if s.Manipulation.DifficultySettings == nil {
				s.Manipulation.DifficultySettings = make(map[game.Difficulty]game.DifficultyOverride)
			}
			for tier, override := range m.DifficultySettings {
				s.Manipulation.DifficultySettings[tier] = override
			}
		}
		if m.AdminOnly != nil {
			s.Manipulation.AdminOnly = *m.AdminOnly
		}
		if m.LogManipulations != nil {
			s.Manipulation.LogManipulations = *m.LogManipulations
		}
	}

	if p.Notifications != nil {
		if p.Notifications.LargeWinAlert != nil {
			s.Notifications.LargeWinAlert = *p.Notifications.LargeWinAlert
		}
		if p.Notifications.LargeWinThreshold != nil {
			s.Notifications.LargeWinThreshold = *p.Notifications.LargeWinThreshold
		}
	}
}
