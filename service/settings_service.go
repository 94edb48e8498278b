package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ohtopup/events"
	"ohtopup/game"
	"ohtopup/models"
)

type settingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettingsService creates a new settings service
func NewSettingsService(uowFactory UnitOfWorkFactory) SettingsService {
	return &settingsService{
		uowFactory: uowFactory,
	}
}

func (s *settingsService) Get(ctx context.Context) (*models.GameSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, adminID int64, patch *models.GameSettingsPatch) (*models.GameSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game settings: %w", err)
	}

	patch.Apply(settings)

	// The merged tree must still describe a usable outcome engine.
	if err := game.ValidateConfig(settings.Manipulation); err != nil {
		return nil, &ValidationError{Field: "manipulation", Message: err.Error()}
	}
	if err := validateLimits(settings); err != nil {
		return nil, err
	}

	if err := uow.SettingsRepository().Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to update game settings: %w", err)
	}

	uow.EventBus().Publish(events.SettingsChangedEvent{AdminID: adminID, Action: "update"})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logFields := log.Fields{"adminID": adminID}
	if settings.Manipulation.Enabled && settings.Manipulation.Mode != game.ModeFair {
		logFields["manipulationMode"] = settings.Manipulation.Mode
		log.WithFields(logFields).Warn("Game settings updated with active outcome manipulation")
	} else {
		log.WithFields(logFields).Info("Game settings updated")
	}

	return settings, nil
}

func (s *settingsService) Reset(ctx context.Context, adminID int64) (*models.GameSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings := models.DefaultGameSettings()
	if err := uow.SettingsRepository().Update(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to reset game settings: %w", err)
	}

	uow.EventBus().Publish(events.SettingsChangedEvent{AdminID: adminID, Action: "reset"})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("adminID", adminID).Info("Game settings reset to defaults")
	return settings, nil
}

// ForceReset drops the singleton row and re-provisions it, recovering from a
// stored tree that no longer unmarshals.
func (s *settingsService) ForceReset(ctx context.Context, adminID int64) (*models.GameSettings, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SettingsRepository().Delete(ctx); err != nil {
		return nil, fmt.Errorf("failed to delete game settings: %w", err)
	}

	settings, err := uow.SettingsRepository().GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to re-provision game settings: %w", err)
	}

	uow.EventBus().Publish(events.SettingsChangedEvent{AdminID: adminID, Action: "force_reset"})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("adminID", adminID).Warn("Game settings force-reset")
	return settings, nil
}

func validateLimits(settings *models.GameSettings) error {
	if settings.BetLimits.MinBet < 0 {
		return &ValidationError{Field: "bet_limits.min_bet", Message: "must not be negative"}
	}
	if settings.BetLimits.MaxBet < settings.BetLimits.MinBet {
		return &ValidationError{Field: "bet_limits.max_bet", Message: "must not be below min_bet"}
	}
	if settings.BetLimits.EntryFee < 0 {
		return &ValidationError{Field: "bet_limits.entry_fee", Message: "must not be negative"}
	}
	if settings.MaxDiceCount < 2 || settings.MaxDiceCount > 6 {
		return &ValidationError{Field: "max_dice_count", Message: "must be between 2 and 6"}
	}

	for tier, cfg := range settings.Difficulties {
		if cfg.MinOdds <= 1 {
			return &ValidationError{
				Field:   fmt.Sprintf("difficulties.%s.min_odds", tier),
				Message: "must be greater than 1",
			}
		}
		if cfg.MaxOdds < cfg.MinOdds {
			return &ValidationError{
				Field:   fmt.Sprintf("difficulties.%s.max_odds", tier),
				Message: "must not be below min_odds",
			}
		}
		if cfg.WinProbability <= 0 || cfg.WinProbability >= 1 {
			return &ValidationError{
				Field:   fmt.Sprintf("difficulties.%s.win_probability", tier),
				Message: "must be between 0 and 1 exclusive",
			}
		}
	}

	return nil
}
