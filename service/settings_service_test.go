package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ohtopup/events"
	"ohtopup/game"
	"ohtopup/models"
)

type settingsServiceMocks struct {
	factory  *MockUnitOfWorkFactory
	uow      *MockUnitOfWork
	settings *MockSettingsRepository
	eventBus *MockEventPublisher
}

func newSettingsServiceMocks(ctx context.Context) *settingsServiceMocks {
	m := &settingsServiceMocks{
		factory:  new(MockUnitOfWorkFactory),
		uow:      new(MockUnitOfWork),
		settings: new(MockSettingsRepository),
		eventBus: new(MockEventPublisher),
	}
	m.uow.SetRepositories(nil, nil, nil, nil, m.settings, m.eventBus)
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	return m
}

func TestSettingsService_Update_MergesPatch(t *testing.T) {
	ctx := context.Background()
	m := newSettingsServiceMocks(ctx)
	m.uow.On("Commit").Return(nil)

	stored := models.DefaultGameSettings()
	m.settings.On("GetOrCreate", ctx).Return(stored, nil)

	maxBet := 25000.0
	m.settings.On("Update", ctx, mock.MatchedBy(func(s *models.GameSettings) bool {
		// The patched leaf changed, its siblings did not.
		return s.BetLimits.MaxBet == 25000 && s.BetLimits.MinBet == 100 && s.Enabled
	})).Return(nil)

	m.eventBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.SettingsChangedEvent)
		return ok && changed.AdminID == 1 && changed.Action == "update"
	})).Return()

	svc := NewSettingsService(m.factory)
	updated, err := svc.Update(ctx, 1, &models.GameSettingsPatch{
		BetLimits: &models.BetLimitsPatch{MaxBet: &maxBet},
	})

	require.NoError(t, err)
	assert.Equal(t, 25000.0, updated.BetLimits.MaxBet)
	assert.Equal(t, 100.0, updated.BetLimits.MinBet)
	m.settings.AssertExpectations(t)
	m.eventBus.AssertExpectations(t)
}

func TestSettingsService_Update_RejectsInvalidManipulation(t *testing.T) {
	ctx := context.Background()
	m := newSettingsServiceMocks(ctx)

	stored := models.DefaultGameSettings()
	m.settings.On("GetOrCreate", ctx).Return(stored, nil)

	badMode := game.Mode("rigged")
	svc := NewSettingsService(m.factory)
	_, err := svc.Update(ctx, 1, &models.GameSettingsPatch{
		Manipulation: &models.ManipulationPatch{Mode: &badMode},
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	m.settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSettingsService_Update_RejectsInvalidLimits(t *testing.T) {
	ctx := context.Background()
	m := newSettingsServiceMocks(ctx)

	stored := models.DefaultGameSettings()
	m.settings.On("GetOrCreate", ctx).Return(stored, nil)

	minBet := 50000.0 // above the stored max bet
	svc := NewSettingsService(m.factory)
	_, err := svc.Update(ctx, 1, &models.GameSettingsPatch{
		BetLimits: &models.BetLimitsPatch{MinBet: &minBet},
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	m.settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSettingsService_Update_RejectsInvalidDiceCeiling(t *testing.T) {
	ctx := context.Background()
	m := newSettingsServiceMocks(ctx)

	stored := models.DefaultGameSettings()
	m.settings.On("GetOrCreate", ctx).Return(stored, nil)

	maxDice := 9 // dice count ceiling is capped at 6
	svc := NewSettingsService(m.factory)
	_, err := svc.Update(ctx, 1, &models.GameSettingsPatch{MaxDiceCount: &maxDice})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	m.settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSettingsService_Reset(t *testing.T) {
	ctx := context.Background()
	m := newSettingsServiceMocks(ctx)
	m.uow.On("Commit").Return(nil)

	m.settings.On("Update", ctx, mock.MatchedBy(func(s *models.GameSettings) bool {
		defaults := models.DefaultGameSettings()
		return s.BetLimits == defaults.BetLimits && !s.Manipulation.Enabled
	})).Return(nil)

	m.eventBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.SettingsChangedEvent)
		return ok && changed.Action == "reset"
	})).Return()

	svc := NewSettingsService(m.factory)
	settings, err := svc.Reset(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, models.DefaultGameSettings().BetLimits, settings.BetLimits)
	m.settings.AssertExpectations(t)
}

func TestSettingsService_ForceReset(t *testing.T) {
	ctx := context.Background()
	m := newSettingsServiceMocks(ctx)
	m.uow.On("Commit").Return(nil)

	m.settings.On("Delete", ctx).Return(nil)
	m.settings.On("GetOrCreate", ctx).Return(models.DefaultGameSettings(), nil)

	m.eventBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		changed, ok := e.(events.SettingsChangedEvent)
		return ok && changed.Action == "force_reset"
	})).Return()

	svc := NewSettingsService(m.factory)
	settings, err := svc.ForceReset(ctx, 1)

	require.NoError(t, err)
	assert.False(t, settings.Manipulation.Enabled)
	m.settings.AssertExpectations(t)
}
