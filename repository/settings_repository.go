package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ohtopup/database"
	"ohtopup/models"
)

// SettingsRepository implements the service.SettingsRepository interface.
// The settings tree lives in a single jsonb row pinned to id 1.
type SettingsRepository struct {
	q queryable
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{q: db.Pool}
}

// newSettingsRepositoryWithTx creates a new settings repository with a transaction
func newSettingsRepositoryWithTx(tx queryable) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// GetOrCreate returns the settings row, provisioning defaults if absent
func (r *SettingsRepository) GetOrCreate(ctx context.Context) (*models.GameSettings, error) {
	query := `SELECT settings, updated_at FROM game_settings WHERE id = 1`

	var settingsJSON []byte
	var updatedAt time.Time
	err := r.q.QueryRow(ctx, query).Scan(&settingsJSON, &updatedAt)

	if err == pgx.ErrNoRows {
		return r.create(ctx, models.DefaultGameSettings())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game settings: %w", err)
	}

	var settings models.GameSettings
	if err := json.Unmarshal(settingsJSON, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game settings: %w", err)
	}
	settings.UpdatedAt = updatedAt

	return &settings, nil
}

func (r *SettingsRepository) create(ctx context.Context, settings *models.GameSettings) (*models.GameSettings, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game settings: %w", err)
	}

	// ON CONFLICT keeps a concurrent first read from failing the insert race.
	query := `
		INSERT INTO game_settings (id, settings)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET settings = game_settings.settings
		RETURNING settings, updated_at
	`

	var storedJSON []byte
	var updatedAt time.Time
	if err := r.q.QueryRow(ctx, query, settingsJSON).Scan(&storedJSON, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to create game settings: %w", err)
	}

	var stored models.GameSettings
	if err := json.Unmarshal(storedJSON, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game settings: %w", err)
	}
	stored.UpdatedAt = updatedAt

	return &stored, nil
}

// Update replaces the stored settings tree
func (r *SettingsRepository) Update(ctx context.Context, settings *models.GameSettings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal game settings: %w", err)
	}

	query := `
		UPDATE game_settings
		SET settings = $1, updated_at = NOW()
		WHERE id = 1
		RETURNING updated_at
	`

	err = r.q.QueryRow(ctx, query, settingsJSON).Scan(&settings.UpdatedAt)
	if err == pgx.ErrNoRows {
		_, err = r.create(ctx, settings)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update game settings: %w", err)
	}

	return nil
}

// Delete removes the settings row so the next read re-provisions it
func (r *SettingsRepository) Delete(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM game_settings WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to delete game settings: %w", err)
	}
	return nil
}
