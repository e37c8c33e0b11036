// Package scraperconf manages scraper configuration revisions. Revisions
// live in the warehouse keyed by their updated_at timestamp; saves inside
// the lock window are refused so a running scrape never has its config
// swapped out from under it.
package scraperconf

import (
	"context"
	"fmt"
	"time"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

type WarehouseClient interface {
	Configurations(ctx context.Context) ([]entity.ScraperConfig, error)
	AddConfiguration(ctx context.Context, cfg entity.ScraperConfig) error
	UpdateConfigurationByTimestamp(ctx context.Context, timestamp string, cfg entity.ScraperConfig) error
	ActivateConfiguration(ctx context.Context, timestamp, updatedBy string) error
	DeactivateConfiguration(ctx context.Context, timestamp, updatedBy string) error
	DeleteConfiguration(ctx context.Context, timestamp string) error
}

type ConfigService struct {
	warehouse  WarehouseClient
	lockWindow time.Duration
	now        func() time.Time
}

func NewConfigService(warehouseClient WarehouseClient, lockWindow time.Duration) *ConfigService {
	return &ConfigService{
		warehouse:  warehouseClient,
		lockWindow: lockWindow,
		now:        time.Now,
	}
}

// WithClock replaces the time source, tests pin it.
func (s *ConfigService) WithClock(now func() time.Time) *ConfigService {
	s.now = now
	return s
}

func (s *ConfigService) List(ctx context.Context) ([]entity.ScraperConfig, error) {
	configs, err := s.warehouse.Configurations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}

	logger(ctx).Info("configurations loaded", "count", len(configs))

	return configs, nil
}

// Save stores a new revision or updates an existing one. An existing
// revision is addressed by the updated_at it was loaded with; the warehouse
// stamps the new revision time itself.
func (s *ConfigService) Save(ctx context.Context, cfg entity.ScraperConfig, updatedBy string) error {
	timestamp := cfg.UpdatedAt

	if err := s.checkLock(ctx, timestamp); err != nil {
		return err
	}

	cfg.UpdatedAt = ""
	cfg.UpdatedBy = updatedBy

	if timestamp != "" {
		if err := s.warehouse.UpdateConfigurationByTimestamp(ctx, timestamp, cfg); err != nil {
			return fmt.Errorf("update configuration: %w", err)
		}

		return nil
	}

	if err := s.warehouse.AddConfiguration(ctx, cfg); err != nil {
		return fmt.Errorf("add configuration: %w", err)
	}

	return nil
}

// Activate flips a revision active; the warehouse deactivates the rest.
func (s *ConfigService) Activate(ctx context.Context, timestamp, updatedBy string) error {
	if err := s.warehouse.ActivateConfiguration(ctx, timestamp, updatedBy); err != nil {
		return fmt.Errorf("activate configuration: %w", err)
	}

	return nil
}

func (s *ConfigService) Deactivate(ctx context.Context, timestamp, updatedBy string) error {
	if err := s.warehouse.DeactivateConfiguration(ctx, timestamp, updatedBy); err != nil {
		return fmt.Errorf("deactivate configuration: %w", err)
	}

	return nil
}

func (s *ConfigService) Delete(ctx context.Context, timestamp string) error {
	if err := s.warehouse.DeleteConfiguration(ctx, timestamp); err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}

	return nil
}

// checkLock refuses edits on revisions updated inside the lock window.
// Unparseable timestamps skip the check so legacy rows stay editable.
func (s *ConfigService) checkLock(ctx context.Context, lastUpdated string) error {
	if lastUpdated == "" {
		return nil
	}

	ts, err := parseUpdatedAt(lastUpdated)
	if err != nil {
		logger(ctx).Warn("failed to parse timestamp for lock check", logx.Error(err))

		return nil
	}

	elapsed := s.now().UTC().Sub(ts)
	if elapsed >= s.lockWindow {
		logger(ctx).Info("configuration lock check passed",
			"minutes_since_update", int(elapsed.Minutes()),
		)

		return nil
	}

	return &LockedError{
		MinutesRemaining: int((s.lockWindow - elapsed).Minutes()),
		LastUpdated:      lastUpdated,
	}
}
