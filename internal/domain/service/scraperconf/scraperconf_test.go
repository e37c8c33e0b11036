package scraperconf_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraperconf"
)

type warehouseStub struct {
	scraperconf.WarehouseClient

	added        []entity.ScraperConfig
	updated      []entity.ScraperConfig
	updatedAt    string
	activated    string
	activatedBy  string
	deactivated  string
	deleted      string
	configs      []entity.ScraperConfig
	deleteCalled bool
}

func (s *warehouseStub) Configurations(context.Context) ([]entity.ScraperConfig, error) {
	return s.configs, nil
}

func (s *warehouseStub) AddConfiguration(_ context.Context, cfg entity.ScraperConfig) error {
	s.added = append(s.added, cfg)

	return nil
}

func (s *warehouseStub) UpdateConfigurationByTimestamp(_ context.Context, timestamp string, cfg entity.ScraperConfig) error {
	s.updatedAt = timestamp
	s.updated = append(s.updated, cfg)

	return nil
}

func (s *warehouseStub) ActivateConfiguration(_ context.Context, timestamp, updatedBy string) error {
	s.activated = timestamp
	s.activatedBy = updatedBy

	return nil
}

func (s *warehouseStub) DeactivateConfiguration(_ context.Context, timestamp, _ string) error {
	s.deactivated = timestamp

	return nil
}

func (s *warehouseStub) DeleteConfiguration(_ context.Context, timestamp string) error {
	s.deleted = timestamp
	s.deleteCalled = true

	return nil
}

func newService(wh *warehouseStub, now time.Time) *scraperconf.ConfigService {
	return scraperconf.NewConfigService(wh, 90*time.Minute).
		WithClock(func() time.Time { return now })
}

func TestSaveNewConfiguration(t *testing.T) {
	rq := require.New(t)
	wh := &warehouseStub{}
	svc := newService(wh, time.Now())

	err := svc.Save(context.Background(), entity.ScraperConfig{
		SearchQueries:   []string{"bigquery", "looker"},
		SearchCountries: []string{"NL"},
	}, "admin")

	rq.NoError(err)
	rq.Len(wh.added, 1)
	rq.Empty(wh.updated)
	rq.Equal("admin", wh.added[0].UpdatedBy)
}

func TestSaveUpdatesExistingRevision(t *testing.T) {
	rq := require.New(t)
	wh := &warehouseStub{}

	updatedAt := "2025-06-01 10:00:00 UTC"
	now := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	svc := newService(wh, now)

	err := svc.Save(context.Background(), entity.ScraperConfig{
		SearchQueries: []string{"bigquery"},
		UpdatedAt:     updatedAt,
	}, "admin")

	rq.NoError(err)
	rq.Empty(wh.added)
	rq.Len(wh.updated, 1)
	rq.Equal(updatedAt, wh.updatedAt)
	rq.Empty(wh.updated[0].UpdatedAt, "warehouse stamps the new revision time")
	rq.Equal("admin", wh.updated[0].UpdatedBy)
}

func TestSaveLockedInsideWindow(t *testing.T) {
	rq := require.New(t)
	wh := &warehouseStub{}

	updatedAt := "2025-06-01 10:00:00 UTC"
	now := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	svc := newService(wh, now)

	err := svc.Save(context.Background(), entity.ScraperConfig{
		SearchQueries: []string{"bigquery"},
		UpdatedAt:     updatedAt,
	}, "admin")

	rq.Error(err)
	rq.Empty(wh.added)
	rq.Empty(wh.updated)

	var locked *scraperconf.LockedError
	rq.True(errors.As(err, &locked))
	rq.Equal(60, locked.MinutesRemaining)
	rq.Equal(updatedAt, locked.LastUpdated)
	rq.Equal(
		"Configuration is locked. Changes can be made after 60 minutes. This lock exists to ensure buffer time for active scraping jobs.",
		locked.Error(),
	)
}

func TestSaveUnparseableTimestampSkipsLock(t *testing.T) {
	rq := require.New(t)
	wh := &warehouseStub{}
	svc := newService(wh, time.Now())

	err := svc.Save(context.Background(), entity.ScraperConfig{
		SearchQueries: []string{"bigquery"},
		UpdatedAt:     "not-a-timestamp",
	}, "admin")

	rq.NoError(err)
	rq.Len(wh.updated, 1)
}

func TestActivatePassesActor(t *testing.T) {
	rq := require.New(t)
	wh := &warehouseStub{}
	svc := newService(wh, time.Now())

	rq.NoError(svc.Activate(context.Background(), "2025-06-01 10:00:00 UTC", "admin"))
	rq.Equal("2025-06-01 10:00:00 UTC", wh.activated)
	rq.Equal("admin", wh.activatedBy)

	rq.NoError(svc.Deactivate(context.Background(), "2025-06-01 10:00:00 UTC", "admin"))
	rq.Equal("2025-06-01 10:00:00 UTC", wh.deactivated)

	rq.NoError(svc.Delete(context.Background(), "2025-06-01 10:00:00 UTC"))
	rq.True(wh.deleteCalled)
}
