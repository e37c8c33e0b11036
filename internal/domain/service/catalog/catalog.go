// Package catalog serves the browsing side of the dashboard: stats,
// companies, jobs and the skills registry. Everything is proxied from the
// warehouse API, hot paths sit behind short-lived caches so page loads do
// not burn BigQuery quota.
package catalog

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/columbus"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

const (
	recentJobsLimit = 10
	companyJobs     = 50

	statsCacheKey = "dashboard:stats"
)

type WarehouseClient interface {
	Stats(ctx context.Context) (entity.Stats, error)
	RecentJobs(ctx context.Context, limit int) ([]entity.Job, error)
	JobCount(ctx context.Context) (int, error)
	Companies(ctx context.Context, filters warehouse.CompanyFilters, limit int) ([]entity.Company, error)
	Company(ctx context.Context, name string) (warehouse.CompanyDetails, error)
	UpdateCompany(ctx context.Context, update warehouse.CompanyUpdate) (int, error)
	CompanyFilterOptions(ctx context.Context) (warehouse.FilterOptions, error)
	Jobs(ctx context.Context, filters warehouse.JobFilters, limit int) ([]entity.Job, error)
	JobFilterOptions(ctx context.Context) (warehouse.JobFilterOptions, error)
	Skills(ctx context.Context) ([]entity.Skill, error)
	AddSkill(ctx context.Context, skill entity.Skill) error
	UpdateSkill(ctx context.Context, skill entity.Skill) error
	ToggleSkill(ctx context.Context, skillID string, active bool) error
	DeleteSkill(ctx context.Context, skillID string) error
}

type ScoringClient interface {
	ScoreBatch(ctx context.Context, companies []entity.Company) ([]entity.ScoredCompany, error)
}

type ContactResearcher interface {
	ContactDetails(ctx context.Context, payload columbus.ContactDetailsPayload) (jsoniter.RawMessage, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type CatalogService struct {
	warehouse WarehouseClient
	scoring   ScoringClient
	ai        ContactResearcher
	cache     Cache
	cfg       config.Dashboard
}

func NewCatalogService(
	warehouseClient WarehouseClient,
	scoringClient ScoringClient,
	ai ContactResearcher,
	cache Cache,
	cfg config.Dashboard,
) *CatalogService {
	return &CatalogService{
		warehouse: warehouseClient,
		scoring:   scoringClient,
		ai:        ai,
		cache:     cache,
		cfg:       cfg,
	}
}

// StatsOverview is the dashboard landing block: headline numbers plus the
// latest job postings.
type StatsOverview struct {
	Stats      entity.Stats `json:"stats"`
	RecentJobs []entity.Job `json:"recentJobs"`
}

func (s *CatalogService) Stats(ctx context.Context) (StatsOverview, error) {
	var overview StatsOverview

	hit, err := s.cache.Get(ctx, statsCacheKey, &overview)
	if err != nil {
		logger(ctx).Warn("stats cache read failed", logx.Error(err))
	}

	if hit {
		return overview, nil
	}

	stats, err := s.warehouse.Stats(ctx)
	if err != nil {
		return StatsOverview{}, fmt.Errorf("fetch stats: %w", err)
	}

	recent, err := s.warehouse.RecentJobs(ctx, recentJobsLimit)
	if err != nil {
		return StatsOverview{}, fmt.Errorf("fetch recent jobs: %w", err)
	}

	overview = StatsOverview{Stats: stats, RecentJobs: recent}

	if err = s.cache.Set(ctx, statsCacheKey, overview, s.cfg.CacheTTLStats); err != nil {
		logger(ctx).Warn("stats cache write failed", logx.Error(err))
	}

	return overview, nil
}

// TestConnection checks the whole data path with the cheapest warehouse
// query and returns the current job count.
func (s *CatalogService) TestConnection(ctx context.Context) (int, error) {
	count, err := s.warehouse.JobCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}

	return count, nil
}

// clampLimit keeps page sizes inside the configured window. Zero means the
// caller sent no limit and gets the default.
func (s *CatalogService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.ResultsLimit
	}

	if limit > s.cfg.MaxResultsLimit {
		return s.cfg.MaxResultsLimit
	}

	return limit
}
