package catalog

import (
	"context"
	"fmt"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

// Jobs returns the filtered job list for the jobs explorer page.
func (s *CatalogService) Jobs(ctx context.Context, filters warehouse.JobFilters, limit int) ([]entity.Job, error) {
	limit = s.clampLimit(limit)
	key := cacheKey("jobs", filters, limit)

	var jobs []entity.Job

	hit, err := s.cache.Get(ctx, key, &jobs)
	if err != nil {
		logger(ctx).Warn("jobs cache read failed", logx.Error(err))
	}

	if hit {
		return jobs, nil
	}

	jobs, err = s.warehouse.Jobs(ctx, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch jobs: %w", err)
	}

	if err = s.cache.Set(ctx, key, jobs, s.cfg.CacheTTLJobs); err != nil {
		logger(ctx).Warn("jobs cache write failed", logx.Error(err))
	}

	return jobs, nil
}

func (s *CatalogService) JobFilterOptions(ctx context.Context) (warehouse.JobFilterOptions, error) {
	const key = "jobs:filter-options"

	var options warehouse.JobFilterOptions

	hit, err := s.cache.Get(ctx, key, &options)
	if err != nil {
		logger(ctx).Warn("filter options cache read failed", logx.Error(err))
	}

	if hit {
		return options, nil
	}

	options, err = s.warehouse.JobFilterOptions(ctx)
	if err != nil {
		return warehouse.JobFilterOptions{}, fmt.Errorf("fetch job filter options: %w", err)
	}

	if err = s.cache.Set(ctx, key, options, s.cfg.CacheTTLStats); err != nil {
		logger(ctx).Warn("filter options cache write failed", logx.Error(err))
	}

	return options, nil
}
