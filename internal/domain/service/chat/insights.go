package chat

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
)

const (
	insightsLimit  = 200
	insightsBucket = 5

	hotProspectScore = 70
	newCompanyDays   = 7
)

// Insights builds the quick-insights block on the Columbus page: hot
// prospects, companies discovered in the last week and the busiest hirers,
// all drawn from the current to_review slice.
func (s *ChatService) Insights(ctx context.Context) (entity.Insights, error) {
	companies, err := s.warehouse.Companies(ctx, warehouse.CompanyFilters{Relevant: "to_review"}, insightsLimit)
	if err != nil {
		return entity.Insights{}, fmt.Errorf("fetch companies: %w", err)
	}

	scored, err := s.scoring.ScoreBatch(ctx, companies)
	if err != nil {
		return entity.Insights{}, fmt.Errorf("score companies: %w", err)
	}

	weekAgo := s.now().UTC().AddDate(0, 0, -newCompanyDays)

	topProspects := lo.Filter(scored, func(company entity.ScoredCompany, _ int) bool {
		return company.ProspectScore >= hotProspectScore
	})

	newCompanies := lo.Filter(scored, func(company entity.ScoredCompany, _ int) bool {
		createdAt, ok := parseCreatedAt(company.CreatedAt)

		return ok && !createdAt.Before(weekAgo)
	})

	mostActive := lo.Filter(scored, func(company entity.ScoredCompany, _ int) bool {
		return company.JobCount > 0
	})
	slices.SortStableFunc(mostActive, func(a, b entity.ScoredCompany) int {
		return cmp.Compare(b.JobCount, a.JobCount)
	})

	return entity.Insights{
		TopProspects: lo.Slice(topProspects, 0, insightsBucket),
		NewCompanies: lo.Slice(newCompanies, 0, insightsBucket),
		MostActive:   lo.Slice(mostActive, 0, insightsBucket),
	}, nil
}

// created_at arrives the way BigQuery renders it, usually
// "2006-01-02 15:04:05 UTC". Naive timestamps are read as UTC.
//
//nolint:gochecknoglobals
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCreatedAt(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), " UTC"))
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range createdAtLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, true
		}
	}

	return time.Time{}, false
}
