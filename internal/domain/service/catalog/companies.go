package catalog

import (
	"context"
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/columbus"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

// Companies returns the filtered company list with prospect scores attached.
// When the scoring service is down the list is served unscored rather than
// failing the page.
func (s *CatalogService) Companies(ctx context.Context, filters warehouse.CompanyFilters, limit int) ([]entity.ScoredCompany, error) {
	limit = s.clampLimit(limit)
	key := cacheKey("companies", filters, limit)

	var scored []entity.ScoredCompany

	hit, err := s.cache.Get(ctx, key, &scored)
	if err != nil {
		logger(ctx).Warn("companies cache read failed", logx.Error(err))
	}

	if hit {
		return scored, nil
	}

	companies, err := s.warehouse.Companies(ctx, filters, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch companies: %w", err)
	}

	scored, err = s.scoring.ScoreBatch(ctx, companies)
	if err != nil {
		logger(ctx).Warn("scoring unavailable, serving companies unscored", logx.Error(err))

		scored = lo.Map(companies, func(company entity.Company, _ int) entity.ScoredCompany {
			return entity.ScoredCompany{Company: company}
		})
	}

	if err = s.cache.Set(ctx, key, scored, s.cfg.CacheTTLCompanies); err != nil {
		logger(ctx).Warn("companies cache write failed", logx.Error(err))
	}

	return scored, nil
}

// Company fetches one company by exact name, job postings included.
func (s *CatalogService) Company(ctx context.Context, name string) (warehouse.CompanyDetails, error) {
	details, err := s.warehouse.Company(ctx, name)
	if err != nil {
		if code, ok := domain.GetCode(err); ok && code == errcodes.NotFound {
			return warehouse.CompanyDetails{}, domain.NewError(errcodes.CompanyNotFound, "Company not found")
		}

		return warehouse.CompanyDetails{}, fmt.Errorf("fetch company details: %w", err)
	}

	return details, nil
}

// UpdateCompany patches whitelisted fields and reports the affected rows.
func (s *CatalogService) UpdateCompany(ctx context.Context, update warehouse.CompanyUpdate) (int, error) {
	rows, err := s.warehouse.UpdateCompany(ctx, update)
	if err != nil {
		return 0, fmt.Errorf("update company: %w", err)
	}

	logger(ctx).Info("company updated",
		"company_id", update.CompanyID,
		"company_name", update.CompanyName,
		"rows", rows,
	)

	return rows, nil
}

func (s *CatalogService) CompanyFilterOptions(ctx context.Context) (warehouse.FilterOptions, error) {
	const key = "companies:filter-options"

	var options warehouse.FilterOptions

	hit, err := s.cache.Get(ctx, key, &options)
	if err != nil {
		logger(ctx).Warn("filter options cache read failed", logx.Error(err))
	}

	if hit {
		return options, nil
	}

	options, err = s.warehouse.CompanyFilterOptions(ctx)
	if err != nil {
		return warehouse.FilterOptions{}, fmt.Errorf("fetch company filter options: %w", err)
	}

	if err = s.cache.Set(ctx, key, options, s.cfg.CacheTTLStats); err != nil {
		logger(ctx).Warn("filter options cache write failed", logx.Error(err))
	}

	return options, nil
}

// CompanyJobs lists the postings behind one company card.
func (s *CatalogService) CompanyJobs(ctx context.Context, company string) ([]entity.Job, error) {
	jobs, err := s.warehouse.Jobs(ctx, warehouse.JobFilters{Keyword: company}, companyJobs)
	if err != nil {
		return nil, fmt.Errorf("fetch company jobs: %w", err)
	}

	return jobs, nil
}

// ContactDetails researches public contact channels for a company. The
// warehouse profile enriches the AI prompt; an unknown company is researched
// by name alone.
func (s *CatalogService) ContactDetails(ctx context.Context, companyName string) (jsoniter.RawMessage, error) {
	details, err := s.warehouse.Company(ctx, companyName)
	if err != nil {
		if code, ok := domain.GetCode(err); !ok || code != errcodes.NotFound {
			return nil, fmt.Errorf("fetch company details: %w", err)
		}

		logger(ctx).Warn("company unknown to warehouse, researching by name only", "company", companyName)
	}

	contacts, err := s.ai.ContactDetails(ctx, columbus.ContactDetailsPayload{
		CompanyName:     companyName,
		CompanyType:     details.CompanyType,
		CompanyIndustry: details.CompanyIndustry,
		CompanySize:     details.CompanySize,
		JobCount:        details.JobCount,
		LinkedInJobURL:  firstLinkedInURL(details.Jobs),
	})
	if err != nil {
		return nil, fmt.Errorf("research contacts: %w", err)
	}

	return contacts, nil
}

func firstLinkedInURL(jobs []entity.Job) string {
	for _, job := range jobs {
		if strings.Contains(strings.ToLower(job.URL), "linkedin.com") {
			return job.URL
		}
	}

	return ""
}
