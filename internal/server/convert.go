package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/samber/lo"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/rest"
	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

// pageData assembles the template payload every page shares. The CSRF token
// is exposed twice: as a ready-made form field and bare for fetch headers.
func pageData(r *http.Request, title string, data any) web.PageData {
	payload := web.PageData{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Data:      data,
	}

	if session, ok := sessionFromContext(r.Context()); ok {
		payload.Username = session.Username
	}

	return payload
}

// companyFiltersFromQuery collects the companies page filters. Values are
// trimmed, blank ones stay unset and the warehouse skips them.
func companyFiltersFromQuery(query url.Values) warehouse.CompanyFilters {
	minJobs, _ := strconv.Atoi(strings.TrimSpace(query.Get("min_jobs")))

	return warehouse.CompanyFilters{
		Keyword:   strings.TrimSpace(query.Get("keyword")),
		Country:   strings.TrimSpace(query.Get("country")),
		TechStack: strings.TrimSpace(query.Get("tech_stack")),
		MinJobs:   minJobs,
		SortBy:    strings.TrimSpace(query.Get("sort_by")),
		Relevant:  strings.TrimSpace(query.Get("relevant")),
		Status:    strings.TrimSpace(query.Get("status")),
	}
}

func jobFiltersFromQuery(query url.Values) warehouse.JobFilters {
	return warehouse.JobFilters{
		Source:         strings.TrimSpace(query.Get("source")),
		Country:        strings.TrimSpace(query.Get("country")),
		CompanyType:    strings.TrimSpace(query.Get("company_type")),
		SolutionDomain: strings.TrimSpace(query.Get("solution_domain")),
		TechStack:      strings.TrimSpace(query.Get("tech_stack")),
		Keyword:        strings.TrimSpace(query.Get("keyword")),
		PostedWithin:   strings.TrimSpace(query.Get("posted_within")),
		SortBy:         strings.TrimSpace(query.Get("sort_by")),
	}
}

// companyUpdateFields is the set of columns the UI may patch. Anything else
// in the updates map is dropped silently.
//
//nolint:gochecknoglobals
var companyUpdateFields = []string{
	"status",
	"company_name",
	"domain",
	"company_type",
	"company_industry",
	"company_size",
	"solution_domain",
}

func whitelistCompanyUpdates(updates map[string]string) map[string]string {
	return lo.PickByKeys(updates, companyUpdateFields)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

// scraperConfigFromRequest maps the save payload onto the stored shape.
// Required fields are gated by MissingField before this runs, the optional
// ones fall back to off and empty.
func scraperConfigFromRequest(request rest.ConfigSaveRequest) entity.ScraperConfig {
	return entity.ScraperConfig{
		IsActive:               lo.FromPtr(request.IsActive),
		SearchQueries:          lo.FromPtr(request.SearchQueries),
		SearchCountries:        lo.FromPtr(request.SearchCountries),
		EnabledModules:         lo.FromPtr(request.EnabledModules),
		DailyMaxPerModule:      lo.FromPtr(request.DailyMaxPerModule),
		ExhaustiveMaxPerModule: lo.FromPtr(request.ExhaustiveMaxPerModule),
		EnableBigQuery:         lo.FromPtr(request.EnableBigQuery),
		EnableFiltering:        lo.FromPtr(request.EnableFiltering),
		Notes:                  lo.FromPtr(request.Notes),
		UpdatedAt:              request.UpdatedAt,
	}
}
