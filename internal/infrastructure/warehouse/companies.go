package warehouse

import (
	"context"
	"fmt"
	"net/url"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
)

// FilterOptions lists the distinct values the UI offers in filter dropdowns.
type FilterOptions struct {
	Countries  []string `json:"countries"`
	TechStacks []string `json:"tech_stacks"`
}

// CompanyUpdate patches whitelisted company fields, addressed by id or name.
type CompanyUpdate struct {
	CompanyID   string            `json:"company_id,omitempty"`
	CompanyName string            `json:"company_name,omitempty"`
	Updates     map[string]string `json:"updates"`
}

// CompanyDetails is a company with its job postings attached.
type CompanyDetails struct {
	entity.Company

	Jobs []entity.Job `json:"jobs"`
}

func (c *Client) Companies(ctx context.Context, filters CompanyFilters, limit int) ([]entity.Company, error) {
	var response struct {
		Companies []entity.Company `json:"companies"`
	}

	if err := c.get(ctx, "/api/v1/companies", filters.encode(limit), &response); err != nil {
		return nil, fmt.Errorf("get companies: %w", err)
	}

	return response.Companies, nil
}

// Company fetches one company by exact name, job postings included.
func (c *Client) Company(ctx context.Context, name string) (CompanyDetails, error) {
	var details CompanyDetails

	query := url.Values{}
	query.Set("name", name)

	if err := c.get(ctx, "/api/v1/companies/details", query, &details); err != nil {
		return CompanyDetails{}, fmt.Errorf("get company details: %w", err)
	}

	return details, nil
}

func (c *Client) UpdateCompany(ctx context.Context, update CompanyUpdate) (int, error) {
	var response struct {
		RowsAffected int `json:"rows_affected"`
	}

	if err := c.call(ctx, "POST", "/api/v1/companies/update", nil, update, &response); err != nil {
		return 0, fmt.Errorf("update company: %w", err)
	}

	return response.RowsAffected, nil
}

func (c *Client) CompanyFilterOptions(ctx context.Context) (FilterOptions, error) {
	var options FilterOptions

	if err := c.get(ctx, "/api/v1/companies/filter-options", url.Values{}, &options); err != nil {
		return FilterOptions{}, fmt.Errorf("get company filter options: %w", err)
	}

	return options, nil
}
