package warehouse

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
)

func (c *Client) Jobs(ctx context.Context, filters JobFilters, limit int) ([]entity.Job, error) {
	var response struct {
		Jobs []entity.Job `json:"jobs"`
	}

	if err := c.get(ctx, "/api/v1/jobs", filters.encode(limit), &response); err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}

	return response.Jobs, nil
}

func (c *Client) RecentJobs(ctx context.Context, limit int) ([]entity.Job, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var response struct {
		Jobs []entity.Job `json:"jobs"`
	}

	if err := c.get(ctx, "/api/v1/jobs/recent", query, &response); err != nil {
		return nil, fmt.Errorf("get recent jobs: %w", err)
	}

	return response.Jobs, nil
}

// JobCount is the cheapest warehouse round trip, the test-connection
// endpoint uses it as a liveness probe for the whole data path.
func (c *Client) JobCount(ctx context.Context) (int, error) {
	var response struct {
		Count int `json:"count"`
	}

	if err := c.get(ctx, "/api/v1/jobs/count", url.Values{}, &response); err != nil {
		return 0, fmt.Errorf("get job count: %w", err)
	}

	return response.Count, nil
}

// JobFilterOptions lists the distinct values the jobs page offers in its
// filter dropdowns.
type JobFilterOptions struct {
	Sources         []string `json:"sources"`
	Countries       []string `json:"countries"`
	CompanyTypes    []string `json:"company_types"`
	SolutionDomains []string `json:"solution_domains"`
	TechStacks      []string `json:"tech_stacks"`
}

func (c *Client) JobFilterOptions(ctx context.Context) (JobFilterOptions, error) {
	var options JobFilterOptions

	if err := c.get(ctx, "/api/v1/jobs/filter-options", url.Values{}, &options); err != nil {
		return JobFilterOptions{}, fmt.Errorf("get job filter options: %w", err)
	}

	return options, nil
}

func (c *Client) Stats(ctx context.Context) (entity.Stats, error) {
	var stats entity.Stats

	if err := c.get(ctx, "/api/v1/stats", url.Values{}, &stats); err != nil {
		return entity.Stats{}, fmt.Errorf("get stats: %w", err)
	}

	return stats, nil
}
