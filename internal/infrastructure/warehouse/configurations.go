package warehouse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
)

// Configuration revisions are keyed by their updated_at timestamp, the
// warehouse keeps every revision and flips is_active flags.

func (c *Client) Configurations(ctx context.Context) ([]entity.ScraperConfig, error) {
	var response struct {
		Configs []entity.ScraperConfig `json:"configs"`
	}

	if err := c.get(ctx, "/api/v1/configurations", url.Values{}, &response); err != nil {
		return nil, fmt.Errorf("get configurations: %w", err)
	}

	return response.Configs, nil
}

func (c *Client) AddConfiguration(ctx context.Context, cfg entity.ScraperConfig) error {
	if err := c.call(ctx, http.MethodPost, "/api/v1/configurations", nil, cfg, nil); err != nil {
		return fmt.Errorf("add configuration: %w", err)
	}

	return nil
}

func (c *Client) UpdateConfigurationByTimestamp(ctx context.Context, timestamp string, cfg entity.ScraperConfig) error {
	if err := c.call(ctx, http.MethodPut, "/api/v1/configurations", timestampQuery(timestamp), cfg, nil); err != nil {
		return fmt.Errorf("update configuration: %w", err)
	}

	return nil
}

// ActivateConfiguration flips one revision active, the warehouse deactivates
// every other revision in the same statement.
func (c *Client) ActivateConfiguration(ctx context.Context, timestamp, updatedBy string) error {
	payload := struct {
		UpdatedBy string `json:"updated_by"`
	}{UpdatedBy: updatedBy}

	if err := c.call(ctx, http.MethodPost, "/api/v1/configurations/activate", timestampQuery(timestamp), payload, nil); err != nil {
		return fmt.Errorf("activate configuration: %w", err)
	}

	return nil
}

func (c *Client) DeactivateConfiguration(ctx context.Context, timestamp, updatedBy string) error {
	payload := struct {
		UpdatedBy string `json:"updated_by"`
	}{UpdatedBy: updatedBy}

	if err := c.call(ctx, http.MethodPost, "/api/v1/configurations/deactivate", timestampQuery(timestamp), payload, nil); err != nil {
		return fmt.Errorf("deactivate configuration: %w", err)
	}

	return nil
}

func (c *Client) DeleteConfiguration(ctx context.Context, timestamp string) error {
	if err := c.call(ctx, http.MethodDelete, "/api/v1/configurations", timestampQuery(timestamp), nil, nil); err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}

	return nil
}

func timestampQuery(timestamp string) url.Values {
	query := url.Values{}
	query.Set("updated_at", timestamp)

	return query
}
