package warehouse

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
)

func (c *Client) Skills(ctx context.Context) ([]entity.Skill, error) {
	var response struct {
		Skills []entity.Skill `json:"skills"`
	}

	if err := c.get(ctx, "/api/v1/skills", url.Values{}, &response); err != nil {
		return nil, fmt.Errorf("get skills: %w", err)
	}

	return response.Skills, nil
}

func (c *Client) AddSkill(ctx context.Context, skill entity.Skill) error {
	if err := c.call(ctx, http.MethodPost, "/api/v1/skills", nil, skill, nil); err != nil {
		return fmt.Errorf("add skill: %w", err)
	}

	return nil
}

func (c *Client) UpdateSkill(ctx context.Context, skill entity.Skill) error {
	path := "/api/v1/skills/" + url.PathEscape(skill.SkillID)

	if err := c.call(ctx, http.MethodPut, path, nil, skill, nil); err != nil {
		return fmt.Errorf("update skill: %w", err)
	}

	return nil
}

func (c *Client) ToggleSkill(ctx context.Context, skillID string, active bool) error {
	path := "/api/v1/skills/" + url.PathEscape(skillID) + "/toggle"

	payload := struct {
		IsActive bool `json:"is_active"`
	}{IsActive: active}

	if err := c.call(ctx, http.MethodPost, path, nil, payload, nil); err != nil {
		return fmt.Errorf("toggle skill: %w", err)
	}

	return nil
}

func (c *Client) DeleteSkill(ctx context.Context, skillID string) error {
	path := "/api/v1/skills/" + url.PathEscape(skillID)

	if err := c.call(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}

	return nil
}
