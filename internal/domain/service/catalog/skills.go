package catalog

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
)

func (s *CatalogService) Skills(ctx context.Context) ([]entity.Skill, error) {
	skills, err := s.warehouse.Skills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}

	return skills, nil
}

// SaveSkill adds a new skill or updates an existing one. The registry is
// small, existence is decided by listing it.
func (s *CatalogService) SaveSkill(ctx context.Context, skill entity.Skill) error {
	skills, err := s.warehouse.Skills(ctx)
	if err != nil {
		return fmt.Errorf("list skills: %w", err)
	}

	exists := lo.SomeBy(skills, func(existing entity.Skill) bool {
		return existing.SkillID == skill.SkillID
	})

	if exists {
		if err = s.warehouse.UpdateSkill(ctx, skill); err != nil {
			return fmt.Errorf("update skill: %w", err)
		}

		logger(ctx).Info("skill updated", "skill_id", skill.SkillID)

		return nil
	}

	if err = s.warehouse.AddSkill(ctx, skill); err != nil {
		return fmt.Errorf("add skill: %w", err)
	}

	logger(ctx).Info("skill added", "skill_id", skill.SkillID)

	return nil
}

func (s *CatalogService) ToggleSkill(ctx context.Context, skillID string, active bool) error {
	if err := s.warehouse.ToggleSkill(ctx, skillID, active); err != nil {
		return fmt.Errorf("toggle skill: %w", err)
	}

	return nil
}

func (s *CatalogService) DeleteSkill(ctx context.Context, skillID string) error {
	if err := s.warehouse.DeleteSkill(ctx, skillID); err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}

	return nil
}
