// Package prospect derives presentation fields the scoring service may omit.
// Scoring itself happens in the external scoring API, the dashboard only
// normalizes what comes back so company cards always render a complete
// breakdown.
package prospect

import (
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
)

const (
	hotThreshold  = 70
	warmThreshold = 50
	coldThreshold = 30
)

// Categorize maps a prospect score to its category label and emoji.
// Companies with a negative company-type sub-score are competitors or
// partners and never categorize above Cold Lead.
func Categorize(score float64, companyTypeScore int) (category, emoji string) {
	switch {
	case score >= hotThreshold && companyTypeScore >= 0:
		return "Hot Prospect", "🔥"
	case score >= warmThreshold && companyTypeScore >= 0:
		return "Warm Lead", "⭐"
	case score >= coldThreshold:
		return "Cold Lead", "❄️"
	default:
		return "Avoid", "🚫"
	}
}

// Normalize fills the gaps a partial scoring response leaves. Absent
// sub-scores already decode to zero, here the category and emoji are derived
// from the score when the scoring service did not set them.
func Normalize(companies []entity.ScoredCompany) []entity.ScoredCompany {
	for i := range companies {
		c := &companies[i]

		if c.ProspectCategory != "" && c.ProspectEmoji != "" {
			continue
		}

		category, emoji := Categorize(c.ProspectScore, c.ScoreBreakdown.CompanyTypeScore)

		if c.ProspectCategory == "" {
			c.ProspectCategory = category
		}

		if c.ProspectEmoji == "" {
			c.ProspectEmoji = emoji
		}
	}

	return companies
}
