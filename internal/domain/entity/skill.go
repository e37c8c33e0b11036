package entity

// Skill is a skills-registry entry driving the scraper keyword matching.
type Skill struct {
	SkillID       string   `json:"skill_id"`
	SkillName     string   `json:"skill_name"`
	SkillKeywords []string `json:"skill_keywords"`
	Category      string   `json:"category"`
	Vendor        string   `json:"vendor"`
	IsPrimary     bool     `json:"is_primary"`
	IsActive      bool     `json:"is_active"`
}
