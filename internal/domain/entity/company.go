package entity

// Company is a company row from the warehouse. The dashboard passes it to
// the UI as-is, so the json tags are the wire contract.
type Company struct {
	CompanyID       string   `json:"company_id"`
	CompanyName     string   `json:"company_name"`
	Domain          string   `json:"domain"`
	JobCount        int      `json:"job_count"`
	LastJobDate     string   `json:"last_job_date"`
	Locations       []string `json:"locations"`
	Countries       []string `json:"countries"`
	Sources         []string `json:"sources"`
	TechStack       []string `json:"tech_stack"`
	Status          string   `json:"status"`
	Relevant        string   `json:"relevant"`
	SolutionDomain  string   `json:"solution_domain"`
	CompanyType     string   `json:"company_type"`
	CompanySize     string   `json:"company_size"`
	CompanyIndustry string   `json:"company_industry"`
	Description     string   `json:"description"`
	CreatedAt       string   `json:"created_at"`
}

// ScoreBreakdown carries the six prospect sub-scores.
// Maxima: tech 30, company type 20, industry 15, size 15, activity 15, recency 5.
type ScoreBreakdown struct {
	TechScore        int `json:"tech_score"`
	CompanyTypeScore int `json:"company_type_score"`
	IndustryScore    int `json:"industry_score"`
	SizeScore        int `json:"size_score"`
	ActivityScore    int `json:"activity_score"`
	RecencyScore     int `json:"recency_score"`
}

// ScoredCompany is a company with the prospect score attached by the
// scoring service.
type ScoredCompany struct {
	Company

	ProspectScore    float64        `json:"prospect_score"`
	ProspectCategory string         `json:"prospect_category"`
	ProspectEmoji    string         `json:"prospect_emoji"`
	ScoreBreakdown   ScoreBreakdown `json:"score_breakdown"`
	ScoreReasoning   string         `json:"score_reasoning"`
}
