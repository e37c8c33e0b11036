package entity

// Stats is the dashboard headline numbers block.
type Stats struct {
	TotalJobs      int `json:"total_jobs"`
	TotalCompanies int `json:"total_companies"`
	JobsToday      int `json:"jobs_today"`
	TotalCountries int `json:"total_countries"`
	TotalSources   int `json:"total_sources"`
}
