package entity

// Job is a scraped job posting row from the warehouse.
type Job struct {
	JobID           string   `json:"job_id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Country         string   `json:"country"`
	Source          string   `json:"source"`
	PostedDate      string   `json:"posted_date"`
	ScrapedAt       string   `json:"scraped_at"`
	URL             string   `json:"url"`
	Description     string   `json:"description,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	SearchKeyword   string   `json:"search_keyword,omitempty"`
	SalaryMin       float64  `json:"salary_min,omitempty"`
	SalaryMax       float64  `json:"salary_max,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	EmploymentType  string   `json:"employment_type,omitempty"`
	RemoteOption    string   `json:"remote_option,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
}
