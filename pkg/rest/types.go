// Package rest defines the JSON wire types shared by the HTTP API and its clients.
package rest

// Error is the error envelope returned by every API endpoint.
type Error struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`

	// Code is a machine-readable error code (for the UI to branch on).
	Code string `json:"code,omitempty"`

	// SupportID correlates the response with server logs.
	SupportID string `json:"supportId,omitempty"`
}

// Ack reports the outcome of a mutating operation.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChatRequest carries a single user message to an AI chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ContactDetailsRequest identifies the company to research. The UI sends
// company_name, older dashboard builds sent company.
type ContactDetailsRequest struct {
	CompanyName string `json:"company_name"`
	Company     string `json:"company"`
}

// Name returns the company name from whichever key the client used.
func (r ContactDetailsRequest) Name() string {
	if r.CompanyName != "" {
		return r.CompanyName
	}

	return r.Company
}

// CompanyUpdateRequest patches company fields, addressed by id or by name.
type CompanyUpdateRequest struct {
	CompanyID   string            `json:"company_id"`
	CompanyName string            `json:"company_name"`
	Updates     map[string]string `json:"updates"`
}

// SkillToggleRequest switches a registry skill on or off.
type SkillToggleRequest struct {
	SkillID  string `json:"skill_id"`
	IsActive bool   `json:"is_active"`
}

// SkillDeleteRequest removes a skill from the registry.
type SkillDeleteRequest struct {
	SkillID string `json:"skill_id"`
}

// ConfigSaveRequest carries a scraper configuration revision to store.
// Pointer fields distinguish absent keys from zero values, the form must
// send every required field explicitly.
type ConfigSaveRequest struct {
	IsActive               *bool     `json:"is_active"`
	SearchQueries          *[]string `json:"search_queries"`
	SearchCountries        *[]string `json:"search_countries"`
	EnabledModules         *[]string `json:"enabled_modules"`
	DailyMaxPerModule      *int      `json:"daily_max_per_module"`
	ExhaustiveMaxPerModule *int      `json:"exhaustive_max_per_module"`
	EnableBigQuery         *bool     `json:"enable_bigquery"`
	EnableFiltering        *bool     `json:"enable_filtering"`
	Notes                  *string   `json:"notes"`
	UpdatedAt              string    `json:"updated_at"`
}

// MissingField reports the first required field the payload left out.
func (r ConfigSaveRequest) MissingField() (string, bool) {
	required := []struct {
		name string
		sent bool
	}{
		{"search_queries", r.SearchQueries != nil},
		{"search_countries", r.SearchCountries != nil},
		{"enabled_modules", r.EnabledModules != nil},
		{"daily_max_per_module", r.DailyMaxPerModule != nil},
		{"exhaustive_max_per_module", r.ExhaustiveMaxPerModule != nil},
		{"enable_bigquery", r.EnableBigQuery != nil},
		{"enable_filtering", r.EnableFiltering != nil},
	}

	for _, field := range required {
		if !field.sent {
			return field.name, true
		}
	}

	return "", false
}

// ConfigActionRequest addresses a scraper configuration for
// activate/deactivate/delete. Configurations are keyed by their
// updated_at timestamp.
type ConfigActionRequest struct {
	Config ConfigRef `json:"config"`
}

// ConfigRef points at a stored configuration revision.
type ConfigRef struct {
	UpdatedAt string `json:"updated_at"`
}
