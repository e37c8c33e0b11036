package entity

// ScraperConfig is a scraper configuration revision. Revisions are keyed by
// their updated_at timestamp, the warehouse keeps the full history.
type ScraperConfig struct {
	IsActive               bool     `json:"is_active"`
	SearchQueries          []string `json:"search_queries"`
	SearchCountries        []string `json:"search_countries"`
	EnabledModules         []string `json:"enabled_modules"`
	DailyMaxPerModule      int      `json:"daily_max_per_module"`
	ExhaustiveMaxPerModule int      `json:"exhaustive_max_per_module"`
	EnableBigQuery         bool     `json:"enable_bigquery"`
	EnableFiltering        bool     `json:"enable_filtering"`
	Notes                  string   `json:"notes"`
	UpdatedBy              string   `json:"updated_by"`
	UpdatedAt              string   `json:"updated_at,omitempty"`
}
