package config

import "time"

// Upstreams points the dashboard at its backing HTTP services. The dashboard
// owns no warehouse data: every page proxies to one of these.
type Upstreams struct {
	Warehouse Warehouse
	Scoring   Scoring
	Columbus  Columbus
	CloudRun  CloudRun
}

type Warehouse struct {
	URL       string        `env:"WAREHOUSE_API_URL,notEmpty" validate:"url"`
	Timeout   time.Duration `env:"WAREHOUSE_TIMEOUT" envDefault:"30s"`
	RateLimit float64       `env:"WAREHOUSE_RATE_LIMIT" envDefault:"10"`
}

type Scoring struct {
	URL     string        `env:"SCORING_API_URL,notEmpty" validate:"url"`
	Timeout time.Duration `env:"SCORING_TIMEOUT" envDefault:"30s"`
}

type Columbus struct {
	URL     string        `env:"COLUMBUS_AI_URL,notEmpty" validate:"url"`
	Timeout time.Duration `env:"COLUMBUS_TIMEOUT" envDefault:"60s"`

	// AIProvider is display-only: the chat page shows which model answers.
	AIProvider string `env:"AI_PROVIDER" envDefault:"vertex"`
}

type CloudRun struct {
	URL           string        `env:"CLOUDRUN_API_URL,notEmpty" validate:"url"`
	JobDaily      string        `env:"CLOUDRUN_JOB_DAILY" envDefault:"zoektrends-daily"`
	JobExhaustive string        `env:"CLOUDRUN_JOB_EXHAUSTIVE" envDefault:"zoektrends-exhaustive"`
	JobTimeout    time.Duration `env:"CLOUDRUN_JOB_TIMEOUT" envDefault:"30m"`
}
