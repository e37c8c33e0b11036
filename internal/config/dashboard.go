package config

import "time"

type Dashboard struct {
	Username          string        `env:"DASHBOARD_USERNAME" envDefault:"admin"`
	Password          string        `env:"DASHBOARD_PASSWORD" envDefault:"admin" json:"-"`
	SecretKey         string        `env:"SECRET_KEY,notEmpty" json:"-"`
	ResultsLimit      int           `env:"RESULTS_LIMIT" envDefault:"500"`
	MaxResultsLimit   int           `env:"MAX_RESULTS_LIMIT" envDefault:"1000"`
	CacheBackend      string        `env:"CACHE_BACKEND" envDefault:"redis" validate:"oneof=redis memory"`
	CacheTTLStats     time.Duration `env:"CACHE_TTL_STATS" envDefault:"300s"`
	CacheTTLJobs      time.Duration `env:"CACHE_TTL_JOBS" envDefault:"120s"`
	CacheTTLCompanies time.Duration `env:"CACHE_TTL_COMPANIES" envDefault:"180s"`
	SessionCookieAge  time.Duration `env:"SESSION_COOKIE_AGE" envDefault:"24h"`
	ConfigLockWindow  time.Duration `env:"CONFIG_LOCK_WINDOW" envDefault:"90m"`
	Debug             bool          `env:"DEBUG" envDefault:"false"`
}
