package config

import "time"

type Worker struct {
	Concurrency   int           `env:"WORKER_CONCURRENCY" envDefault:"5"`
	PollInterval  time.Duration `env:"WORKER_POLL_INTERVAL" envDefault:"15s"`
	SweepInterval time.Duration `env:"WORKER_SWEEP_INTERVAL" envDefault:"10m"`
}
