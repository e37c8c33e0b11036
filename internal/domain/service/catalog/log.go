package catalog

import "github.com/KamalidenovRustem/zoektrends-dashboard/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
