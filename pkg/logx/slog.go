package logx

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

var Error = tint.Err //nolint:gochecknoglobals

// NewLogger builds the process-wide logger. Debug switches to tinted
// console output with short timestamps, otherwise JSON lines go to w.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	if debug {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.TimeOnly,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func Stringer(name string, value fmt.Stringer) slog.Attr {
	return slog.String(name, value.String())
}
