package scraperconf

import (
	"fmt"
	"strings"
	"time"

	"git.appkode.ru/pub/go/failure"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

// LockedError reports a save attempt inside the lock window. The handler
// surfaces the remaining minutes and the blocking timestamp to the UI.
type LockedError struct {
	MinutesRemaining int
	LastUpdated      string
}

func (e *LockedError) Error() string {
	return e.ErrorMessage()
}

func (e *LockedError) ErrorCode() failure.ErrorCode {
	return errcodes.ConfigurationLocked
}

func (e *LockedError) ErrorMessage() string {
	return fmt.Sprintf(
		"Configuration is locked. Changes can be made after %d minutes. This lock exists to ensure buffer time for active scraping jobs.",
		e.MinutesRemaining,
	)
}

// timestampLayouts covers the shapes revisions have carried over time:
// RFC3339 from the API, space-separated UTC strings from the BigQuery era.
//
//nolint:gochecknoglobals
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// parseUpdatedAt strips a trailing " UTC" and takes offset-less timestamps
// as UTC.
func parseUpdatedAt(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, " UTC")

	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported timestamp format %q", raw)
}
