package scraperconf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseUpdatedAt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "bigquery style with UTC suffix",
			raw:  "2025-06-01 10:00:00 UTC",
			want: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "bigquery style with fraction",
			raw:  "2025-06-01 10:00:00.123456 UTC",
			want: time.Date(2025, 6, 1, 10, 0, 0, 123456000, time.UTC),
		},
		{
			name: "rfc3339",
			raw:  "2025-06-01T10:00:00Z",
			want: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "iso without offset is taken as utc",
			raw:  "2025-06-01T10:00:00",
			want: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			raw:  "  2025-06-01 10:00:00 UTC ",
			want: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			got, err := parseUpdatedAt(tt.raw)

			rq.NoError(err)
			rq.True(tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestParseUpdatedAtRejectsGarbage(t *testing.T) {
	rq := require.New(t)

	_, err := parseUpdatedAt("last tuesday")

	rq.Error(err)
}
