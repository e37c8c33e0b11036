package cloudrun_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/value"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/cloudrun"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

type staticToken string

func (staticToken) Authenticate(context.Context) error { return nil }
func (t staticToken) BearerToken() string              { return string(t) }

func newTestClient(t *testing.T, handler http.Handler) *cloudrun.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return cloudrun.NewClient(
		config.CloudRun{
			URL:           server.URL,
			JobDaily:      "zoektrends-daily",
			JobExhaustive: "zoektrends-exhaustive",
			JobTimeout:    5 * time.Second,
		},
		config.Google{ProjectID: "agiliz-sales-tool", Region: "europe-west1"},
		staticToken("test-token"),
	)
}

func TestTrigger(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal(http.MethodPost, r.Method)
		rq.Equal("/v2/projects/agiliz-sales-tool/locations/europe-west1/jobs/zoektrends-exhaustive:run", r.URL.Path)
		rq.Equal("Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{
			"name": "projects/agiliz-sales-tool/locations/europe-west1/operations/op-1",
			"metadata": {
				"@type": "type.googleapis.com/google.cloud.run.v2.Execution",
				"name": "projects/agiliz-sales-tool/locations/europe-west1/jobs/zoektrends-exhaustive/executions/zoektrends-exhaustive-x7k2q"
			}
		}`))
	}))

	execution, err := client.Trigger(context.Background(), value.JobTypeExhaustive)

	rq.NoError(err)
	rq.Equal("zoektrends-exhaustive", execution.Job)
	rq.Equal("zoektrends-exhaustive-x7k2q", execution.Execution)
}

func TestTriggerDailyJobName(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal("/v2/projects/agiliz-sales-tool/locations/europe-west1/jobs/zoektrends-daily:run", r.URL.Path)

		_, _ = w.Write([]byte(`{"name": "projects/agiliz-sales-tool/locations/europe-west1/operations/op-2", "metadata": {}}`))
	}))

	execution, err := client.Trigger(context.Background(), value.JobTypeDaily)

	rq.NoError(err)
	rq.Equal("zoektrends-daily", execution.Job)
	rq.Equal("op-2", execution.Execution)
}

func TestTriggerUpstreamError(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	}))

	_, err := client.Trigger(context.Background(), value.JobTypeDaily)

	rq.Error(err)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.CloudRunUnavailable, code)
	rq.Contains(err.Error(), "permission denied")
}

func TestDescribe(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal(http.MethodGet, r.Method)
		rq.Equal("/v2/projects/agiliz-sales-tool/locations/europe-west1/jobs/zoektrends-daily", r.URL.Path)

		_, _ = w.Write([]byte(`{"name": "projects/agiliz-sales-tool/locations/europe-west1/jobs/zoektrends-daily"}`))
	}))

	rq.NoError(client.Describe(context.Background(), value.JobTypeDaily))
}

func TestExecutionState(t *testing.T) {
	tests := []struct {
		name string
		body string
		want cloudrun.RunState
	}{
		{
			name: "still running",
			body: `{"name": "zoektrends-daily-x7k2q", "conditions": [{"type": "Started", "state": "CONDITION_SUCCEEDED"}]}`,
			want: cloudrun.RunState{},
		},
		{
			name: "succeeded",
			body: `{"completionTime": "2025-06-01T10:30:00Z", "conditions": [{"type": "Completed", "state": "CONDITION_SUCCEEDED"}]}`,
			want: cloudrun.RunState{Done: true, Succeeded: true},
		},
		{
			name: "failed",
			body: `{"completionTime": "2025-06-01T10:30:00Z", "conditions": [{"type": "Completed", "state": "CONDITION_FAILED", "message": "task 0 exited with code 1"}]}`,
			want: cloudrun.RunState{Done: true, Detail: "task 0 exited with code 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rq.Equal(http.MethodGet, r.Method)
				rq.Equal(
					"/v2/projects/agiliz-sales-tool/locations/europe-west1/jobs/zoektrends-daily/executions/zoektrends-daily-x7k2q",
					r.URL.Path,
				)

				_, _ = w.Write([]byte(tt.body))
			}))

			state, err := client.ExecutionState(context.Background(), "zoektrends-daily", "zoektrends-daily-x7k2q")

			rq.NoError(err)
			rq.Equal(tt.want, state)
		})
	}
}
