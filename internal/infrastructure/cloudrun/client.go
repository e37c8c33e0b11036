// Package cloudrun triggers the scraper jobs through the Cloud Run Admin
// API. The request path never waits for a run to finish, it starts an
// execution, records its name and leaves the polling to the worker.
package cloudrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/value"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	upstreamName = "cloudrun"

	errBodyLimit = 4096
)

type authenticator interface {
	Authenticate(context.Context) error
	BearerToken() string
}

// Execution identifies one started job run.
type Execution struct {
	Job       string
	Execution string
}

// Client starts Cloud Run jobs. Requests carry a bearer token from the
// authenticator, refreshed through the auth transport when it expires.
type Client struct {
	baseURL       string
	project       string
	region        string
	jobDaily      string
	jobExhaustive string
	httpClient    *http.Client
}

func NewClient(cfg config.CloudRun, gcp config.Google, auth authenticator, opts ...httpx.Option) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(cfg.URL, "/"),
		project:       gcp.ProjectID,
		region:        gcp.Region,
		jobDaily:      cfg.JobDaily,
		jobExhaustive: cfg.JobExhaustive,
		httpClient: &http.Client{
			Timeout: cfg.JobTimeout,
			Transport: httpx.NewAuthBearerRoundTripper(
				httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
				auth,
			),
		},
	}
}

// Trigger starts the job behind jobType and returns the execution name
// reported by the operation metadata.
func (c *Client) Trigger(ctx context.Context, jobType value.JobType) (Execution, error) {
	job := c.jobName(jobType)

	var operation struct {
		Name     string `json:"name"`
		Metadata struct {
			Name string `json:"name"`
		} `json:"metadata"`
	}

	endpoint := fmt.Sprintf("%s/v2/projects/%s/locations/%s/jobs/%s:run", c.baseURL, c.project, c.region, job)
	if err := c.call(ctx, http.MethodPost, endpoint, &operation); err != nil {
		return Execution{}, fmt.Errorf("run job %s: %w", job, err)
	}

	execution := operation.Metadata.Name
	if execution == "" {
		execution = operation.Name
	}

	return Execution{
		Job:       job,
		Execution: path.Base(execution),
	}, nil
}

// RunState reports how far along one execution is.
type RunState struct {
	Done      bool
	Succeeded bool
	Detail    string
}

// ExecutionState polls one started execution. Done flips once Cloud Run
// stamps a completion time, Succeeded follows the Completed condition.
func (c *Client) ExecutionState(ctx context.Context, job, execution string) (RunState, error) {
	var resource struct {
		CompletionTime string `json:"completionTime"`
		Conditions     []struct {
			Type    string `json:"type"`
			State   string `json:"state"`
			Message string `json:"message"`
		} `json:"conditions"`
	}

	endpoint := fmt.Sprintf("%s/v2/projects/%s/locations/%s/jobs/%s/executions/%s", c.baseURL, c.project, c.region, job, execution)
	if err := c.call(ctx, http.MethodGet, endpoint, &resource); err != nil {
		return RunState{}, fmt.Errorf("get execution %s: %w", execution, err)
	}

	state := RunState{Done: resource.CompletionTime != ""}

	for _, condition := range resource.Conditions {
		if condition.Type != "Completed" {
			continue
		}

		state.Succeeded = condition.State == "CONDITION_SUCCEEDED"
		state.Detail = condition.Message
	}

	return state, nil
}

// Describe fetches the job resource. The doctor command uses it as a
// permissions and connectivity probe.
func (c *Client) Describe(ctx context.Context, jobType value.JobType) error {
	job := c.jobName(jobType)

	endpoint := fmt.Sprintf("%s/v2/projects/%s/locations/%s/jobs/%s", c.baseURL, c.project, c.region, job)
	if err := c.call(ctx, http.MethodGet, endpoint, nil); err != nil {
		return fmt.Errorf("describe job %s: %w", job, err)
	}

	return nil
}

func (c *Client) jobName(jobType value.JobType) string {
	if jobType == value.JobTypeDaily {
		return c.jobDaily
	}

	return c.jobExhaustive
}

func (c *Client) call(ctx context.Context, method, endpoint string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(upstreamName, "error").Observe(time.Since(start).Seconds())

		if errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(err, errcodes.TimeoutExceeded, "cloud run request timed out")
		}

		return domain.WrapError(err, errcodes.CloudRunUnavailable, "cloud run request failed")
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestDuration.
		WithLabelValues(upstreamName, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

		return domain.WrapError(
			fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet)),
			errcodes.CloudRunUnavailable,
			"cloud run request failed",
		)
	}

	if dest == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return domain.WrapError(err, errcodes.CloudRunUnavailable, "cloud run response malformed")
	}

	return nil
}
