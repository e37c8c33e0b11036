// Package scoring calls the external prospect-scoring service.
package scoring

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/prospect"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	upstreamName = "scoring"

	errBodyLimit = 4096
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Scoring, opts ...httpx.Option) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		},
	}
}

// ScoreBatch sends companies for scoring and returns them enriched with
// prospect fields, in the order the scoring API answered. Partial scoring
// responses are normalized here so callers never see an incomplete breakdown.
func (c *Client) ScoreBatch(ctx context.Context, companies []entity.Company) ([]entity.ScoredCompany, error) {
	if len(companies) == 0 {
		return nil, nil
	}

	payload := struct {
		Companies []entity.Company `json:"companies"`
	}{Companies: companies}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/score/batch", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(upstreamName, "error").Observe(time.Since(start).Seconds())

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.WrapError(err, errcodes.TimeoutExceeded, "scoring request timed out")
		}

		return nil, domain.WrapError(err, errcodes.ScoringUnavailable, "scoring request failed")
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestDuration.
		WithLabelValues(upstreamName, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

		return nil, domain.WrapError(
			fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet)),
			errcodes.ScoringUnavailable,
			"scoring request failed",
		)
	}

	var response struct {
		Companies []entity.ScoredCompany `json:"companies"`
	}

	if err = json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, domain.WrapError(err, errcodes.ScoringUnavailable, "scoring response malformed")
	}

	return prospect.Normalize(response.Companies), nil
}
