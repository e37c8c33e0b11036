// Package warehouse is the HTTP client for the data-warehouse API fronting
// the scraped job and company datasets.
package warehouse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	upstreamName = "warehouse"

	errBodyLimit = 4096
)

// Client talks to the warehouse API. Every call passes the rate limiter,
// BigQuery quota behind the warehouse is shared with the scrapers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg config.Warehouse, opts ...httpx.Option) *Client {
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, dest)
}

func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("limiter.Wait: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}

		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(upstreamName, "error").Observe(time.Since(start).Seconds())

		if errors.Is(err, context.DeadlineExceeded) {
			return domain.WrapError(err, errcodes.TimeoutExceeded, "warehouse request timed out")
		}

		return domain.WrapError(err, errcodes.WarehouseUnavailable, "warehouse request failed")
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestDuration.
		WithLabelValues(upstreamName, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNotFound {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

		return domain.WrapError(
			fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet)),
			errcodes.NotFound,
			"warehouse resource not found",
		)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

		return domain.WrapError(
			fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet)),
			errcodes.WarehouseUnavailable,
			"warehouse request failed",
		)
	}

	if dest == nil {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return domain.WrapError(err, errcodes.WarehouseUnavailable, "warehouse response malformed")
	}

	return nil
}
