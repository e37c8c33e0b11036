// Package columbus is the HTTP client for the Columbus AI service, the
// conversational layer over the warehouse datasets.
package columbus

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/prospect"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

//go:embed schema.json
var chatSchemaSource string

// chatSchema pins the chat response contract, the AI service redeploys
// independently of the dashboard.
var chatSchema = jsonschema.MustCompileString("schema.json", chatSchemaSource) //nolint:gochecknoglobals // skip

const (
	upstreamName = "columbus"

	errBodyLimit = 4096
)

// Client talks to the Columbus AI service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.Columbus, opts ...httpx.Option) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport, opts...),
		},
	}
}

// ChatPayload is one upstream chat call. History carries the trailing
// conversation window, Context the companies a follow-up should ground on.
type ChatPayload struct {
	Message string             `json:"message"`
	History []entity.ChatTurn  `json:"history,omitempty"`
	Context entity.ChatContext `json:"context"`
}

// ContactDetailsPayload describes the company whose contact channels the AI
// should research.
type ContactDetailsPayload struct {
	CompanyName     string `json:"company_name"`
	CompanyType     string `json:"company_type,omitempty"`
	CompanyIndustry string `json:"company_industry,omitempty"`
	CompanySize     string `json:"company_size,omitempty"`
	JobCount        int    `json:"job_count"`
	LinkedInJobURL  string `json:"linkedin_job_url,omitempty"`
}

// AnalyticsContext is the dataset summary grounding analytics answers.
type AnalyticsContext struct {
	TotalJobs      int `json:"total_jobs"`
	TotalCompanies int `json:"total_companies"`
	TotalSources   int `json:"total_sources"`
}

// Chat sends one user message and returns the parsed answer. The data field
// is free-form on the wire; company rows found in it are deduplicated by
// company_id keeping the first occurrence, rows without an id are dropped.
func (c *Client) Chat(ctx context.Context, payload ChatPayload) (entity.ChatResult, error) {
	body, err := c.post(ctx, "/api/v1/chat", payload)
	if err != nil {
		return entity.ChatResult{}, err
	}

	var document any
	if err = json.Unmarshal(body, &document); err != nil {
		return entity.ChatResult{}, domain.WrapError(err, errcodes.ChatUnavailable, "columbus response malformed")
	}

	if err = chatSchema.Validate(document); err != nil {
		return entity.ChatResult{}, domain.WrapError(err, errcodes.ChatUnavailable, "columbus response rejected by schema")
	}

	var parsed struct {
		Response      string   `json:"response"`
		FunctionCalls []string `json:"function_calls"`
	}

	if err = json.Unmarshal(body, &parsed); err != nil {
		return entity.ChatResult{}, domain.WrapError(err, errcodes.ChatUnavailable, "columbus response malformed")
	}

	result := entity.ChatResult{
		Response:      parsed.Response,
		FunctionCalls: parsed.FunctionCalls,
		Companies:     extractCompanies(body),
	}

	if result.FunctionCalls == nil {
		result.FunctionCalls = []string{}
	}

	return result, nil
}

// ContactDetails asks the AI to research public contact channels for a
// company. The response shape is owned by the AI service and is forwarded
// to the UI untouched.
func (c *Client) ContactDetails(ctx context.Context, payload ContactDetailsPayload) (jsoniter.RawMessage, error) {
	body, err := c.post(ctx, "/api/v1/contact-details", payload)
	if err != nil {
		return nil, err
	}

	var response struct {
		ContactDetails jsoniter.RawMessage `json:"contact_details"`
	}

	if err = json.Unmarshal(body, &response); err != nil {
		return nil, domain.WrapError(err, errcodes.ChatUnavailable, "columbus response malformed")
	}

	return response.ContactDetails, nil
}

// AnalyticsChat asks the lightweight analytics assistant. No function
// calling, plain text in and out.
func (c *Client) AnalyticsChat(ctx context.Context, message string, stats AnalyticsContext) (string, error) {
	payload := struct {
		Message string           `json:"message"`
		Context AnalyticsContext `json:"context"`
	}{Message: message, Context: stats}

	body, err := c.post(ctx, "/api/v1/analytics-chat", payload)
	if err != nil {
		return "", err
	}

	var response struct {
		Message string `json:"message"`
	}

	if err = json.Unmarshal(body, &response); err != nil {
		return "", domain.WrapError(err, errcodes.ChatUnavailable, "columbus response malformed")
	}

	return response.Message, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequestDuration.WithLabelValues(upstreamName, "error").Observe(time.Since(start).Seconds())

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.WrapError(err, errcodes.TimeoutExceeded, "columbus request timed out")
		}

		return nil, domain.WrapError(err, errcodes.ChatUnavailable, "columbus request failed")
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestDuration.
		WithLabelValues(upstreamName, strconv.Itoa(resp.StatusCode)).
		Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ChatUnavailable, "columbus response unreadable")
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet := body
		if len(snippet) > errBodyLimit {
			snippet = snippet[:errBodyLimit]
		}

		return nil, domain.WrapError(
			fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(snippet)),
			errcodes.ChatUnavailable,
			"columbus request failed",
		)
	}

	return body, nil
}

// extractCompanies pulls company rows out of the free-form data field. Search
// functions nest them under data.companies, detail lookups return a bare
// array. Rows that do not decode as companies are ignored.
func extractCompanies(body []byte) []entity.ScoredCompany {
	node := gjson.GetBytes(body, "data.companies")
	if !node.Exists() {
		node = gjson.GetBytes(body, "data")
	}

	if !node.IsArray() {
		return nil
	}

	var companies []entity.ScoredCompany
	if err := json.Unmarshal([]byte(node.Raw), &companies); err != nil {
		return nil
	}

	companies = lo.UniqBy(
		lo.Filter(companies, func(company entity.ScoredCompany, _ int) bool {
			return company.CompanyID != ""
		}),
		func(company entity.ScoredCompany) string { return company.CompanyID },
	)

	if len(companies) == 0 {
		return nil
	}

	return prospect.Normalize(companies)
}
