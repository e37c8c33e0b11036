// Program columbus-doctor probes the dashboard's upstream services one by one
// and prints a report. Run it on the deployed host when chat or the company
// cards misbehave to pin down which dependency broke.
//
//	go run ./cmd/columbus-doctor
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/columbus"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// scoredCompanySchema is the shape a scored company must have on the wire.
// The dashboard's typed clients zero-fill absent fields, so only a raw probe
// can tell a missing breakdown from an all-zero one.
var scoredCompanySchema = jsonschema.MustCompileString("scored_company.json", `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["company_name", "prospect_score", "prospect_category", "score_breakdown"],
  "properties": {
    "prospect_score": {"type": "number"},
    "prospect_category": {"type": "string"},
    "score_breakdown": {
      "type": "object",
      "required": [
        "tech_score",
        "company_type_score",
        "industry_score",
        "size_score",
        "activity_score",
        "recency_score"
      ]
    }
  }
}`) //nolint:gochecknoglobals // skip

const (
	headerWidth = 60
	sampleLimit = 5
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Report goes to stdout, client request logs stay on stderr.
	slog.SetDefault(logx.NewLogger(os.Stderr, false))

	d := &doctor{out: os.Stdout}
	d.run(ctx)

	if d.failures > 0 {
		os.Exit(1)
	}
}

type doctor struct {
	out      io.Writer
	failures int
}

func (d *doctor) run(ctx context.Context) {
	d.section("COLUMBUS DASHBOARD DIAGNOSTICS")

	cfg, err := config.Load()
	if err != nil {
		d.fail("config: %v", err)

		return
	}

	d.checkEnvironment(cfg)

	companies := d.checkWarehouse(ctx, cfg)
	scored := d.checkScoring(ctx, cfg, companies)

	d.checkChat(ctx, cfg, scored)

	d.section("DIAGNOSTIC COMPLETE")

	if d.failures == 0 {
		d.pass("all checks passed")

		return
	}

	d.info("%d check(s) failed, see the sections above", d.failures)
}

func (d *doctor) checkEnvironment(cfg config.Config) {
	d.section("1. ENVIRONMENT")

	d.info("GOOGLE_CLOUD_PROJECT: %s", cfg.Google.ProjectID)
	d.info("GOOGLE_CLOUD_REGION: %s", cfg.Google.Region)
	d.info("BIGQUERY_DATASET: %s", cfg.Google.Dataset)
	d.info("DEBUG: %t", cfg.Dashboard.Debug)

	if cfg.Google.CredentialsPath == "" {
		d.info("GOOGLE_APPLICATION_CREDENTIALS not set, job triggers will use ambient credentials")

		return
	}

	info, err := os.Stat(cfg.Google.CredentialsPath)
	if err != nil {
		d.fail("credentials file unreadable: %v", err)

		return
	}

	d.pass("credentials file exists (%d bytes)", info.Size())
}

func (d *doctor) checkWarehouse(ctx context.Context, cfg config.Config) []entity.Company {
	d.section("2. WAREHOUSE API")

	client := warehouse.NewClient(cfg.Upstreams.Warehouse)

	companies, err := client.Companies(ctx, warehouse.CompanyFilters{Relevant: "to_review"}, sampleLimit)
	if err != nil {
		d.fail("companies query failed: %v", err)

		return nil
	}

	if len(companies) == 0 {
		d.fail("no companies returned, the review queue in the warehouse is empty")

		return nil
	}

	d.pass("found %d companies", len(companies))

	first := companies[0]
	d.info("   company_name: %s", first.CompanyName)
	d.info("   company_id: %s", first.CompanyID)
	d.info("   job_count: %d", first.JobCount)
	d.info("   tech_stack: %s", strings.Join(lo.Slice(first.TechStack, 0, 3), ", "))

	return companies
}

// checkScoring probes the scoring wire format directly. An absent
// score_breakdown renders every company card empty, and the typed client
// cannot see the difference.
func (d *doctor) checkScoring(ctx context.Context, cfg config.Config, companies []entity.Company) []entity.ScoredCompany {
	d.section("3. SCORING API")

	if len(companies) == 0 {
		d.info("skipped, no companies to score")

		return nil
	}

	payload := struct {
		Companies []entity.Company `json:"companies"`
	}{Companies: companies}

	body, err := postJSON(ctx, cfg.Upstreams.Scoring.URL+"/api/v1/score/batch", payload, cfg.Upstreams.Scoring.Timeout)
	if err != nil {
		d.fail("score batch failed: %v", err)

		return nil
	}

	first := gjson.GetBytes(body, "companies.0")
	if !first.Exists() {
		d.fail("scoring returned no companies")

		return nil
	}

	d.info("   prospect_score: %s", first.Get("prospect_score").String())
	d.info("   prospect_category: %s %s", first.Get("prospect_category").String(), first.Get("prospect_emoji").String())

	breakdown := first.Get("score_breakdown")
	if !breakdown.Exists() {
		d.fail("score_breakdown missing on the wire, company cards will render empty")

		return nil
	}

	d.pass("score_breakdown present")

	for _, sub := range []struct {
		field string
		max   int
	}{
		{"tech_score", 30},
		{"company_type_score", 20},
		{"industry_score", 15},
		{"size_score", 15},
		{"activity_score", 15},
		{"recency_score", 5},
	} {
		d.info("   %s: %d/%d", sub.field, breakdown.Get(sub.field).Int(), sub.max)
	}

	var document any
	if err = json.Unmarshal([]byte(first.Raw), &document); err != nil {
		d.fail("scored company is not valid JSON: %v", err)

		return nil
	}

	if err = scoredCompanySchema.Validate(document); err != nil {
		d.fail("scored company rejected by schema: %v", err)

		return nil
	}

	d.pass("scored company matches the expected shape")

	var scored struct {
		Companies []entity.ScoredCompany `json:"companies"`
	}

	if err = json.Unmarshal(body, &scored); err != nil {
		d.fail("scored companies do not decode: %v", err)

		return nil
	}

	return scored.Companies
}

func (d *doctor) checkChat(ctx context.Context, cfg config.Config, scored []entity.ScoredCompany) {
	d.section("4. COLUMBUS CHAT")

	client := columbus.NewClient(cfg.Upstreams.Columbus)

	payload := columbus.ChatPayload{ //nolint:exhaustruct
		Message: "Give me top 5 prospects",
		Context: entity.ChatContext{Companies: scored, TotalCompanies: len(scored)},
	}

	result, err := client.Chat(ctx, payload)
	if err != nil {
		d.fail("chat failed: %v", err)

		return
	}

	d.pass("chat answered (%d chars)", len(result.Response))
	d.info("   function_calls: %s", strings.Join(result.FunctionCalls, ", "))
	d.info("   companies: %d", len(result.Companies))

	if len(result.Companies) == 0 {
		return
	}

	top := result.Companies[0]
	d.info("   top: %s %s (%.1f)", top.ProspectEmoji, top.CompanyName, top.ProspectScore)

	if top.ProspectScore > 0 && top.ScoreBreakdown == (entity.ScoreBreakdown{}) {
		d.fail("top company scored %.1f with an all-zero breakdown, scoring enrichment is not reaching chat", top.ProspectScore)
	}
}

func (d *doctor) section(title string) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, strings.Repeat("=", headerWidth))
	fmt.Fprintln(d.out, title)
	fmt.Fprintln(d.out, strings.Repeat("=", headerWidth))
}

func (d *doctor) info(format string, args ...any) {
	fmt.Fprintf(d.out, format+"\n", args...)
}

func (d *doctor) pass(format string, args ...any) {
	fmt.Fprintf(d.out, "✅ "+format+"\n", args...)
}

func (d *doctor) fail(format string, args ...any) {
	d.failures++

	fmt.Fprintf(d.out, "❌ "+format+"\n", args...)
}

func postJSON(ctx context.Context, url string, payload any, timeout time.Duration) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: timeout} //nolint:exhaustruct

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(body))
	}

	return body, nil
}
