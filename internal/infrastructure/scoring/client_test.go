package scoring_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/scoring"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

func newTestClient(t *testing.T, handler http.Handler) *scoring.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return scoring.NewClient(config.Scoring{URL: server.URL, Timeout: 5 * time.Second})
}

func TestScoreBatch(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rq.Equal(http.MethodPost, r.Method)
		rq.Equal("/api/v1/score/batch", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		rq.NoError(err)
		rq.Contains(string(body), `"company_name":"Acme"`)

		// partial response: no category, no emoji, no breakdown
		_, _ = w.Write([]byte(`{"companies":[{"company_id":"c-1","company_name":"Acme","prospect_score":82}]}`))
	}))

	scored, err := client.ScoreBatch(context.Background(), []entity.Company{{CompanyID: "c-1", CompanyName: "Acme"}})

	rq.NoError(err)
	rq.Len(scored, 1)
	rq.InDelta(82, scored[0].ProspectScore, 0.001)
	rq.Equal("Hot Prospect", scored[0].ProspectCategory)
	rq.Equal("🔥", scored[0].ProspectEmoji)
	rq.Zero(scored[0].ScoreBreakdown.TechScore)
}

func TestScoreBatchEmptyInput(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("no request expected for an empty batch")
	}))

	scored, err := client.ScoreBatch(context.Background(), nil)

	rq.NoError(err)
	rq.Nil(scored)
}

func TestScoreBatchUpstreamError(t *testing.T) {
	rq := require.New(t)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))

	_, err := client.ScoreBatch(context.Background(), []entity.Company{{CompanyID: "c-1"}})

	rq.Error(err)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.ScoringUnavailable, code)
}
