package web_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

func renderPage(t *testing.T, page string, data any) string {
	t.Helper()

	pages, err := web.NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, pages.Render(&buf, page, web.PageData{Title: "test", Data: data}))

	return buf.String()
}

func TestColumbusPageRendersScoreBreakdown(t *testing.T) {
	rq := require.New(t)

	html := renderPage(t, "columbus", map[string]string{
		"AIProvider": "openai",
		"AIModel":    "GPT-4o",
	})

	rq.Contains(html, "score_breakdown")
	for _, field := range []string{
		"tech_score",
		"company_type_score",
		"industry_score",
		"size_score",
		"activity_score",
		"recency_score",
	} {
		rq.Contains(html, field)
	}

	// Sub-score maxima shown next to each bar.
	for _, max := range []string{"30", "20", "15", "5"} {
		rq.Contains(html, max)
	}

	// Missing breakdowns must render as zeros, not break the card.
	rq.Contains(html, "?? 0")
}

func TestColumbusPageBindsProviderAndModel(t *testing.T) {
	rq := require.New(t)

	html := renderPage(t, "columbus", map[string]string{
		"AIProvider": "vertex",
		"AIModel":    "Gemini 2.5 Pro",
	})

	rq.Contains(html, "Gemini 2.5 Pro")
	rq.Contains(html, "vertex")
}
