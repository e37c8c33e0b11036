package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/catalog"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraper"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/value"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/server"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

const testSessionKey = "test-session-key"

type authStub struct {
	session  entity.Session
	loginErr error

	loginUsername string
	loginPassword string
	loggedOut     string
}

func (a *authStub) Login(_ context.Context, username, password string) (entity.Session, error) {
	a.loginUsername = username
	a.loginPassword = password

	if a.loginErr != nil {
		return entity.Session{}, a.loginErr
	}

	return a.session, nil
}

func (a *authStub) Logout(_ context.Context, sessionKey string) error {
	a.loggedOut = sessionKey

	return nil
}

func (a *authStub) Verify(_ context.Context, sessionKey string) (entity.Session, error) {
	if sessionKey != a.session.Key {
		return entity.Session{}, domain.NewError(errcodes.SessionExpired, "session expired")
	}

	return a.session, nil
}

type catalogStub struct {
	overview   catalog.StatsOverview
	jobCount   int
	companies  []entity.ScoredCompany
	details    warehouse.CompanyDetails
	options    warehouse.FilterOptions
	jobOptions warehouse.JobFilterOptions
	jobs       []entity.Job
	skills     []entity.Skill
	contacts   jsoniter.RawMessage
	rows       int
	err        error

	gotCompanyFilters warehouse.CompanyFilters
	gotCompanyLimit   int
	gotJobFilters     warehouse.JobFilters
	gotJobLimit       int
	gotCompanyName    string
	gotUpdate         warehouse.CompanyUpdate
	savedSkill        entity.Skill
	toggledSkill      string
	toggledActive     bool
	deletedSkill      string
}

func (c *catalogStub) Stats(context.Context) (catalog.StatsOverview, error) {
	return c.overview, c.err
}

func (c *catalogStub) TestConnection(context.Context) (int, error) {
	return c.jobCount, c.err
}

func (c *catalogStub) Companies(_ context.Context, filters warehouse.CompanyFilters, limit int) ([]entity.ScoredCompany, error) {
	c.gotCompanyFilters = filters
	c.gotCompanyLimit = limit

	return c.companies, c.err
}

func (c *catalogStub) Company(_ context.Context, name string) (warehouse.CompanyDetails, error) {
	c.gotCompanyName = name

	return c.details, c.err
}

func (c *catalogStub) UpdateCompany(_ context.Context, update warehouse.CompanyUpdate) (int, error) {
	c.gotUpdate = update

	return c.rows, c.err
}

func (c *catalogStub) CompanyFilterOptions(context.Context) (warehouse.FilterOptions, error) {
	return c.options, nil
}

func (c *catalogStub) CompanyJobs(_ context.Context, company string) ([]entity.Job, error) {
	c.gotCompanyName = company

	return c.jobs, c.err
}

func (c *catalogStub) ContactDetails(_ context.Context, companyName string) (jsoniter.RawMessage, error) {
	c.gotCompanyName = companyName

	return c.contacts, c.err
}

func (c *catalogStub) Jobs(_ context.Context, filters warehouse.JobFilters, limit int) ([]entity.Job, error) {
	c.gotJobFilters = filters
	c.gotJobLimit = limit

	return c.jobs, c.err
}

func (c *catalogStub) JobFilterOptions(context.Context) (warehouse.JobFilterOptions, error) {
	return c.jobOptions, c.err
}

func (c *catalogStub) Skills(context.Context) ([]entity.Skill, error) {
	return c.skills, c.err
}

func (c *catalogStub) SaveSkill(_ context.Context, skill entity.Skill) error {
	c.savedSkill = skill

	return c.err
}

func (c *catalogStub) ToggleSkill(_ context.Context, skillID string, active bool) error {
	c.toggledSkill = skillID
	c.toggledActive = active

	return c.err
}

func (c *catalogStub) DeleteSkill(_ context.Context, skillID string) error {
	c.deletedSkill = skillID

	return c.err
}

type chatStub struct {
	result          entity.ChatResult
	insights        entity.Insights
	suggestions     []string
	analyticsAnswer string
	err             error

	gotSessionKey string
	gotMessage    string
	resetKey      string
}

func (c *chatStub) Chat(_ context.Context, sessionKey, message string) (entity.ChatResult, error) {
	c.gotSessionKey = sessionKey
	c.gotMessage = message

	return c.result, c.err
}

func (c *chatStub) Reset(_ context.Context, sessionKey string) error {
	c.resetKey = sessionKey

	return c.err
}

func (c *chatStub) Suggestions() []string {
	return c.suggestions
}

func (c *chatStub) Insights(context.Context) (entity.Insights, error) {
	return c.insights, c.err
}

func (c *chatStub) AnalyticsChat(_ context.Context, message string) (string, error) {
	c.gotMessage = message

	return c.analyticsAnswer, c.err
}

type configsStub struct {
	configs []entity.ScraperConfig
	saveErr error
	err     error

	saved       entity.ScraperConfig
	savedBy     string
	activated   string
	deactivated string
	deleted     string
	actionBy    string
}

func (c *configsStub) List(context.Context) ([]entity.ScraperConfig, error) {
	return c.configs, c.err
}

func (c *configsStub) Save(_ context.Context, cfg entity.ScraperConfig, updatedBy string) error {
	c.saved = cfg
	c.savedBy = updatedBy

	if c.saveErr != nil {
		return c.saveErr
	}

	return c.err
}

func (c *configsStub) Activate(_ context.Context, timestamp, updatedBy string) error {
	c.activated = timestamp
	c.actionBy = updatedBy

	return c.err
}

func (c *configsStub) Deactivate(_ context.Context, timestamp, updatedBy string) error {
	c.deactivated = timestamp
	c.actionBy = updatedBy

	return c.err
}

func (c *configsStub) Delete(_ context.Context, timestamp string) error {
	c.deleted = timestamp

	return c.err
}

type scraperStub struct {
	execution entity.JobExecution
	status    scraper.Status
	err       error

	gotJobType value.JobType
	gotBy      string
}

func (s *scraperStub) Trigger(_ context.Context, jobType value.JobType, triggeredBy string) (entity.JobExecution, error) {
	s.gotJobType = jobType
	s.gotBy = triggeredBy

	return s.execution, s.err
}

func (s *scraperStub) Status(context.Context) (scraper.Status, error) {
	return s.status, s.err
}

type testEnv struct {
	auth    *authStub
	catalog *catalogStub
	chat    *chatStub
	configs *configsStub
	scraper *scraperStub
	router  chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pages, err := web.NewRenderer()
	require.NoError(t, err)

	env := &testEnv{
		auth: &authStub{session: entity.Session{
			Key:           testSessionKey,
			Authenticated: true,
			Username:      "admin",
			CreatedAt:     testNow,
			ExpiresAt:     testNow.Add(24 * time.Hour),
		}},
		catalog: &catalogStub{},
		chat:    &chatStub{},
		configs: &configsStub{},
		scraper: &scraperStub{},
	}

	cfg := config.Dashboard{
		ResultsLimit:     500,
		MaxResultsLimit:  1000,
		SessionCookieAge: 24 * time.Hour,
		Debug:            true,
	}
	google := config.Google{ProjectID: "demo-project", Region: "europe-west4", Dataset: "zoektrends_job_data"}

	srv := server.NewServer(
		server.NewAuthServer(env.auth, pages, cfg).WithClock(func() time.Time { return testNow }),
		server.NewDashboardServer(env.catalog, env.chat, pages, cfg, google),
		server.NewConfigServer(env.configs, env.scraper, pages),
		server.NewColumbusServer(env.chat, pages, config.Columbus{AIProvider: "vertex"}),
	)

	router := chi.NewRouter()
	router.Use(server.RequireSession(env.auth))
	srv.RegisterRoutes(router)
	env.router = router

	return env
}

// do runs an authenticated request against the route table.
func (e *testEnv) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: testSessionKey})

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()

	require.NoError(t, jsoniter.Unmarshal(rec.Body.Bytes(), dest))
}
