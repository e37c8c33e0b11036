// Package server is the HTTP face of the dashboard: the chi route table,
// session and CSRF middleware, and the JSON envelopes the page scripts
// consume.
package server

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/catalog"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraper"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/value"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type authService interface {
	Login(ctx context.Context, username, password string) (entity.Session, error)
	Logout(ctx context.Context, sessionKey string) error
	Verify(ctx context.Context, sessionKey string) (entity.Session, error)
}

type catalogService interface {
	Stats(ctx context.Context) (catalog.StatsOverview, error)
	TestConnection(ctx context.Context) (int, error)
	Companies(ctx context.Context, filters warehouse.CompanyFilters, limit int) ([]entity.ScoredCompany, error)
	Company(ctx context.Context, name string) (warehouse.CompanyDetails, error)
	UpdateCompany(ctx context.Context, update warehouse.CompanyUpdate) (int, error)
	CompanyFilterOptions(ctx context.Context) (warehouse.FilterOptions, error)
	CompanyJobs(ctx context.Context, company string) ([]entity.Job, error)
	ContactDetails(ctx context.Context, companyName string) (jsoniter.RawMessage, error)
	Jobs(ctx context.Context, filters warehouse.JobFilters, limit int) ([]entity.Job, error)
	JobFilterOptions(ctx context.Context) (warehouse.JobFilterOptions, error)
	Skills(ctx context.Context) ([]entity.Skill, error)
	SaveSkill(ctx context.Context, skill entity.Skill) error
	ToggleSkill(ctx context.Context, skillID string, active bool) error
	DeleteSkill(ctx context.Context, skillID string) error
}

type chatService interface {
	Chat(ctx context.Context, sessionKey, message string) (entity.ChatResult, error)
	Reset(ctx context.Context, sessionKey string) error
	Suggestions() []string
	Insights(ctx context.Context) (entity.Insights, error)
	AnalyticsChat(ctx context.Context, message string) (string, error)
}

type configService interface {
	List(ctx context.Context) ([]entity.ScraperConfig, error)
	Save(ctx context.Context, cfg entity.ScraperConfig, updatedBy string) error
	Activate(ctx context.Context, timestamp, updatedBy string) error
	Deactivate(ctx context.Context, timestamp, updatedBy string) error
	Delete(ctx context.Context, timestamp string) error
}

type scraperService interface {
	Trigger(ctx context.Context, jobType value.JobType, triggeredBy string) (entity.JobExecution, error)
	Status(ctx context.Context) (scraper.Status, error)
}

// Server bundles the entity-specific HTTP servers behind one route table.
type Server struct {
	AuthServer
	DashboardServer
	ConfigServer
	ColumbusServer
}

func NewServer(
	authServer AuthServer,
	dashboardServer DashboardServer,
	configServer ConfigServer,
	columbusServer ColumbusServer,
) Server {
	return Server{
		AuthServer:      authServer,
		DashboardServer: dashboardServer,
		ConfigServer:    configServer,
		ColumbusServer:  columbusServer,
	}
}

type AuthServer struct {
	auth  authService
	pages *web.Renderer
	cfg   config.Dashboard
	now   func() time.Time
}

func NewAuthServer(auth authService, pages *web.Renderer, cfg config.Dashboard) AuthServer {
	return AuthServer{
		auth:  auth,
		pages: pages,
		cfg:   cfg,
		now:   time.Now,
	}
}

// WithClock replaces the time source in tests.
func (s AuthServer) WithClock(now func() time.Time) AuthServer {
	s.now = now

	return s
}

type DashboardServer struct {
	catalog catalogService
	chat    chatService
	pages   *web.Renderer
	cfg     config.Dashboard
	google  config.Google
}

func NewDashboardServer(
	catalogService catalogService,
	chatService chatService,
	pages *web.Renderer,
	cfg config.Dashboard,
	google config.Google,
) DashboardServer {
	return DashboardServer{
		catalog: catalogService,
		chat:    chatService,
		pages:   pages,
		cfg:     cfg,
		google:  google,
	}
}

type ConfigServer struct {
	configs configService
	scraper scraperService
	pages   *web.Renderer
}

func NewConfigServer(configs configService, scraperSvc scraperService, pages *web.Renderer) ConfigServer {
	return ConfigServer{
		configs: configs,
		scraper: scraperSvc,
		pages:   pages,
	}
}

type ColumbusServer struct {
	chat  chatService
	pages *web.Renderer
	cfg   config.Columbus
}

func NewColumbusServer(chatService chatService, pages *web.Renderer, cfg config.Columbus) ColumbusServer {
	return ColumbusServer{
		chat:  chatService,
		pages: pages,
		cfg:   cfg,
	}
}
