package server

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/reply"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/req"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/rest"
)

// analyticsMessageLimit caps the free-form analytics question. The page
// textarea enforces the same number.
const analyticsMessageLimit = 1000

func (s DashboardServer) getDashboardPage(w http.ResponseWriter, r *http.Request) error {
	return s.pages.Render(w, "dashboard", pageData(r, "Dashboard", map[string]string{
		"ProjectID": s.google.ProjectID,
		"Region":    s.google.Region,
		"Dataset":   s.google.Dataset,
	}))
}

func (s DashboardServer) getAnalyticsPage(w http.ResponseWriter, r *http.Request) error {
	return s.pages.Render(w, "analytics", pageData(r, "Analytics", nil))
}

func (s DashboardServer) getAPIPage(w http.ResponseWriter, r *http.Request) error {
	return s.pages.Render(w, "api", pageData(r, "API Management", nil))
}

func (s DashboardServer) getStats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	overview, err := s.catalog.Stats(ctx)
	if err != nil {
		return fmt.Errorf("catalog.Stats: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success    bool         `json:"success"`
		Stats      entity.Stats `json:"stats"`
		RecentJobs []entity.Job `json:"recentJobs"`
	}{
		Success:    true,
		Stats:      overview.Stats,
		RecentJobs: overview.RecentJobs,
	})

	return nil
}

func (s DashboardServer) getTestConnection(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	count, err := s.catalog.TestConnection(ctx)
	if err != nil {
		return fmt.Errorf("catalog.TestConnection: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		JobCount int    `json:"job_count"`
	}{
		Success:  true,
		Message:  "Connection successful",
		JobCount: count,
	})

	return nil
}

func (s DashboardServer) getCompanyJobs(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	company := strings.TrimSpace(r.URL.Query().Get("company"))
	if company == "" {
		return domain.NewError(errcodes.ValidationError, "Company name is required")
	}

	jobs, err := s.catalog.CompanyJobs(ctx, company)
	if err != nil {
		return fmt.Errorf("catalog.CompanyJobs: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Jobs    []entity.Job `json:"jobs"`
		Company string       `json:"company"`
	}{
		Success: true,
		Jobs:    jobs,
		Company: company,
	})

	return nil
}

// postAPIAnalyticsChat is the analytics chat on the API management page.
// Its envelope keeps the answer and the errors under the message key, the
// page renders both the same way.
func (s DashboardServer) postAPIAnalyticsChat(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ChatRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	answer, err := s.chat.AnalyticsChat(ctx, request.Message)
	if err != nil {
		return fmt.Errorf("chat.AnalyticsChat: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{
		Success: true,
		Message: answer,
	})

	return nil
}

// postAnalyticsChat is the chat on the analytics page itself. The message
// is length-capped and failures answer with an apology the page can show
// verbatim.
func (s DashboardServer) postAnalyticsChat(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ChatRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	message := strings.TrimSpace(request.Message)
	if message == "" || len(message) > analyticsMessageLimit {
		return domain.NewError(errcodes.InvalidChatMessage,
			"Message is required and must be less than 1000 characters")
	}

	answer, err := s.chat.AnalyticsChat(ctx, message)
	if err != nil {
		logger(ctx).Error("analytics chat failed", logx.Error(err))

		reply.JSON(ctx, w, http.StatusInternalServerError, struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}{
			Error:   "Sorry, I encountered an error. Please try again.",
			Message: "I apologize, but I'm having trouble processing your request right now. Please try again in a moment.",
		})

		return nil
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}{
		Success: true,
		Message: answer,
	})

	return nil
}

func (s DashboardServer) postContactDetails(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ContactDetailsRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	name := strings.TrimSpace(request.Name())
	if name == "" {
		return domain.NewError(errcodes.ValidationError, "Company name is required")
	}

	contacts, err := s.catalog.ContactDetails(ctx, name)
	if err != nil {
		return fmt.Errorf("catalog.ContactDetails: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success        bool                `json:"success"`
		ContactDetails jsoniter.RawMessage `json:"contact_details"`
	}{
		Success:        true,
		ContactDetails: contacts,
	})

	return nil
}

// companiesPage is the server-rendered part of the companies explorer; the
// page script picks Companies up as its initial dataset.
type companiesPage struct {
	Companies     []entity.ScoredCompany
	FilterOptions warehouse.FilterOptions
	Limit         int
	Filters       companyFilterState
}

// companyFilterState echoes the query back into the filter form.
type companyFilterState struct {
	Keyword   string
	Country   string
	TechStack string
	MinJobs   string
	SortBy    string
	Relevant  string
	Status    string
	Limit     string
}

func (s DashboardServer) getCompaniesPage(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	query := r.URL.Query()

	filters := companyFiltersFromQuery(query)
	if filters.Relevant == "" {
		filters.Relevant = "to_review"
	}

	limit := req.QueryInt(r, "limit", s.cfg.ResultsLimit)
	if limit > s.cfg.MaxResultsLimit {
		limit = s.cfg.MaxResultsLimit
	}

	data := pageData(r, "Companies", nil)

	page := companiesPage{
		Limit: limit,
		Filters: companyFilterState{
			Keyword:   filters.Keyword,
			Country:   filters.Country,
			TechStack: filters.TechStack,
			MinJobs:   defaultString(strings.TrimSpace(query.Get("min_jobs")), "1"),
			SortBy:    defaultString(filters.SortBy, "company_name"),
			Relevant:  filters.Relevant,
			Status:    filters.Status,
		},
	}
	if query.Has("limit") {
		page.Filters.Limit = fmt.Sprint(limit)
	}

	companies, err := s.catalog.Companies(ctx, filters, limit)
	if err != nil {
		logger(ctx).Error("companies page load failed", logx.Error(err))

		data.Error = "Unable to fetch companies: " + err.Error()
		data.Data = page

		return s.pages.Render(w, "companies", data)
	}

	options, err := s.catalog.CompanyFilterOptions(ctx)
	if err != nil {
		logger(ctx).Warn("filter options unavailable", logx.Error(err))
	}

	page.Companies = companies
	page.FilterOptions = options
	data.Data = page

	return s.pages.Render(w, "companies", data)
}

func (s DashboardServer) getCompany(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		return domain.NewError(errcodes.ValidationError, "Company name is required")
	}

	details, err := s.catalog.Company(ctx, name)
	if err != nil {
		return fmt.Errorf("catalog.Company: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool                     `json:"success"`
		Company warehouse.CompanyDetails `json:"company"`
	}{
		Success: true,
		Company: details,
	})

	return nil
}

func (s DashboardServer) postCompanyUpdate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.CompanyUpdateRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.CompanyID == "" && request.CompanyName == "" {
		return domain.NewError(errcodes.InvalidCompanyID, "Either company_id or company_name is required")
	}

	if len(request.Updates) == 0 {
		return domain.NewError(errcodes.ValidationError, "No updates provided")
	}

	updates := whitelistCompanyUpdates(request.Updates)
	if len(updates) == 0 {
		return domain.NewError(errcodes.ValidationError, "No valid fields to update")
	}

	rows, err := s.catalog.UpdateCompany(ctx, warehouse.CompanyUpdate{
		CompanyID:   request.CompanyID,
		CompanyName: request.CompanyName,
		Updates:     updates,
	})
	if err != nil {
		return fmt.Errorf("catalog.UpdateCompany: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success      bool   `json:"success"`
		RowsAffected int    `json:"rows_affected"`
		Message      string `json:"message"`
	}{
		Success:      true,
		RowsAffected: rows,
		Message:      fmt.Sprintf("Successfully updated %d row(s)", rows),
	})

	return nil
}

func (s DashboardServer) getJobsPage(w http.ResponseWriter, r *http.Request) error {
	return s.pages.Render(w, "jobs", pageData(r, "Jobs", nil))
}

func (s DashboardServer) getJobList(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit := req.QueryInt(r, "limit", s.cfg.ResultsLimit)
	if limit > s.cfg.MaxResultsLimit {
		limit = s.cfg.MaxResultsLimit
	}

	jobs, err := s.catalog.Jobs(ctx, jobFiltersFromQuery(r.URL.Query()), limit)
	if err != nil {
		return fmt.Errorf("catalog.Jobs: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool         `json:"success"`
		Jobs    []entity.Job `json:"jobs"`
	}{
		Success: true,
		Jobs:    jobs,
	})

	return nil
}

func (s DashboardServer) getJobFilterOptions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	options, err := s.catalog.JobFilterOptions(ctx)
	if err != nil {
		return fmt.Errorf("catalog.JobFilterOptions: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success         bool     `json:"success"`
		Countries       []string `json:"countries"`
		TechStacks      []string `json:"tech_stacks"`
		Sources         []string `json:"sources"`
		CompanyTypes    []string `json:"company_types"`
		SolutionDomains []string `json:"solution_domains"`
	}{
		Success:         true,
		Countries:       options.Countries,
		TechStacks:      options.TechStacks,
		Sources:         options.Sources,
		CompanyTypes:    options.CompanyTypes,
		SolutionDomains: options.SolutionDomains,
	})

	return nil
}

func (s DashboardServer) getSkillsPage(w http.ResponseWriter, r *http.Request) error {
	return s.pages.Render(w, "skills", pageData(r, "Skills Registry", nil))
}

func (s DashboardServer) getSkillList(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	skills, err := s.catalog.Skills(ctx)
	if err != nil {
		return fmt.Errorf("catalog.Skills: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool           `json:"success"`
		Skills  []entity.Skill `json:"skills"`
	}{
		Success: true,
		Skills:  skills,
	})

	return nil
}

func (s DashboardServer) postSkillSave(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var skill entity.Skill
	if err := req.Read(r, &skill); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if skill.SkillID == "" {
		return domain.NewError(errcodes.ValidationError, "Skill ID is required")
	}

	if err := s.catalog.SaveSkill(ctx, skill); err != nil {
		return fmt.Errorf("catalog.SaveSkill: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Skill saved successfully"})

	return nil
}

func (s DashboardServer) postSkillToggle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.SkillToggleRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.SkillID == "" {
		return domain.NewError(errcodes.ValidationError, "Skill ID is required")
	}

	if err := s.catalog.ToggleSkill(ctx, request.SkillID, request.IsActive); err != nil {
		return fmt.Errorf("catalog.ToggleSkill: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Skill status updated"})

	return nil
}

func (s DashboardServer) postSkillDelete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.SkillDeleteRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.SkillID == "" {
		return domain.NewError(errcodes.ValidationError, "Skill ID is required")
	}

	if err := s.catalog.DeleteSkill(ctx, request.SkillID); err != nil {
		return fmt.Errorf("catalog.DeleteSkill: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Skill deleted successfully"})

	return nil
}
