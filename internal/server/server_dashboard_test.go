package server_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/catalog"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

func TestStatsReturnsOverview(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.overview = catalog.StatsOverview{
		Stats: entity.Stats{
			TotalJobs:      128640,
			TotalCompanies: 4211,
			JobsToday:      312,
			TotalCountries: 14,
			TotalSources:   6,
		},
		RecentJobs: []entity.Job{{JobID: "j-1", Title: "Salesforce Consultant", Company: "Acme BV"}},
	}

	rec := env.do(t, http.MethodGet, "/dashboard/stats/", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var body struct {
		Success    bool         `json:"success"`
		Stats      entity.Stats `json:"stats"`
		RecentJobs []entity.Job `json:"recentJobs"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal(128640, body.Stats.TotalJobs)
	rq.Equal(312, body.Stats.JobsToday)
	rq.Len(body.RecentJobs, 1)
	rq.Equal("Salesforce Consultant", body.RecentJobs[0].Title)
}

func TestTestConnectionReportsJobCount(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.jobCount = 128640

	rec := env.do(t, http.MethodGet, "/dashboard/api/test-connection/", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var body struct {
		Success  bool   `json:"success"`
		Message  string `json:"message"`
		JobCount int    `json:"job_count"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal("Connection successful", body.Message)
	rq.Equal(128640, body.JobCount)
}

func TestCompanyJobsRequiresCompanyParam(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/dashboard/api/company-jobs/", nil)
	rq.Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeBody(t, rec, &body)
	rq.False(body.Success)
	rq.Equal("Company name is required", body.Error)
}

func TestCompanyJobsEchoesCompany(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.jobs = []entity.Job{{JobID: "j-9", Company: "Acme BV"}}

	rec := env.do(t, http.MethodGet, "/dashboard/api/company-jobs/?company=Acme+BV", nil)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("Acme BV", env.catalog.gotCompanyName)

	var body struct {
		Success bool         `json:"success"`
		Jobs    []entity.Job `json:"jobs"`
		Company string       `json:"company"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal("Acme BV", body.Company)
	rq.Len(body.Jobs, 1)
}

func TestCompaniesPageThreadsFilters(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	target := "/dashboard/companies/?keyword=crm&country=Netherlands&tech_stack=Salesforce" +
		"&min_jobs=3&sort_by=job_count_desc&relevant=relevant&status=prospect&limit=5000"

	rec := env.do(t, http.MethodGet, target, nil)
	rq.Equal(http.StatusOK, rec.Code)

	rq.Equal(warehouse.CompanyFilters{
		Keyword:   "crm",
		Country:   "Netherlands",
		TechStack: "Salesforce",
		MinJobs:   3,
		SortBy:    "job_count_desc",
		Relevant:  "relevant",
		Status:    "prospect",
	}, env.catalog.gotCompanyFilters)

	// limit is capped at the configured maximum
	rq.Equal(1000, env.catalog.gotCompanyLimit)
}

func TestCompaniesPageDefaultsToReviewQueue(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/dashboard/companies/", nil)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("to_review", env.catalog.gotCompanyFilters.Relevant)
	rq.Equal(500, env.catalog.gotCompanyLimit)
}

func TestCompaniesPageShowsWarehouseError(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.err = errors.New("warehouse timeout")

	rec := env.do(t, http.MethodGet, "/dashboard/companies/", nil)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Contains(rec.Body.String(), "Unable to fetch companies: warehouse timeout")
}

func TestCompanyRequiresName(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/dashboard/companies/api/get/", nil)
	rq.Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	rq.Equal("Company name is required", body.Error)
}

func TestCompanyReturnsDetails(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.details = warehouse.CompanyDetails{
		Company: entity.Company{CompanyName: "Acme BV", JobCount: 12},
		Jobs:    []entity.Job{{JobID: "j-1"}},
	}

	rec := env.do(t, http.MethodGet, "/dashboard/companies/api/get/?name=Acme+BV", nil)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("Acme BV", env.catalog.gotCompanyName)

	var body struct {
		Success bool                     `json:"success"`
		Company warehouse.CompanyDetails `json:"company"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal("Acme BV", body.Company.CompanyName)
	rq.Len(body.Company.Jobs, 1)
}

func TestCompanyUpdateValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		status  int
		error   string
	}{
		{
			name:    "no identifier",
			payload: `{"updates":{"status":"prospect"}}`,
			status:  http.StatusBadRequest,
			error:   "Either company_id or company_name is required",
		},
		{
			name:    "no updates",
			payload: `{"company_name":"Acme BV"}`,
			status:  http.StatusBadRequest,
			error:   "No updates provided",
		},
		{
			name:    "only unknown fields",
			payload: `{"company_name":"Acme BV","updates":{"job_count":"999"}}`,
			status:  http.StatusBadRequest,
			error:   "No valid fields to update",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/dashboard/companies/update/", strings.NewReader(tt.payload))
			rq.Equal(tt.status, rec.Code)

			var body struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
			}
			decodeBody(t, rec, &body)
			rq.False(body.Success)
			rq.Equal(tt.error, body.Error)
		})
	}
}

func TestCompanyUpdateDropsUnknownFields(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.rows = 2

	payload := `{"company_id":"c-42","updates":{"status":"qualified","job_count":"999"}}`

	rec := env.do(t, http.MethodPost, "/dashboard/companies/update/", strings.NewReader(payload))
	rq.Equal(http.StatusOK, rec.Code)

	rq.Equal("c-42", env.catalog.gotUpdate.CompanyID)
	rq.Equal(map[string]string{"status": "qualified"}, env.catalog.gotUpdate.Updates)

	var body struct {
		Success      bool   `json:"success"`
		RowsAffected int    `json:"rows_affected"`
		Message      string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal(2, body.RowsAffected)
	rq.Equal("Successfully updated 2 row(s)", body.Message)
}

func TestJobListThreadsFiltersAndLimit(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.jobs = []entity.Job{{JobID: "j-1"}, {JobID: "j-2"}}

	target := "/dashboard/jobs/api/list/?source=linkedin&country=Belgium&company_type=consultancy" +
		"&solution_domain=crm&tech_stack=SAP&keyword=python&posted_within=7&sort_by=company_name&limit=9999"

	rec := env.do(t, http.MethodGet, target, nil)
	rq.Equal(http.StatusOK, rec.Code)

	rq.Equal(warehouse.JobFilters{
		Source:         "linkedin",
		Country:        "Belgium",
		CompanyType:    "consultancy",
		SolutionDomain: "crm",
		TechStack:      "SAP",
		Keyword:        "python",
		PostedWithin:   "7",
		SortBy:         "company_name",
	}, env.catalog.gotJobFilters)
	rq.Equal(1000, env.catalog.gotJobLimit)

	var body struct {
		Success bool         `json:"success"`
		Jobs    []entity.Job `json:"jobs"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Len(body.Jobs, 2)
}

func TestJobListDefaultsLimit(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/dashboard/jobs/api/list/", nil)
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal(500, env.catalog.gotJobLimit)
}

func TestJobFilterOptions(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.jobOptions = warehouse.JobFilterOptions{
		Countries:       []string{"Netherlands", "Belgium"},
		TechStacks:      []string{"Salesforce"},
		Sources:         []string{"linkedin", "indeed"},
		CompanyTypes:    []string{"end_user"},
		SolutionDomains: []string{"crm"},
	}

	rec := env.do(t, http.MethodGet, "/dashboard/jobs/api/filter-options/", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var body struct {
		Success         bool     `json:"success"`
		Countries       []string `json:"countries"`
		TechStacks      []string `json:"tech_stacks"`
		Sources         []string `json:"sources"`
		CompanyTypes    []string `json:"company_types"`
		SolutionDomains []string `json:"solution_domains"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal([]string{"Netherlands", "Belgium"}, body.Countries)
	rq.Equal([]string{"linkedin", "indeed"}, body.Sources)
}

func TestSkillList(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.skills = []entity.Skill{{SkillID: "salesforce_crm", SkillName: "Salesforce CRM", IsActive: true}}

	rec := env.do(t, http.MethodGet, "/dashboard/skills-registry/list/", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var body struct {
		Success bool           `json:"success"`
		Skills  []entity.Skill `json:"skills"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Len(body.Skills, 1)
	rq.Equal("salesforce_crm", body.Skills[0].SkillID)
}

func TestSkillSaveRequiresID(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/dashboard/skills-registry/save/",
		strings.NewReader(`{"skill_name":"Salesforce CRM"}`))
	rq.Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	rq.Equal("Skill ID is required", body.Error)
}

func TestSkillSaveStoresSkill(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	payload := `{
		"skill_id": "salesforce_crm",
		"skill_name": "Salesforce CRM",
		"skill_keywords": ["salesforce", "sfdc"],
		"category": "crm",
		"vendor": "Salesforce",
		"is_primary": true,
		"is_active": true
	}`

	rec := env.do(t, http.MethodPost, "/dashboard/skills-registry/save/", strings.NewReader(payload))
	rq.Equal(http.StatusOK, rec.Code)

	rq.Equal(entity.Skill{
		SkillID:       "salesforce_crm",
		SkillName:     "Salesforce CRM",
		SkillKeywords: []string{"salesforce", "sfdc"},
		Category:      "crm",
		Vendor:        "Salesforce",
		IsPrimary:     true,
		IsActive:      true,
	}, env.catalog.savedSkill)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal("Skill saved successfully", body.Message)
}

func TestSkillToggle(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/dashboard/skills-registry/toggle-active/",
		strings.NewReader(`{"skill_id":"salesforce_crm","is_active":true}`))
	rq.Equal(http.StatusOK, rec.Code)

	rq.Equal("salesforce_crm", env.catalog.toggledSkill)
	rq.True(env.catalog.toggledActive)

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.Equal("Skill status updated", body.Message)
}

func TestSkillDelete(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/dashboard/skills-registry/delete/",
		strings.NewReader(`{"skill_id":"salesforce_crm"}`))
	rq.Equal(http.StatusOK, rec.Code)

	rq.Equal("salesforce_crm", env.catalog.deletedSkill)

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.Equal("Skill deleted successfully", body.Message)
}

func TestAnalyticsChatRejectsBadMessages(t *testing.T) {
	tests := []struct {
		name    string
		message string
	}{
		{name: "empty", message: ""},
		{name: "whitespace only", message: "   "},
		{name: "over the length cap", message: strings.Repeat("x", 1001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)
			env := newTestEnv(t)

			payload, err := jsoniter.Marshal(map[string]string{"message": tt.message})
			rq.NoError(err)

			rec := env.do(t, http.MethodPost, "/dashboard/analytics/chat/", strings.NewReader(string(payload)))
			rq.Equal(http.StatusBadRequest, rec.Code)

			var body struct {
				Error string `json:"error"`
			}
			decodeBody(t, rec, &body)
			rq.Equal("Message is required and must be less than 1000 characters", body.Error)
		})
	}
}

func TestAnalyticsChatApologizesOnFailure(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.chat.err = errors.New("model unavailable")

	rec := env.do(t, http.MethodPost, "/dashboard/analytics/chat/",
		strings.NewReader(`{"message":"How many jobs mention Salesforce?"}`))
	rq.Equal(http.StatusInternalServerError, rec.Code)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.Equal("Sorry, I encountered an error. Please try again.", body.Error)
	rq.Equal("I apologize, but I'm having trouble processing your request right now. Please try again in a moment.",
		body.Message)
}

func TestAnalyticsChatAnswers(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.chat.analyticsAnswer = "There are 42 companies hiring for Salesforce."

	rec := env.do(t, http.MethodPost, "/dashboard/analytics/chat/",
		strings.NewReader(`{"message":"How many companies hire for Salesforce?"}`))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("How many companies hire for Salesforce?", env.chat.gotMessage)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal("There are 42 companies hiring for Salesforce.", body.Message)
}

func TestAPIAnalyticsChat(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.chat.analyticsAnswer = "128640 jobs in total."

	rec := env.do(t, http.MethodPost, "/dashboard/api/analytics-chat/",
		strings.NewReader(`{"message":"How many jobs are stored?"}`))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("How many jobs are stored?", env.chat.gotMessage)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.Equal("128640 jobs in total.", body.Message)
}

func TestAPIAnalyticsChatRejectsEmptyMessage(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.chat.err = domain.NewError(errcodes.InvalidChatMessage, "Please provide a message")

	rec := env.do(t, http.MethodPost, "/dashboard/api/analytics-chat/",
		strings.NewReader(`{"message":""}`))
	rq.Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	decodeBody(t, rec, &body)
	rq.False(body.Success)
	rq.Equal("InvalidChatMessage", body.Code)
	rq.Equal("Please provide a message", body.Error)
}

func TestContactDetailsRequiresName(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/dashboard/companies/contact-details/", strings.NewReader(`{}`))
	rq.Equal(http.StatusBadRequest, rec.Code)

	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, rec, &body)
	rq.Equal("Company name is required", body.Error)
}

func TestContactDetailsAcceptsLegacyKey(t *testing.T) {
	rq := require.New(t)
	env := newTestEnv(t)
	env.catalog.contacts = jsoniter.RawMessage(`{"emails":["sales@acme.example"]}`)

	rec := env.do(t, http.MethodPost, "/dashboard/companies/contact-details/",
		strings.NewReader(`{"company":"Acme BV"}`))
	rq.Equal(http.StatusOK, rec.Code)
	rq.Equal("Acme BV", env.catalog.gotCompanyName)

	var body struct {
		Success        bool                `json:"success"`
		ContactDetails jsoniter.RawMessage `json:"contact_details"`
	}
	decodeBody(t, rec, &body)
	rq.True(body.Success)
	rq.JSONEq(`{"emails":["sales@acme.example"]}`, string(body.ContactDetails))
}
