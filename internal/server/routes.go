package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/reply"
	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

// RegisterRoutes lays out the route table. Paths keep the trailing slashes
// of the original dashboard, the page scripts call them verbatim.
func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Get("/", handler(s.getHome))
	r.Get("/login/", handler(s.getLoginPage))
	r.Post("/login/authenticate/", handler(s.postLogin))
	r.Post("/logout/", handler(s.postLogout))
	r.Handle("/static/*", web.Static())

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", handler(s.getDashboardPage))
		r.Get("/stats/", handler(s.getStats))
		r.Get("/analytics/", handler(s.getAnalyticsPage))
		r.Post("/analytics/chat/", handler(s.postAnalyticsChat))
		r.Get("/api/", handler(s.getAPIPage))
		r.Get("/api/test-connection/", handler(s.getTestConnection))
		r.Get("/api/company-jobs/", handler(s.getCompanyJobs))
		r.Post("/api/analytics-chat/", handler(s.postAPIAnalyticsChat))

		r.Get("/companies/", handler(s.getCompaniesPage))
		r.Get("/companies/api/get/", handler(s.getCompany))
		r.Post("/companies/update/", handler(s.postCompanyUpdate))
		r.Post("/companies/contact-details/", handler(s.postContactDetails))

		r.Get("/jobs/", handler(s.getJobsPage))
		r.Get("/jobs/api/list/", handler(s.getJobList))
		r.Get("/jobs/api/filter-options/", handler(s.getJobFilterOptions))

		r.Get("/skills-registry/", handler(s.getSkillsPage))
		r.Get("/skills-registry/list/", handler(s.getSkillList))
		r.Post("/skills-registry/save/", handler(s.postSkillSave))
		r.Post("/skills-registry/toggle-active/", handler(s.postSkillToggle))
		r.Post("/skills-registry/delete/", handler(s.postSkillDelete))

		r.Get("/configuration/", handler(s.getConfigurationPage))
		r.Get("/configuration/list/", handler(s.getConfigList))
		r.Post("/configuration/save/", handler(s.postConfigSave))
		r.Post("/configuration/activate/", handler(s.postConfigActivate))
		r.Post("/configuration/deactivate/", handler(s.postConfigDeactivate))
		r.Post("/configuration/delete/", handler(s.postConfigDelete))
		r.Post("/configuration/run-job/", handler(s.postRunJob))
		r.Get("/configuration/status/", handler(s.getJobStatus))

		s.registerColumbus(r)
	})

	// The chat assistant answers on its short path too, older bookmarks
	// point there.
	s.registerColumbus(r)
}

func (s Server) registerColumbus(r chi.Router) {
	r.Route("/columbus", func(r chi.Router) {
		r.Get("/", handler(s.getColumbusPage))
		r.Post("/chat/", handler(s.postColumbusChat))
		r.Post("/reset/", handler(s.postColumbusReset))
		r.Get("/suggestions/", handler(s.getSuggestions))
		r.Get("/insights/", handler(s.getInsights))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
