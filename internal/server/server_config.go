package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraper"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/service/scraperconf"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/value"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/reply"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/req"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/rest"
)

func (s ConfigServer) getConfigurationPage(w http.ResponseWriter, r *http.Request) error {
	return s.pages.Render(w, "configuration", pageData(r, "Configuration", nil))
}

func (s ConfigServer) getConfigList(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	configs, err := s.configs.List(ctx)
	if err != nil {
		return fmt.Errorf("configs.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool                   `json:"success"`
		Configs []entity.ScraperConfig `json:"configs"`
	}{
		Success: true,
		Configs: configs,
	})

	return nil
}

func (s ConfigServer) postConfigSave(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ConfigSaveRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if field, missing := request.MissingField(); missing {
		return domain.NewError(errcodes.ValidationError, "Missing required field: "+field)
	}

	err := s.configs.Save(ctx, scraperConfigFromRequest(request), editorName(r))

	// A locked revision answers with the remaining wait so the page can
	// show a countdown instead of a flat error.
	var locked *scraperconf.LockedError
	if errors.As(err, &locked) {
		reply.JSON(ctx, w, http.StatusLocked, struct {
			Success          bool   `json:"success"`
			Error            string `json:"error"`
			Locked           bool   `json:"locked"`
			MinutesRemaining int    `json:"minutes_remaining"`
			LastUpdated      string `json:"last_updated"`
		}{
			Error:            locked.ErrorMessage(),
			Locked:           true,
			MinutesRemaining: locked.MinutesRemaining,
			LastUpdated:      locked.LastUpdated,
		})

		return nil
	}

	if err != nil {
		return fmt.Errorf("configs.Save: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Configuration saved successfully"})

	return nil
}

func (s ConfigServer) postConfigActivate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ConfigActionRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.Config.UpdatedAt == "" {
		return domain.NewError(errcodes.ValidationError, "Configuration data with timestamp is required")
	}

	if err := s.configs.Activate(ctx, request.Config.UpdatedAt, editorName(r)); err != nil {
		return fmt.Errorf("configs.Activate: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Configuration activated successfully"})

	return nil
}

func (s ConfigServer) postConfigDeactivate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ConfigActionRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.Config.UpdatedAt == "" {
		return domain.NewError(errcodes.ValidationError, "Configuration data with timestamp is required")
	}

	if err := s.configs.Deactivate(ctx, request.Config.UpdatedAt, editorName(r)); err != nil {
		return fmt.Errorf("configs.Deactivate: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Configuration deactivated successfully"})

	return nil
}

func (s ConfigServer) postConfigDelete(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ConfigActionRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if request.Config.UpdatedAt == "" {
		return domain.NewError(errcodes.ValidationError, "Configuration timestamp is required")
	}

	if err := s.configs.Delete(ctx, request.Config.UpdatedAt); err != nil {
		return fmt.Errorf("configs.Delete: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Configuration deleted successfully"})

	return nil
}

func (s ConfigServer) postRunJob(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	jobType, err := value.ParseJobType(strings.TrimSpace(r.PostFormValue("job_type")))
	if err != nil {
		return domain.WrapError(err, errcodes.InvalidJobType, "job_type must be daily or exhaustive")
	}

	execution, err := s.scraper.Trigger(ctx, jobType, editorName(r))
	if err != nil {
		return fmt.Errorf("scraper.Trigger: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool      `json:"success"`
		Message string    `json:"message"`
		Result  runResult `json:"result"`
	}{
		Success: true,
		Message: "Job triggered successfully: " + execution.Execution,
		Result: runResult{
			Success:   true,
			Job:       execution.Job,
			Execution: execution.Execution,
			Status:    "triggered",
		},
	})

	return nil
}

// runResult mirrors the Cloud Run trigger summary the configuration page
// renders under the flash message.
type runResult struct {
	Success   bool   `json:"success"`
	Job       string `json:"job"`
	Execution string `json:"execution"`
	Status    string `json:"status"`
}

func (s ConfigServer) getJobStatus(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	status, err := s.scraper.Status(ctx)
	if err != nil {
		return fmt.Errorf("scraper.Status: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success bool `json:"success"`
		scraper.Status
	}{
		Success: true,
		Status:  status,
	})

	return nil
}

// editorName attributes configuration changes and job triggers. Requests
// carry a session past the auth middleware, the fallback covers rows from
// the pre-auth era.
func editorName(r *http.Request) string {
	if session, ok := sessionFromContext(r.Context()); ok && session.Username != "" {
		return session.Username
	}

	return "admin"
}
