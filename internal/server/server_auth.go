package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/csrf"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/web"
)

// getHome bounces the bare host to the companies explorer.
func (s Server) getHome(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, "/dashboard/companies/", http.StatusFound)

	return nil
}

func (s AuthServer) getLoginPage(w http.ResponseWriter, r *http.Request) error {
	// An authenticated user has no business on the login page.
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if _, err = s.auth.Verify(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard/", http.StatusFound)

			return nil
		}
	}

	query := r.URL.Query()

	return s.pages.Render(w, "login", web.PageData{
		Title:     "Login",
		CSRFField: csrf.TemplateField(r),
		Error:     query.Get("error"),
		Message:   query.Get("message"),
		Data:      map[string]string{"Next": query.Get("next")},
	})
}

func (s AuthServer) postLogin(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	session, err := s.auth.Login(ctx, username, password)
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			redirectWithError(w, r, appErr.ErrorMessage())

			return nil
		}

		return fmt.Errorf("auth.Login: %w", err)
	}

	s.setSessionCookie(w, session)
	http.Redirect(w, r, loginTarget(r), http.StatusFound)

	return nil
}

func (s AuthServer) postLogout(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err = s.auth.Logout(ctx, cookie.Value); err != nil {
			logger(ctx).Warn("logout failed", logx.Error(err))
		}
	}

	s.clearSessionCookie(w)

	query := url.Values{}
	query.Set("message", "You have been logged out.")

	http.Redirect(w, r, "/login/?"+query.Encode(), http.StatusFound)

	return nil
}

// redirectWithError lands back on the login form with the failure message,
// keeping the next target if there was one.
func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	query := url.Values{}
	query.Set("error", message)

	if next := r.FormValue("next"); next != "" {
		query.Set("next", next)
	}

	http.Redirect(w, r, "/login/?"+query.Encode(), http.StatusFound)
}

// loginTarget honors the next parameter for local paths only, anything else
// lands on the dashboard.
func loginTarget(r *http.Request) string {
	next := r.FormValue("next")
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}

	return "/dashboard/"
}
