package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/contextx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/reply"
)

const sessionCookieName = "sessionid"

// publicPrefixes mirrors the original auth middleware's allowlist. Probe
// and metrics endpoints listen on their own ports and never get here.
//
//nolint:gochecknoglobals
var publicPrefixes = []string{
	"/login",
	"/logout",
	"/static/",
}

type contextKeySession struct{}

func withSession(ctx context.Context, session entity.Session) context.Context {
	return context.WithValue(ctx, contextKeySession{}, session)
}

func sessionFromContext(ctx context.Context) (entity.Session, bool) {
	session, ok := ctx.Value(contextKeySession{}).(entity.Session)

	return session, ok
}

// RequireSession authenticates every request outside the public allowlist.
// Browsers are redirected to the login page, API calls get a 401 envelope.
func RequireSession(auth authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)

				return
			}

			cookie, err := r.Cookie(sessionCookieName)
			if err != nil {
				refuseUnauthenticated(w, r)

				return
			}

			session, err := auth.Verify(r.Context(), cookie.Value)
			if err != nil {
				refuseUnauthenticated(w, r)

				return
			}

			ctx := withSession(r.Context(), session)
			ctx = contextx.WithSessionID(ctx, contextx.SessionID(session.Key))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string) bool {
	return lo.SomeBy(publicPrefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	})
}

func refuseUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if prefersHTML(r) {
		redirectToLogin(w, r)

		return
	}

	reply.Error(r.Context(), w, domain.NewError(errcodes.SessionExpired, "Authentication required"))
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/login/"
	if r.URL.Path != "/" {
		target += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// prefersHTML separates page navigation from fetch calls. Browsers send
// text/html on navigation, the page scripts never do.
func prefersHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func (s AuthServer) setSessionCookie(w http.ResponseWriter, session entity.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.Key,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(session.ExpiresAt.Sub(s.now()).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.cfg.Debug,
	})
}

func (s AuthServer) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.cfg.Debug,
	})
}
