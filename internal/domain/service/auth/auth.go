// Package auth implements the single-account login the dashboard ships
// with. Credentials come from the environment, sessions live in Postgres so
// a restart does not log everyone out.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

const sessionKeyBytes = 32

type SessionStore interface {
	Create(ctx context.Context, session entity.Session) error
	Get(ctx context.Context, key string) (entity.Session, error)
	Delete(ctx context.Context, key string) error
}

type ConversationStore interface {
	Clear(ctx context.Context, sessionKey string) error
}

type AuthService struct {
	sessions      SessionStore
	conversations ConversationStore
	cfg           config.Dashboard
	now           func() time.Time
}

func NewAuthService(sessions SessionStore, conversations ConversationStore, cfg config.Dashboard) *AuthService {
	return &AuthService{
		sessions:      sessions,
		conversations: conversations,
		cfg:           cfg,
		now:           time.Now,
	}
}

// WithClock replaces the time source in tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now

	return s
}

// Login checks the configured credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (entity.Session, error) {
	username = strings.TrimSpace(username)

	if username == "" || password == "" {
		return entity.Session{}, domain.NewError(errcodes.ValidationError, "Username and password are required")
	}

	if !s.credentialsMatch(username, password) {
		logger(ctx).Warn("failed login attempt", "username", username)

		return entity.Session{}, domain.NewError(errcodes.CredentialsMismatch, "Invalid credentials.")
	}

	key, err := sessionKey()
	if err != nil {
		return entity.Session{}, fmt.Errorf("generate session key: %w", err)
	}

	now := s.now().UTC()
	session := entity.Session{
		Key:           key,
		Authenticated: true,
		Username:      username,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.SessionCookieAge),
	}

	if err = s.sessions.Create(ctx, session); err != nil {
		return entity.Session{}, fmt.Errorf("store session: %w", err)
	}

	logger(ctx).Info("user logged in", "username", username)

	return session, nil
}

// Logout destroys the session and everything keyed by it, including the
// Columbus conversation history.
func (s *AuthService) Logout(ctx context.Context, sessionKey string) error {
	if sessionKey == "" {
		return nil
	}

	username := "unknown"
	if session, err := s.sessions.Get(ctx, sessionKey); err == nil {
		username = session.Username
	}

	if err := s.conversations.Clear(ctx, sessionKey); err != nil {
		logger(ctx).Warn("failed to clear conversation history on logout", logx.Error(err))
	}

	if err := s.sessions.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	logger(ctx).Info("user logged out", "username", username)

	return nil
}

// Verify resolves the session cookie. Expired sessions are deleted on sight
// so the sweep has less to do.
func (s *AuthService) Verify(ctx context.Context, sessionKey string) (entity.Session, error) {
	if sessionKey == "" {
		return entity.Session{}, domain.NewError(errcodes.SessionExpired, "session cookie missing")
	}

	session, err := s.sessions.Get(ctx, sessionKey)
	if err != nil {
		return entity.Session{}, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(s.now().UTC()) {
		if err = s.sessions.Delete(ctx, sessionKey); err != nil {
			logger(ctx).Warn("failed to delete expired session", logx.Error(err))
		}

		return entity.Session{}, domain.NewError(errcodes.SessionExpired, "session expired")
	}

	if !session.Authenticated {
		return entity.Session{}, domain.NewError(errcodes.SessionExpired, "session not authenticated")
	}

	return session, nil
}

func (s *AuthService) credentialsMatch(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.Password))

	return userOK&passOK == 1
}

func sessionKey() (string, error) {
	raw := make([]byte, sessionKeyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
