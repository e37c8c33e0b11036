// Package chat orchestrates the Columbus AI conversations. The dashboard
// keeps the conversation state itself: history lives in Postgres keyed by
// session, the companies from the last answer sit in the cache so follow-up
// questions can reuse them without another warehouse round trip.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/config"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/columbus"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/infrastructure/warehouse"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/metrics"
)

const (
	// chatContextLimit caps the fresh company slice sent upstream with a
	// new search. The AI only needs a working set, not the whole table.
	chatContextLimit = 100

	// historyWindow is how many trailing turns ride along upstream,
	// historyKeep how many are retained in storage.
	historyWindow = 6
	historyKeep   = 20

	lastResultsPrefix = "columbus:last:"
)

type AIClient interface {
	Chat(ctx context.Context, payload columbus.ChatPayload) (entity.ChatResult, error)
	AnalyticsChat(ctx context.Context, message string, stats columbus.AnalyticsContext) (string, error)
}

type WarehouseClient interface {
	Companies(ctx context.Context, filters warehouse.CompanyFilters, limit int) ([]entity.Company, error)
	Stats(ctx context.Context) (entity.Stats, error)
}

type ScoringClient interface {
	ScoreBatch(ctx context.Context, companies []entity.Company) ([]entity.ScoredCompany, error)
}

type ConversationStore interface {
	Append(ctx context.Context, sessionKey string, keep int, turns ...entity.ChatTurn) error
	History(ctx context.Context, sessionKey string, limit int) ([]entity.ChatTurn, error)
	Clear(ctx context.Context, sessionKey string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type ChatService struct {
	ai            AIClient
	warehouse     WarehouseClient
	scoring       ScoringClient
	conversations ConversationStore
	cache         Cache
	cfg           config.Dashboard
	now           func() time.Time
}

func NewChatService(
	ai AIClient,
	warehouseClient WarehouseClient,
	scoring ScoringClient,
	conversations ConversationStore,
	cache Cache,
	cfg config.Dashboard,
) *ChatService {
	return &ChatService{
		ai:            ai,
		warehouse:     warehouseClient,
		scoring:       scoring,
		conversations: conversations,
		cache:         cache,
		cfg:           cfg,
		now:           time.Now,
	}
}

// WithClock replaces the time source in tests.
func (s *ChatService) WithClock(now func() time.Time) *ChatService {
	s.now = now

	return s
}

// Chat answers one user message. Upstream failures degrade to an apology
// answer rather than an error: the conversation stays usable and the user
// can rephrase.
func (s *ChatService) Chat(ctx context.Context, sessionKey, message string) (entity.ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return entity.ChatResult{}, domain.NewError(errcodes.InvalidChatMessage, "Message cannot be empty")
	}

	history, err := s.conversations.History(ctx, sessionKey, historyWindow)
	if err != nil {
		logger(ctx).Warn("conversation history unavailable", logx.Error(err))

		history = nil
	}

	result, err := s.ai.Chat(ctx, columbus.ChatPayload{
		Message: message,
		History: history,
		Context: s.chatContext(ctx, sessionKey, message),
	})
	if err != nil {
		logger(ctx).Error("columbus chat failed", logx.Error(err))
		metrics.ChatRequestsTotal.WithLabelValues("degraded").Inc()

		return entity.ChatResult{
			Response:      fmt.Sprintf("I apologize, but I encountered an error: %s. Please try rephrasing your question.", err),
			FunctionCalls: []string{},
		}, nil
	}

	metrics.ChatRequestsTotal.WithLabelValues("ok").Inc()

	if err = s.conversations.Append(ctx, sessionKey, historyKeep,
		entity.ChatTurn{Role: entity.RoleUser, Content: message},
		entity.ChatTurn{Role: entity.RoleAssistant, Content: result.Response},
	); err != nil {
		logger(ctx).Warn("failed to store conversation turn", logx.Error(err))
	}

	if len(result.Companies) > 0 {
		s.storeLastResults(ctx, sessionKey, result.Companies)
	} else if len(result.FunctionCalls) == 0 {
		// The AI answered from context without searching. Re-show the
		// cards from the previous answer so the UI keeps them up.
		if cached := s.lastResults(ctx, sessionKey); len(cached) > 0 {
			result.Companies = cached
		}
	}

	return result, nil
}

// Reset clears the conversation history. The cached company cards survive, a
// reset only starts a new thread.
func (s *ChatService) Reset(ctx context.Context, sessionKey string) error {
	if err := s.conversations.Clear(ctx, sessionKey); err != nil {
		return fmt.Errorf("clear conversation: %w", err)
	}

	logger(ctx).Info("conversation reset")

	return nil
}

// Suggestions are the canned starter queries on the chat page.
func (s *ChatService) Suggestions() []string {
	return []string{
		"Give me top 5 strong fits for prospects from today's pull",
		"I have a person who can do good Looker. Find me jobs where Looker will be a strong fit",
		"We are planning to create a tool for BigQuery. What are the best partners or prospects to reach out to?",
		"Show me new companies discovered this week with GCP stack",
		"Find technology companies in healthcare using Vertex AI",
		"Company details of Xccelerated",
	}
}

// AnalyticsChat answers a question about the job market at large. The
// dataset totals ride along so the answer can quote real numbers; when they
// cannot be fetched the question still goes out without them.
func (s *ChatService) AnalyticsChat(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", domain.NewError(errcodes.InvalidChatMessage, "Please provide a message")
	}

	var analyticsContext columbus.AnalyticsContext

	stats, err := s.warehouse.Stats(ctx)
	if err != nil {
		logger(ctx).Warn("stats unavailable for analytics chat", logx.Error(err))
	} else {
		analyticsContext = columbus.AnalyticsContext{
			TotalJobs:      stats.TotalJobs,
			TotalCompanies: stats.TotalCompanies,
			TotalSources:   stats.TotalSources,
		}
	}

	answer, err := s.ai.AnalyticsChat(ctx, message, analyticsContext)
	if err != nil {
		return "", fmt.Errorf("analytics chat: %w", err)
	}

	return answer, nil
}

// chatContext picks the companies grounding the answer. A follow-up
// question reuses the cards from the previous answer, anything else gets a
// fresh to_review slice from the warehouse.
func (s *ChatService) chatContext(ctx context.Context, sessionKey, message string) entity.ChatContext {
	if isFollowUp(message) {
		if cached := s.lastResults(ctx, sessionKey); len(cached) > 0 {
			logger(ctx).Info("follow-up question detected, reusing cached companies", "count", len(cached))

			return entity.ChatContext{Companies: cached, TotalCompanies: len(cached)}
		}
	}

	companies, err := s.warehouse.Companies(ctx, warehouse.CompanyFilters{Relevant: "to_review"}, chatContextLimit)
	if err != nil {
		logger(ctx).Warn("company context unavailable, answering without it", logx.Error(err))

		return entity.ChatContext{}
	}

	scored, err := s.scoring.ScoreBatch(ctx, companies)
	if err != nil {
		logger(ctx).Warn("scoring unavailable, sending companies unscored", logx.Error(err))

		scored = lo.Map(companies, func(company entity.Company, _ int) entity.ScoredCompany {
			return entity.ScoredCompany{Company: company}
		})
	}

	return entity.ChatContext{Companies: scored, TotalCompanies: len(companies)}
}

func (s *ChatService) lastResults(ctx context.Context, sessionKey string) []entity.ScoredCompany {
	var cached []entity.ScoredCompany

	found, err := s.cache.Get(ctx, lastResultsPrefix+sessionKey, &cached)
	if err != nil {
		logger(ctx).Warn("last results cache read failed", logx.Error(err))

		return nil
	}

	if !found {
		return nil
	}

	return cached
}

func (s *ChatService) storeLastResults(ctx context.Context, sessionKey string, companies []entity.ScoredCompany) {
	if err := s.cache.Set(ctx, lastResultsPrefix+sessionKey, companies, s.cfg.SessionCookieAge); err != nil {
		logger(ctx).Warn("last results cache write failed", logx.Error(err))
	}
}
