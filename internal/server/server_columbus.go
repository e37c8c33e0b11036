package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/reply"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/httpx/req"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/rest"
)

func (s ColumbusServer) getColumbusPage(w http.ResponseWriter, r *http.Request) error {
	model := "GPT-4o"
	if s.cfg.AIProvider == "vertex" {
		model = "Gemini 2.5 Pro"
	}

	return s.pages.Render(w, "columbus", pageData(r, "Columbus AI", map[string]string{
		"AIProvider": s.cfg.AIProvider,
		"AIModel":    model,
	}))
}

func (s ColumbusServer) postColumbusChat(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ChatRequest
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	message := strings.TrimSpace(request.Message)
	if message == "" {
		return domain.NewError(errcodes.InvalidChatMessage, "Message cannot be empty")
	}

	result, err := s.chat.Chat(ctx, conversationKey(r), message)
	if err != nil {
		return fmt.Errorf("chat.Chat: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success       bool                   `json:"success"`
		Response      string                 `json:"response"`
		FunctionCalls []string               `json:"function_calls"`
		Data          []entity.ScoredCompany `json:"data"`
	}{
		Success:       true,
		Response:      result.Response,
		FunctionCalls: result.FunctionCalls,
		Data:          result.Companies,
	})

	return nil
}

func (s ColumbusServer) postColumbusReset(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	if err := s.chat.Reset(ctx, conversationKey(r)); err != nil {
		return fmt.Errorf("chat.Reset: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.Ack{Success: true, Message: "Conversation reset successfully"})

	return nil
}

func (s ColumbusServer) getSuggestions(w http.ResponseWriter, r *http.Request) error {
	reply.JSON(r.Context(), w, http.StatusOK, struct {
		Success     bool     `json:"success"`
		Suggestions []string `json:"suggestions"`
	}{
		Success:     true,
		Suggestions: s.chat.Suggestions(),
	})

	return nil
}

func (s ColumbusServer) getInsights(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	insights, err := s.chat.Insights(ctx)
	if err != nil {
		return fmt.Errorf("chat.Insights: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, struct {
		Success  bool            `json:"success"`
		Insights entity.Insights `json:"insights"`
	}{
		Success:  true,
		Insights: insights,
	})

	return nil
}

// conversationKey scopes chat history to the login session so two operators
// never see each other's thread.
func conversationKey(r *http.Request) string {
	if session, ok := sessionFromContext(r.Context()); ok {
		return session.Key
	}

	return ""
}
