package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/history"
	"github.com/ashureev/house-assist/internal/rules"
)

// ChatService answers one resident message. *dialogue.Service implements it.
type ChatService interface {
	Handle(ctx context.Context, tenant domain.TenantID, userID, text string) (domain.MatchResult, error)
}

// HistoryReader reads back a house's chat history. *history.Log implements it.
type HistoryReader interface {
	Recent(ctx context.Context, tenant domain.TenantID, limit int) ([]domain.HistoryRecord, error)
}

// RuleReloader exposes the live rule set. *rules.Holder implements it.
type RuleReloader interface {
	Current() *rules.RuleSet
	Reload() (*rules.RuleSet, error)
}

// ChatHandler serves the chatbot endpoint plus history and rule administration.
type ChatHandler struct {
	*Handler
	chat    ChatService
	history HistoryReader
	rules   RuleReloader
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(base *Handler, chat ChatService, history HistoryReader, rules RuleReloader) *ChatHandler {
	return &ChatHandler{Handler: base, chat: chat, history: history, rules: rules}
}

// RegisterRoutes registers chat routes.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Post("/chatbot", h.Chat)
	r.Route("/api", func(r chi.Router) {
		r.Get("/history/{house}", h.History)
		r.Post("/rules/reload", h.ReloadRules)
	})
}

type chatRequest struct {
	House    domain.TenantID `json:"house_number"`
	Username string          `json:"username"`
	Message  string          `json:"message"`
}

// Chat answers a resident message and logs it to the house history.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	status, result, message := h.answer(r.Context(), req, chiMiddleware.GetReqID(r.Context()))
	if status != http.StatusOK {
		Error(w, status, message)
		return
	}
	JSON(w, http.StatusOK, result)
}

// answer runs one chat request and returns the HTTP status it maps to.
func (h *ChatHandler) answer(ctx context.Context, req chatRequest, requestID string) (int, domain.MatchResult, string) {
	if !h.tenants.Contains(req.House) {
		return http.StatusBadRequest, domain.MatchResult{}, msgInvalidHouse
	}
	if strings.TrimSpace(req.Message) == "" {
		return http.StatusBadRequest, domain.MatchResult{}, msgMessageMissing
	}

	result, err := h.chat.Handle(ctx, req.House, req.Username, req.Message)
	if err == nil {
		return http.StatusOK, result, ""
	}

	var logErr *history.LogError
	switch {
	case errors.Is(err, domain.ErrInvalidTenant), errors.Is(err, domain.ErrUnknownTenant):
		return http.StatusBadRequest, domain.MatchResult{}, msgInvalidHouse
	case errors.As(err, &logErr):
		h.logger.Error("chat history not recorded",
			"house", req.House,
			"request_id", requestID,
			"error", err,
		)
		return http.StatusInternalServerError, domain.MatchResult{}, msgDatabaseError
	default:
		h.logger.Error("chat request failed",
			"house", req.House,
			"request_id", requestID,
			"error", err,
		)
		return http.StatusInternalServerError, domain.MatchResult{}, msgUnexpected
	}
}

type historyResponse struct {
	House   domain.TenantID        `json:"house_number"`
	History []domain.HistoryRecord `json:"history"`
}

// History returns the most recent messages of one house, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	house := domain.TenantID(strings.TrimSpace(chi.URLParam(r, "house")))

	limit := history.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	recs, err := h.history.Recent(r.Context(), house, limit)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTenant) {
			Error(w, http.StatusBadRequest, msgInvalidHouse)
			return
		}
		h.logger.Error("failed to read chat history", "house", house, "error", err)
		Error(w, http.StatusInternalServerError, msgDatabaseError)
		return
	}
	if recs == nil {
		recs = []domain.HistoryRecord{}
	}

	JSON(w, http.StatusOK, historyResponse{House: house, History: recs})
}

type reloadResponse struct {
	Status  string `json:"status"`
	Intents int    `json:"intents"`
	Hash    string `json:"hash"`
	Source  string `json:"source"`
}

// ReloadRules re-reads the rule file. A failed reload keeps the previous set.
func (h *ChatHandler) ReloadRules(w http.ResponseWriter, _ *http.Request) {
	rs, err := h.rules.Reload()
	if err != nil {
		Error(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	JSON(w, http.StatusOK, reloadResponse{
		Status:  "success",
		Intents: rs.Len(),
		Hash:    rs.Hash(),
		Source:  rs.Source(),
	})
}
