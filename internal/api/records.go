package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/house-assist/internal/domain"
)

// RecordStore persists feedback and session events. *store.SQLiteStore
// implements it.
type RecordStore interface {
	SaveFeedback(ctx context.Context, fb *domain.Feedback) error
	RecordSessionEvent(ctx context.Context, ev *domain.SessionEvent) error
}

// RecordsHandler records feedback, logins and logouts.
type RecordsHandler struct {
	*Handler
	store RecordStore
}

// NewRecordsHandler creates a RecordsHandler.
func NewRecordsHandler(base *Handler, store RecordStore) *RecordsHandler {
	return &RecordsHandler{Handler: base, store: store}
}

// RegisterRoutes registers record-keeping routes.
func (h *RecordsHandler) RegisterRoutes(r chi.Router) {
	r.Post("/submit-feedback", h.SubmitFeedback)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
}

type feedbackRequest struct {
	Name    text            `json:"name"`
	Email   text            `json:"email"`
	House   domain.TenantID `json:"house_number"`
	Message text            `json:"message"`
	Rating  text            `json:"rating"`
}

// SubmitFeedback stores a feedback entry. Every field is required.
func (h *RecordsHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if req.Name == "" || req.Email == "" || req.House == "" || req.Message == "" || req.Rating == "" {
		Error(w, http.StatusBadRequest, msgAllRequired)
		return
	}

	fb := &domain.Feedback{
		Name:      string(req.Name),
		Email:     string(req.Email),
		TenantID:  req.House,
		Message:   string(req.Message),
		Rating:    string(req.Rating),
		Timestamp: h.timestamp(),
	}
	if err := h.store.SaveFeedback(r.Context(), fb); err != nil {
		h.logger.Error("failed to save feedback", "house", req.House, "error", err)
		Error(w, http.StatusInternalServerError, msgDatabaseError)
		return
	}

	Success(w, "Feedback submitted successfully!")
}

type sessionRequest struct {
	House    domain.TenantID `json:"house_number"`
	Username text            `json:"username"`
	Email    text            `json:"email"`
}

// Login records a resident signing in. Only the house is validated.
func (h *RecordsHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if !h.tenants.Contains(req.House) {
		Error(w, http.StatusBadRequest, msgInvalidHouse)
		return
	}

	if !h.recordSession(w, r, domain.SessionLogin, req) {
		return
	}
	Success(w, "Login recorded successfully!")
}

// Logout records a resident signing out. Every field is required.
func (h *RecordsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := h.decode(w, r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	if req.House == "" || req.Username == "" || req.Email == "" {
		Error(w, http.StatusBadRequest, msgAllRequired)
		return
	}

	if !h.recordSession(w, r, domain.SessionLogout, req) {
		return
	}
	Success(w, "Logout recorded successfully!")
}

func (h *RecordsHandler) recordSession(w http.ResponseWriter, r *http.Request, kind domain.SessionEventKind, req sessionRequest) bool {
	ev := &domain.SessionEvent{
		Kind:      kind,
		TenantID:  req.House,
		Username:  string(req.Username),
		Email:     string(req.Email),
		Timestamp: h.timestamp(),
	}
	if err := h.store.RecordSessionEvent(r.Context(), ev); err != nil {
		h.logger.Error("failed to record session event", "kind", kind, "house", req.House, "error", err)
		Error(w, http.StatusInternalServerError, msgDatabaseError)
		return false
	}
	return true
}
