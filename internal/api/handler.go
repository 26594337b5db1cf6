// Package api provides HTTP handlers for the house assistant.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/house-assist/internal/domain"
)

// Messages returned to clients. They mirror what the chat widget displays.
const (
	msgNoData         = "No data provided!"
	msgInvalidBody    = "Invalid request body!"
	msgBodyTooLarge   = "Request body too large!"
	msgAllRequired    = "All fields are required!"
	msgInvalidHouse   = "Invalid house number!"
	msgDatabaseError  = "Database error occurred!"
	msgUnexpected     = "An unexpected error occurred!"
	msgMessageMissing = "Message is required!"
)

var (
	errNoData       = errors.New("empty request body")
	errBodyTooLarge = errors.New("request body too large")
)

// Handler provides common handler utilities.
type Handler struct {
	tenants      domain.TenantSet
	maxBodyBytes int64
	logger       *slog.Logger
	now          func() time.Time
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(tenants domain.TenantSet, maxBodyBytes int64, logger *slog.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		tenants:      tenants,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
		now:          time.Now,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, statusResponse{Status: "error", Message: message})
}

// Success writes a JSON success response.
func Success(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, statusResponse{Status: "success", Message: message})
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// decode reads a size-limited JSON body into v.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errNoData
		case errors.As(err, &maxErr):
			return errBodyTooLarge
		default:
			return fmt.Errorf("decode request body: %w", err)
		}
	}
	return nil
}

// writeDecodeError maps a decode failure to a 400/413 response.
func writeDecodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errNoData):
		Error(w, http.StatusBadRequest, msgNoData)
	case errors.Is(err, errBodyTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
	default:
		Error(w, http.StatusBadRequest, msgInvalidBody)
	}
}

func (h *Handler) timestamp() string {
	return h.now().Format(domain.TimestampLayout)
}

// text is a JSON field that accepts a string, number or boolean and keeps its
// textual form. Form widgets post ratings either way.
type text string

func (t *text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = text(strings.TrimSpace(s))
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*t = ""
	case float64, bool:
		*t = text(strings.TrimSpace(string(data)))
	default:
		return fmt.Errorf("expected a scalar, got %T", v)
	}
	return nil
}
