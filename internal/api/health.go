package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/house-assist/internal/rules"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RuleSource supplies the live rule set.
type RuleSource interface {
	Current() *rules.RuleSet
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks  map[string]Pinger
	rules   RuleSource
	timeout time.Duration
}

// NewHealthHandler creates a health handler. checks maps a dependency name,
// such as "database", to the Pinger that probes it.
func NewHealthHandler(checks map[string]Pinger, rules RuleSource) *HealthHandler {
	return &HealthHandler{checks: checks, rules: rules, timeout: 5 * time.Second}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Intents int               `json:"intents"`
	RuleSet string            `json:"rule_set,omitempty"`
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{
		Status: "healthy",
		Checks: map[string]string{"api": "ok"},
	}
	statusCode := http.StatusOK

	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			slog.Error("Health check failed", "dependency", name, "error", err)
			resp.Checks[name] = "unreachable"
			resp.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	if rs := h.rules.Current(); rs != nil {
		resp.Checks["rules"] = "ok"
		resp.Intents = rs.Len()
		if hash := rs.Hash(); len(hash) >= 12 {
			resp.RuleSet = hash[:12]
		}
	} else {
		resp.Checks["rules"] = "missing"
		resp.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	JSON(w, statusCode, resp)
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}
