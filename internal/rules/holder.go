package rules

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Holder owns the live RuleSet and swaps it atomically on reload.
// Readers take a snapshot with Current and keep using it for the whole request.
type Holder struct {
	path    string
	current atomic.Pointer[RuleSet]
	mu      sync.Mutex // serializes reloads
	logger  *slog.Logger
}

// NewHolder loads the rule file at path. A load failure is returned as
// *LoadError and no Holder is created.
func NewHolder(path string, logger *slog.Logger) (*Holder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Holder{path: path, logger: logger}
	if _, err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// NewStaticHolder wraps an already built RuleSet. Reload is a no-op error.
func NewStaticHolder(rs *RuleSet) *Holder {
	h := &Holder{logger: slog.Default()}
	h.current.Store(rs)
	return h
}

// Current returns the live RuleSet.
func (h *Holder) Current() *RuleSet {
	return h.current.Load()
}

// Reload re-reads the rule file. On failure the previous RuleSet stays live.
func (h *Holder) Reload() (*RuleSet, error) {
	if h.path == "" {
		return nil, fmt.Errorf("rule holder has no source path")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rs, err := LoadFile(h.path)
	if err != nil {
		h.logger.Error("rule reload failed, keeping previous rule set", "path", h.path, "error", err)
		return nil, err
	}

	if prev := h.current.Load(); prev != nil && prev.Hash() == rs.Hash() {
		h.logger.Debug("rule file unchanged", "path", h.path)
		return prev, nil
	}

	h.current.Store(rs)
	h.logger.Info("rule set applied",
		"path", h.path,
		"intents", rs.Len(),
		"hash", rs.Hash()[:12],
	)
	return rs, nil
}
