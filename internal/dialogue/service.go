// Package dialogue routes one resident message through language
// identification, intent matching and history logging.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/langid"
	"github.com/ashureev/house-assist/internal/matcher"
	"github.com/ashureev/house-assist/internal/rules"
)

// RuleSource supplies the rule set in effect for a request.
type RuleSource interface {
	Current() *rules.RuleSet
}

// HistoryAppender records processed messages. *history.Log implements it.
type HistoryAppender interface {
	Append(ctx context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error
}

// Config holds optional Service settings.
type Config struct {
	// AppendTimeout bounds the history write. It runs detached from the
	// caller's cancellation so an abandoned request still finishes its write.
	AppendTimeout time.Duration
	Logger        *slog.Logger
	Now           func() time.Time
}

// Service is the entry point external callers use to process a message.
type Service struct {
	tenants       domain.TenantSet
	rules         RuleSource
	identifier    langid.Identifier
	history       HistoryAppender
	appendTimeout time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// NewService wires a Service.
func NewService(tenants domain.TenantSet, rules RuleSource, identifier langid.Identifier, history HistoryAppender, cfg Config) *Service {
	if cfg.AppendTimeout <= 0 {
		cfg.AppendTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		tenants:       tenants,
		rules:         rules,
		identifier:    identifier,
		history:       history,
		appendTimeout: cfg.AppendTimeout,
		logger:        cfg.Logger,
		now:           cfg.Now,
	}
}

// Handle answers text sent by userID in house tenant and logs it to the
// house history.
//
// A house outside the configured set fails with domain.ErrInvalidTenant and
// nothing is logged. When the history write fails the computed result is
// still returned alongside the error, but the call is not a success.
func (s *Service) Handle(ctx context.Context, tenant domain.TenantID, userID, text string) (domain.MatchResult, error) {
	if !s.tenants.Contains(tenant) {
		return domain.MatchResult{}, fmt.Errorf("house %q: %w", tenant, domain.ErrInvalidTenant)
	}

	msg := domain.IncomingMessage{
		TenantID:   tenant,
		UserID:     userID,
		Text:       text,
		ReceivedAt: s.now(),
	}

	lang := s.identifier.Identify(msg.Text)
	result := matcher.Match(s.rules.Current(), msg.Text, lang)

	s.logger.Debug("message matched",
		"house", tenant,
		"user", userID,
		"language", lang,
		"fallback", result.Response == domain.FallbackResponse,
	)

	appendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.appendTimeout)
	defer cancel()

	if err := s.history.Append(appendCtx, tenant, domain.NewHistoryRecord(msg)); err != nil {
		s.logger.Error("failed to log chat history",
			"house", tenant,
			"user", userID,
			"language", lang,
			"error", err,
		)
		return result, err
	}

	return result, nil
}
