// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/history"
)

// Repository persists everything the house assistant records: per-house chat
// history plus feedback and login/logout events.
type Repository interface {
	history.Store

	// SaveFeedback stores a resident's feedback entry.
	SaveFeedback(ctx context.Context, fb *domain.Feedback) error

	// RecordSessionEvent stores a login or logout.
	RecordSessionEvent(ctx context.Context, ev *domain.SessionEvent) error

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
