// Package history keeps the append-only chat history of each house.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/ashureev/house-assist/internal/domain"
)

// Store persists history records, one independent sequence per house.
// Implementations must make each successful append durable before returning.
type Store interface {
	AppendHistory(ctx context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error
	RecentHistory(ctx context.Context, tenant domain.TenantID, limit int) ([]domain.HistoryRecord, error)
}

// LogError reports that a history record could not be persisted.
type LogError struct {
	TenantID domain.TenantID
	Err      error
}

func (e *LogError) Error() string {
	return fmt.Sprintf("append history for house %s: %v", e.TenantID, e.Err)
}

func (e *LogError) Unwrap() error {
	return e.Err
}

// Log is the tenant-partitioned history log. Appends to the same house are
// serialized; appends to different houses never wait on each other.
type Log struct {
	store   Store
	tenants domain.TenantSet
	locks   map[domain.TenantID]*sync.Mutex
}

// NewLog creates a Log accepting exactly the houses in tenants.
func NewLog(store Store, tenants domain.TenantSet) *Log {
	locks := make(map[domain.TenantID]*sync.Mutex, tenants.Len())
	for _, id := range tenants.IDs() {
		locks[id] = &sync.Mutex{}
	}
	return &Log{store: store, tenants: tenants, locks: locks}
}

// Append writes rec to the history of tenant. An unconfigured house fails
// with domain.ErrUnknownTenant; a storage failure is returned as *LogError.
func (l *Log) Append(ctx context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error {
	mu, ok := l.locks[tenant]
	if !ok {
		return fmt.Errorf("append history for house %q: %w", tenant, domain.ErrUnknownTenant)
	}

	mu.Lock()
	defer mu.Unlock()

	if err := l.store.AppendHistory(ctx, tenant, rec); err != nil {
		return &LogError{TenantID: tenant, Err: err}
	}
	return nil
}

// Recent returns up to limit of the newest records of tenant, oldest first.
func (l *Log) Recent(ctx context.Context, tenant domain.TenantID, limit int) ([]domain.HistoryRecord, error) {
	if !l.tenants.Contains(tenant) {
		return nil, fmt.Errorf("read history for house %q: %w", tenant, domain.ErrUnknownTenant)
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	recs, err := l.store.RecentHistory(ctx, tenant, limit)
	if err != nil {
		return nil, fmt.Errorf("read history for house %s: %w", tenant, err)
	}
	return recs, nil
}

// DefaultRecentLimit is used by Recent when no positive limit is given.
const DefaultRecentLimit = 50

// MemoryStore is an in-process Store. It is used in tests and when no
// durable backend is wanted.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.TenantID][]domain.HistoryRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[domain.TenantID][]domain.HistoryRecord)}
}

// AppendHistory implements Store.
func (s *MemoryStore) AppendHistory(_ context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tenant] = append(s.records[tenant], rec)
	return nil
}

// RecentHistory implements Store.
func (s *MemoryStore) RecentHistory(_ context.Context, tenant domain.TenantID, limit int) ([]domain.HistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[tenant]
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	out := make([]domain.HistoryRecord, len(recs))
	copy(out, recs)
	return out, nil
}

var _ Store = (*MemoryStore)(nil)
