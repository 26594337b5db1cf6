package history

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/house-assist/internal/domain"
)

type failingStore struct{ err error }

func (f failingStore) AppendHistory(context.Context, domain.TenantID, domain.HistoryRecord) error {
	return f.err
}

func (f failingStore) RecentHistory(context.Context, domain.TenantID, int) ([]domain.HistoryRecord, error) {
	return nil, f.err
}

func TestLogAppendAndRecentAreTenantScoped(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := NewLog(NewMemoryStore(), domain.NewTenantSet("1", "2", "3"))

	if err := log.Append(ctx, "1", domain.HistoryRecord{UserID: "alice", Text: "hello"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := log.Append(ctx, "2", domain.HistoryRecord{UserID: "bob", Text: "salut"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	one, err := log.Recent(ctx, "1", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(one) != 1 || one[0].UserID != "alice" {
		t.Fatalf("unexpected house 1 history: %+v", one)
	}
	three, err := log.Recent(ctx, "3", 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(three) != 0 {
		t.Fatalf("expected empty house 3 history, got %+v", three)
	}
}

func TestLogRejectsUnknownTenant(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	log := NewLog(store, domain.NewTenantSet("1", "2", "3"))

	err := log.Append(context.Background(), "99", domain.HistoryRecord{UserID: "bob", Text: "hi"})
	if !errors.Is(err, domain.ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant, got %v", err)
	}
	if _, err := log.Recent(context.Background(), "99", 1); !errors.Is(err, domain.ErrUnknownTenant) {
		t.Fatalf("expected ErrUnknownTenant from Recent, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("unknown tenant created storage")
	}
}

func TestLogWrapsStoreFailures(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	log := NewLog(failingStore{err: cause}, domain.NewTenantSet("1"))

	err := log.Append(context.Background(), "1", domain.HistoryRecord{UserID: "a", Text: "b"})
	var logErr *LogError
	if !errors.As(err, &logErr) {
		t.Fatalf("expected *LogError, got %T: %v", err, err)
	}
	if logErr.TenantID != "1" || !errors.Is(err, cause) {
		t.Fatalf("unexpected LogError: %+v", logErr)
	}
}

func TestLogConcurrentAppendsSameTenant(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	log := NewLog(NewMemoryStore(), domain.NewTenantSet("1", "2"))

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := domain.HistoryRecord{UserID: "user-" + strconv.Itoa(i), Text: "msg", Timestamp: time.Now().Format(domain.TimestampLayout)}
			if err := log.Append(ctx, "1", rec); err != nil {
				t.Errorf("Append failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	recs, err := log.Recent(ctx, "1", n*2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recs) != n {
		t.Fatalf("expected %d records, got %d", n, len(recs))
	}
	seen := make(map[string]bool, n)
	for _, r := range recs {
		if seen[r.UserID] {
			t.Fatalf("duplicate record for %s", r.UserID)
		}
		seen[r.UserID] = true
	}
}

type blockingStore struct {
	*MemoryStore
	release chan struct{}
}

func (b blockingStore) AppendHistory(ctx context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error {
	if tenant == "1" {
		<-b.release
	}
	return b.MemoryStore.AppendHistory(ctx, tenant, rec)
}

func TestLogDifferentTenantsDoNotBlock(t *testing.T) {
	t.Parallel()

	store := blockingStore{MemoryStore: NewMemoryStore(), release: make(chan struct{})}
	log := NewLog(store, domain.NewTenantSet("1", "2"))
	ctx := context.Background()

	blocked := make(chan error, 1)
	go func() { blocked <- log.Append(ctx, "1", domain.HistoryRecord{UserID: "slow"}) }()

	done := make(chan error, 1)
	go func() { done <- log.Append(ctx, "2", domain.HistoryRecord{UserID: "fast"}) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Append to house 2 failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("append to house 2 waited on house 1")
	}

	close(store.release)
	if err := <-blocked; err != nil {
		t.Fatalf("Append to house 1 failed: %v", err)
	}
}
