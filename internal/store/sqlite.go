package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/shared"
)

var tableSafeTenant = regexp.MustCompile(`^[A-Za-z0-9_]{1,32}$`)

// SQLiteStore implements Repository using SQLite. Each house gets its own
// chat history table, created at startup for the configured houses only.
type SQLiteStore struct {
	db      *sql.DB
	tables  map[domain.TenantID]string
	retry   shared.RetryPolicy
	nowFunc func() time.Time
}

var _ Repository = (*SQLiteStore)(nil)

// NewSQLite creates a new SQLite-backed repository for the given houses.
func NewSQLite(dbPath string, tenants domain.TenantSet) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		tables:  make(map[domain.TenantID]string, tenants.Len()),
		retry:   shared.DefaultRetryPolicy,
		nowFunc: time.Now,
	}
	for _, id := range tenants.IDs() {
		if !tableSafeTenant.MatchString(string(id)) {
			_ = db.Close()
			return nil, fmt.Errorf("house %q cannot be used as a table name", id)
		}
		s.tables[id] = "chat_history_" + string(id)
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS logins (
		house_number TEXT NOT NULL,
		username TEXT,
		email TEXT,
		login_time TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS logouts (
		house_number TEXT NOT NULL,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		logout_time TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		house_number TEXT NOT NULL,
		message TEXT NOT NULL,
		rating TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for id, table := range s.tables {
		q := `CREATE TABLE IF NOT EXISTS ` + table + ` (
			username TEXT,
			message TEXT NOT NULL,
			timestamp TEXT NOT NULL
		)`
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("create history table for house %s: %w", id, err)
		}
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendHistory appends one record to the house's history table.
func (s *SQLiteStore) AppendHistory(ctx context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error {
	table, ok := s.tables[tenant]
	if !ok {
		return fmt.Errorf("house %q: %w", tenant, domain.ErrUnknownTenant)
	}

	query := `INSERT INTO ` + table + ` (username, message, timestamp) VALUES (?, ?, ?)`
	err := shared.RetryOnConflict(ctx, s.retry, "append_history", func() error {
		_, err := s.db.ExecContext(ctx, query, rec.UserID, rec.Text, rec.Timestamp)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// RecentHistory returns up to limit of the newest records of a house, oldest first.
func (s *SQLiteStore) RecentHistory(ctx context.Context, tenant domain.TenantID, limit int) ([]domain.HistoryRecord, error) {
	table, ok := s.tables[tenant]
	if !ok {
		return nil, fmt.Errorf("house %q: %w", tenant, domain.ErrUnknownTenant)
	}

	query := `SELECT username, message, timestamp FROM ` + table + ` ORDER BY rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close history rows", "error", closeErr)
		}
	}()

	var recs []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var username sql.NullString
		if err := rows.Scan(&username, &rec.Text, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		rec.UserID = username.String
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// SaveFeedback stores a feedback entry, assigning an ID and timestamp when missing.
func (s *SQLiteStore) SaveFeedback(ctx context.Context, fb *domain.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.Timestamp == "" {
		fb.Timestamp = s.nowFunc().Format(domain.TimestampLayout)
	}

	query := `
	INSERT INTO feedback (id, name, email, house_number, message, rating, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	err := shared.RetryOnConflict(ctx, s.retry, "save_feedback", func() error {
		_, err := s.db.ExecContext(ctx, query,
			fb.ID, fb.Name, fb.Email, string(fb.TenantID), fb.Message, fb.Rating, fb.Timestamp,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// RecordSessionEvent stores a login or logout.
func (s *SQLiteStore) RecordSessionEvent(ctx context.Context, ev *domain.SessionEvent) error {
	var query string
	switch ev.Kind {
	case domain.SessionLogin:
		query = `INSERT INTO logins (house_number, username, email, login_time) VALUES (?, ?, ?, ?)`
	case domain.SessionLogout:
		query = `INSERT INTO logouts (house_number, username, email, logout_time) VALUES (?, ?, ?, ?)`
	default:
		return fmt.Errorf("unknown session event kind %q", ev.Kind)
	}
	if ev.Timestamp == "" {
		ev.Timestamp = s.nowFunc().Format(domain.TimestampLayout)
	}

	err := shared.RetryOnConflict(ctx, s.retry, "record_"+string(ev.Kind), func() error {
		_, err := s.db.ExecContext(ctx, query, string(ev.TenantID), ev.Username, ev.Email, ev.Timestamp)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert %s: %w", ev.Kind, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
