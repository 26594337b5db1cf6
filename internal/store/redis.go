package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ashureev/house-assist/internal/domain"
	"github.com/ashureev/house-assist/internal/history"
)

// RedisHistory keeps each house's history in its own Redis list.
type RedisHistory struct {
	client  *redis.Client
	tenants domain.TenantSet
	prefix  string
}

var _ history.Store = (*RedisHistory)(nil)

// RedisOptions configures NewRedisHistory.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisHistory connects to Redis and verifies the connection.
func NewRedisHistory(ctx context.Context, opts RedisOptions, tenants domain.TenantSet) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	return newRedisHistory(client, opts.Prefix, tenants), nil
}

func newRedisHistory(client *redis.Client, prefix string, tenants domain.TenantSet) *RedisHistory {
	if prefix == "" {
		prefix = "history:"
	}
	return &RedisHistory{client: client, tenants: tenants, prefix: prefix}
}

func (r *RedisHistory) key(tenant domain.TenantID) string {
	return r.prefix + string(tenant)
}

// AppendHistory pushes rec onto the house's list.
func (r *RedisHistory) AppendHistory(ctx context.Context, tenant domain.TenantID, rec domain.HistoryRecord) error {
	if !r.tenants.Contains(tenant) {
		return fmt.Errorf("house %q: %w", tenant, domain.ErrUnknownTenant)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}
	if err := r.client.RPush(ctx, r.key(tenant), data).Err(); err != nil {
		return fmt.Errorf("redis RPUSH: %w", err)
	}
	return nil
}

// RecentHistory returns up to limit of the newest records, oldest first.
func (r *RedisHistory) RecentHistory(ctx context.Context, tenant domain.TenantID, limit int) ([]domain.HistoryRecord, error) {
	if !r.tenants.Contains(tenant) {
		return nil, fmt.Errorf("house %q: %w", tenant, domain.ErrUnknownTenant)
	}
	raw, err := r.client.LRange(ctx, r.key(tenant), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE: %w", err)
	}
	recs := make([]domain.HistoryRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.HistoryRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode history record: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Ping verifies the Redis connection.
func (r *RedisHistory) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (r *RedisHistory) Close() error {
	return r.client.Close()
}
