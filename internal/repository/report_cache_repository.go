package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/noah-isme/college-approvals-api/pkg/errors"
)

const reportCachePrefix = "college:reports:"

// ReportCacheRepository stores rendered report rows in Redis. A nil client
// turns every read into a miss and every write into a no-op.
type ReportCacheRepository struct {
	client *redis.Client
}

// NewReportCacheRepository constructs the cache repository.
func NewReportCacheRepository(client *redis.Client) *ReportCacheRepository {
	return &ReportCacheRepository{client: client}
}

// Get decodes the cached rows under key into dest.
func (r *ReportCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	raw, err := r.client.Get(ctx, reportCachePrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode cached report %s: %w", key, err)
	}
	return nil
}

// Set stores value under key for ttl.
func (r *ReportCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", key, err)
	}
	if err := r.client.Set(ctx, reportCachePrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached report whose key starts with kind.
func (r *ReportCacheRepository) Invalidate(ctx context.Context, kind string) error {
	if r.client == nil {
		return nil
	}
	pattern := reportCachePrefix + kind + "*"
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", pattern, err)
	}
	return nil
}
