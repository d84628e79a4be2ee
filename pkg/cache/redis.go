// Package cache connects to the Redis instance that holds the approved
// booking and leave logs.
package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/college-approvals-api/pkg/config"
)

const (
	clientName  = "college-approvals-reports"
	pingTimeout = 3 * time.Second
	// Report reads fall back to Postgres on error, so a slow Redis must fail
	// fast instead of holding the request.
	opTimeout = 500 * time.Millisecond
)

// OpenReportCache dials Redis and checks it answers. main treats an error as
// "run reports uncached" rather than a fatal start-up failure.
func OpenReportCache(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(reportCacheOptions(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("report cache at %s: %w", client.Options().Addr, err)
	}
	return client, nil
}

func reportCacheOptions(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ClientName:   clientName,
		DialTimeout:  pingTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	}
}
