// Package cache keeps recent analysis records in redis. Market data is
// point-in-time, so entries carry a TTL and are never updated in place.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropradar/dropradar/internal/models"
)

var ErrMiss = errors.New("cache miss")

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type AnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(opts Options) *AnalysisCache {
	if opts.TTL <= 0 {
		opts.TTL = 6 * time.Hour
	}
	return &AnalysisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl:    opts.TTL,
		logger: slog.Default().With("component", "analysis_cache"),
	}
}

// Ping verifies connectivity so callers can degrade to cacheless operation
// at startup instead of failing per request.
func (c *AnalysisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *AnalysisCache) Get(ctx context.Context, query string) (*models.AnalysisRecord, error) {
	data, err := c.client.Get(ctx, cacheKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode cached record: %w", err)
	}
	return &record, nil
}

func (c *AnalysisCache) Set(ctx context.Context, query string, record *models.AnalysisRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(query), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	c.logger.Debug("cached analysis", "query", query, "ttl", c.ttl)
	return nil
}

func (c *AnalysisCache) Close() error {
	return c.client.Close()
}

func cacheKey(query string) string {
	return "analysis:" + strings.ToLower(strings.TrimSpace(query))
}
