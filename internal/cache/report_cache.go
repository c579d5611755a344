package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/inventory-intel/internal/config"
	"github.com/andresuchdata/inventory-intel/internal/domain"
)

const (
	reportKeyPrefix     = "inventory_intel:report"
	reportScanBatchSize = 100
)

// ReportCache caches the full analytics report of the latest run. The key is
// the run's as-of date, so a fresh run for the same date overwrites the entry
// and InvalidateAll clears everything on materialization.
type ReportCache interface {
	GetReport(ctx context.Context, asOf string) (*domain.AnalyticsReport, bool, error)
	SetReport(ctx context.Context, asOf string, report *domain.AnalyticsReport) error
	InvalidateAll(ctx context.Context) error
}

type redisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReportCache struct{}

func NewReportCache(cfg config.CacheConfig) (ReportCache, error) {
	if !cfg.Enabled {
		return &noopReportCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReportCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReportCache() ReportCache {
	return &noopReportCache{}
}

func (c *redisReportCache) GetReport(ctx context.Context, asOf string) (*domain.AnalyticsReport, bool, error) {
	payload, err := c.client.Get(ctx, reportKey(asOf)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.AnalyticsReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisReportCache) SetReport(ctx context.Context, asOf string, report *domain.AnalyticsReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report cache: %w", err)
	}

	if err := c.client.Set(ctx, reportKey(asOf), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReportCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reportKeyPrefix, reportScanBatchSize)
}

func (n *noopReportCache) GetReport(ctx context.Context, asOf string) (*domain.AnalyticsReport, bool, error) {
	return nil, false, nil
}

func (n *noopReportCache) SetReport(ctx context.Context, asOf string, report *domain.AnalyticsReport) error {
	return nil
}

func (n *noopReportCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func reportKey(asOf string) string {
	return fmt.Sprintf("%s:%s", reportKeyPrefix, asOf)
}
