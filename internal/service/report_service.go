package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-intel/internal/analytics"
	"github.com/andresuchdata/inventory-intel/internal/cache"
	"github.com/andresuchdata/inventory-intel/internal/domain"
	"github.com/andresuchdata/inventory-intel/internal/store"
)

// ReportService serves the latest run's outputs from the materialized store,
// fronting the analytics report with the cache.
type ReportService struct {
	db     *store.DB
	engine *analytics.Engine
	cache  cache.ReportCache
}

func NewReportService(db *store.DB, cacheImpl cache.ReportCache) *ReportService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &ReportService{
		db:     db,
		engine: analytics.NewEngine(db),
		cache:  cacheImpl,
	}
}

func (s *ReportService) GetReport(ctx context.Context, asOf time.Time) (*domain.AnalyticsReport, error) {
	key := asOf.Format("2006-01-02")

	if report, ok, err := s.cache.GetReport(ctx, key); err == nil && ok {
		return report, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("report: cache get failed")
	}

	report, err := s.engine.Report(ctx, asOf)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetReport(ctx, key, report); err != nil {
		log.Warn().Err(err).Msg("report: cache set failed")
	}

	return report, nil
}

func (s *ReportService) GetInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.db.AnnotatedInventory(ctx)
}

func (s *ReportService) GetAlerts(ctx context.Context) ([]domain.Alert, error) {
	return s.db.Alerts(ctx)
}
