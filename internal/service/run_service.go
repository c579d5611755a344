package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-intel/internal/analytics"
	"github.com/andresuchdata/inventory-intel/internal/cache"
	"github.com/andresuchdata/inventory-intel/internal/domain"
	"github.com/andresuchdata/inventory-intel/internal/ingest"
	"github.com/andresuchdata/inventory-intel/internal/pipeline"
	"github.com/andresuchdata/inventory-intel/internal/store"
)

// RunService executes one complete run: load the snapshot, run the pipeline
// stages, materialize the annotated tables into the store and regenerate the
// five reports. A run either fully succeeds over a consistent snapshot or
// fully fails before anything is materialized.
type RunService struct {
	loader *ingest.Loader
	db     *store.DB
	engine *analytics.Engine
	cache  cache.ReportCache
}

func NewRunService(loader *ingest.Loader, db *store.DB, cacheImpl cache.ReportCache) *RunService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReportCache()
	}
	return &RunService{
		loader: loader,
		db:     db,
		engine: analytics.NewEngine(db),
		cache:  cacheImpl,
	}
}

// Execute runs the whole batch for asOf and returns the annotated inventory,
// the alerts and the five reports.
func (s *RunService) Execute(ctx context.Context, asOf time.Time) (*domain.RunResult, *domain.AnalyticsReport, error) {
	started := time.Now()

	snap, err := s.loader.LoadSnapshot()
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot load failed: %w", err)
	}

	result := pipeline.Run(snap, asOf)

	if err := s.db.ReplaceRun(ctx, snap, result); err != nil {
		return nil, nil, fmt.Errorf("failed to materialize run: %w", err)
	}

	// Previous runs' cached reports are stale once the store is replaced.
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("run: cache invalidation failed")
	}

	report, err := s.engine.Report(ctx, asOf)
	if err != nil {
		return nil, nil, fmt.Errorf("analytics failed: %w", err)
	}

	log.Info().
		Time("as_of", asOf).
		Dur("elapsed", time.Since(started)).
		Int("alerts", len(result.Alerts)).
		Int("expiry_loss_rows", len(report.ExpiryLoss)).
		Int("dead_stock_rows", len(report.DeadStock)).
		Msg("run completed")

	return &result, report, nil
}
