// Package pipeline implements the per-item stages of a run: classification,
// demand forecasting, restock decisions and alert generation. Every stage is
// a pure function over explicit input tables; none of them can fail on
// well-formed input, validation happens at load time.
package pipeline

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

// Run executes the four stages over one snapshot and returns the annotated
// inventory plus the alerts. Each run is a complete, stateless recomputation;
// the input snapshot is not modified.
func Run(snap domain.Snapshot, asOf time.Time) domain.RunResult {
	items := Classify(snap.Inventory, asOf)
	items = Forecast(items, snap.Demand)
	items = ApplyRestock(items)
	alerts := GenerateAlerts(items)

	log.Info().
		Time("as_of", asOf).
		Int("items", len(items)).
		Int("alerts", len(alerts)).
		Msg("pipeline run completed")

	return domain.RunResult{
		AsOf:      asOf,
		Inventory: items,
		Alerts:    alerts,
	}
}
