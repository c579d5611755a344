// Package analytics runs the five aggregate reports over the materialized
// store. Each report is an independent query; none feeds another, and all
// five are regenerated in full on every run.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/inventory-intel/internal/domain"
	"github.com/andresuchdata/inventory-intel/internal/store"
)

// Fixed classification thresholds for the overstock report.
const (
	overstockAvgSalesCeiling = 2.0
	overstockQuantityFloor   = 100
)

const dateLayout = "2006-01-02"

type Engine struct {
	db *store.DB
}

func NewEngine(db *store.DB) *Engine {
	return &Engine{db: db}
}

// Report runs all five queries sequentially against the store.
func (e *Engine) Report(ctx context.Context, asOf time.Time) (*domain.AnalyticsReport, error) {
	report := &domain.AnalyticsReport{}
	var err error

	if report.ExpiryLoss, err = e.ExpiryLoss(ctx, asOf); err != nil {
		return nil, err
	}
	if report.Overstock, err = e.Overstock(ctx, asOf); err != nil {
		return nil, err
	}
	if report.DeadStock, err = e.DeadStock(ctx); err != nil {
		return nil, err
	}
	if report.RestockPriority, err = e.RestockPriority(ctx); err != nil {
		return nil, err
	}
	if report.CategoryLoss, err = e.CategoryLoss(ctx, asOf); err != nil {
		return nil, err
	}

	return report, nil
}

// ExpiryLoss sums quantity x price per product over inventory already expired
// at asOf. Products without expired rows (or without a product record to
// price them) do not appear.
func (e *Engine) ExpiryLoss(ctx context.Context, asOf time.Time) ([]domain.ExpiryLossRow, error) {
	query := `
		WITH expiry_loss AS (
			SELECT
				i.product_id,
				SUM(i.quantity * p.price) AS expiry_loss_amount
			FROM inventory i
			JOIN products p ON i.product_id = p.product_id
			WHERE i.expiry_date < ?
			GROUP BY i.product_id
		)
		SELECT product_id, expiry_loss_amount
		FROM expiry_loss
		ORDER BY product_id
	`

	var rows []domain.ExpiryLossRow
	if err := e.db.SelectContext(ctx, &rows, query, asOf.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("expiry loss query failed: %w", err)
	}
	return rows, nil
}

// Overstock labels every inventory item against its sales-derived average.
// The join is a left join: items without sales have a NULL average, which
// satisfies neither CASE branch and falls through to NORMAL.
func (e *Engine) Overstock(ctx context.Context, asOf time.Time) ([]domain.OverstockRow, error) {
	query := `
		WITH avg_sales AS (
			SELECT product_id, AVG(quantity_sold) AS avg_daily_sales
			FROM sales
			GROUP BY product_id
		)
		SELECT
			i.product_id,
			i.quantity,
			s.avg_daily_sales,
			CASE
				WHEN s.avg_daily_sales < ? AND i.quantity > ? THEN 'OVERSTOCK_ISSUE'
				WHEN s.avg_daily_sales >= ? AND i.expiry_date < ? THEN 'SLOW_MOVEMENT'
				ELSE 'NORMAL'
			END AS label
		FROM inventory i
		LEFT JOIN avg_sales s ON i.product_id = s.product_id
		ORDER BY i.rowid
	`

	var rows []domain.OverstockRow
	if err := e.db.SelectContext(ctx, &rows, query,
		overstockAvgSalesCeiling, overstockQuantityFloor,
		overstockAvgSalesCeiling, asOf.Format(dateLayout),
	); err != nil {
		return nil, fmt.Errorf("overstock query failed: %w", err)
	}
	return rows, nil
}

// DeadStock is the anti-join: inventory items whose product has no sales
// record at all.
func (e *Engine) DeadStock(ctx context.Context) ([]domain.DeadStockRow, error) {
	query := `
		SELECT
			i.product_id,
			i.quantity
		FROM inventory i
		LEFT JOIN sales s ON i.product_id = s.product_id
		WHERE s.product_id IS NULL
		ORDER BY i.rowid
	`

	var rows []domain.DeadStockRow
	if err := e.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("dead stock query failed: %w", err)
	}
	return rows, nil
}

// RestockPriority ranks products by descending mean quantity sold using dense
// ranking; only products with at least one sales record participate.
func (e *Engine) RestockPriority(ctx context.Context) ([]domain.RestockPriorityRow, error) {
	query := `
		WITH demand_calc AS (
			SELECT product_id, AVG(quantity_sold) AS avg_sales
			FROM sales
			GROUP BY product_id
		)
		SELECT
			i.product_id,
			i.quantity,
			d.avg_sales,
			DENSE_RANK() OVER (ORDER BY d.avg_sales DESC) AS restock_priority
		FROM inventory i
		JOIN demand_calc d ON i.product_id = d.product_id
		ORDER BY restock_priority, i.product_id
	`

	var rows []domain.RestockPriorityRow
	if err := e.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("restock priority query failed: %w", err)
	}
	return rows, nil
}

// CategoryLoss aggregates expiry loss per category, largest loss first.
func (e *Engine) CategoryLoss(ctx context.Context, asOf time.Time) ([]domain.CategoryLossRow, error) {
	query := `
		SELECT
			p.category,
			SUM(i.quantity * p.price) AS total_expiry_loss
		FROM inventory i
		JOIN products p ON i.product_id = p.product_id
		WHERE i.expiry_date < ?
		GROUP BY p.category
		ORDER BY total_expiry_loss DESC
	`

	var rows []domain.CategoryLossRow
	if err := e.db.SelectContext(ctx, &rows, query, asOf.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("category loss query failed: %w", err)
	}
	return rows, nil
}
