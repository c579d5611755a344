// Package store materializes one run's tables into an embedded SQLite
// database. A re-run replaces the previous contents atomically, so a query
// never sees stale and fresh rows mixed.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	_ "modernc.org/sqlite"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS products (
	product_id TEXT PRIMARY KEY,
	category   TEXT NOT NULL,
	price      REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS inventory (
	product_id            TEXT NOT NULL,
	quantity              INTEGER NOT NULL,
	manufacture_date      TEXT NOT NULL,
	expiry_date           TEXT NOT NULL,
	days_left             INTEGER NOT NULL,
	status                TEXT NOT NULL,
	discount_pct          INTEGER NOT NULL,
	avg_daily_sales       REAL NOT NULL,
	predicted_7day_demand REAL NOT NULL,
	restock_flag          INTEGER NOT NULL,
	restock_qty           REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
	product_id    TEXT NOT NULL,
	sale_date     TEXT NOT NULL,
	quantity_sold REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS alerts (
	product_id TEXT NOT NULL,
	alert_type TEXT NOT NULL,
	message    TEXT NOT NULL
);
`

type DB struct {
	*sqlx.DB
	sem *semaphore.Weighted
}

// Open connects to the SQLite database at path (":memory:" for tests) and
// ensures the schema exists. SQLite allows one writer, so the pool is capped
// at a single connection.
func Open(path string) (*DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize store schema: %w", err)
	}

	return &DB{
		DB:  db,
		sem: semaphore.NewWeighted(1),
	}, nil
}

// WithTx executes a function within a transaction.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	if err := db.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("could not acquire semaphore: %w", err)
	}
	defer db.sem.Release(1)

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("could not rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// ReplaceRun loads one run's tables, dropping whatever the previous run left
// behind. Everything happens inside a single transaction.
func (db *DB) ReplaceRun(ctx context.Context, snap domain.Snapshot, result domain.RunResult) error {
	return db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, table := range []string{"products", "inventory", "sales", "alerts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for _, p := range snap.Products {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO products (product_id, category, price) VALUES (?, ?, ?)",
				p.ProductID, p.Category, p.Price.InexactFloat64(),
			); err != nil {
				return fmt.Errorf("failed to insert product %s: %w", p.ProductID, err)
			}
		}

		for _, item := range result.Inventory {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO inventory (
					product_id, quantity, manufacture_date, expiry_date,
					days_left, status, discount_pct, avg_daily_sales,
					predicted_7day_demand, restock_flag, restock_qty
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				item.ProductID, item.Quantity,
				item.ManufactureDate.Format(dateLayout),
				item.ExpiryDate.Format(dateLayout),
				item.DaysLeft, string(item.Status), item.DiscountPct,
				item.AvgDailySales, item.Predicted7DayDemand,
				boolToInt(item.RestockFlag), item.RestockQty,
			); err != nil {
				return fmt.Errorf("failed to insert inventory row for %s: %w", item.ProductID, err)
			}
		}

		for _, s := range snap.Sales {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO sales (product_id, sale_date, quantity_sold) VALUES (?, ?, ?)",
				s.ProductID, s.SaleDate.Format(dateLayout), s.QuantitySold,
			); err != nil {
				return fmt.Errorf("failed to insert sales row for %s: %w", s.ProductID, err)
			}
		}

		for _, a := range result.Alerts {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO alerts (product_id, alert_type, message) VALUES (?, ?, ?)",
				a.ProductID, string(a.AlertType), a.Message,
			); err != nil {
				return fmt.Errorf("failed to insert alert for %s: %w", a.ProductID, err)
			}
		}

		return nil
	})
}

// inventoryRow mirrors the inventory table; dates travel as TEXT in SQLite.
type inventoryRow struct {
	ProductID           string  `db:"product_id"`
	Quantity            int     `db:"quantity"`
	ManufactureDate     string  `db:"manufacture_date"`
	ExpiryDate          string  `db:"expiry_date"`
	DaysLeft            int     `db:"days_left"`
	Status              string  `db:"status"`
	DiscountPct         int     `db:"discount_pct"`
	AvgDailySales       float64 `db:"avg_daily_sales"`
	Predicted7DayDemand float64 `db:"predicted_7day_demand"`
	RestockFlag         int     `db:"restock_flag"`
	RestockQty          float64 `db:"restock_qty"`
}

// AnnotatedInventory returns the latest run's classified inventory table.
func (db *DB) AnnotatedInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	var rows []inventoryRow
	if err := db.SelectContext(ctx, &rows, `
		SELECT product_id, quantity, manufacture_date, expiry_date,
		       days_left, status, discount_pct, avg_daily_sales,
		       predicted_7day_demand, restock_flag, restock_qty
		FROM inventory`); err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}

	items := make([]domain.InventoryItem, 0, len(rows))
	for _, r := range rows {
		manufacture, err := time.Parse(dateLayout, r.ManufactureDate)
		if err != nil {
			return nil, fmt.Errorf("corrupt manufacture_date for %s: %w", r.ProductID, err)
		}
		expiry, err := time.Parse(dateLayout, r.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("corrupt expiry_date for %s: %w", r.ProductID, err)
		}

		items = append(items, domain.InventoryItem{
			ProductID:           r.ProductID,
			Quantity:            r.Quantity,
			ManufactureDate:     manufacture,
			ExpiryDate:          expiry,
			DaysLeft:            r.DaysLeft,
			Status:              domain.ExpiryStatus(r.Status),
			DiscountPct:         r.DiscountPct,
			AvgDailySales:       r.AvgDailySales,
			Predicted7DayDemand: r.Predicted7DayDemand,
			RestockFlag:         r.RestockFlag != 0,
			RestockQty:          r.RestockQty,
		})
	}
	return items, nil
}

// Alerts returns the latest run's alerts table in emission order.
func (db *DB) Alerts(ctx context.Context) ([]domain.Alert, error) {
	var rows []struct {
		ProductID string `db:"product_id"`
		AlertType string `db:"alert_type"`
		Message   string `db:"message"`
	}
	if err := db.SelectContext(ctx, &rows,
		"SELECT product_id, alert_type, message FROM alerts ORDER BY rowid"); err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	alerts := make([]domain.Alert, 0, len(rows))
	for _, r := range rows {
		alerts = append(alerts, domain.Alert{
			ProductID: r.ProductID,
			AlertType: domain.AlertType(r.AlertType),
			Message:   r.Message,
		})
	}
	return alerts, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
