// Package ingest loads the four input snapshots from CSV files. Loading is
// strict: a missing table or a malformed row fails the whole batch before the
// pipeline runs, so downstream aggregates are never silently wrong.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

const (
	ProductsFile  = "products.csv"
	InventoryFile = "inventory.csv"
	DemandFile    = "demand_history.csv"
	SalesFile     = "sales.csv"
)

// Loader reads snapshot CSVs from a single directory.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// LoadSnapshot reads all four tables. Any missing file or malformed row
// aborts the load with an error naming the offending input.
func (l *Loader) LoadSnapshot() (domain.Snapshot, error) {
	var snap domain.Snapshot
	var err error

	if snap.Products, err = l.LoadProducts(); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Inventory, err = l.LoadInventory(); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Demand, err = l.LoadDemand(); err != nil {
		return domain.Snapshot{}, err
	}
	if snap.Sales, err = l.LoadSales(); err != nil {
		return domain.Snapshot{}, err
	}

	log.Info().
		Int("products", len(snap.Products)).
		Int("inventory", len(snap.Inventory)).
		Int("demand", len(snap.Demand)).
		Int("sales", len(snap.Sales)).
		Str("dir", l.dir).
		Msg("snapshot loaded")

	return snap, nil
}

func (l *Loader) LoadProducts() ([]domain.Product, error) {
	var products []domain.Product
	err := l.readTable(ProductsFile, []string{"product_id", "category", "price"},
		func(row *rowReader) error {
			p := domain.Product{
				ProductID: row.str("product_id"),
				Category:  row.str("category"),
				Price:     row.price("price"),
			}
			if row.err != nil {
				return row.err
			}
			if p.Price.IsNegative() {
				return fmt.Errorf("negative price %s", p.Price)
			}
			products = append(products, p)
			return nil
		})
	return products, err
}

func (l *Loader) LoadInventory() ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := l.readTable(InventoryFile,
		[]string{"product_id", "quantity", "manufacture_date", "expiry_date"},
		func(row *rowReader) error {
			item := domain.InventoryItem{
				ProductID:       row.str("product_id"),
				Quantity:        row.intval("quantity"),
				ManufactureDate: row.date("manufacture_date"),
				ExpiryDate:      row.date("expiry_date"),
			}
			if row.err != nil {
				return row.err
			}
			if item.Quantity < 0 {
				return fmt.Errorf("negative quantity %d", item.Quantity)
			}
			items = append(items, item)
			return nil
		})
	return items, err
}

func (l *Loader) LoadDemand() ([]domain.DemandRecord, error) {
	var records []domain.DemandRecord
	err := l.readTable(DemandFile, []string{"product_id", "date", "daily_sold"},
		func(row *rowReader) error {
			r := domain.DemandRecord{
				ProductID: row.str("product_id"),
				Date:      row.date("date"),
				DailySold: row.floatval("daily_sold"),
			}
			if row.err != nil {
				return row.err
			}
			records = append(records, r)
			return nil
		})
	return records, err
}

func (l *Loader) LoadSales() ([]domain.SalesRecord, error) {
	var records []domain.SalesRecord
	err := l.readTable(SalesFile, []string{"product_id", "sale_date", "quantity_sold"},
		func(row *rowReader) error {
			r := domain.SalesRecord{
				ProductID:    row.str("product_id"),
				SaleDate:     row.date("sale_date"),
				QuantitySold: row.floatval("quantity_sold"),
			}
			if row.err != nil {
				return row.err
			}
			records = append(records, r)
			return nil
		})
	return records, err
}

// readTable opens one CSV, resolves the required columns from the header and
// feeds every record to fn. The first error aborts the read.
func (l *Loader) readTable(name string, columns []string, fn func(*rowReader) error) error {
	path := filepath.Join(l.dir, name)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("input table %s not available: %w", name, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	index := make(map[string]int, len(columns))
	for _, col := range columns {
		idx := -1
		for i, h := range header {
			if normalizeColumnName(h) == normalizeColumnName(col) {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("%s: missing required column %q", name, col)
		}
		index[col] = idx
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: failed to read record: %w", name, err)
		}
		line++

		row := &rowReader{record: record, index: index}
		if err := fn(row); err != nil {
			return fmt.Errorf("%s line %d: %w", name, line, err)
		}
	}

	return nil
}

// rowReader accumulates the first conversion error of a record so callers can
// read all fields and check once.
type rowReader struct {
	record []string
	index  map[string]int
	err    error
}

func (r *rowReader) str(col string) string {
	return strings.TrimSpace(r.record[r.index[col]])
}

func (r *rowReader) intval(col string) int {
	v, err := strconv.Atoi(r.str(col))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: invalid integer %q", col, r.str(col))
	}
	return v
}

func (r *rowReader) floatval(col string) float64 {
	v, err := strconv.ParseFloat(r.str(col), 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: invalid number %q", col, r.str(col))
	}
	return v
}

func (r *rowReader) price(col string) decimal.Decimal {
	v, err := decimal.NewFromString(r.str(col))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("column %s: invalid price %q", col, r.str(col))
	}
	return v
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func (r *rowReader) date(col string) time.Time {
	raw := r.str(col)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	if r.err == nil {
		r.err = fmt.Errorf("column %s: invalid date %q", col, raw)
	}
	return time.Time{}
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "")

func normalizeColumnName(name string) string {
	return columnNameSanitizer.Replace(strings.TrimSpace(strings.ToLower(name)))
}
