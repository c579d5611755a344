// Package export writes a run's outputs as CSV files under the output
// directory: the annotated inventory, the alerts table and the five reports.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

const dateLayout = "2006-01-02"

type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteAll exports every output table of the run.
func (w *Writer) WriteAll(result *domain.RunResult, report *domain.AnalyticsReport) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir %s: %w", w.dir, err)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"annotated_inventory.csv", func() error { return w.writeInventory(result.Inventory) }},
		{"alerts.csv", func() error { return w.writeAlerts(result.Alerts) }},
		{"expiry_loss.csv", func() error { return w.writeExpiryLoss(report.ExpiryLoss) }},
		{"overstock.csv", func() error { return w.writeOverstock(report.Overstock) }},
		{"dead_stock.csv", func() error { return w.writeDeadStock(report.DeadStock) }},
		{"restock_priority.csv", func() error { return w.writeRestockPriority(report.RestockPriority) }},
		{"category_loss.csv", func() error { return w.writeCategoryLoss(report.CategoryLoss) }},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	log.Info().Str("dir", w.dir).Msg("run outputs exported")
	return nil
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}

func (w *Writer) writeInventory(items []domain.InventoryItem) error {
	header := []string{
		"product_id", "quantity", "manufacture_date", "expiry_date",
		"days_left", "status", "discount_pct", "avg_daily_sales",
		"predicted_7day_demand", "restock_flag", "restock_qty",
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.ProductID,
			strconv.Itoa(item.Quantity),
			item.ManufactureDate.Format(dateLayout),
			item.ExpiryDate.Format(dateLayout),
			strconv.Itoa(item.DaysLeft),
			string(item.Status),
			strconv.Itoa(item.DiscountPct),
			formatFloat(item.AvgDailySales),
			formatFloat(item.Predicted7DayDemand),
			strconv.FormatBool(item.RestockFlag),
			formatFloat(item.RestockQty),
		})
	}
	return w.writeCSV("annotated_inventory.csv", header, rows)
}

func (w *Writer) writeAlerts(alerts []domain.Alert) error {
	header := []string{"product_id", "alert_type", "message"}
	rows := make([][]string, 0, len(alerts))
	for _, a := range alerts {
		rows = append(rows, []string{a.ProductID, string(a.AlertType), a.Message})
	}
	return w.writeCSV("alerts.csv", header, rows)
}

func (w *Writer) writeExpiryLoss(loss []domain.ExpiryLossRow) error {
	header := []string{"product_id", "expiry_loss_amount"}
	rows := make([][]string, 0, len(loss))
	for _, r := range loss {
		rows = append(rows, []string{r.ProductID, r.LossAmount.String()})
	}
	return w.writeCSV("expiry_loss.csv", header, rows)
}

func (w *Writer) writeOverstock(overstock []domain.OverstockRow) error {
	header := []string{"product_id", "quantity", "avg_daily_sales", "label"}
	rows := make([][]string, 0, len(overstock))
	for _, r := range overstock {
		avg := ""
		if r.AvgDailySales != nil {
			avg = formatFloat(*r.AvgDailySales)
		}
		rows = append(rows, []string{r.ProductID, strconv.Itoa(r.Quantity), avg, string(r.Label)})
	}
	return w.writeCSV("overstock.csv", header, rows)
}

func (w *Writer) writeDeadStock(dead []domain.DeadStockRow) error {
	header := []string{"product_id", "quantity"}
	rows := make([][]string, 0, len(dead))
	for _, r := range dead {
		rows = append(rows, []string{r.ProductID, strconv.Itoa(r.Quantity)})
	}
	return w.writeCSV("dead_stock.csv", header, rows)
}

func (w *Writer) writeRestockPriority(priority []domain.RestockPriorityRow) error {
	header := []string{"product_id", "quantity", "avg_sales", "restock_priority"}
	rows := make([][]string, 0, len(priority))
	for _, r := range priority {
		rows = append(rows, []string{
			r.ProductID, strconv.Itoa(r.Quantity), formatFloat(r.AvgSales), strconv.Itoa(r.Priority),
		})
	}
	return w.writeCSV("restock_priority.csv", header, rows)
}

func (w *Writer) writeCategoryLoss(loss []domain.CategoryLossRow) error {
	header := []string{"category", "total_expiry_loss"}
	rows := make([][]string, 0, len(loss))
	for _, r := range loss {
		rows = append(rows, []string{r.Category, r.TotalLoss.String()})
	}
	return w.writeCSV("category_loss.csv", header, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
