package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteAll(t *testing.T) {
	dir := t.TempDir()
	asOf := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	result := &domain.RunResult{
		AsOf: asOf,
		Inventory: []domain.InventoryItem{{
			ProductID:           "P1",
			Quantity:            5,
			ManufactureDate:     asOf.AddDate(0, 0, -30),
			ExpiryDate:          asOf.AddDate(0, 0, -1),
			DaysLeft:            -1,
			Status:              domain.StatusExpired,
			DiscountPct:         90,
			AvgDailySales:       2.5,
			Predicted7DayDemand: 17.5,
			RestockFlag:         true,
			RestockQty:          12.5,
		}},
		Alerts: []domain.Alert{
			{ProductID: "P1", AlertType: domain.AlertExpiry, Message: "Product P1 needs urgent action."},
		},
	}
	report := &domain.AnalyticsReport{
		ExpiryLoss: []domain.ExpiryLossRow{
			{ProductID: "P1", LossAmount: decimal.NewFromInt(50)},
		},
		DeadStock: []domain.DeadStockRow{
			{ProductID: "P1", Quantity: 5},
		},
		CategoryLoss: []domain.CategoryLossRow{
			{Category: "Snacks", TotalLoss: decimal.NewFromInt(50)},
		},
	}

	if err := NewWriter(dir).WriteAll(result, report); err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}

	for _, name := range []string{
		"annotated_inventory.csv", "alerts.csv", "expiry_loss.csv",
		"overstock.csv", "dead_stock.csv", "restock_priority.csv", "category_loss.csv",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing export %s: %v", name, err)
		}
	}

	inventory := readCSV(t, filepath.Join(dir, "annotated_inventory.csv"))
	if len(inventory) != 2 {
		t.Fatalf("inventory export has %d rows, want header + 1", len(inventory))
	}
	row := inventory[1]
	if row[0] != "P1" || row[5] != "EXPIRED" || row[6] != "90" || row[10] != "12.5" {
		t.Errorf("inventory row = %v", row)
	}

	alerts := readCSV(t, filepath.Join(dir, "alerts.csv"))
	if len(alerts) != 2 || alerts[1][1] != "EXPIRY_ALERT" {
		t.Errorf("alerts export = %v", alerts)
	}

	loss := readCSV(t, filepath.Join(dir, "expiry_loss.csv"))
	if len(loss) != 2 || loss[1][0] != "P1" || loss[1][1] != "50" {
		t.Errorf("expiry loss export = %v", loss)
	}
}
