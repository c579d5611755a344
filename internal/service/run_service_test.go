package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-intel/internal/domain"
	"github.com/andresuchdata/inventory-intel/internal/ingest"
	"github.com/andresuchdata/inventory-intel/internal/store"
)

var asOf = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func writeSnapshotDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func price(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func openStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// P1 is expired dead stock, P2 is understocked against its forecast
// (quantity 20 vs 5/day average over 7 days).
func snapshotFiles() map[string]string {
	return map[string]string{
		ingest.ProductsFile: "product_id,category,price\n" +
			"P1,Snacks,10\n" +
			"P2,Dairy,4.50\n",
		ingest.InventoryFile: "product_id,quantity,manufacture_date,expiry_date\n" +
			"P1,5,2025-01-01,2025-03-09\n" +
			"P2,20,2025-03-01,2025-04-01\n",
		ingest.DemandFile: "product_id,date,daily_sold\n" +
			"P2,2025-03-01,4\n" +
			"P2,2025-03-02,6\n",
		ingest.SalesFile: "product_id,sale_date,quantity_sold\n" +
			"P2,2025-03-01,5\n",
	}
}

func TestRunService_Execute(t *testing.T) {
	dir := writeSnapshotDir(t, snapshotFiles())
	db := openStore(t)
	runner := NewRunService(ingest.NewLoader(dir), db, nil)

	result, report, err := runner.Execute(context.Background(), asOf)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(result.Inventory) != 2 {
		t.Fatalf("inventory rows = %d, want 2", len(result.Inventory))
	}

	// P1 expired yesterday, P2 short of its 35-unit weekly forecast.
	wantAlerts := []domain.Alert{
		{ProductID: "P1", AlertType: domain.AlertExpiry, Message: "Product P1 needs urgent action."},
		{ProductID: "P2", AlertType: domain.AlertRestock, Message: "Product P2 needs restocking: 15 units."},
	}
	if len(result.Alerts) != len(wantAlerts) {
		t.Fatalf("alerts = %+v, want %d entries", result.Alerts, len(wantAlerts))
	}
	for i, want := range wantAlerts {
		if result.Alerts[i] != want {
			t.Errorf("alert[%d] = %+v, want %+v", i, result.Alerts[i], want)
		}
	}

	if len(report.DeadStock) != 1 || report.DeadStock[0].ProductID != "P1" {
		t.Errorf("dead stock = %+v, want only P1", report.DeadStock)
	}
	if len(report.ExpiryLoss) != 1 || !report.ExpiryLoss[0].LossAmount.Equal(price("50")) {
		t.Errorf("expiry loss = %+v, want P1 with 50", report.ExpiryLoss)
	}
}

func TestRunService_ExecuteReplacesPreviousRun(t *testing.T) {
	db := openStore(t)

	firstDir := writeSnapshotDir(t, snapshotFiles())
	if _, _, err := NewRunService(ingest.NewLoader(firstDir), db, nil).Execute(context.Background(), asOf); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	second := map[string]string{
		ingest.ProductsFile:  "product_id,category,price\nP9,Frozen,2\n",
		ingest.InventoryFile: "product_id,quantity,manufacture_date,expiry_date\nP9,100,2025-03-01,2025-06-01\n",
		ingest.DemandFile:    "product_id,date,daily_sold\n",
		ingest.SalesFile:     "product_id,sale_date,quantity_sold\n",
	}
	secondDir := writeSnapshotDir(t, second)
	if _, _, err := NewRunService(ingest.NewLoader(secondDir), db, nil).Execute(context.Background(), asOf); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	reports := NewReportService(db, nil)
	items, err := reports.GetInventory(context.Background())
	if err != nil {
		t.Fatalf("GetInventory failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "P9" {
		t.Fatalf("inventory after re-run = %+v, want only P9", items)
	}

	alerts, err := reports.GetAlerts(context.Background())
	if err != nil {
		t.Fatalf("GetAlerts failed: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("alerts after re-run = %+v, want none", alerts)
	}
}

func TestRunService_LoadFailureMaterializesNothing(t *testing.T) {
	db := openStore(t)

	goodDir := writeSnapshotDir(t, snapshotFiles())
	if _, _, err := NewRunService(ingest.NewLoader(goodDir), db, nil).Execute(context.Background(), asOf); err != nil {
		t.Fatalf("seed run failed: %v", err)
	}

	broken := snapshotFiles()
	broken[ingest.InventoryFile] = "product_id,quantity,manufacture_date,expiry_date\nP1,lots,2025-01-01,2025-03-09\n"
	brokenDir := writeSnapshotDir(t, broken)
	if _, _, err := NewRunService(ingest.NewLoader(brokenDir), db, nil).Execute(context.Background(), asOf); err == nil {
		t.Fatal("expected error for malformed snapshot")
	}

	// The previous run's tables must survive a failed load untouched.
	items, err := NewReportService(db, nil).GetInventory(context.Background())
	if err != nil {
		t.Fatalf("GetInventory failed: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("inventory rows after failed run = %d, want 2", len(items))
	}
}
