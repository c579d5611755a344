package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

func testSnapshot(id string, qty int) (domain.Snapshot, domain.RunResult) {
	asOf := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := domain.Snapshot{
		Products: []domain.Product{
			{ProductID: id, Category: "Snacks", Price: decimal.NewFromInt(10)},
		},
		Sales: []domain.SalesRecord{
			{ProductID: id, SaleDate: asOf.AddDate(0, 0, -1), QuantitySold: 2},
		},
	}
	result := domain.RunResult{
		AsOf: asOf,
		Inventory: []domain.InventoryItem{{
			ProductID:           id,
			Quantity:            qty,
			ManufactureDate:     asOf.AddDate(0, 0, -30),
			ExpiryDate:          asOf.AddDate(0, 0, 4),
			DaysLeft:            4,
			Status:              domain.StatusExpiringSoon,
			DiscountPct:         30,
			AvgDailySales:       2,
			Predicted7DayDemand: 14,
			RestockFlag:         true,
			RestockQty:          float64(14 - qty),
		}},
		Alerts: []domain.Alert{
			{ProductID: id, AlertType: domain.AlertExpiry, Message: "Product " + id + " needs urgent action."},
			{ProductID: id, AlertType: domain.AlertRestock, Message: "Product " + id + " needs restocking: 9 units."},
		},
	}
	return snap, result
}

func TestReplaceRun_RoundTrip(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	snap, result := testSnapshot("P1", 5)
	if err := db.ReplaceRun(ctx, snap, result); err != nil {
		t.Fatalf("ReplaceRun failed: %v", err)
	}

	items, err := db.AnnotatedInventory(ctx)
	if err != nil {
		t.Fatalf("AnnotatedInventory failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	got := items[0]
	want := result.Inventory[0]
	if got.ProductID != want.ProductID || got.Quantity != want.Quantity ||
		got.DaysLeft != want.DaysLeft || got.Status != want.Status ||
		got.DiscountPct != want.DiscountPct || got.AvgDailySales != want.AvgDailySales ||
		got.Predicted7DayDemand != want.Predicted7DayDemand ||
		got.RestockFlag != want.RestockFlag || got.RestockQty != want.RestockQty {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if !got.ExpiryDate.Equal(want.ExpiryDate) {
		t.Errorf("expiry date = %v, want %v", got.ExpiryDate, want.ExpiryDate)
	}

	alerts, err := db.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts failed: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].AlertType != domain.AlertExpiry || alerts[1].AlertType != domain.AlertRestock {
		t.Errorf("alert order broken: %+v", alerts)
	}
}

// A second run must fully replace the first, never appending to it.
func TestReplaceRun_ReplacesPreviousContents(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	snap1, result1 := testSnapshot("OLD", 5)
	if err := db.ReplaceRun(ctx, snap1, result1); err != nil {
		t.Fatalf("first ReplaceRun failed: %v", err)
	}

	snap2, result2 := testSnapshot("NEW", 8)
	if err := db.ReplaceRun(ctx, snap2, result2); err != nil {
		t.Fatalf("second ReplaceRun failed: %v", err)
	}

	items, err := db.AnnotatedInventory(ctx)
	if err != nil {
		t.Fatalf("AnnotatedInventory failed: %v", err)
	}
	if len(items) != 1 || items[0].ProductID != "NEW" {
		t.Errorf("items = %+v, want only the NEW run's row", items)
	}

	var productCount int
	if err := db.GetContext(ctx, &productCount, "SELECT COUNT(*) FROM products"); err != nil {
		t.Fatalf("count products: %v", err)
	}
	if productCount != 1 {
		t.Errorf("products table has %d rows after re-run, want 1", productCount)
	}

	alerts, err := db.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts failed: %v", err)
	}
	for _, a := range alerts {
		if a.ProductID != "NEW" {
			t.Errorf("stale alert survived the re-run: %+v", a)
		}
	}
}
