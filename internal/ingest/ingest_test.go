package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

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

func validSnapshotFiles() map[string]string {
	return map[string]string{
		ProductsFile:  "product_id,category,price\nP1,Snacks,10\nP2,Dairy,4.50\n",
		InventoryFile: "product_id,quantity,manufacture_date,expiry_date\nP1,5,2025-01-01,2025-03-09\n",
		DemandFile:    "product_id,date,daily_sold\nP1,2025-03-01,4\nP1,2025-03-02,6\n",
		SalesFile:     "product_id,sale_date,quantity_sold\nP1,2025-03-01,2\n",
	}
}

func TestLoadSnapshot(t *testing.T) {
	dir := writeSnapshotDir(t, validSnapshotFiles())

	snap, err := NewLoader(dir).LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if len(snap.Products) != 2 || len(snap.Inventory) != 1 ||
		len(snap.Demand) != 2 || len(snap.Sales) != 1 {
		t.Fatalf("unexpected table sizes: %d/%d/%d/%d",
			len(snap.Products), len(snap.Inventory), len(snap.Demand), len(snap.Sales))
	}

	if !snap.Products[1].Price.Equal(decimal.RequireFromString("4.50")) {
		t.Errorf("P2 price = %s, want 4.50", snap.Products[1].Price)
	}
	if snap.Inventory[0].ExpiryDate.Format("2006-01-02") != "2025-03-09" {
		t.Errorf("expiry date = %v", snap.Inventory[0].ExpiryDate)
	}
}

func TestLoadSnapshot_MissingTableIsFatal(t *testing.T) {
	files := validSnapshotFiles()
	delete(files, SalesFile)
	dir := writeSnapshotDir(t, files)

	if _, err := NewLoader(dir).LoadSnapshot(); err == nil {
		t.Fatal("expected error for absent sales table")
	} else if !strings.Contains(err.Error(), SalesFile) {
		t.Errorf("error should name the missing table, got: %v", err)
	}
}

func TestLoadSnapshot_MalformedRowIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			"non-numeric quantity",
			InventoryFile,
			"product_id,quantity,manufacture_date,expiry_date\nP1,lots,2025-01-01,2025-03-09\n",
		},
		{
			"bad date",
			InventoryFile,
			"product_id,quantity,manufacture_date,expiry_date\nP1,5,2025-01-01,soon\n",
		},
		{
			"non-numeric price",
			ProductsFile,
			"product_id,category,price\nP1,Snacks,free\n",
		},
		{
			"negative quantity",
			InventoryFile,
			"product_id,quantity,manufacture_date,expiry_date\nP1,-3,2025-01-01,2025-03-09\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := validSnapshotFiles()
			files[tt.file] = tt.content
			dir := writeSnapshotDir(t, files)

			if _, err := NewLoader(dir).LoadSnapshot(); err == nil {
				t.Fatal("expected load to fail, it succeeded")
			}
		})
	}
}

func TestLoadSnapshot_HeaderOrderIndependent(t *testing.T) {
	files := validSnapshotFiles()
	files[ProductsFile] = "price,product_id,category\n10,P1,Snacks\n"
	dir := writeSnapshotDir(t, files)

	snap, err := NewLoader(dir).LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap.Products[0].ProductID != "P1" || snap.Products[0].Category != "Snacks" {
		t.Errorf("columns resolved wrong: %+v", snap.Products[0])
	}
}
