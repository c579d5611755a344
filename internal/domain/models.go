// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a row from the products snapshot. Immutable for the run.
type Product struct {
	ProductID string          `json:"product_id" db:"product_id"`
	Category  string          `json:"category" db:"category"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// InventoryItem is a row from the inventory snapshot plus the fields the
// pipeline derives for it. Derived fields live in memory (and in the
// materialized store) for the duration of one run only.
type InventoryItem struct {
	ProductID       string    `json:"product_id" db:"product_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	ManufactureDate time.Time `json:"manufacture_date" db:"manufacture_date"`
	ExpiryDate      time.Time `json:"expiry_date" db:"expiry_date"`

	// Derived by the pipeline
	DaysLeft            int          `json:"days_left" db:"days_left"`
	Status              ExpiryStatus `json:"status" db:"status"`
	DiscountPct         int          `json:"discount_pct" db:"discount_pct"`
	AvgDailySales       float64      `json:"avg_daily_sales" db:"avg_daily_sales"`
	Predicted7DayDemand float64      `json:"predicted_7day_demand" db:"predicted_7day_demand"`
	RestockFlag         bool         `json:"restock_flag" db:"restock_flag"`
	RestockQty          float64      `json:"restock_qty" db:"restock_qty"`
}

// DemandRecord is a row from the demand history snapshot. Only the per-product
// mean of DailySold survives into the pipeline.
type DemandRecord struct {
	ProductID string    `json:"product_id" db:"product_id"`
	Date      time.Time `json:"date" db:"date"`
	DailySold float64   `json:"daily_sold" db:"daily_sold"`
}

// SalesRecord is a row from the sales snapshot.
type SalesRecord struct {
	ProductID    string    `json:"product_id" db:"product_id"`
	SaleDate     time.Time `json:"sale_date" db:"sale_date"`
	QuantitySold float64   `json:"quantity_sold" db:"quantity_sold"`
}

// Alert is an actionable record emitted by the alert generator. Ephemeral
// output, never re-read by another component.
type Alert struct {
	ProductID string    `json:"product_id" db:"product_id"`
	AlertType AlertType `json:"alert_type" db:"alert_type"`
	Message   string    `json:"message" db:"message"`
}

// Snapshot bundles the four input tables consumed by one run.
type Snapshot struct {
	Products  []Product
	Inventory []InventoryItem
	Demand    []DemandRecord
	Sales     []SalesRecord
}

// ExpiryLossRow is one row of the expiry loss report: value lost to already
// expired inventory, per product. Products without expired rows are absent.
type ExpiryLossRow struct {
	ProductID  string          `json:"product_id" db:"product_id"`
	LossAmount decimal.Decimal `json:"expiry_loss_amount" db:"expiry_loss_amount"`
}

// OverstockRow classifies one inventory item against its sales-derived
// average. AvgDailySales is nil when the product has no sales records.
type OverstockRow struct {
	ProductID     string     `json:"product_id" db:"product_id"`
	Quantity      int        `json:"quantity" db:"quantity"`
	AvgDailySales *float64   `json:"avg_daily_sales" db:"avg_daily_sales"`
	Label         StockLabel `json:"label" db:"label"`
}

// DeadStockRow is an inventory item whose product has no sales records at all.
type DeadStockRow struct {
	ProductID string `json:"product_id" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// RestockPriorityRow ranks a product by mean quantity sold, dense ranking.
type RestockPriorityRow struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	AvgSales  float64 `json:"avg_sales" db:"avg_sales"`
	Priority  int     `json:"restock_priority" db:"restock_priority"`
}

// CategoryLossRow aggregates expiry loss per product category, sorted
// descending by total loss.
type CategoryLossRow struct {
	Category  string          `json:"category" db:"category"`
	TotalLoss decimal.Decimal `json:"total_expiry_loss" db:"total_expiry_loss"`
}

// AnalyticsReport holds the five independent report result sets of a run.
type AnalyticsReport struct {
	ExpiryLoss      []ExpiryLossRow      `json:"expiry_loss"`
	Overstock       []OverstockRow       `json:"overstock"`
	DeadStock       []DeadStockRow       `json:"dead_stock"`
	RestockPriority []RestockPriorityRow `json:"restock_priority"`
	CategoryLoss    []CategoryLossRow    `json:"category_loss"`
}

// RunResult is the complete output of one pipeline run over one snapshot.
type RunResult struct {
	AsOf      time.Time       `json:"as_of"`
	Inventory []InventoryItem `json:"inventory"`
	Alerts    []Alert         `json:"alerts"`
}
