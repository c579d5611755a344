package pipeline

import (
	"math"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

// ApplyRestock decides, per item, whether to reorder and how much.
//
// The flag and the quantity are independent signals: an URGENT item with
// ample stock is still flagged (freshness risk) but its computed quantity may
// be 0, and an EXPIRED item alone never triggers restocking.
func ApplyRestock(items []domain.InventoryItem) []domain.InventoryItem {
	out := make([]domain.InventoryItem, len(items))
	for i, item := range items {
		item.RestockFlag = float64(item.Quantity) < item.Predicted7DayDemand ||
			item.Status == domain.StatusUrgent

		if item.RestockFlag {
			item.RestockQty = math.Max(0, item.Predicted7DayDemand-float64(item.Quantity))
		} else {
			item.RestockQty = 0
		}
		out[i] = item
	}
	return out
}
