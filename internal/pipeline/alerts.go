package pipeline

import (
	"fmt"
	"strconv"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

// GenerateAlerts scans the classified, restock-flagged items in input order
// and emits alert records. Per item the expiry alert (if any) precedes the
// restock alert (if any); an item may emit zero, one or two alerts.
func GenerateAlerts(items []domain.InventoryItem) []domain.Alert {
	alerts := make([]domain.Alert, 0)
	for _, item := range items {
		if item.Status.NeedsExpiryAlert() {
			alerts = append(alerts, domain.Alert{
				ProductID: item.ProductID,
				AlertType: domain.AlertExpiry,
				Message:   fmt.Sprintf("Product %s needs urgent action.", item.ProductID),
			})
		}

		if item.RestockFlag {
			alerts = append(alerts, domain.Alert{
				ProductID: item.ProductID,
				AlertType: domain.AlertRestock,
				Message: fmt.Sprintf("Product %s needs restocking: %s units.",
					item.ProductID, formatUnits(item.RestockQty)),
			})
		}
	}
	return alerts
}

// formatUnits renders a quantity without a trailing fractional part when the
// value is whole, so "15" rather than "15.000000".
func formatUnits(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}
