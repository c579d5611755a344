package pipeline

import (
	"time"

	"github.com/andresuchdata/inventory-intel/internal/domain"
)

// StatusFor maps days-until-expiry onto a freshness band. Total over all
// integers; the bands are mutually exclusive.
func StatusFor(daysLeft int) domain.ExpiryStatus {
	switch {
	case daysLeft <= 0:
		return domain.StatusExpired
	case daysLeft <= 2:
		return domain.StatusUrgent
	case daysLeft <= 5:
		return domain.StatusExpiringSoon
	default:
		return domain.StatusOK
	}
}

// DiscountFor returns the markdown percentage for a freshness band. Same
// thresholds as StatusFor, computed independently.
func DiscountFor(daysLeft int) int {
	switch {
	case daysLeft <= 0:
		return 90
	case daysLeft <= 2:
		return 60
	case daysLeft <= 5:
		return 30
	default:
		return 0
	}
}

// Classify derives days_left, status and discount for every inventory item
// relative to asOf. It returns a new slice and leaves the input untouched.
func Classify(items []domain.InventoryItem, asOf time.Time) []domain.InventoryItem {
	out := make([]domain.InventoryItem, len(items))
	for i, item := range items {
		item.DaysLeft = daysBetween(asOf, item.ExpiryDate)
		item.Status = StatusFor(item.DaysLeft)
		item.DiscountPct = DiscountFor(item.DaysLeft)
		out[i] = item
	}
	return out
}

// daysBetween counts whole calendar days from one date to another, ignoring
// the time-of-day component. Negative when to precedes from.
func daysBetween(from, to time.Time) int {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
