package domain

import "strings"

// ExpiryStatus is the freshness band an inventory item falls into.
type ExpiryStatus string

const (
	StatusExpired      ExpiryStatus = "EXPIRED"
	StatusUrgent       ExpiryStatus = "URGENT"
	StatusExpiringSoon ExpiryStatus = "EXPIRING_SOON"
	StatusOK           ExpiryStatus = "OK"
)

// AlertType distinguishes the two alert kinds the generator emits.
type AlertType string

const (
	AlertExpiry  AlertType = "EXPIRY_ALERT"
	AlertRestock AlertType = "RESTOCK_ALERT"
)

// StockLabel classifies an inventory item in the overstock report.
type StockLabel string

const (
	LabelOverstock    StockLabel = "OVERSTOCK_ISSUE"
	LabelSlowMovement StockLabel = "SLOW_MOVEMENT"
	LabelNormal       StockLabel = "NORMAL"
)

var expiryStatuses = map[string]ExpiryStatus{
	"expired":       StatusExpired,
	"urgent":        StatusUrgent,
	"expiring_soon": StatusExpiringSoon,
	"ok":            StatusOK,
}

// ParseExpiryStatus returns the status for a given label (case-insensitive).
func ParseExpiryStatus(label string) (ExpiryStatus, bool) {
	status, ok := expiryStatuses[strings.ToLower(label)]

	return status, ok
}

// NeedsExpiryAlert reports whether the status warrants an expiry alert.
func (s ExpiryStatus) NeedsExpiryAlert() bool {
	return s == StatusUrgent || s == StatusExpired
}
