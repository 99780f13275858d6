package model

// Status is the derived display label of an item. It is never stored.
type Status string

const (
	StatusExpired  Status = "EXPIRED"
	StatusImminent Status = "IMMINENT"
	StatusLowStock Status = "LOW_STOCK"
	StatusNormal   Status = "NORMAL"
)

// AllStatuses lists every status in display order.
var AllStatuses = []Status{StatusExpired, StatusImminent, StatusLowStock, StatusNormal}

// Valid reports whether s is one of the known labels.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Precedence decides which rule wins when an item is both near expiry and short.
type Precedence string

const (
	PrecedenceExpiryFirst   Precedence = "expiry_first"
	PrecedenceShortageFirst Precedence = "shortage_first"
)
