package service

import (
	"time"

	"dental-inventory/internal/model"
)

// DefaultImminentDays is the look-ahead window for the IMMINENT label.
const DefaultImminentDays = 30

// StatusRule derives the display status of an item for a given day.
type StatusRule struct {
	ImminentDays int
	Precedence   model.Precedence
}

var DefaultStatusRule = StatusRule{
	ImminentDays: DefaultImminentDays,
	Precedence:   model.PrecedenceExpiryFirst,
}

// Derive classifies item as of today. It is pure: an expiry date that does
// not parse counts as no expiry, and only the calendar date of today matters.
//
// With expiry-first precedence an expired or imminent item reports that
// label even when it is also short; shortage-first swaps the order.
func (r StatusRule) Derive(item model.Item, today time.Time) model.Status {
	if r.Precedence == model.PrecedenceShortageFirst {
		if isShort(item) {
			return model.StatusLowStock
		}
		if s, ok := r.expiryStatus(item, today); ok {
			return s
		}
		return model.StatusNormal
	}

	if s, ok := r.expiryStatus(item, today); ok {
		return s
	}
	if isShort(item) {
		return model.StatusLowStock
	}
	return model.StatusNormal
}

func (r StatusRule) expiryStatus(item model.Item, today time.Time) (model.Status, bool) {
	expiry, ok := model.ParseDate(item.ExpiryDate)
	if !ok {
		return "", false
	}
	day := model.CalendarDay(today)
	switch {
	case expiry.Before(day):
		return model.StatusExpired, true
	case !expiry.After(day.AddDate(0, 0, r.window())):
		return model.StatusImminent, true
	}
	return "", false
}

func (r StatusRule) window() int {
	if r.ImminentDays < 0 {
		return 0
	}
	return r.ImminentDays
}

func isShort(item model.Item) bool {
	return item.Quantity <= item.MinQuantity
}

// DeriveStatus applies DefaultStatusRule.
func DeriveStatus(item model.Item, today time.Time) model.Status {
	return DefaultStatusRule.Derive(item, today)
}

// View wraps item with its status and display category.
func (r StatusRule) View(item model.Item, today time.Time) model.ItemView {
	return model.ItemView{
		Item:            item,
		Status:          r.Derive(item, today),
		DisplayCategory: item.DisplayCategory(),
	}
}
