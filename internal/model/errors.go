package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inventory domain. Match them with errors.Is.
var (
	// ErrItemNotFound indicates the referenced item id does not exist.
	ErrItemNotFound = errors.New("item not found")

	// ErrTransactionNotFound indicates the requested log entry does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInvalidState indicates a write would store a negative quantity or
	// a negative min quantity.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidDelta is an ErrInvalidState raised for zero or negative
	// stock movements.
	ErrInvalidDelta = fmt.Errorf("%w: quantity delta must be positive", ErrInvalidState)

	// ErrInsufficientStock indicates a stock-out larger than the quantity on hand.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrDuplicateName indicates another item already uses the name.
	ErrDuplicateName = errors.New("item name already exists")
)
