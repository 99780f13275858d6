package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionKind string

const (
	TxIn  TransactionKind = "IN"
	TxOut TransactionKind = "OUT"
)

// Valid reports whether k is IN or OUT.
func (k TransactionKind) Valid() bool {
	return k == TxIn || k == TxOut
}

// Transaction is one append-only stock movement. ItemID is a weak reference:
// there is no foreign key, so log entries outlive the item they describe.
type Transaction struct {
	ID       uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemName string          `gorm:"type:varchar(255);index" json:"item_name"` // snapshot at mutation time
	Kind     TransactionKind `gorm:"type:varchar(10);not null" json:"kind"`
	Quantity int             `gorm:"not null" json:"quantity"` // always > 0, direction from Kind
	Memo     string          `gorm:"type:text" json:"memo,omitempty"`

	// Timestamp is stored in UTC and never decreases in id order.
	Timestamp time.Time `gorm:"column:occurred_at;not null;index" json:"timestamp"`

	CreatedBy     string `gorm:"type:varchar(255)" json:"created_by"`
	CreatedByName string `gorm:"type:varchar(255)" json:"created_by_name,omitempty"`
}

// Signed returns the movement as a signed quantity change.
func (t *Transaction) Signed() int {
	if t.Kind == TxOut {
		return -t.Quantity
	}
	return t.Quantity
}
