package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dental-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows FindAll. ItemID and ItemName both identify the
// item reference; when both are set an entry must match both.
type TransactionFilter struct {
	ItemID   *uuid.UUID
	ItemName string
	Kind     model.TransactionKind
	Since    *time.Time
	Until    *time.Time
}

// TransactionRepository is the append-only log half of the inventory store.
// It has no update or delete.
type TransactionRepository interface {
	Append(tx *gorm.DB, entry *model.Transaction) error
	FindAll(filter TransactionFilter) ([]model.Transaction, error)
	FindByID(id uint) (*model.Transaction, error)
	LastTimestamp(tx *gorm.DB) (time.Time, error)
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Append writes a log entry. The item reference is not checked: entries
// pointing at items that no longer exist are kept for the audit trail.
func (r *transactionRepo) Append(tx *gorm.DB, entry *model.Transaction) error {
	if !entry.Kind.Valid() {
		return fmt.Errorf("%w: unknown transaction kind %q", model.ErrInvalidState, entry.Kind)
	}
	if entry.Quantity <= 0 {
		return model.ErrInvalidDelta
	}
	if entry.Timestamp.IsZero() {
		return errors.New("transaction timestamp must be set")
	}
	return r.conn(tx).Create(entry).Error
}

// FindAll returns matching entries in insertion order.
func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.Transaction, error) {
	query := r.db.Model(&model.Transaction{})

	if filter.ItemID != nil {
		query = query.Where("item_id = ?", *filter.ItemID)
	}
	if name := strings.TrimSpace(filter.ItemName); name != "" {
		query = query.Where("LOWER(item_name) = ?", strings.ToLower(name))
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Since != nil {
		query = query.Where("occurred_at >= ?", filter.Since.UTC())
	}
	if filter.Until != nil {
		query = query.Where("occurred_at <= ?", filter.Until.UTC())
	}

	var entries []model.Transaction
	err := query.Order("id ASC").Find(&entries).Error
	return entries, err
}

func (r *transactionRepo) FindByID(id uint) (*model.Transaction, error) {
	var entry model.Transaction
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, notFound(err, model.ErrTransactionNotFound)
	}
	return &entry, nil
}

// LastTimestamp returns the timestamp of the newest entry, or the zero time
// for an empty log.
func (r *transactionRepo) LastTimestamp(tx *gorm.DB) (time.Time, error) {
	var last model.Transaction
	err := r.conn(tx).Order("id DESC").Take(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return last.Timestamp, nil
}
