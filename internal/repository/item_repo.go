package repository

import (
	"errors"
	"fmt"
	"strings"

	"dental-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sort keys accepted by ItemFilter.Sort. Empty means insertion order.
const (
	SortName     = "name"
	SortQuantity = "quantity"
	SortExpiry   = "expiry"
)

// ItemFilter narrows FindAll. Query is a case-insensitive substring match
// over name, category and location; Category matches the display category.
type ItemFilter struct {
	Query    string
	Category string
	Sort     string
}

// ItemRepository is the item half of the inventory store. Methods taking a
// tx run inside the caller's transaction; a nil tx uses the base handle.
type ItemRepository interface {
	Create(tx *gorm.DB, item *model.Item) error
	FindAll(filter ItemFilter) ([]model.Item, error)
	FindByID(id uuid.UUID) (*model.Item, error)
	FindByName(tx *gorm.DB, name string) (*model.Item, error)
	LockByID(tx *gorm.DB, id uuid.UUID) (*model.Item, error)
	Update(tx *gorm.DB, item *model.Item) error
	UpdateQuantity(tx *gorm.DB, id uuid.UUID, newQuantity int, updatedBy string) error
	UpdateMinQuantity(tx *gorm.DB, id uuid.UUID, newMin int, updatedBy string) error
}

type itemRepo struct {
	db *gorm.DB
}

func NewItemRepo(db *gorm.DB) ItemRepository {
	return &itemRepo{db}
}

func (r *itemRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create appends the item after the current last position.
func (r *itemRepo) Create(tx *gorm.DB, item *model.Item) error {
	if item.Quantity < 0 || item.MinQuantity < 0 {
		return fmt.Errorf("%w: quantity %d, min quantity %d", model.ErrInvalidState, item.Quantity, item.MinQuantity)
	}
	db := r.conn(tx)

	var last int64
	if err := db.Model(&model.Item{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
		return err
	}
	item.Seq = last + 1
	return db.Create(item).Error
}

func (r *itemRepo) FindAll(filter ItemFilter) ([]model.Item, error) {
	query := r.db.Model(&model.Item{})

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(category) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}

	if c := strings.TrimSpace(filter.Category); c != "" {
		if strings.EqualFold(c, model.UnclassifiedCategory) {
			query = query.Where("TRIM(category) = '' OR LOWER(TRIM(category)) = ?", model.UnclassifiedCategory)
		} else {
			query = query.Where("LOWER(TRIM(category)) = ?", strings.ToLower(c))
		}
	}

	switch filter.Sort {
	case SortName:
		query = query.Order("LOWER(name) ASC").Order("seq ASC")
	case SortQuantity:
		query = query.Order("quantity ASC").Order("seq ASC")
	case SortExpiry:
		// items without an expiry go last
		query = query.Order("CASE WHEN expiry_date IS NULL OR expiry_date = '' THEN 1 ELSE 0 END").
			Order("expiry_date ASC").Order("seq ASC")
	default:
		query = query.Order("seq ASC")
	}

	var items []model.Item
	err := query.Find(&items).Error
	return items, err
}

func (r *itemRepo) FindByID(id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.First(&item, "id = ?", id).Error; err != nil {
		return nil, notFound(err, model.ErrItemNotFound)
	}
	return &item, nil
}

func (r *itemRepo) FindByName(tx *gorm.DB, name string) (*model.Item, error) {
	var item model.Item
	err := r.conn(tx).
		Where("LOWER(TRIM(name)) = ?", strings.ToLower(strings.TrimSpace(name))).
		Order("seq ASC").
		First(&item).Error
	if err != nil {
		return nil, notFound(err, model.ErrItemNotFound)
	}
	return &item, nil
}

// LockByID reads the item with a row lock (SELECT ... FOR UPDATE) so the
// read-modify-write in the caller's transaction cannot lose an update.
func (r *itemRepo) LockByID(tx *gorm.DB, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	err := r.conn(tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, model.ErrItemNotFound)
	}
	return &item, nil
}

// Update saves descriptive fields only. Quantity and min quantity have
// their own guarded writers.
func (r *itemRepo) Update(tx *gorm.DB, item *model.Item) error {
	res := r.conn(tx).Model(&model.Item{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"category":    item.Category,
			"unit":        item.Unit,
			"expiry_date": item.ExpiryDate,
			"location":    item.Location,
			"updated_by":  item.UpdatedBy,
		})
	return affected(res, model.ErrItemNotFound)
}

func (r *itemRepo) UpdateQuantity(tx *gorm.DB, id uuid.UUID, newQuantity int, updatedBy string) error {
	if newQuantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative (got %d)", model.ErrInvalidState, newQuantity)
	}
	res := r.conn(tx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   newQuantity,
			"updated_by": updatedBy,
		})
	return affected(res, model.ErrItemNotFound)
}

func (r *itemRepo) UpdateMinQuantity(tx *gorm.DB, id uuid.UUID, newMin int, updatedBy string) error {
	if newMin < 0 {
		return fmt.Errorf("%w: min quantity cannot be negative (got %d)", model.ErrInvalidState, newMin)
	}
	res := r.conn(tx).Model(&model.Item{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"min_quantity": newMin,
			"updated_by":   updatedBy,
		})
	return affected(res, model.ErrItemNotFound)
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func affected(res *gorm.DB, sentinel error) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sentinel
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
