package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dental-inventory/internal/metrics"
	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies who triggered a change, for audit columns and events.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// SystemActor is used when no signed-in staff member is known.
var SystemActor = Actor{ID: "system", Name: "System"}

// Publisher receives committed inventory changes. *ws.Hub implements it.
type Publisher interface {
	Publish(action string, payload interface{}, message string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}, string) {}

type InventoryService interface {
	CreateItem(req *CreateItemRequest, actor Actor) (*model.ItemView, error)
	CreateItems(reqs []CreateItemRequest, actor Actor) ([]model.ItemView, error)
	UpdateItem(id uuid.UUID, req *UpdateItemRequest, actor Actor) (*model.ItemView, error)
	GetItem(id uuid.UUID) (*model.ItemView, error)
	ListItems(q ItemQuery) ([]model.ItemView, error)
	GroupItems(q ItemQuery) ([]CategoryGroup, error)

	StockIn(id uuid.UUID, delta int, memo string, actor Actor) (*model.ItemView, error)
	StockOut(id uuid.UUID, delta int, memo string, actor Actor) (*model.ItemView, error)
	EditMinQuantity(id uuid.UUID, newMin int, actor Actor) (*model.ItemView, error)

	ListTransactions(q TransactionQuery) ([]model.Transaction, error)
	GetTransaction(id uint) (*model.Transaction, error)
}

// CreateItemRequest registers one item. Expiry is optional, YYYY-MM-DD.
type CreateItemRequest struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Category    string `json:"category" validate:"max=100"`
	Quantity    int    `json:"quantity"`
	Unit        string `json:"unit" validate:"max=20"`
	ExpiryDate  string `json:"expiry_date" validate:"omitempty,iso_date"`
	MinQuantity int    `json:"min_quantity"`
	Location    string `json:"location" validate:"max=100"`
}

// UpdateItemRequest edits descriptive fields; nil fields are left alone.
// An empty ExpiryDate clears the expiry.
type UpdateItemRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=255"`
	Category   *string `json:"category" validate:"omitempty,max=100"`
	Unit       *string `json:"unit" validate:"omitempty,max=20"`
	ExpiryDate *string `json:"expiry_date"`
	Location   *string `json:"location" validate:"omitempty,max=100"`
}

// ItemQuery narrows item listings. Status filters on the derived label.
type ItemQuery struct {
	Query    string
	Category string
	Status   model.Status
	Sort     string
}

// TransactionQuery narrows the log. Days > 0 keeps the last Days days and
// takes precedence over Since.
type TransactionQuery struct {
	ItemID   *uuid.UUID
	ItemName string
	Kind     model.TransactionKind
	Days     int
	Since    *time.Time
}

// CategoryGroup is one category card: its items and a count per status.
type CategoryGroup struct {
	Category string               `json:"category"`
	Items    []model.ItemView     `json:"items"`
	Counts   map[model.Status]int `json:"counts"`
}

// InventoryOptions tunes the engine. A zero StatusRule, Location or Now falls
// back to its default; both services normalise options the same way.
type InventoryOptions struct {
	StatusRule  StatusRule
	UniqueNames bool
	Location    *time.Location
	Now         func() time.Time
}

type inventoryService struct {
	itemRepo        repository.ItemRepository
	transactionRepo repository.TransactionRepository
	db              *gorm.DB
	publisher       Publisher

	rule        StatusRule
	uniqueNames bool
	loc         *time.Location
	now         func() time.Time

	// writes are serialised; the DB transaction makes each one atomic
	mu sync.Mutex
}

func NewInventoryService(db *gorm.DB, iRepo repository.ItemRepository, tRepo repository.TransactionRepository, pub Publisher, opts InventoryOptions) InventoryService {
	if pub == nil {
		pub = noopPublisher{}
	}
	opts = normalizeOptions(opts)
	return &inventoryService{
		itemRepo:        iRepo,
		transactionRepo: tRepo,
		db:              db,
		publisher:       pub,
		rule:            opts.StatusRule,
		uniqueNames:     opts.UniqueNames,
		loc:             opts.Location,
		now:             opts.Now,
	}
}

// normalizeOptions fills in defaults shared by every service built from the
// same options. A zero StatusRule means DefaultStatusRule; otherwise only a
// missing precedence is filled in and ImminentDays is kept as given, so a
// window of 0 days stays 0.
func normalizeOptions(opts InventoryOptions) InventoryOptions {
	if opts.StatusRule == (StatusRule{}) {
		opts.StatusRule = DefaultStatusRule
	}
	if opts.StatusRule.Precedence == "" {
		opts.StatusRule.Precedence = model.PrecedenceExpiryFirst
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

func (s *inventoryService) today() time.Time {
	return model.CalendarDay(s.now().In(s.loc))
}

func (s *inventoryService) view(item model.Item) model.ItemView {
	return s.rule.View(item, s.today())
}

func (s *inventoryService) CreateItem(req *CreateItemRequest, actor Actor) (*model.ItemView, error) {
	views, err := s.CreateItems([]CreateItemRequest{*req}, actor)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// CreateItems registers every row or none of them.
func (s *inventoryService) CreateItems(reqs []CreateItemRequest, actor Actor) ([]model.ItemView, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: no items to register", validator.ErrValidation)
	}
	for i := range reqs {
		if err := checkNewItem(&reqs[i]); err != nil {
			if len(reqs) > 1 {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]model.Item, 0, len(reqs))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i, req := range reqs {
			if s.uniqueNames {
				if err := s.ensureNameFree(tx, req.Name, uuid.Nil); err != nil {
					if len(reqs) > 1 {
						return fmt.Errorf("row %d: %w", i+1, err)
					}
					return err
				}
			}

			item := model.Item{
				Name:        strings.TrimSpace(req.Name),
				Category:    strings.TrimSpace(req.Category),
				Quantity:    req.Quantity,
				Unit:        strings.TrimSpace(req.Unit),
				ExpiryDate:  strings.TrimSpace(req.ExpiryDate),
				MinQuantity: req.MinQuantity,
				Location:    strings.TrimSpace(req.Location),
			}
			item.CreatedBy = actor.ID
			item.UpdatedBy = actor.ID

			if err := s.itemRepo.Create(tx, &item); err != nil {
				return err
			}
			created = append(created, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	views := make([]model.ItemView, len(created))
	for i, item := range created {
		views[i] = s.view(item)
	}

	action, message := "item_created", fmt.Sprintf("%s registered '%s'", actor.Name, created[0].Name)
	if len(created) > 1 {
		action, message = "items_imported", fmt.Sprintf("%s registered %d items", actor.Name, len(created))
	}
	s.publisher.Publish(action, map[string]interface{}{"items": views, "user": actorPayload(actor)}, message)

	return views, nil
}

func checkNewItem(req *CreateItemRequest) error {
	if req.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative (got %d)", model.ErrInvalidState, req.Quantity)
	}
	if req.MinQuantity < 0 {
		return fmt.Errorf("%w: min quantity cannot be negative (got %d)", model.ErrInvalidState, req.MinQuantity)
	}
	return validator.Validate(req)
}

func (s *inventoryService) ensureNameFree(tx *gorm.DB, name string, self uuid.UUID) error {
	existing, err := s.itemRepo.FindByName(tx, name)
	if errors.Is(err, model.ErrItemNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: '%s'", model.ErrDuplicateName, strings.TrimSpace(name))
	}
	return nil
}

func (s *inventoryService) UpdateItem(id uuid.UUID, req *UpdateItemRequest, actor Actor) (*model.ItemView, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be blank", validator.ErrValidation)
	}
	if req.ExpiryDate != nil && strings.TrimSpace(*req.ExpiryDate) != "" {
		if _, ok := model.ParseDate(*req.ExpiryDate); !ok {
			return nil, fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", validator.ErrValidation)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated model.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			if s.uniqueNames {
				if err := s.ensureNameFree(tx, *req.Name, item.ID); err != nil {
					return err
				}
			}
			item.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			item.Category = strings.TrimSpace(*req.Category)
		}
		if req.Unit != nil {
			item.Unit = strings.TrimSpace(*req.Unit)
		}
		if req.ExpiryDate != nil {
			item.ExpiryDate = strings.TrimSpace(*req.ExpiryDate)
		}
		if req.Location != nil {
			item.Location = strings.TrimSpace(*req.Location)
		}
		item.UpdatedBy = actor.ID

		if err := s.itemRepo.Update(tx, item); err != nil {
			return err
		}
		fresh, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return err
		}
		updated = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := s.view(updated)
	s.publisher.Publish("item_updated", map[string]interface{}{"item": v, "user": actorPayload(actor)},
		fmt.Sprintf("%s updated '%s'", actor.Name, updated.Name))
	return &v, nil
}

func (s *inventoryService) GetItem(id uuid.UUID) (*model.ItemView, error) {
	item, err := s.itemRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	v := s.view(*item)
	return &v, nil
}

func (s *inventoryService) ListItems(q ItemQuery) ([]model.ItemView, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", validator.ErrValidation, q.Status)
	}
	items, err := s.itemRepo.FindAll(repository.ItemFilter{
		Query:    q.Query,
		Category: q.Category,
		Sort:     q.Sort,
	})
	if err != nil {
		return nil, err
	}

	today := s.today()
	views := make([]model.ItemView, 0, len(items))
	for _, item := range items {
		v := s.rule.View(item, today)
		if q.Status != "" && v.Status != q.Status {
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// GroupItems returns one group per display category, alphabetically, with
// the unclassified group last.
func (s *inventoryService) GroupItems(q ItemQuery) ([]CategoryGroup, error) {
	views, err := s.ListItems(q)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryGroup)
	var order []string
	for _, v := range views {
		g, ok := byCategory[v.DisplayCategory]
		if !ok {
			g = &CategoryGroup{Category: v.DisplayCategory, Counts: make(map[model.Status]int)}
			byCategory[v.DisplayCategory] = g
			order = append(order, v.DisplayCategory)
		}
		g.Items = append(g.Items, v)
		g.Counts[v.Status]++
	}

	sort.SliceStable(order, func(a, b int) bool {
		if order[a] == model.UnclassifiedCategory {
			return false
		}
		if order[b] == model.UnclassifiedCategory {
			return true
		}
		return strings.ToLower(order[a]) < strings.ToLower(order[b])
	})

	groups := make([]CategoryGroup, 0, len(order))
	for _, c := range order {
		groups = append(groups, *byCategory[c])
	}
	return groups, nil
}

func (s *inventoryService) StockIn(id uuid.UUID, delta int, memo string, actor Actor) (*model.ItemView, error) {
	return s.move(id, model.TxIn, delta, memo, actor)
}

func (s *inventoryService) StockOut(id uuid.UUID, delta int, memo string, actor Actor) (*model.ItemView, error) {
	return s.move(id, model.TxOut, delta, memo, actor)
}

// move adjusts the quantity and appends the matching log entry in one DB
// transaction. A failed check leaves both untouched.
func (s *inventoryService) move(id uuid.UUID, kind model.TransactionKind, delta int, memo string, actor Actor) (*model.ItemView, error) {
	if delta <= 0 {
		metrics.ObserveRejection("invalid_delta")
		return nil, fmt.Errorf("%w (got %d)", model.ErrInvalidDelta, delta)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		updated model.Item
		entry   model.Transaction
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return err
		}

		newQuantity := item.Quantity + delta
		if kind == model.TxOut {
			if delta > item.Quantity {
				return fmt.Errorf("%w: '%s' has %d, requested %d", model.ErrInsufficientStock, item.Name, item.Quantity, delta)
			}
			newQuantity = item.Quantity - delta
		}

		if err := s.itemRepo.UpdateQuantity(tx, item.ID, newQuantity, actor.ID); err != nil {
			return err
		}

		ts, err := s.nextTimestamp(tx)
		if err != nil {
			return err
		}
		entry = model.Transaction{
			ItemID:        item.ID,
			ItemName:      item.Name,
			Kind:          kind,
			Quantity:      delta,
			Memo:          strings.TrimSpace(memo),
			Timestamp:     ts,
			CreatedBy:     actor.ID,
			CreatedByName: actor.Name,
		}
		if err := s.transactionRepo.Append(tx, &entry); err != nil {
			return err
		}

		fresh, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return err
		}
		updated = *fresh
		return nil
	})
	if err != nil {
		metrics.ObserveRejection(rejectionReason(err))
		return nil, err
	}
	metrics.ObserveMovement(string(kind), delta)

	v := s.view(updated)
	verb := "added"
	if kind == model.TxOut {
		verb = "used"
	}
	s.publisher.Publish("transaction_created", map[string]interface{}{
		"transaction": entry,
		"item":        v,
		"user":        actorPayload(actor),
	}, fmt.Sprintf("%s %s %d %s of '%s'", actor.Name, verb, delta, unitOrUnits(updated.Unit), updated.Name))

	return &v, nil
}

// nextTimestamp returns now in UTC, clamped so it never precedes the newest
// log entry even if the wall clock steps back.
func (s *inventoryService) nextTimestamp(tx *gorm.DB) (time.Time, error) {
	ts := s.now().UTC()
	last, err := s.transactionRepo.LastTimestamp(tx)
	if err != nil {
		return time.Time{}, err
	}
	if last.After(ts) {
		ts = last.UTC()
	}
	return ts, nil
}

// EditMinQuantity changes the shortage threshold. It is not a stock
// movement, so no log entry is written.
func (s *inventoryService) EditMinQuantity(id uuid.UUID, newMin int, actor Actor) (*model.ItemView, error) {
	if newMin < 0 {
		return nil, fmt.Errorf("%w: min quantity cannot be negative (got %d)", model.ErrInvalidState, newMin)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated model.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.itemRepo.LockByID(tx, id); err != nil {
			return err
		}
		if err := s.itemRepo.UpdateMinQuantity(tx, id, newMin, actor.ID); err != nil {
			return err
		}
		fresh, err := s.itemRepo.LockByID(tx, id)
		if err != nil {
			return err
		}
		updated = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	v := s.view(updated)
	s.publisher.Publish("min_quantity_updated", map[string]interface{}{"item": v, "user": actorPayload(actor)},
		fmt.Sprintf("%s set minimum of '%s' to %d", actor.Name, updated.Name, newMin))
	return &v, nil
}

func (s *inventoryService) ListTransactions(q TransactionQuery) ([]model.Transaction, error) {
	if q.Kind != "" && !q.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", validator.ErrValidation, q.Kind)
	}
	filter := repository.TransactionFilter{
		ItemID:   q.ItemID,
		ItemName: q.ItemName,
		Kind:     q.Kind,
		Since:    q.Since,
	}
	if q.Days > 0 {
		since := s.now().AddDate(0, 0, -q.Days)
		filter.Since = &since
	}
	entries, err := s.transactionRepo.FindAll(filter)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Transaction{}
	}
	return entries, nil
}

func (s *inventoryService) GetTransaction(id uint) (*model.Transaction, error) {
	return s.transactionRepo.FindByID(id)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, model.ErrItemNotFound):
		return "not_found"
	case errors.Is(err, model.ErrInvalidState):
		return "invalid_state"
	default:
		return "error"
	}
}

func actorPayload(a Actor) map[string]interface{} {
	return map[string]interface{}{
		"id":    a.ID,
		"name":  a.Name,
		"email": a.Email,
	}
}

func unitOrUnits(unit string) string {
	if unit == "" {
		return "units"
	}
	return unit
}
