package service_test

import (
	"sync"
	"testing"
	"time"

	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/internal/service"
	"dental-inventory/internal/testutil"
	"dental-inventory/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	nurse = service.Actor{ID: "staff-1", Name: "Nurse Kim", Email: "kim@clinic.test"}
)

type fixture struct {
	svc   service.InventoryService
	items repository.ItemRepository
	txs   repository.TransactionRepository
	clock *testutil.Clock
	pub   *testutil.Publisher
}

func newFixture(t *testing.T, opts service.InventoryOptions) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		items: repository.NewItemRepo(db),
		txs:   repository.NewTransactionRepo(db),
		clock: testutil.NewClock(start),
		pub:   &testutil.Publisher{},
	}
	opts.Location = time.UTC
	opts.Now = f.clock.Now
	f.svc = service.NewInventoryService(db, f.items, f.txs, f.pub, opts)
	return f
}

func setupService(t *testing.T) *fixture {
	return newFixture(t, service.InventoryOptions{UniqueNames: true})
}

func (f *fixture) register(t *testing.T, req service.CreateItemRequest) *model.ItemView {
	t.Helper()
	v, err := f.svc.CreateItem(&req, nurse)
	require.NoError(t, err)
	return v
}

func (f *fixture) log(t *testing.T) []model.Transaction {
	t.Helper()
	entries, err := f.svc.ListTransactions(service.TransactionQuery{})
	require.NoError(t, err)
	return entries
}

func TestCreateItem(t *testing.T) {
	f := setupService(t)

	v := f.register(t, service.CreateItemRequest{
		Name:        "  Composite Resin ",
		Category:    "Restorative",
		Quantity:    12,
		Unit:        "syringe",
		ExpiryDate:  "2024-01-20",
		MinQuantity: 3,
		Location:    "Cabinet A",
	})

	assert.NotEqual(t, uuid.Nil, v.ID)
	assert.Equal(t, "Composite Resin", v.Name)
	assert.Equal(t, model.StatusImminent, v.Status)
	assert.Equal(t, "Restorative", v.DisplayCategory)
	assert.Equal(t, nurse.ID, v.CreatedBy)
	assert.Equal(t, []string{"item_created"}, f.pub.Actions())
	assert.Empty(t, f.log(t), "registration is not a stock movement")
}

func TestCreateItem_Rejects(t *testing.T) {
	f := setupService(t)
	f.register(t, service.CreateItemRequest{Name: "Gloves", Quantity: 1})

	tests := []struct {
		name string
		req  service.CreateItemRequest
		want error
	}{
		{"negative quantity", service.CreateItemRequest{Name: "Masks", Quantity: -1}, model.ErrInvalidState},
		{"negative minimum", service.CreateItemRequest{Name: "Masks", MinQuantity: -2}, model.ErrInvalidState},
		{"blank name", service.CreateItemRequest{Name: "   "}, validator.ErrValidation},
		{"bad expiry", service.CreateItemRequest{Name: "Masks", ExpiryDate: "31/12/2024"}, validator.ErrValidation},
		{"duplicate name", service.CreateItemRequest{Name: " gloves "}, model.ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.CreateItem(&req, nurse)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	items, err := f.svc.ListItems(service.ItemQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCreateItem_DuplicatesAllowedWhenNotUnique(t *testing.T) {
	f := newFixture(t, service.InventoryOptions{UniqueNames: false})
	f.register(t, service.CreateItemRequest{Name: "Gloves", Quantity: 1})
	f.register(t, service.CreateItemRequest{Name: "Gloves", Quantity: 2})

	items, err := f.svc.ListItems(service.ItemQuery{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCreateItems_AllOrNothing(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.CreateItems([]service.CreateItemRequest{
		{Name: "Gloves", Quantity: 10},
		{Name: "Masks", Quantity: 5},
		{Name: "gloves", Quantity: 1},
	}, nurse)
	require.ErrorIs(t, err, model.ErrDuplicateName)
	assert.Contains(t, err.Error(), "row 3")

	items, err := f.svc.ListItems(service.ItemQuery{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, f.pub.Actions())

	views, err := f.svc.CreateItems([]service.CreateItemRequest{
		{Name: "Gloves", Quantity: 10},
		{Name: "Masks", Quantity: 5},
	}, nurse)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, []string{"items_imported"}, f.pub.Actions())

	_, err = f.svc.CreateItems(nil, nurse)
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestStockIn_ClearsLowStock(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Gauze", Quantity: 5, MinQuantity: 10})
	require.Equal(t, model.StatusLowStock, item.Status)

	v, err := f.svc.StockIn(item.ID, 6, "weekly order", nurse)
	require.NoError(t, err)

	assert.Equal(t, 11, v.Quantity)
	assert.Equal(t, model.StatusNormal, v.Status)

	entries := f.log(t)
	require.Len(t, entries, 1)
	assert.Equal(t, item.ID, entries[0].ItemID)
	assert.Equal(t, "Gauze", entries[0].ItemName)
	assert.Equal(t, model.TxIn, entries[0].Kind)
	assert.Equal(t, 6, entries[0].Quantity)
	assert.Equal(t, "weekly order", entries[0].Memo)
	assert.True(t, start.Equal(entries[0].Timestamp))
	assert.Equal(t, "Nurse Kim", entries[0].CreatedByName)
}

func TestStockOut_ExpiryWinsOverStock(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Anesthetic", Quantity: 100, MinQuantity: 5, ExpiryDate: "2020-01-01"})

	v, err := f.svc.StockOut(item.ID, 1, "", nurse)
	require.NoError(t, err)

	assert.Equal(t, 99, v.Quantity)
	assert.Equal(t, model.StatusExpired, v.Status)
}

func TestStockOut_Insufficient(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Needles", Quantity: 2})

	_, err := f.svc.StockOut(item.ID, 3, "", nurse)
	require.ErrorIs(t, err, model.ErrInsufficientStock)

	got, err := f.svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Empty(t, f.log(t))
	assert.Equal(t, []string{"item_created"}, f.pub.Actions())
}

func TestStockOut_ToZero(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Needles", Quantity: 2, MinQuantity: 1})

	v, err := f.svc.StockOut(item.ID, 2, "", nurse)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Quantity)
	assert.Equal(t, model.StatusLowStock, v.Status)
}

func TestStock_RoundTrip(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Cotton Rolls", Quantity: 40})

	_, err := f.svc.StockIn(item.ID, 15, "", nurse)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	v, err := f.svc.StockOut(item.ID, 15, "", nurse)
	require.NoError(t, err)

	assert.Equal(t, 40, v.Quantity)
	entries := f.log(t)
	require.Len(t, entries, 2)
	assert.Equal(t, model.TxIn, entries[0].Kind)
	assert.Equal(t, model.TxOut, entries[1].Kind)
	assert.Equal(t, 0, entries[0].Signed()+entries[1].Signed())
	assert.Equal(t, []string{"item_created", "transaction_created", "transaction_created"}, f.pub.Actions())
}

func TestStock_InvalidDelta(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Bibs", Quantity: 5})

	for _, delta := range []int{0, -3} {
		_, err := f.svc.StockIn(item.ID, delta, "", nurse)
		assert.ErrorIs(t, err, model.ErrInvalidDelta)
		assert.ErrorIs(t, err, model.ErrInvalidState)

		_, err = f.svc.StockOut(item.ID, delta, "", nurse)
		assert.ErrorIs(t, err, model.ErrInvalidDelta)
	}

	got, err := f.svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
	assert.Empty(t, f.log(t))
}

func TestStock_NotFound(t *testing.T) {
	f := setupService(t)
	missing := uuid.New()

	_, err := f.svc.StockIn(missing, 1, "", nurse)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = f.svc.StockOut(missing, 1, "", nurse)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = f.svc.EditMinQuantity(missing, 1, nurse)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = f.svc.GetItem(missing)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	assert.Empty(t, f.log(t))
}

func TestStock_TimestampsNeverDecrease(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Floss", Quantity: 10})

	_, err := f.svc.StockIn(item.ID, 1, "", nurse)
	require.NoError(t, err)

	f.clock.Set(start.Add(-time.Hour))
	_, err = f.svc.StockOut(item.ID, 1, "", nurse)
	require.NoError(t, err)

	entries := f.log(t)
	require.Len(t, entries, 2)
	assert.False(t, entries[1].Timestamp.Before(entries[0].Timestamp))
	assert.Less(t, entries[0].ID, entries[1].ID)
}

func TestEditMinQuantity(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Suction Tips", Quantity: 8, MinQuantity: 2})
	require.Equal(t, model.StatusNormal, item.Status)

	v, err := f.svc.EditMinQuantity(item.ID, 8, nurse)
	require.NoError(t, err)
	assert.Equal(t, 8, v.MinQuantity)
	assert.Equal(t, 8, v.Quantity)
	assert.Equal(t, model.StatusLowStock, v.Status)
	assert.Empty(t, f.log(t))

	_, err = f.svc.EditMinQuantity(item.ID, -1, nurse)
	assert.ErrorIs(t, err, model.ErrInvalidState)

	got, err := f.svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.MinQuantity)
}

func TestUpdateItem(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Burs", Quantity: 30, ExpiryDate: "2020-05-05"})
	f.register(t, service.CreateItemRequest{Name: "Matrix Bands", Quantity: 3})
	require.Equal(t, model.StatusExpired, item.Status)

	name, category, expiry := "Diamond Burs", "Rotary", ""
	v, err := f.svc.UpdateItem(item.ID, &service.UpdateItemRequest{Name: &name, Category: &category, ExpiryDate: &expiry}, nurse)
	require.NoError(t, err)
	assert.Equal(t, "Diamond Burs", v.Name)
	assert.Equal(t, "Rotary", v.Category)
	assert.Empty(t, v.ExpiryDate)
	assert.Equal(t, 30, v.Quantity)
	assert.Equal(t, model.StatusNormal, v.Status)

	taken := "matrix bands"
	_, err = f.svc.UpdateItem(item.ID, &service.UpdateItemRequest{Name: &taken}, nurse)
	assert.ErrorIs(t, err, model.ErrDuplicateName)

	same := "diamond burs"
	_, err = f.svc.UpdateItem(item.ID, &service.UpdateItemRequest{Name: &same}, nurse)
	assert.NoError(t, err, "renaming to itself is not a duplicate")

	blank := " "
	_, err = f.svc.UpdateItem(item.ID, &service.UpdateItemRequest{Name: &blank}, nurse)
	assert.ErrorIs(t, err, validator.ErrValidation)

	bad := "2024-13-01"
	_, err = f.svc.UpdateItem(item.ID, &service.UpdateItemRequest{ExpiryDate: &bad}, nurse)
	assert.ErrorIs(t, err, validator.ErrValidation)

	_, err = f.svc.UpdateItem(uuid.New(), &service.UpdateItemRequest{Name: &name}, nurse)
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestListItems(t *testing.T) {
	f := setupService(t)
	f.register(t, service.CreateItemRequest{Name: "Zinc Cement", Category: "Restorative", Quantity: 1, MinQuantity: 2})
	f.register(t, service.CreateItemRequest{Name: "Alginate", Category: "Impression", Quantity: 20, ExpiryDate: "2023-06-01"})
	f.register(t, service.CreateItemRequest{Name: "Gloves", Quantity: 500, MinQuantity: 100, Location: "Drawer 2"})

	all, err := f.svc.ListItems(service.ItemQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Zinc Cement", all[0].Name, "insertion order")
	assert.Equal(t, "Gloves", all[2].Name)

	again, err := f.svc.ListItems(service.ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, all, again)

	byName, err := f.svc.ListItems(service.ItemQuery{Sort: repository.SortName})
	require.NoError(t, err)
	assert.Equal(t, "Alginate", byName[0].Name)

	low, err := f.svc.ListItems(service.ItemQuery{Status: model.StatusLowStock})
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "Zinc Cement", low[0].Name)

	found, err := f.svc.ListItems(service.ItemQuery{Query: "drawer"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Gloves", found[0].Name)

	unclassified, err := f.svc.ListItems(service.ItemQuery{Category: model.UnclassifiedCategory})
	require.NoError(t, err)
	require.Len(t, unclassified, 1)
	assert.Equal(t, "Gloves", unclassified[0].Name)

	_, err = f.svc.ListItems(service.ItemQuery{Status: "BROKEN"})
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestGroupItems(t *testing.T) {
	f := setupService(t)
	f.register(t, service.CreateItemRequest{Name: "Gloves", Quantity: 500})
	f.register(t, service.CreateItemRequest{Name: "Zinc Cement", Category: "restorative", Quantity: 1, MinQuantity: 2})
	f.register(t, service.CreateItemRequest{Name: "Alginate", Category: "Impression", Quantity: 20, ExpiryDate: "2023-06-01"})
	f.register(t, service.CreateItemRequest{Name: "Resin", Category: "restorative", Quantity: 9})

	groups, err := f.svc.GroupItems(service.ItemQuery{})
	require.NoError(t, err)
	require.Len(t, groups, 3)

	assert.Equal(t, "Impression", groups[0].Category)
	assert.Equal(t, 1, groups[0].Counts[model.StatusExpired])

	assert.Equal(t, "restorative", groups[1].Category)
	require.Len(t, groups[1].Items, 2)
	assert.Equal(t, "Zinc Cement", groups[1].Items[0].Name)
	assert.Equal(t, 1, groups[1].Counts[model.StatusLowStock])
	assert.Equal(t, 1, groups[1].Counts[model.StatusNormal])

	assert.Equal(t, model.UnclassifiedCategory, groups[2].Category)
}

func TestListTransactions_Filters(t *testing.T) {
	f := setupService(t)
	gloves := f.register(t, service.CreateItemRequest{Name: "Gloves", Quantity: 100})
	masks := f.register(t, service.CreateItemRequest{Name: "Masks", Quantity: 100})

	_, err := f.svc.StockOut(gloves.ID, 10, "", nurse)
	require.NoError(t, err)
	f.clock.Advance(10 * 24 * time.Hour)
	_, err = f.svc.StockOut(masks.ID, 4, "", nurse)
	require.NoError(t, err)
	_, err = f.svc.StockIn(gloves.ID, 20, "", nurse)
	require.NoError(t, err)

	byItem, err := f.svc.ListTransactions(service.TransactionQuery{ItemID: &gloves.ID})
	require.NoError(t, err)
	assert.Len(t, byItem, 2)

	byName, err := f.svc.ListTransactions(service.TransactionQuery{ItemName: "masks"})
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	recent, err := f.svc.ListTransactions(service.TransactionQuery{Days: 7})
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	since := start.Add(time.Hour)
	fromSince, err := f.svc.ListTransactions(service.TransactionQuery{Since: &since, Kind: model.TxOut})
	require.NoError(t, err)
	require.Len(t, fromSince, 1)
	assert.Equal(t, masks.ID, fromSince[0].ItemID)

	other := uuid.New()
	none, err := f.svc.ListTransactions(service.TransactionQuery{ItemID: &other})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.svc.ListTransactions(service.TransactionQuery{Kind: "MOVE"})
	assert.ErrorIs(t, err, validator.ErrValidation)
}

func TestGetTransaction(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Bibs", Quantity: 5})
	_, err := f.svc.StockIn(item.ID, 5, "", nurse)
	require.NoError(t, err)

	entry, err := f.svc.GetTransaction(f.log(t)[0].ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, entry.ItemID)

	_, err = f.svc.GetTransaction(999)
	assert.ErrorIs(t, err, model.ErrTransactionNotFound)
}

func TestStockOut_Concurrent(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Prophy Paste", Quantity: 10})

	var (
		wg                 sync.WaitGroup
		mu                 sync.Mutex
		succeeded, refused int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.StockOut(item.ID, 1, "", nurse)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if assert.ErrorIs(t, err, model.ErrInsufficientStock) {
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, refused)

	got, err := f.svc.GetItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Len(t, f.log(t), 10)
}

func TestPublishedPayload(t *testing.T) {
	f := setupService(t)
	item := f.register(t, service.CreateItemRequest{Name: "Gloves", Unit: "box", Quantity: 3})

	_, err := f.svc.StockOut(item.ID, 2, "", nurse)
	require.NoError(t, err)

	events := f.pub.Events()
	require.Len(t, events, 2)
	last := events[1]
	assert.Equal(t, "transaction_created", last.Action)
	assert.Equal(t, "Nurse Kim used 2 box of 'Gloves'", last.Message)

	payload, ok := last.Payload.(map[string]interface{})
	require.True(t, ok)
	entry, ok := payload["transaction"].(model.Transaction)
	require.True(t, ok)
	assert.Equal(t, model.TxOut, entry.Kind)
}
