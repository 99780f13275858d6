package service

import (
	"testing"

	"dental-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAggregateUsage(t *testing.T) {
	gloves, masks, floss := uuid.New(), uuid.New(), uuid.New()
	entries := []model.Transaction{
		{ItemID: gloves, ItemName: "Gloves", Kind: model.TxOut, Quantity: 3},
		{ItemID: masks, ItemName: "Masks", Kind: model.TxOut, Quantity: 5},
		{ItemID: floss, ItemName: "Floss", Kind: model.TxIn, Quantity: 100},
		{ItemID: gloves, ItemName: "Gloves", Kind: model.TxOut, Quantity: 4},
		{ItemID: floss, ItemName: "Floss", Kind: model.TxOut, Quantity: 1},
	}

	got := AggregateUsage(entries, 0)

	assert.Equal(t, []UsageEntry{
		{ItemID: gloves, ItemName: "Gloves", Total: 7},
		{ItemID: masks, ItemName: "Masks", Total: 5},
		{ItemID: floss, ItemName: "Floss", Total: 1},
	}, got)
}

func TestAggregateUsage_TiesKeepFirstAppearance(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	entries := []model.Transaction{
		{ItemID: b, ItemName: "B", Kind: model.TxOut, Quantity: 2},
		{ItemID: a, ItemName: "A", Kind: model.TxOut, Quantity: 2},
		{ItemID: c, ItemName: "C", Kind: model.TxOut, Quantity: 1},
		{ItemID: c, ItemName: "C", Kind: model.TxOut, Quantity: 1},
	}

	got := AggregateUsage(entries, 0)

	assert.Equal(t, []uuid.UUID{b, a, c}, []uuid.UUID{got[0].ItemID, got[1].ItemID, got[2].ItemID})
}

func TestAggregateUsage_Limit(t *testing.T) {
	var entries []model.Transaction
	for i := 1; i <= 5; i++ {
		entries = append(entries, model.Transaction{ItemID: uuid.New(), Kind: model.TxOut, Quantity: i})
	}

	got := AggregateUsage(entries, 2)

	assert.Len(t, got, 2)
	assert.Equal(t, 5, got[0].Total)
	assert.Equal(t, 4, got[1].Total)
}

func TestAggregateUsage_Empty(t *testing.T) {
	got := AggregateUsage(nil, 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = AggregateUsage([]model.Transaction{{ItemID: uuid.New(), Kind: model.TxIn, Quantity: 9}}, 3)
	assert.Empty(t, got)
}
