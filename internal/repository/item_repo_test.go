package repository_test

import (
	"testing"

	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
	"dental-inventory/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedItems(t *testing.T, repo repository.ItemRepository, items ...model.Item) []model.Item {
	t.Helper()
	for i := range items {
		require.NoError(t, repo.Create(nil, &items[i]))
	}
	return items
}

func names(items []model.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

func TestItemRepo_CreateAssignsOrder(t *testing.T) {
	repo := repository.NewItemRepo(testutil.NewDB(t))
	items := seedItems(t, repo,
		model.Item{Name: "Gloves", Quantity: 10},
		model.Item{Name: "Alginate", Quantity: 2},
	)

	assert.NotEqual(t, uuid.Nil, items[0].ID)
	assert.Equal(t, int64(1), items[0].Seq)
	assert.Equal(t, int64(2), items[1].Seq)

	err := repo.Create(nil, &model.Item{Name: "Broken", Quantity: -1})
	assert.ErrorIs(t, err, model.ErrInvalidState)
	err = repo.Create(nil, &model.Item{Name: "Broken", MinQuantity: -1})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestItemRepo_FindAll(t *testing.T) {
	repo := repository.NewItemRepo(testutil.NewDB(t))
	seedItems(t, repo,
		model.Item{Name: "Gloves", Category: "Consumables", Quantity: 300, ExpiryDate: "2026-01-01", Location: "Drawer 1"},
		model.Item{Name: "alginate", Category: "Impression", Quantity: 4, ExpiryDate: "2024-03-01"},
		model.Item{Name: "Bibs 100%", Quantity: 80, Location: "Shelf B"},
		model.Item{Name: "Cotton", Category: "consumables", Quantity: 12},
	)

	tests := []struct {
		name   string
		filter repository.ItemFilter
		want   []string
	}{
		{"insertion order", repository.ItemFilter{}, []string{"Gloves", "alginate", "Bibs 100%", "Cotton"}},
		{"by name", repository.ItemFilter{Sort: repository.SortName}, []string{"alginate", "Bibs 100%", "Cotton", "Gloves"}},
		{"by quantity", repository.ItemFilter{Sort: repository.SortQuantity}, []string{"alginate", "Cotton", "Bibs 100%", "Gloves"}},
		{"by expiry, blanks last", repository.ItemFilter{Sort: repository.SortExpiry}, []string{"alginate", "Gloves", "Bibs 100%", "Cotton"}},
		{"query matches name case-insensitively", repository.ItemFilter{Query: "GLOV"}, []string{"Gloves"}},
		{"query matches location", repository.ItemFilter{Query: "shelf"}, []string{"Bibs 100%"}},
		{"query escapes wildcards", repository.ItemFilter{Query: "100%"}, []string{"Bibs 100%"}},
		{"category ignores case", repository.ItemFilter{Category: "CONSUMABLES"}, []string{"Gloves", "Cotton"}},
		{"unclassified category", repository.ItemFilter{Category: model.UnclassifiedCategory}, []string{"Bibs 100%"}},
		{"no match", repository.ItemFilter{Query: "zirconia"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.FindAll(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(items))
		})
	}
}

func TestItemRepo_Lookups(t *testing.T) {
	repo := repository.NewItemRepo(testutil.NewDB(t))
	items := seedItems(t, repo, model.Item{Name: "Prophy Angles", Quantity: 5})

	got, err := repo.FindByID(items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Prophy Angles", got.Name)

	got, err = repo.FindByName(nil, "  prophy angles ")
	require.NoError(t, err)
	assert.Equal(t, items[0].ID, got.ID)

	_, err = repo.FindByID(uuid.New())
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = repo.FindByName(nil, "missing")
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = repo.LockByID(nil, uuid.New())
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestItemRepo_Updates(t *testing.T) {
	repo := repository.NewItemRepo(testutil.NewDB(t))
	items := seedItems(t, repo, model.Item{Name: "Sutures", Quantity: 5, MinQuantity: 1})
	id := items[0].ID

	require.NoError(t, repo.UpdateQuantity(nil, id, 0, "staff-1"))
	require.NoError(t, repo.UpdateMinQuantity(nil, id, 3, "staff-1"))

	got, err := repo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, 3, got.MinQuantity)
	assert.Equal(t, "staff-1", got.UpdatedBy)

	assert.ErrorIs(t, repo.UpdateQuantity(nil, id, -1, ""), model.ErrInvalidState)
	assert.ErrorIs(t, repo.UpdateMinQuantity(nil, id, -1, ""), model.ErrInvalidState)
	assert.ErrorIs(t, repo.UpdateQuantity(nil, uuid.New(), 1, ""), model.ErrItemNotFound)
	assert.ErrorIs(t, repo.UpdateMinQuantity(nil, uuid.New(), 1, ""), model.ErrItemNotFound)

	got.Name = "Silk Sutures"
	got.Quantity = 99
	require.NoError(t, repo.Update(nil, got))
	got, err = repo.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, "Silk Sutures", got.Name)
	assert.Equal(t, 0, got.Quantity, "Update leaves quantity alone")
}
