package service

import (
	"sort"

	"dental-inventory/internal/model"

	"github.com/google/uuid"
)

// UsageEntry is the stock-out total of one item over a window.
type UsageEntry struct {
	ItemID   uuid.UUID `json:"item_id"`
	ItemName string    `json:"item_name"`
	Total    int       `json:"total"`
}

// AggregateUsage sums stock-out quantities per item reference and returns
// the top limit entries by total, highest first. entries must be in
// insertion order; ties keep the order in which each item first appeared.
// A limit <= 0 returns every item.
func AggregateUsage(entries []model.Transaction, limit int) []UsageEntry {
	index := make(map[uuid.UUID]int)
	var usage []UsageEntry

	for _, e := range entries {
		if e.Kind != model.TxOut {
			continue
		}
		i, ok := index[e.ItemID]
		if !ok {
			i = len(usage)
			index[e.ItemID] = i
			usage = append(usage, UsageEntry{ItemID: e.ItemID, ItemName: e.ItemName})
		}
		usage[i].Total += e.Quantity
		if e.ItemName != "" {
			usage[i].ItemName = e.ItemName // latest snapshot wins
		}
	}

	sort.SliceStable(usage, func(a, b int) bool {
		return usage[a].Total > usage[b].Total
	})

	if limit > 0 && len(usage) > limit {
		usage = usage[:limit]
	}
	if usage == nil {
		usage = []UsageEntry{}
	}
	return usage
}
