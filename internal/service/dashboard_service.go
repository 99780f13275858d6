package service

import (
	"time"

	"dental-inventory/internal/model"
	"dental-inventory/internal/repository"
)

// DashboardStats feeds the metric cards.
type DashboardStats struct {
	TotalItems    int                  `json:"total_items"`
	TotalUnits    int                  `json:"total_units"`
	ExpiredCount  int                  `json:"expired_count"`
	ImminentCount int                  `json:"imminent_count"`
	LowStockCount int                  `json:"low_stock_count"`
	NormalCount   int                  `json:"normal_count"`
	ByStatus      map[model.Status]int `json:"by_status"`
}

// StockMovementData is one day of inbound/outbound units.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetStockMovement(days int) ([]StockMovementData, error)
	GetTopUsage(days, limit int) ([]UsageEntry, error)
}

type dashboardService struct {
	itemRepo repository.ItemRepository
	txRepo   repository.TransactionRepository
	rule     StatusRule
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardService(iRepo repository.ItemRepository, tRepo repository.TransactionRepository, opts InventoryOptions) DashboardService {
	opts = normalizeOptions(opts)
	return &dashboardService{
		itemRepo: iRepo,
		txRepo:   tRepo,
		rule:     opts.StatusRule,
		loc:      opts.Location,
		now:      opts.Now,
	}
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	items, err := s.itemRepo.FindAll(repository.ItemFilter{})
	if err != nil {
		return nil, err
	}

	today := model.CalendarDay(s.now().In(s.loc))
	stats := &DashboardStats{ByStatus: make(map[model.Status]int, len(model.AllStatuses))}
	for _, st := range model.AllStatuses {
		stats.ByStatus[st] = 0
	}
	for _, item := range items {
		stats.TotalItems++
		stats.TotalUnits += item.Quantity
		stats.ByStatus[s.rule.Derive(item, today)]++
	}
	stats.ExpiredCount = stats.ByStatus[model.StatusExpired]
	stats.ImminentCount = stats.ByStatus[model.StatusImminent]
	stats.LowStockCount = stats.ByStatus[model.StatusLowStock]
	stats.NormalCount = stats.ByStatus[model.StatusNormal]
	return stats, nil
}

// GetStockMovement returns one row per calendar day (clinic time zone) for
// the last days days, today included, oldest first. Days without movements
// are zero rows.
func (s *dashboardService) GetStockMovement(days int) ([]StockMovementData, error) {
	if days <= 0 {
		days = 7
	}
	now := s.now().In(s.loc)
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, s.loc).AddDate(0, 0, -(days - 1))

	entries, err := s.txRepo.FindAll(repository.TransactionFilter{Since: &start})
	if err != nil {
		return nil, err
	}

	results := make([]StockMovementData, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		key := start.AddDate(0, 0, i).Format(model.DateLayout)
		results[i].Date = key
		index[key] = i
	}

	for _, e := range entries {
		i, ok := index[e.Timestamp.In(s.loc).Format(model.DateLayout)]
		if !ok {
			continue
		}
		if e.Kind == model.TxIn {
			results[i].Inbound += e.Quantity
		} else {
			results[i].Outbound += e.Quantity
		}
	}
	return results, nil
}

// GetTopUsage ranks items by stock-out units over the last days days.
func (s *dashboardService) GetTopUsage(days, limit int) ([]UsageEntry, error) {
	if days <= 0 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)
	entries, err := s.txRepo.FindAll(repository.TransactionFilter{
		Kind:  model.TxOut,
		Since: &since,
	})
	if err != nil {
		return nil, err
	}
	return AggregateUsage(entries, limit), nil
}
