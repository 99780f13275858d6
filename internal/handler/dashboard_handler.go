package handler

import (
	"strconv"

	"dental-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// positiveQuery reads an integer query param, falling back to def when it
// is missing or not positive.
func positiveQuery(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// GetStockMovement returns daily inbound/outbound units for charts.
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := positiveQuery(c, "days", 7)
	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}
	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns item counts per status.
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}
	return c.JSON(stats)
}

// GetTopUsage ranks items by units used.
// Query params: days (default 30), limit (default 5)
func (h *DashboardHandler) GetTopUsage(c *fiber.Ctx) error {
	days := positiveQuery(c, "days", 30)
	limit := positiveQuery(c, "limit", 5)
	data, err := h.service.GetTopUsage(days, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch usage report"})
	}
	return c.JSON(fiber.Map{
		"period": days,
		"limit":  limit,
		"data":   data,
	})
}
