package handler

import (
	"strconv"
	"strings"

	"dental-inventory/internal/middleware"
	"dental-inventory/internal/model"
	"dental-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// StockRequest is the body of stock-in and stock-out calls.
type StockRequest struct {
	Quantity int    `json:"quantity"`
	Memo     string `json:"memo"`
}

type MinQuantityRequest struct {
	MinQuantity *int `json:"min_quantity"`
}

// actorFrom reads the identity RequireAuth stored in Locals.
func actorFrom(c *fiber.Ctx) service.Actor {
	id, _ := c.Locals(middleware.LocalStaffID).(string)
	if id == "" {
		return service.SystemActor
	}
	name, _ := c.Locals(middleware.LocalStaffName).(string)
	email, _ := c.Locals(middleware.LocalStaffEmail).(string)
	return service.Actor{ID: id, Name: name, Email: email}
}

func itemID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func (h *InventoryHandler) itemQuery(c *fiber.Ctx) service.ItemQuery {
	return service.ItemQuery{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Status:   model.Status(strings.ToUpper(c.Query("status"))),
		Sort:     c.Query("sort"),
	}
}

// GetItems lists items with their status.
// GET /api/v1/items?q=&category=&status=&sort=
func (h *InventoryHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(h.itemQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(items)
}

// GetGroupedItems lists items grouped into category cards.
// GET /api/v1/items/grouped
func (h *InventoryHandler) GetGroupedItems(c *fiber.Ctx) error {
	groups, err := h.service.GroupItems(h.itemQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(groups)
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	item, err := h.service.GetItem(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(item)
}

// CreateItem registers one item.
// POST /api/v1/items
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := h.service.CreateItem(&req, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Item registered", "data": item})
}

// CreateItems registers already-normalised rows in one all-or-nothing batch.
// POST /api/v1/items/bulk
func (h *InventoryHandler) CreateItems(c *fiber.Ctx) error {
	var req struct {
		Items []service.CreateItemRequest `json:"items"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	items, err := h.service.CreateItems(req.Items, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Items registered", "count": len(items), "data": items})
}

// UpdateItem edits descriptive fields.
// PUT /api/v1/items/:id
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := h.service.UpdateItem(id, &req, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item updated", "data": item})
}

// StockIn POST /api/v1/items/:id/stock-in
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	return h.stock(c, h.service.StockIn, "Stock added")
}

// StockOut POST /api/v1/items/:id/stock-out
func (h *InventoryHandler) StockOut(c *fiber.Ctx) error {
	return h.stock(c, h.service.StockOut, "Stock used")
}

type stockFunc func(id uuid.UUID, delta int, memo string, actor service.Actor) (*model.ItemView, error)

func (h *InventoryHandler) stock(c *fiber.Ctx, move stockFunc, message string) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	var req StockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	item, err := move(id, req.Quantity, req.Memo, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": message, "data": item})
}

// UpdateMinQuantity PUT /api/v1/items/:id/min-quantity
func (h *InventoryHandler) UpdateMinQuantity(c *fiber.Ctx) error {
	id, err := itemID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
	}
	var req MinQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.MinQuantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_quantity is required"})
	}
	item, err := h.service.EditMinQuantity(id, *req.MinQuantity, actorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Minimum quantity updated", "data": item})
}

// GetTransactions lists the stock log, oldest first.
// GET /api/v1/transactions?item_id=&item_name=&kind=&days=
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	q := service.TransactionQuery{
		ItemName: c.Query("item_name"),
		Kind:     model.TransactionKind(strings.ToUpper(c.Query("kind"))),
	}
	if raw := c.Query("item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid item ID"})
		}
		q.ItemID = &id
	}
	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "days must be a non-negative integer"})
		}
		q.Days = days
	}

	entries, err := h.service.ListTransactions(q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(entries)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}
	entry, err := h.service.GetTransaction(uint(id))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(entry)
}
