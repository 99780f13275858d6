package handler

import (
	"dental-inventory/internal/middleware"
	"dental-inventory/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles every HTTP handler mounted under /api/v1.
type Handlers struct {
	Auth      *AuthHandler
	Inventory *InventoryHandler
	Dashboard *DashboardHandler
	Staff     *StaffHandler
	Role      *RoleHandler
}

// Register mounts the API. requireAuth guards everything except /auth.
func Register(app *fiber.App, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Post("/validate-token", h.Auth.ValidateToken)

	protected := api.Group("", requireAuth)
	priv := middleware.RequirePrivilege

	// Items
	protected.Get("/items", h.Inventory.GetItems)
	protected.Get("/items/grouped", h.Inventory.GetGroupedItems)
	protected.Get("/items/:id", h.Inventory.GetItem)
	protected.Post("/items", priv(model.PrivItemCreate), h.Inventory.CreateItem)
	protected.Post("/items/bulk", priv(model.PrivItemCreate), h.Inventory.CreateItems)
	protected.Put("/items/:id", priv(model.PrivItemUpdate), h.Inventory.UpdateItem)
	protected.Put("/items/:id/min-quantity", priv(model.PrivItemUpdate), h.Inventory.UpdateMinQuantity)

	// Stock movements
	protected.Post("/items/:id/stock-in", priv(model.PrivStockIn), h.Inventory.StockIn)
	protected.Post("/items/:id/stock-out", priv(model.PrivStockOut), h.Inventory.StockOut)
	protected.Get("/transactions", priv(model.PrivTransactionView), h.Inventory.GetTransactions)
	protected.Get("/transactions/:id", priv(model.PrivTransactionView), h.Inventory.GetTransaction)

	// Reports
	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", priv(model.PrivReportView), h.Dashboard.GetStockMovement)
	protected.Get("/reports/top-usage", priv(model.PrivReportView), h.Dashboard.GetTopUsage)

	// Staff
	protected.Get("/staff", priv(model.PrivStaffManage), h.Staff.GetStaff)
	protected.Get("/staff/:id", priv(model.PrivStaffManage), h.Staff.GetStaffMember)
	protected.Post("/staff", priv(model.PrivStaffManage), h.Staff.CreateStaff)
	protected.Get("/roles", h.Role.GetRoles)
	protected.Get("/privileges", h.Role.GetPrivileges)
}
