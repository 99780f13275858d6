package handler

import (
	"dental-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StaffHandler struct {
	staffService service.StaffService
}

func NewStaffHandler(staffService service.StaffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

// CreateStaff POST /api/v1/staff
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	var req service.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	staff, err := h.staffService.CreateStaff(&req, actorFrom(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Staff created successfully",
		"data":    staff.ToResponse(),
	})
}

// GetStaff GET /api/v1/staff
func (h *StaffHandler) GetStaff(c *fiber.Ctx) error {
	staff, err := h.staffService.GetAllStaff()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch staff"})
	}
	return c.JSON(staff)
}

// GetStaffMember GET /api/v1/staff/:id
func (h *StaffHandler) GetStaffMember(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid staff ID"})
	}
	staff, err := h.staffService.GetStaffByID(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(staff)
}
