package handler

import (
	"errors"
	"log"

	"dental-inventory/internal/model"
	"dental-inventory/internal/service"
	"dental-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

// writeError maps domain errors to an HTTP status and writes the JSON body.
func writeError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrItemNotFound),
		errors.Is(err, model.ErrTransactionNotFound),
		errors.Is(err, service.ErrStaffNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrInsufficientStock),
		errors.Is(err, model.ErrDuplicateName),
		errors.Is(err, service.ErrEmailExists):
		return fiber.StatusConflict
	case errors.Is(err, model.ErrInvalidState):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, validator.ErrValidation),
		errors.Is(err, service.ErrRoleNotFound):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
