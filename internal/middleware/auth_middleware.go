package middleware

import (
	"strings"

	"dental-inventory/internal/repository"
	"dental-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth.
const (
	LocalStaffID    = "staff_id"
	LocalStaffEmail = "staff_email"
	LocalStaffName  = "staff_name"
	LocalPrivileges = "staff_privileges"
)

// RequireAuth validates the bearer token, checks it belongs to the live
// session of an active account, and stores the identity in Locals.
func RequireAuth(staffRepo repository.StaffRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		staff, err := staffRepo.FindByID(claims.StaffID)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Staff not found"})
		}
		if !staff.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Staff account is inactive"})
		}
		if staff.TokenVersion != claims.TokenVersion {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		c.Locals(LocalStaffID, staff.ID.String())
		c.Locals(LocalStaffEmail, staff.Email)
		c.Locals(LocalStaffName, staff.FullName)
		// privileges come from the DB so revocations apply without a new login
		c.Locals(LocalPrivileges, staff.PrivilegeCodes())

		return c.Next()
	}
}

// RequirePrivilege rejects requests whose staff lacks the privilege.
func RequirePrivilege(required string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}
		for _, p := range privileges {
			if p == required {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires '" + required + "' privilege",
		})
	}
}
