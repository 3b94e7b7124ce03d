package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	helper "schoolfee_backend/internals/helpers"
)

// OnlyRoles: lolos kalau salah satu role token ada di daftar. Dipasang setelah AuthJWT.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}
	if customMessage == "" {
		customMessage = "Forbidden: you are not authorized to access this resource"
	}

	return func(c *fiber.Ctx) error {
		have, _ := c.Locals(LocRoles).([]string)
		for _, r := range have {
			if _, ok := allowed[r]; ok {
				return c.Next()
			}
		}
		return helper.JsonError(c, fiber.StatusForbidden, customMessage)
	}
}
