// file: internals/helpers/params.go
package helper

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolfee_backend/internals/helpers/apperror"
)

// ParseUUIDParam membaca path param UUID; gagal -> validation error dengan nama param.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid "+name, map[string][]string{name: {"must be a valid UUID"}})
	}
	return id, nil
}

// ParseUUIDQuery: query param UUID opsional (kosong -> nil).
func ParseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.Validation("invalid "+name, map[string][]string{name: {"must be a valid UUID"}})
	}
	return &id, nil
}

// ParseDateQuery: query param tanggal "YYYY-MM-DD" opsional.
func ParseDateQuery(c *fiber.Ctx, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperror.Validation("invalid "+name, map[string][]string{name: {"must be a date (YYYY-MM-DD)"}})
	}
	return &t, nil
}
