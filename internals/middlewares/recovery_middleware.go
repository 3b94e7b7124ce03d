package middlewares

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	helper "schoolfee_backend/internals/helpers"
)

// RecoveryMiddleware menangkap panic dan mengembalikan error 500
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e any) {
			slog.Error("panic recovered",
				slog.String("request_id", helper.RequestID(c)),
				slog.String("path", c.OriginalURL()),
				slog.String("panic", fmt.Sprint(e)),
			)
		},
	})
}
