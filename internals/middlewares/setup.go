package middlewares

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global (urutan: request id → log → recover → cors → limiter).
func SetupMiddlewares(app *fiber.App, log *slog.Logger) {
	app.Use(logger.RequestID(10 * time.Second))
	app.Use(logger.LoggerMiddleware(log))
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(GlobalRateLimiter())
}
