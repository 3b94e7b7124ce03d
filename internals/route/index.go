// file: internals/route/index.go
package routes

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	authMiddleware "schoolfee_backend/internals/middlewares/auth"
	routeDetails "schoolfee_backend/internals/route/details"
)

var startTime time.Time

// Role yang boleh masuk grup admin.
var adminRoles = []string{"admin", "finance", "owner"}

func SetupRoutes(app *fiber.App, db *gorm.DB, settings configs.Settings) {
	startTime = time.Now()

	BaseRoutes(app, db)

	// ===================== GROUPS =====================
	slog.Info("setting up PUBLIC group")
	public := app.Group("/api/public")

	slog.Info("setting up ADMIN group (auth + role check)")
	admin := app.Group("/api/a",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.JWTSecret,
			AllowCookieFallback: true,
		}),
		authMiddleware.OnlyRoles("", adminRoles...),
	)

	// ===================== MOUNT ROUTES =====================
	slog.Info("mounting finance routes")
	routeDetails.FinancePublicRoutes(public, db, settings)
	routeDetails.FinanceAdminRoutes(admin, db, settings)

	slog.Info("mounting school routes")
	routeDetails.SchoolAdminRoutes(admin, db)
}
