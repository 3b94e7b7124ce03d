// file: internals/features/finance/gateway/route/gateway_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/gateway/controller"
)

func GatewayAdminRoutes(admin fiber.Router, db *gorm.DB, settings configs.Settings) {
	h := controller.NewGatewayController(db, settings)
	admin.Post("/payment-schedules/gateway/checkout", h.Checkout)
}

// Webhook Midtrans: tanpa JWT, diamankan signature SHA512.
func GatewayPublicRoutes(public fiber.Router, db *gorm.DB, settings configs.Settings) {
	h := controller.NewGatewayController(db, settings)
	public.Post("/payment-gateway/notification", h.Notification)
}
