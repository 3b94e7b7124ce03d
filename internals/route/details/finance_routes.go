// file: internals/route/details/finance_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	FeeAssignmentRoute "schoolfee_backend/internals/features/finance/fee_assignments/route"
	FeeDefinitionRoute "schoolfee_backend/internals/features/finance/fee_definitions/route"
	GatewayRoute "schoolfee_backend/internals/features/finance/gateway/route"
	PaymentScheduleRoute "schoolfee_backend/internals/features/finance/payment_schedules/route"
	TransactionRoute "schoolfee_backend/internals/features/finance/transactions/route"
	"schoolfee_backend/internals/middlewares"
)

func FinancePublicRoutes(r fiber.Router, db *gorm.DB, settings configs.Settings) {
	GatewayRoute.GatewayPublicRoutes(r, db, settings)
}

func FinanceAdminRoutes(r fiber.Router, db *gorm.DB, settings configs.Settings) {
	heavy := middlewares.HeavyWriteRateLimiter()
	r.Use("/payment-schedules/batch-payment", heavy)
	r.Use("/payment-schedules/generate-missing", heavy)

	FeeDefinitionRoute.FeeDefinitionAdminRoutes(r, db, settings)
	FeeAssignmentRoute.FeeAssignmentAdminRoutes(r, db)
	GatewayRoute.GatewayAdminRoutes(r, db, settings)
	PaymentScheduleRoute.PaymentScheduleAdminRoutes(r, db, settings)
	TransactionRoute.TransactionAdminRoutes(r, db)
}
