// file: internals/features/finance/payment_schedules/route/payment_schedule_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/controller"
)

func PaymentScheduleAdminRoutes(admin fiber.Router, db *gorm.DB, settings configs.Settings) {
	h := controller.NewPaymentScheduleController(db, settings)

	grp := admin.Group("/payment-schedules")

	// path statis dulu, baru "/:scheduleId"
	grp.Post("/enrollment/:enrollmentId/create", h.Generate)
	grp.Get("/enrollment/:enrollmentId/preview", h.Preview)
	grp.Post("/regenerate/:enrollmentId", h.Regenerate)
	grp.Post("/generate-missing", h.GenerateMissing)
	grp.Get("/student/:studentId", h.ListForStudent)
	grp.Get("/pending", h.ListPending)
	grp.Post("/batch-payment", h.BatchPayment)

	items := grp.Group("/items/:itemId")
	items.Post("/pay", h.PayItem)
	items.Post("/waive", h.WaiveItem)
	items.Post("/late-fee", h.LateFee)

	grp.Get("/:scheduleId/summary", h.Summary)
	grp.Get("/:scheduleId", h.Get)
}
