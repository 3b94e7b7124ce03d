// file: internals/features/finance/fee_assignments/route/fee_assignment_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/fee_assignments/controller"
)

func FeeAssignmentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewFeeAssignmentController(db)

	grp := admin.Group("/fee-assignments")
	// resolve didaftarkan sebelum "/:id"
	grp.Get("/resolve", h.Resolve)
	grp.Get("/enrollment/:enrollmentId/resolve", h.ResolveForEnrollment)

	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}
