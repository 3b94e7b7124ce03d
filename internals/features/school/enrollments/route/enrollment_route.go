// file: internals/features/school/enrollments/route/enrollment_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/enrollments/controller"
)

func EnrollmentAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewEnrollmentController(db)

	grp := admin.Group("/enrollments")
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Patch("/:id/status", h.UpdateStatus)
	grp.Delete("/:id", h.Delete)
}
