// file: internals/features/school/class_thresholds/route/class_threshold_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/class_thresholds/controller"
)

func ClassThresholdAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewClassThresholdController(db)

	grp := admin.Group("/class-thresholds")
	grp.Get("/utilization/:classId", h.Utilization)
	grp.Get("/capacity/:classId", h.Capacity)

	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}
