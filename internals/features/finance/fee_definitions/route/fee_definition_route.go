// file: internals/features/finance/fee_definitions/route/fee_definition_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/fee_definitions/controller"
)

// FeeDefinitionAdminRoutes: katalog fee (admin).
func FeeDefinitionAdminRoutes(admin fiber.Router, db *gorm.DB, settings configs.Settings) {
	h := controller.NewFeeDefinitionController(db, settings)

	grp := admin.Group("/fee-definitions")
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Patch("/:id", h.Update)
	grp.Delete("/:id", h.Delete)
}
