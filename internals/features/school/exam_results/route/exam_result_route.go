// file: internals/features/school/exam_results/route/exam_result_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/exam_results/controller"
)

func ExamResultAdminRoutes(admin fiber.Router, db *gorm.DB) {
	h := controller.NewExamResultController(db)

	grp := admin.Group("/exam-results")
	grp.Post("/student/:studentId/bulk", h.BulkUpsert)
	grp.Get("/student/:studentId", h.ListForStudent)
}
