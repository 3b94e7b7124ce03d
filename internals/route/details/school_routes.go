// file: internals/route/details/school_routes.go
package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	ClassThresholdRoute "schoolfee_backend/internals/features/school/class_thresholds/route"
	EnrollmentRoute "schoolfee_backend/internals/features/school/enrollments/route"
	ExamResultRoute "schoolfee_backend/internals/features/school/exam_results/route"
)

func SchoolAdminRoutes(r fiber.Router, db *gorm.DB) {
	EnrollmentRoute.EnrollmentAdminRoutes(r, db)
	ClassThresholdRoute.ClassThresholdAdminRoutes(r, db)
	ExamResultRoute.ExamResultAdminRoutes(r, db)
}
