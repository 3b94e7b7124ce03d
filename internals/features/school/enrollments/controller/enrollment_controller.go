// file: internals/features/school/enrollments/controller/enrollment_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/enrollments/dto"
	"schoolfee_backend/internals/features/school/enrollments/model"
	"schoolfee_backend/internals/features/school/enrollments/service"
	helper "schoolfee_backend/internals/helpers"
)

type EnrollmentController struct {
	Svc *service.Service
}

func NewEnrollmentController(db *gorm.DB) *EnrollmentController {
	return &EnrollmentController{Svc: service.New(db)}
}

// POST /enrollments
func (h *EnrollmentController) Create(c *fiber.Ctx) error {
	var in dto.EnrollmentCreateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Create(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "enrollment created", dto.ToEnrollmentResponse(*m))
}

// GET /enrollments
func (h *EnrollmentController) List(c *fiber.Ctx) error {
	var q dto.ListEnrollmentQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	paging := helper.ResolvePaging(c, 20, 200)
	rows, total, err := h.Svc.List(c.UserContext(), q, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToEnrollmentResponses(rows), helper.BuildPagination(total, paging, len(rows)))
}

// GET /enrollments/:id
func (h *EnrollmentController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToEnrollmentResponse(*m))
}

// PATCH /enrollments/:id
func (h *EnrollmentController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.EnrollmentUpdateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Update(c.UserContext(), id, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "enrollment updated", dto.ToEnrollmentResponse(*m))
}

// PATCH /enrollments/:id/status
func (h *EnrollmentController) UpdateStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.EnrollmentStatusDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.UpdateStatus(c.UserContext(), id, model.EnrollmentStatus(in.EnrollmentStatus), in.ForceOverCapacity)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "enrollment status updated", dto.ToEnrollmentResponse(*m))
}

// DELETE /enrollments/:id
func (h *EnrollmentController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "enrollment deleted", fiber.Map{"enrollment_id": id})
}
