// file: internals/features/school/class_thresholds/controller/class_threshold_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/school/class_thresholds/dto"
	"schoolfee_backend/internals/features/school/class_thresholds/service"
	helper "schoolfee_backend/internals/helpers"
)

type ClassThresholdController struct {
	Svc *service.Service
}

func NewClassThresholdController(db *gorm.DB) *ClassThresholdController {
	return &ClassThresholdController{Svc: service.New(db)}
}

// POST /class-thresholds
func (h *ClassThresholdController) Create(c *fiber.Ctx) error {
	var in dto.ClassThresholdCreateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m := in.ToModel()
	if err := h.Svc.Create(c.UserContext(), &m); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "class threshold created", m)
}

// GET /class-thresholds?class_id=
func (h *ClassThresholdController) List(c *fiber.Ctx) error {
	classID, err := helper.ParseUUIDQuery(c, "class_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	paging := helper.ResolvePaging(c, 50, 200)
	rows, total, err := h.Svc.List(c.UserContext(), classID, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, paging, len(rows)))
}

// GET /class-thresholds/:id
func (h *ClassThresholdController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", m)
}

// PATCH /class-thresholds/:id
func (h *ClassThresholdController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.ClassThresholdUpdateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.UpdateMaxCapacity(c.UserContext(), id, in.ClassThresholdMaxCapacity)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "class threshold updated", m)
}

// DELETE /class-thresholds/:id
func (h *ClassThresholdController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "class threshold deleted", fiber.Map{"class_threshold_id": id})
}

// GET /class-thresholds/utilization/:classId
func (h *ClassThresholdController) Utilization(c *fiber.Ctx) error {
	classID, err := helper.ParseUUIDParam(c, "classId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := h.Svc.GetClassUtilization(c.UserContext(), classID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// GET /class-thresholds/capacity/:classId?division_id=
// data null = tidak ada threshold (tanpa batas)
func (h *ClassThresholdController) Capacity(c *fiber.Ctx) error {
	classID, err := helper.ParseUUIDParam(c, "classId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	divisionID, err := helper.ParseUUIDQuery(c, "division_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	out, err := h.Svc.GetAvailableCapacity(c.UserContext(), classID, divisionID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
