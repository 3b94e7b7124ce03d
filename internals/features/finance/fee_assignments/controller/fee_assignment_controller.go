// file: internals/features/finance/fee_assignments/controller/fee_assignment_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/fee_assignments/dto"
	"schoolfee_backend/internals/features/finance/fee_assignments/service"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/dbtime"
)

type FeeAssignmentController struct {
	Svc *service.Service
}

func NewFeeAssignmentController(db *gorm.DB) *FeeAssignmentController {
	return &FeeAssignmentController{Svc: service.New(db)}
}

/* =======================================================
   CRUD
======================================================= */

// POST /fee-assignments
func (h *FeeAssignmentController) Create(c *fiber.Ctx) error {
	var in dto.FeeAssignmentCreateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Create(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "fee assignment created", dto.ToFeeAssignmentResponse(*m))
}

// GET /fee-assignments
func (h *FeeAssignmentController) List(c *fiber.Ctx) error {
	var q dto.ListFeeAssignmentQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	paging := helper.ResolvePaging(c, 20, 200)
	rows, total, err := h.Svc.List(c.UserContext(), q, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeAssignmentResponses(rows), helper.BuildPagination(total, paging, len(rows)))
}

// GET /fee-assignments/:id
func (h *FeeAssignmentController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeAssignmentResponse(*m))
}

// PATCH /fee-assignments/:id
func (h *FeeAssignmentController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.FeeAssignmentUpdateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Update(c.UserContext(), id, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "fee assignment updated", dto.ToFeeAssignmentResponse(*m))
}

// DELETE /fee-assignments/:id
func (h *FeeAssignmentController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "fee assignment deleted", fiber.Map{"fee_assignment_id": id})
}

/* =======================================================
   RESOLVE
======================================================= */

func asOfOrToday(c *fiber.Ctx) (dbtime.Date, error) {
	d, err := helper.ParseDateQuery(c, "as_of")
	if err != nil {
		return dbtime.Date{}, err
	}
	if d == nil {
		return dbtime.Date{Time: dbtime.Today()}, nil
	}
	return dbtime.Date{Time: *d}, nil
}

// GET /fee-assignments/resolve?student_id=&class_id=&division_id=&bus_route_id=&bus_stop_id=&admission_type=&as_of=
func (h *FeeAssignmentController) Resolve(c *fiber.Ctx) error {
	asOf, err := asOfOrToday(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rc := service.ResolveContext{
		AdmissionType: strings.TrimSpace(c.Query("admission_type")),
		AsOf:          asOf.Time,
	}
	for name, dst := range map[string]**uuid.UUID{
		"student_id":   &rc.StudentID,
		"class_id":     &rc.ClassID,
		"division_id":  &rc.DivisionID,
		"bus_route_id": &rc.BusRouteID,
		"bus_stop_id":  &rc.BusStopID,
	} {
		v, err := helper.ParseUUIDQuery(c, name)
		if err != nil {
			return helper.JsonAppError(c, err)
		}
		*dst = v
	}
	// bus hanya relevan untuk admission Transport
	if rc.AdmissionType != string(enrModel.AdmissionTransport) {
		rc.BusRouteID, rc.BusStopID = nil, nil
	}

	rows, err := h.Svc.Resolve(c.UserContext(), rc)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"context":     rc,
		"assignments": dto.ToFeeAssignmentResponses(rows),
	})
}

// GET /fee-assignments/enrollment/:enrollmentId/resolve?as_of=
func (h *FeeAssignmentController) ResolveForEnrollment(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "enrollmentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	asOf, err := asOfOrToday(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	rows, rc, err := h.Svc.ResolveForEnrollment(c.UserContext(), enrollmentID, asOf.Time)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", fiber.Map{
		"context":     rc,
		"assignments": dto.ToFeeAssignmentResponses(rows),
	})
}
