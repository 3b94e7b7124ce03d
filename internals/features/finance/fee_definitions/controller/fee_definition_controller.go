// file: internals/features/finance/fee_definitions/controller/fee_definition_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/fee_definitions/dto"
	"schoolfee_backend/internals/features/finance/fee_definitions/service"
	helper "schoolfee_backend/internals/helpers"
)

type FeeDefinitionController struct {
	Svc *service.Service
}

func NewFeeDefinitionController(db *gorm.DB, settings configs.Settings) *FeeDefinitionController {
	return &FeeDefinitionController{Svc: service.New(db, settings)}
}

// POST /fee-definitions
func (h *FeeDefinitionController) Create(c *fiber.Ctx) error {
	var in dto.FeeDefinitionCreateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Create(c.UserContext(), in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "fee definition created", dto.ToFeeDefinitionResponse(*m))
}

// GET /fee-definitions
func (h *FeeDefinitionController) List(c *fiber.Ctx) error {
	var q dto.ListFeeDefinitionQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid query")
	}
	paging := helper.ResolvePaging(c, 20, 200)
	rows, total, err := h.Svc.List(c.UserContext(), q, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeDefinitionResponses(rows), helper.BuildPagination(total, paging, len(rows)))
}

// GET /fee-definitions/:id
func (h *FeeDefinitionController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeDefinitionResponse(*m))
}

// PATCH /fee-definitions/:id
func (h *FeeDefinitionController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.FeeDefinitionUpdateDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Update(c.UserContext(), id, in)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "fee definition updated", dto.ToFeeDefinitionResponse(*m))
}

// DELETE /fee-definitions/:id
func (h *FeeDefinitionController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonDeleted(c, "fee definition deleted", fiber.Map{"fee_definition_id": id})
}
