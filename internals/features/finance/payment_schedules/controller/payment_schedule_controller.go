// file: internals/features/finance/payment_schedules/controller/payment_schedule_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/dto"
	"schoolfee_backend/internals/features/finance/payment_schedules/service"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/dbtime"
)

type PaymentScheduleController struct {
	Svc *service.Service
}

func NewPaymentScheduleController(db *gorm.DB, settings configs.Settings) *PaymentScheduleController {
	return &PaymentScheduleController{Svc: service.New(db, settings)}
}

/* =======================================================
   Generation
======================================================= */

// POST /payment-schedules/enrollment/:enrollmentId/create
func (h *PaymentScheduleController) Generate(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "enrollmentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.Generate(c.UserContext(), enrollmentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	msg := "payment schedule created"
	if res.NoApplicableFees {
		msg = "payment schedule created without items: no applicable fees"
	}
	return helper.JsonCreated(c, msg, dto.ToGenerateResponse(*res, dbtime.Today()))
}

// GET /payment-schedules/enrollment/:enrollmentId/preview
func (h *PaymentScheduleController) Preview(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "enrollmentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.Preview(c.UserContext(), enrollmentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "preview", dto.ToGenerateResponse(*res, dbtime.Today()))
}

// POST /payment-schedules/regenerate/:enrollmentId
func (h *PaymentScheduleController) Regenerate(c *fiber.Ctx) error {
	enrollmentID, err := helper.ParseUUIDParam(c, "enrollmentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.RegenerateScheduleDTO
	if len(c.Body()) > 0 {
		if err := helper.BodyParseAndValidate(c, &in); err != nil {
			return helper.JsonAppError(c, err)
		}
	}
	res, err := h.Svc.Regenerate(c.UserContext(), enrollmentID, in.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "payment schedule regenerated", dto.ToGenerateResponse(*res, dbtime.Today()))
}

// POST /payment-schedules/generate-missing
func (h *PaymentScheduleController) GenerateMissing(c *fiber.Ctx) error {
	rep, err := h.Svc.GenerateAllMissing(c.UserContext())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "missing schedules processed", rep)
}

/* =======================================================
   Reads
======================================================= */

// GET /payment-schedules/student/:studentId
func (h *PaymentScheduleController) ListForStudent(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDParam(c, "studentId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.ListForStudent(c.UserContext(), studentID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToStudentSchedulesResponse(*res, dbtime.Today()))
}

// GET /payment-schedules/pending?student_id=&overdue=true
func (h *PaymentScheduleController) ListPending(c *fiber.Ctx) error {
	studentID, err := helper.ParseUUIDQuery(c, "student_id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	q := service.PendingQuery{
		StudentID:   studentID,
		OverdueOnly: strings.EqualFold(strings.TrimSpace(c.Query("overdue")), "true"),
	}
	paging := helper.ResolvePaging(c, 50, 500)
	rows, total, err := h.Svc.ListPending(c.UserContext(), q, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToPendingItemResponses(rows, dbtime.Today()), helper.BuildPagination(total, paging, len(rows)))
}

// GET /payment-schedules/:scheduleId
func (h *PaymentScheduleController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "scheduleId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPaymentScheduleResponse(*m, dbtime.Today()))
}

// GET /payment-schedules/:scheduleId/summary
func (h *PaymentScheduleController) Summary(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "scheduleId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	sum, err := h.Svc.Summary(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}

/* =======================================================
   Ledger
======================================================= */

// POST /payment-schedules/batch-payment
func (h *PaymentScheduleController) BatchPayment(c *fiber.Ctx) error {
	var in dto.BatchPaymentDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.ProcessBatch(c.UserContext(), in.ToRequest())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "batch payment recorded", dto.ToBatchPaymentResponse(*res, dbtime.Today()))
}

// POST /payment-schedules/items/:itemId/pay
func (h *PaymentScheduleController) PayItem(c *fiber.Ctx) error {
	itemID, err := helper.ParseUUIDParam(c, "itemId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.PayItemDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.ApplyPayment(c.UserContext(), itemID, in.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "payment recorded", dto.ToItemLedgerResponse(*res, dbtime.Today()))
}

// POST /payment-schedules/items/:itemId/waive
func (h *PaymentScheduleController) WaiveItem(c *fiber.Ctx) error {
	itemID, err := helper.ParseUUIDParam(c, "itemId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.WaiveItemDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.Waive(c.UserContext(), itemID, in.Reason)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "payment item waived", dto.ToItemLedgerResponse(*res, dbtime.Today()))
}

// POST /payment-schedules/items/:itemId/late-fee
func (h *PaymentScheduleController) LateFee(c *fiber.Ctx) error {
	itemID, err := helper.ParseUUIDParam(c, "itemId")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var in dto.LateFeeDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	res, err := h.Svc.ApplyLateFee(c.UserContext(), itemID, in.Amount)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonUpdated(c, "late fee applied", dto.ToItemLedgerResponse(*res, dbtime.Today()))
}
