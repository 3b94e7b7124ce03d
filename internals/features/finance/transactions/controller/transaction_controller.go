// file: internals/features/finance/transactions/controller/transaction_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/transactions/dto"
	"schoolfee_backend/internals/features/finance/transactions/service"
	helper "schoolfee_backend/internals/helpers"
)

type TransactionController struct {
	Svc *service.Service
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{Svc: service.New(db)}
}

// GET /transactions?student_id=&payment_item_id=&method=&type=&from=&to=
func (h *TransactionController) List(c *fiber.Ctx) error {
	var (
		q   dto.ListTransactionQuery
		err error
	)
	if q.StudentID, err = helper.ParseUUIDQuery(c, "student_id"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if q.PaymentItemID, err = helper.ParseUUIDQuery(c, "payment_item_id"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if q.From, err = helper.ParseDateQuery(c, "from"); err != nil {
		return helper.JsonAppError(c, err)
	}
	if q.To, err = helper.ParseDateQuery(c, "to"); err != nil {
		return helper.JsonAppError(c, err)
	}
	q.Method = c.Query("method")
	q.Type = c.Query("type")

	paging := helper.ResolvePaging(c, 20, 200)
	rows, total, err := h.Svc.List(c.UserContext(), q, paging)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToTransactionResponses(rows), helper.BuildPagination(total, paging, len(rows)))
}

// GET /transactions/:id
func (h *TransactionController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToTransactionResponse(*m))
}
