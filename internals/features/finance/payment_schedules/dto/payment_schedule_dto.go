// file: internals/features/finance/payment_schedules/dto/payment_schedule_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	"schoolfee_backend/internals/features/finance/payment_schedules/service"
	txModel "schoolfee_backend/internals/features/finance/transactions/model"
	enrModel "schoolfee_backend/internals/features/school/enrollments/model"
	"schoolfee_backend/internals/helpers/dbtime"
)

/* =========================================================
   Requests (body camelCase, mengikuti client lama)
========================================================= */

type RegenerateScheduleDTO struct {
	PaymentPreference *string `json:"paymentPreference" validate:"omitempty,oneof=installments full"`
	Force             bool    `json:"force"`
}

func (r RegenerateScheduleDTO) ToInput() service.RegenerateInput {
	in := service.RegenerateInput{Force: r.Force}
	if r.PaymentPreference != nil {
		p := enrModel.PaymentPreference(strings.TrimSpace(*r.PaymentPreference))
		in.PaymentPreference = &p
	}
	return in
}

// BatchPaymentDTO: aturan wajib (itemIds, paymentMethod, amount) dicek di service.
type BatchPaymentDTO struct {
	ItemIDs         []uuid.UUID     `json:"itemIds" validate:"max=200"`
	PaymentMethod   string          `json:"paymentMethod"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber *string         `json:"referenceNumber" validate:"omitempty,max=120"`
	Notes           *string         `json:"notes" validate:"omitempty,max=1000"`
	PaymentDate     *dbtime.Date    `json:"paymentDate"`
	PayerName       *string         `json:"payerName" validate:"omitempty,max=120"`
}

func (b BatchPaymentDTO) ToRequest() service.BatchPaymentRequest {
	return service.BatchPaymentRequest{
		ItemIDs:         b.ItemIDs,
		PaymentMethod:   b.PaymentMethod,
		Amount:          b.Amount,
		ReferenceNumber: trimPtr(b.ReferenceNumber),
		Notes:           trimPtr(b.Notes),
		PaymentDate:     b.PaymentDate.TimePtr(),
		PayerName:       trimPtr(b.PayerName),
	}
}

type PayItemDTO struct {
	Amount           decimal.Decimal `json:"amount"`
	AllowOverpayment bool            `json:"allowOverpayment"`
	PaymentMethod    string          `json:"paymentMethod"`
	ReferenceNumber  *string         `json:"referenceNumber" validate:"omitempty,max=120"`
	Notes            *string         `json:"notes" validate:"omitempty,max=1000"`
	PaymentDate      *dbtime.Date    `json:"paymentDate"`
	PayerName        *string         `json:"payerName" validate:"omitempty,max=120"`
}

func (p PayItemDTO) ToInput() service.ItemPayment {
	return service.ItemPayment{
		Amount:           p.Amount,
		AllowOverpayment: p.AllowOverpayment,
		Method:           p.PaymentMethod,
		ReferenceNumber:  trimPtr(p.ReferenceNumber),
		Notes:            trimPtr(p.Notes),
		PaymentDate:      p.PaymentDate.TimePtr(),
		PayerName:        trimPtr(p.PayerName),
	}
}

type WaiveItemDTO struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type LateFeeDTO struct {
	Amount decimal.Decimal `json:"amount"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

/* =========================================================
   Responses
========================================================= */

// PaymentItemResponse: item + nilai turunan (dihitung saat baca).
type PaymentItemResponse struct {
	model.PaymentItemModel
	TotalAmount       decimal.Decimal `json:"total_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	IsOverdue         bool            `json:"is_overdue"`
}

func ToPaymentItemResponse(it model.PaymentItemModel, today time.Time) PaymentItemResponse {
	return PaymentItemResponse{
		PaymentItemModel:  it,
		TotalAmount:       service.Due(it),
		OutstandingAmount: service.Outstanding(it),
		IsOverdue:         service.IsOverdue(it, today),
	}
}

func ToPaymentItemResponses(items []model.PaymentItemModel, today time.Time) []PaymentItemResponse {
	return lo.Map(items, func(it model.PaymentItemModel, _ int) PaymentItemResponse {
		return ToPaymentItemResponse(it, today)
	})
}

type PaymentScheduleResponse struct {
	model.PaymentScheduleModel
	Items            []PaymentItemResponse `json:"items"`
	NoApplicableFees bool                  `json:"no_applicable_fees"`
	OutstandingTotal decimal.Decimal       `json:"outstanding_amount"`
}

func ToPaymentScheduleResponse(m model.PaymentScheduleModel, today time.Time) PaymentScheduleResponse {
	out := PaymentScheduleResponse{
		PaymentScheduleModel: m,
		Items:                ToPaymentItemResponses(m.Items, today),
		NoApplicableFees:     len(m.Items) == 0,
		OutstandingTotal:     decimal.Zero,
	}
	for _, it := range m.Items {
		out.OutstandingTotal = out.OutstandingTotal.Add(service.Outstanding(it))
	}
	return out
}

type GenerateResponse struct {
	Schedule           PaymentScheduleResponse `json:"schedule"`
	NoApplicableFees   bool                    `json:"no_applicable_fees"`
	UsedDefaultTuition bool                    `json:"used_default_tuition"`
	AlreadyGenerated   bool                    `json:"already_generated,omitempty"`
}

func ToGenerateResponse(r service.GenerateResult, today time.Time) GenerateResponse {
	return GenerateResponse{
		Schedule:           ToPaymentScheduleResponse(r.Schedule, today),
		NoApplicableFees:   r.NoApplicableFees,
		UsedDefaultTuition: r.UsedDefaultTuition,
		AlreadyGenerated:   r.AlreadyGenerated,
	}
}

type StudentSchedulesResponse struct {
	StudentID uuid.UUID                 `json:"student_id"`
	Schedules []PaymentScheduleResponse `json:"schedules"`
	Failed    []service.GenerateFailure `json:"failed"`
}

func ToStudentSchedulesResponse(r service.StudentSchedules, today time.Time) StudentSchedulesResponse {
	return StudentSchedulesResponse{
		StudentID: r.StudentID,
		Schedules: lo.Map(r.Schedules, func(m model.PaymentScheduleModel, _ int) PaymentScheduleResponse {
			return ToPaymentScheduleResponse(m, today)
		}),
		Failed: r.Failed,
	}
}

type PendingItemResponse struct {
	service.PendingRow
	TotalAmount       decimal.Decimal `json:"total_amount"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	IsOverdue         bool            `json:"is_overdue"`
}

func ToPendingItemResponses(rows []service.PendingRow, today time.Time) []PendingItemResponse {
	return lo.Map(rows, func(r service.PendingRow, _ int) PendingItemResponse {
		return PendingItemResponse{
			PendingRow:        r,
			TotalAmount:       service.Due(r.PaymentItemModel),
			OutstandingAmount: service.Outstanding(r.PaymentItemModel),
			IsOverdue:         service.IsOverdue(r.PaymentItemModel, today),
		}
	})
}

type ItemLedgerResponse struct {
	Item        PaymentItemResponse       `json:"item"`
	Schedule    PaymentScheduleResponse   `json:"schedule"`
	Transaction *txModel.TransactionModel `json:"transaction,omitempty"`
}

func ToItemLedgerResponse(r service.ItemLedgerResult, today time.Time) ItemLedgerResponse {
	return ItemLedgerResponse{
		Item:        ToPaymentItemResponse(r.Item, today),
		Schedule:    ToPaymentScheduleResponse(r.Schedule, today),
		Transaction: r.Transaction,
	}
}

type BatchPaymentResponse struct {
	Transaction txModel.TransactionModel  `json:"transaction"`
	Items       []PaymentItemResponse     `json:"items"`
	Schedules   []PaymentScheduleResponse `json:"schedules"`
}

func ToBatchPaymentResponse(r service.BatchResult, today time.Time) BatchPaymentResponse {
	return BatchPaymentResponse{
		Transaction: r.Transaction,
		Items:       ToPaymentItemResponses(r.Items, today),
		Schedules: lo.Map(r.Schedules, func(m model.PaymentScheduleModel, _ int) PaymentScheduleResponse {
			return ToPaymentScheduleResponse(m, today)
		}),
	}
}
