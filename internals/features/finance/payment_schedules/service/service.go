// file: internals/features/finance/payment_schedules/service/service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

// Service menampung generator, ledger & batch processor; satu DB handle, satu snapshot setting.
type Service struct {
	DB       *gorm.DB
	Settings configs.Settings
	Log      *slog.Logger
	Now      func() time.Time
}

func New(db *gorm.DB, settings configs.Settings) *Service {
	return &Service{DB: db, Settings: settings, Log: slog.Default(), Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) today() time.Time {
	return dbtime.DateOf(s.now().In(dbtime.AppLocation()))
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}

/* =========================================================
   Reads
========================================================= */

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("payment_item_due_date ASC, payment_item_sequence_key ASC")
	})
}

func (s *Service) Get(ctx context.Context, scheduleID uuid.UUID) (*model.PaymentScheduleModel, error) {
	var m model.PaymentScheduleModel
	if err := withItems(s.DB.WithContext(ctx)).
		First(&m, "payment_schedule_id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("payment schedule")
		}
		return nil, apperror.Internal("get payment schedule", err)
	}
	return &m, nil
}

func findByEnrollment(tx *gorm.DB, enrollmentID uuid.UUID) (*model.PaymentScheduleModel, error) {
	var m model.PaymentScheduleModel
	err := withItems(tx).First(&m, "payment_schedule_enrollment_id = ?", enrollmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

/* =========================================================
   Summary
========================================================= */

type Summary struct {
	ScheduleID     uuid.UUID            `json:"schedule_id"`
	Status         model.ScheduleStatus `json:"status"`
	TotalItems     int                  `json:"total_items"`
	PaidItems      int                  `json:"paid_items"`
	PendingItems   int                  `json:"pending_items"`
	OverdueItems   int                  `json:"overdue_items"`
	WaivedItems    int                  `json:"waived_items"`
	TotalAmount    decimal.Decimal      `json:"total_amount"`
	PaidAmount     decimal.Decimal      `json:"paid_amount"`
	PendingAmount  decimal.Decimal      `json:"pending_amount"`
	LateFeeAmount  decimal.Decimal      `json:"late_fee_amount"`
	OverpaidAmount decimal.Decimal      `json:"overpaid_amount"`
}

// Summarize: pending_items mencakup partially_paid; pending_amount = Σ outstanding.
func Summarize(items []model.PaymentItemModel, today time.Time) Summary {
	t := ComputeTotals(items)
	out := Summary{
		Status:         t.Status,
		TotalItems:     len(items),
		TotalAmount:    t.Total,
		PaidAmount:     t.Paid,
		LateFeeAmount:  t.LateFee,
		OverpaidAmount: t.Overpaid,
		PendingAmount:  decimal.Zero,
	}
	for _, it := range items {
		switch DeriveStatus(it) {
		case model.ItemPaid:
			out.PaidItems++
		case model.ItemWaived:
			out.WaivedItems++
		default:
			out.PendingItems++
		}
		if IsOverdue(it, today) {
			out.OverdueItems++
		}
		out.PendingAmount = out.PendingAmount.Add(Outstanding(it))
	}
	return out
}

func (s *Service) Summary(ctx context.Context, scheduleID uuid.UUID) (*Summary, error) {
	m, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	sum := Summarize(m.Items, s.today())
	sum.ScheduleID = m.PaymentScheduleID
	return &sum, nil
}

/* =========================================================
   Pending items (lintas schedule)
========================================================= */

type PendingQuery struct {
	StudentID   *uuid.UUID
	OverdueOnly bool
}

// PendingRow: item + info schedule induknya.
type PendingRow struct {
	model.PaymentItemModel
	PaymentScheduleNumber       string    `json:"payment_schedule_number"`
	PaymentScheduleStudentID    uuid.UUID `json:"payment_schedule_student_id"`
	PaymentScheduleEnrollmentID uuid.UUID `json:"payment_schedule_enrollment_id"`
}

func (s *Service) ListPending(ctx context.Context, q PendingQuery, p helper.Paging) ([]PendingRow, int64, error) {
	tx := s.DB.WithContext(ctx).
		Table("payment_items").
		Joins("JOIN payment_schedules ps ON ps.payment_schedule_id = payment_items.payment_item_schedule_id").
		Where("payment_items.payment_item_status IN ?", []model.ItemStatus{model.ItemPending, model.ItemPartiallyPaid})
	if q.StudentID != nil {
		tx = tx.Where("ps.payment_schedule_student_id = ?", *q.StudentID)
	}
	if q.OverdueOnly {
		tx = tx.Where("payment_items.payment_item_due_date < ?", s.today())
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("count pending items", err)
	}

	var rows []PendingRow
	if err := tx.Select("payment_items.*, ps.payment_schedule_number, ps.payment_schedule_student_id, ps.payment_schedule_enrollment_id").
		Order("payment_items.payment_item_due_date ASC, payment_items.payment_item_id ASC").
		Limit(p.Limit).Offset(p.Offset).
		Scan(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("list pending items", err)
	}
	return rows, total, nil
}
