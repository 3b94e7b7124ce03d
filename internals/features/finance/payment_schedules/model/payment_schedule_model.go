// file: internals/features/finance/payment_schedules/model/payment_schedule_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- ENUM payment_schedule_status --------------------------------------------
type ScheduleStatus string

const (
	ScheduleDraft     ScheduleStatus = "draft"
	ScheduleActive    ScheduleStatus = "active"
	ScheduleCompleted ScheduleStatus = "completed"
)

// --- MODEL payment_schedules -------------------------------------------------
// Satu schedule per enrollment (unique index, bukan cuma cek di aplikasi).
type PaymentScheduleModel struct {
	PaymentScheduleID           uuid.UUID `json:"payment_schedule_id" gorm:"column:payment_schedule_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentScheduleNumber       string    `json:"payment_schedule_number" gorm:"column:payment_schedule_number;type:varchar(40);not null;uniqueIndex:uq_payment_schedules_number"`
	PaymentScheduleEnrollmentID uuid.UUID `json:"payment_schedule_enrollment_id" gorm:"column:payment_schedule_enrollment_id;type:uuid;not null;uniqueIndex:uq_payment_schedules_enrollment"`
	PaymentScheduleStudentID    uuid.UUID `json:"payment_schedule_student_id" gorm:"column:payment_schedule_student_id;type:uuid;not null;index"`
	PaymentScheduleCurrency     string    `json:"payment_schedule_currency" gorm:"column:payment_schedule_currency;type:varchar(3);not null"`

	// total = Σ item.net, paid = Σ min(item.paid, item.net) (pokok saja)
	PaymentScheduleTotalAmount decimal.Decimal `json:"payment_schedule_total_amount" gorm:"column:payment_schedule_total_amount;type:numeric(14,2);not null;default:0"`
	PaymentSchedulePaidAmount  decimal.Decimal `json:"payment_schedule_paid_amount" gorm:"column:payment_schedule_paid_amount;type:numeric(14,2);not null;default:0"`
	// denda keterlambatan dicatat terpisah supaya paid <= total tetap berlaku
	PaymentScheduleLateFeeAmount  decimal.Decimal `json:"payment_schedule_late_fee_amount" gorm:"column:payment_schedule_late_fee_amount;type:numeric(14,2);not null;default:0"`
	PaymentScheduleLateFeePaid    decimal.Decimal `json:"payment_schedule_late_fee_paid" gorm:"column:payment_schedule_late_fee_paid;type:numeric(14,2);not null;default:0"`
	PaymentScheduleOverpaidAmount decimal.Decimal `json:"payment_schedule_overpaid_amount" gorm:"column:payment_schedule_overpaid_amount;type:numeric(14,2);not null;default:0"`

	PaymentScheduleStatus ScheduleStatus `json:"payment_schedule_status" gorm:"column:payment_schedule_status;type:varchar(16);not null;default:'draft';index"`

	PaymentScheduleCreatedAt time.Time `json:"payment_schedule_created_at" gorm:"column:payment_schedule_created_at;type:timestamptz;not null;autoCreateTime"`
	PaymentScheduleUpdatedAt time.Time `json:"payment_schedule_updated_at" gorm:"column:payment_schedule_updated_at;type:timestamptz;not null;autoUpdateTime"`

	Items []PaymentItemModel `json:"items" gorm:"foreignKey:PaymentItemScheduleID;references:PaymentScheduleID;constraint:OnDelete:CASCADE"`
}

func (PaymentScheduleModel) TableName() string { return "payment_schedules" }

func (m *PaymentScheduleModel) BeforeCreate(tx *gorm.DB) error {
	if m.PaymentScheduleID == uuid.Nil {
		m.PaymentScheduleID = uuid.New()
	}
	return nil
}
