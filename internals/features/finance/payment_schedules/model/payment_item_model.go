// file: internals/features/finance/payment_schedules/model/payment_item_model.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- ENUM payment_item_status ------------------------------------------------
type ItemStatus string

const (
	ItemPending       ItemStatus = "pending"
	ItemPartiallyPaid ItemStatus = "partially_paid"
	ItemPaid          ItemStatus = "paid"
	ItemWaived        ItemStatus = "waived"
)

// --- MODEL payment_items -----------------------------------------------------
type PaymentItemModel struct {
	PaymentItemID              uuid.UUID  `json:"payment_item_id" gorm:"column:payment_item_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentItemScheduleID      uuid.UUID  `json:"payment_item_schedule_id" gorm:"column:payment_item_schedule_id;type:uuid;not null;index;uniqueIndex:uq_payment_items_schedule_seq,priority:1"`
	PaymentItemFeeDefinitionID *uuid.UUID `json:"payment_item_fee_definition_id,omitempty" gorm:"column:payment_item_fee_definition_id;type:uuid;index"`
	PaymentItemFeeAssignmentID *uuid.UUID `json:"payment_item_fee_assignment_id,omitempty" gorm:"column:payment_item_fee_assignment_id;type:uuid"`
	PaymentItemDescription     string     `json:"payment_item_description" gorm:"column:payment_item_description;type:varchar(200);not null"`

	PaymentItemAmount         decimal.Decimal `json:"payment_item_amount" gorm:"column:payment_item_amount;type:numeric(14,2);not null"`
	PaymentItemDiscountAmount decimal.Decimal `json:"payment_item_discount_amount" gorm:"column:payment_item_discount_amount;type:numeric(14,2);not null;default:0"`
	PaymentItemNetAmount      decimal.Decimal `json:"payment_item_net_amount" gorm:"column:payment_item_net_amount;type:numeric(14,2);not null"`

	PaymentItemDueDate           time.Time `json:"payment_item_due_date" gorm:"column:payment_item_due_date;type:date;not null;index"`
	PaymentItemInstallmentNumber int       `json:"payment_item_installment_number" gorm:"column:payment_item_installment_number;not null"`
	PaymentItemSequenceKey       string    `json:"payment_item_sequence_key" gorm:"column:payment_item_sequence_key;type:varchar(80);not null;uniqueIndex:uq_payment_items_schedule_seq,priority:2"`

	PaymentItemStatus         ItemStatus      `json:"payment_item_status" gorm:"column:payment_item_status;type:varchar(16);not null;default:'pending';index"`
	PaymentItemPaidAmount     decimal.Decimal `json:"payment_item_paid_amount" gorm:"column:payment_item_paid_amount;type:numeric(14,2);not null;default:0"`
	PaymentItemLateFeeApplied decimal.Decimal `json:"payment_item_late_fee_applied" gorm:"column:payment_item_late_fee_applied;type:numeric(14,2);not null;default:0"`
	PaymentItemWaiverReason   *string         `json:"payment_item_waiver_reason,omitempty" gorm:"column:payment_item_waiver_reason;type:text"`

	// id transaksi yang menyentuh item ini (append saja)
	PaymentItemTransactionIDs pq.StringArray `json:"payment_item_transaction_ids" gorm:"column:payment_item_transaction_ids;type:text[];not null;default:'{}'"`

	PaymentItemCreatedAt time.Time `json:"payment_item_created_at" gorm:"column:payment_item_created_at;type:timestamptz;not null;autoCreateTime"`
	PaymentItemUpdatedAt time.Time `json:"payment_item_updated_at" gorm:"column:payment_item_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (PaymentItemModel) TableName() string { return "payment_items" }

func (it *PaymentItemModel) BeforeCreate(tx *gorm.DB) error {
	if it.PaymentItemID == uuid.Nil {
		it.PaymentItemID = uuid.New()
	}
	return nil
}

// SequenceKey: "<fee_definition_id>:<n>", atau "manual:<n>" kalau item tanpa definisi.
func SequenceKey(feeDefinitionID *uuid.UUID, n int) string {
	if feeDefinitionID == nil {
		return fmt.Sprintf("manual:%d", n)
	}
	return fmt.Sprintf("%s:%d", feeDefinitionID.String(), n)
}
