// file: internals/features/finance/transactions/model/transaction_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- ENUM transaction_type ---------------------------------------------------
type TransactionType string

const (
	TransactionIncome   TransactionType = "income"
	TransactionExpense  TransactionType = "expense"
	TransactionTransfer TransactionType = "transfer"
	TransactionRefund   TransactionType = "refund"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
)

// Kategori yang ditulis oleh ledger pembayaran siswa.
const (
	CategoryFeePayment = "fee_payment"
)

// --- ENUM payment_method -----------------------------------------------------
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCheque       PaymentMethod = "cheque"
	MethodUPI          PaymentMethod = "upi"
	MethodCard         PaymentMethod = "card"
	MethodGateway      PaymentMethod = "gateway"
	MethodOther        PaymentMethod = "other"
)

// AllocationLine: jejak berapa yang masuk ke tiap item saat transaksi dibuat.
type AllocationLine struct {
	PaymentItemID uuid.UUID       `json:"payment_item_id"`
	Applied       decimal.Decimal `json:"applied"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
}

// --- MODEL transactions (append-only) ----------------------------------------
type TransactionModel struct {
	TransactionID       uuid.UUID       `json:"transaction_id" gorm:"column:transaction_id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionNumber   string          `json:"transaction_number" gorm:"column:transaction_number;type:varchar(40);not null;uniqueIndex:uq_transactions_number"`
	TransactionType     TransactionType `json:"transaction_type" gorm:"column:transaction_type;type:varchar(16);not null;default:'income'"`
	TransactionCategory string          `json:"transaction_category" gorm:"column:transaction_category;type:varchar(40);not null"`

	TransactionAmount          decimal.Decimal `json:"transaction_amount" gorm:"column:transaction_amount;type:numeric(14,2);not null"`
	TransactionAppliedAmount   decimal.Decimal `json:"transaction_applied_amount" gorm:"column:transaction_applied_amount;type:numeric(14,2);not null;default:0"`
	TransactionUnappliedAmount decimal.Decimal `json:"transaction_unapplied_amount" gorm:"column:transaction_unapplied_amount;type:numeric(14,2);not null;default:0"`

	TransactionPaymentMethod PaymentMethod     `json:"transaction_payment_method" gorm:"column:transaction_payment_method;type:varchar(20);not null"`
	TransactionDate          time.Time         `json:"transaction_date" gorm:"column:transaction_date;type:date;not null;index"`
	TransactionStatus        TransactionStatus `json:"transaction_status" gorm:"column:transaction_status;type:varchar(16);not null;default:'completed'"`

	TransactionPaymentItemIDs pq.StringArray                      `json:"transaction_payment_item_ids" gorm:"column:transaction_payment_item_ids;type:text[];not null"`
	TransactionAllocations    datatypes.JSONSlice[AllocationLine] `json:"transaction_allocations" gorm:"column:transaction_allocations;type:jsonb"`

	TransactionPayerName      *string `json:"transaction_payer_name,omitempty" gorm:"column:transaction_payer_name;type:varchar(120)"`
	TransactionPayerReference *string `json:"transaction_payer_reference,omitempty" gorm:"column:transaction_payer_reference;type:varchar(64);index"`
	TransactionReference      *string `json:"transaction_reference_number,omitempty" gorm:"column:transaction_reference_number;type:varchar(120)"`
	TransactionNotes          *string `json:"transaction_notes,omitempty" gorm:"column:transaction_notes;type:text"`
	TransactionReceiptNumber  string  `json:"transaction_receipt_number" gorm:"column:transaction_receipt_number;type:varchar(40);not null;uniqueIndex:uq_transactions_receipt"`

	TransactionCreatedAt time.Time `json:"transaction_created_at" gorm:"column:transaction_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (TransactionModel) TableName() string { return "transactions" }

func (t *TransactionModel) BeforeCreate(tx *gorm.DB) error {
	if t.TransactionID == uuid.Nil {
		t.TransactionID = uuid.New()
	}
	return nil
}

// ItemIDs mengembalikan payment_item_ids sebagai uuid (nilai rusak dilewati).
func (t TransactionModel) ItemIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(t.TransactionPaymentItemIDs))
	for _, s := range t.TransactionPaymentItemIDs {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func IsValidMethod(m string) bool {
	switch PaymentMethod(m) {
	case MethodCash, MethodBankTransfer, MethodCheque, MethodUPI, MethodCard, MethodGateway, MethodOther:
		return true
	}
	return false
}
