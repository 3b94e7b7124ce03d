// file: internals/features/finance/payment_schedules/service/ledger.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	txModel "schoolfee_backend/internals/features/finance/transactions/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

/* =========================================================
   Pure ledger rules
========================================================= */

// Due: tagihan penuh item = net + late fee.
func Due(it model.PaymentItemModel) decimal.Decimal {
	return it.PaymentItemNetAmount.Add(it.PaymentItemLateFeeApplied)
}

// Outstanding: sisa yang masih harus dibayar (waived selalu 0).
func Outstanding(it model.PaymentItemModel) decimal.Decimal {
	if it.PaymentItemStatus == model.ItemWaived {
		return decimal.Zero
	}
	rest := Due(it).Sub(it.PaymentItemPaidAmount)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// DeriveStatus menurunkan status dari nominal; waived tidak pernah berubah.
func DeriveStatus(it model.PaymentItemModel) model.ItemStatus {
	if it.PaymentItemStatus == model.ItemWaived {
		return model.ItemWaived
	}
	paid := it.PaymentItemPaidAmount
	switch {
	case !paid.IsPositive():
		return model.ItemPending
	case paid.LessThan(Due(it)):
		return model.ItemPartiallyPaid
	default:
		return model.ItemPaid
	}
}

// IsOverdue dihitung saat baca, tidak disimpan.
func IsOverdue(it model.PaymentItemModel, today time.Time) bool {
	st := DeriveStatus(it)
	if st != model.ItemPending && st != model.ItemPartiallyPaid {
		return false
	}
	return dbtime.DateOf(it.PaymentItemDueDate).Before(dbtime.DateOf(today))
}

// ApplyToItem menambah paid_amount. Kelebihan hanya boleh kalau allowOverpayment.
func ApplyToItem(it *model.PaymentItemModel, amount decimal.Decimal, allowOverpayment bool) error {
	if !amount.IsPositive() {
		return apperror.New(apperror.KindInvalidAmount, "amount must be greater than 0")
	}
	if it.PaymentItemStatus == model.ItemWaived {
		return apperror.Conflict("payment item is waived")
	}
	next := it.PaymentItemPaidAmount.Add(amount)
	if next.GreaterThan(Due(*it)) && !allowOverpayment {
		return apperror.Newf(apperror.KindOverpaymentRejected,
			"payment of %s exceeds outstanding balance %s", amount.StringFixed(2), Outstanding(*it).StringFixed(2))
	}
	it.PaymentItemPaidAmount = next
	it.PaymentItemStatus = DeriveStatus(*it)
	return nil
}

// WaiveItem: item yang sudah lunas tidak bisa di-waive.
func WaiveItem(it *model.PaymentItemModel, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return apperror.Validation("waiver reason is required", map[string][]string{
			"reason": {"is required"},
		})
	}
	switch DeriveStatus(*it) {
	case model.ItemWaived:
		return apperror.Conflict("payment item is already waived")
	case model.ItemPaid:
		return apperror.Conflict("payment item is already paid")
	}
	it.PaymentItemStatus = model.ItemWaived
	it.PaymentItemWaiverReason = &reason
	return nil
}

// AddLateFee menaikkan late_fee_applied; status dihitung ulang.
func AddLateFee(it *model.PaymentItemModel, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperror.New(apperror.KindInvalidAmount, "late fee must be greater than 0")
	}
	switch DeriveStatus(*it) {
	case model.ItemWaived:
		return apperror.Conflict("payment item is waived")
	case model.ItemPaid:
		return apperror.Conflict("payment item is already paid")
	}
	it.PaymentItemLateFeeApplied = it.PaymentItemLateFeeApplied.Add(amount)
	it.PaymentItemStatus = DeriveStatus(*it)
	return nil
}

// Totals: agregat schedule yang selalu diturunkan dari item.
type Totals struct {
	Total       decimal.Decimal
	Paid        decimal.Decimal
	LateFee     decimal.Decimal
	LateFeePaid decimal.Decimal
	Overpaid    decimal.Decimal
	Status      model.ScheduleStatus
}

// ComputeTotals: paid hanya menghitung pokok (maks net per item). Kelebihan di atas
// net dibukukan sebagai denda terbayar maksimal sebesar late_fee_applied; sisanya
// (overpayment yang diizinkan) masuk Overpaid. Jadi paid <= total dan
// late_fee_paid <= late_fee selalu benar.
func ComputeTotals(items []model.PaymentItemModel) Totals {
	t := Totals{Status: model.ScheduleDraft}
	if len(items) == 0 {
		return t
	}
	settled := 0
	for _, it := range items {
		net := it.PaymentItemNetAmount
		paid := it.PaymentItemPaidAmount
		t.Total = t.Total.Add(net)
		t.LateFee = t.LateFee.Add(it.PaymentItemLateFeeApplied)
		t.Paid = t.Paid.Add(decimal.Min(paid, net))
		if extra := paid.Sub(net); extra.IsPositive() {
			fee := decimal.Min(extra, it.PaymentItemLateFeeApplied)
			t.LateFeePaid = t.LateFeePaid.Add(fee)
			t.Overpaid = t.Overpaid.Add(extra.Sub(fee))
		}
		if st := DeriveStatus(it); st == model.ItemPaid || st == model.ItemWaived {
			settled++
		}
	}
	if settled == len(items) {
		t.Status = model.ScheduleCompleted
	} else {
		t.Status = model.ScheduleActive
	}
	return t
}

/* =========================================================
   Persistent ledger operations
========================================================= */

// RecomputeSchedule menulis ulang total schedule dari item-nya, di tx yang sama.
func RecomputeSchedule(tx *gorm.DB, scheduleID uuid.UUID) (*model.PaymentScheduleModel, error) {
	var items []model.PaymentItemModel
	if err := tx.Where("payment_item_schedule_id = ?", scheduleID).Find(&items).Error; err != nil {
		return nil, err
	}
	t := ComputeTotals(items)
	res := tx.Model(&model.PaymentScheduleModel{}).
		Where("payment_schedule_id = ?", scheduleID).
		Updates(map[string]any{
			"payment_schedule_total_amount":    t.Total,
			"payment_schedule_paid_amount":     t.Paid,
			"payment_schedule_late_fee_amount": t.LateFee,
			"payment_schedule_late_fee_paid":   t.LateFeePaid,
			"payment_schedule_overpaid_amount": t.Overpaid,
			"payment_schedule_status":          t.Status,
			"payment_schedule_updated_at":      time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("payment schedule")
	}
	var s model.PaymentScheduleModel
	if err := tx.First(&s, "payment_schedule_id = ?", scheduleID).Error; err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

func lockItem(tx *gorm.DB, id uuid.UUID) (*model.PaymentItemModel, error) {
	var it model.PaymentItemModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&it, "payment_item_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("payment item")
		}
		return nil, err
	}
	return &it, nil
}

func saveItem(tx *gorm.DB, it *model.PaymentItemModel) error {
	return tx.Model(&model.PaymentItemModel{}).
		Where("payment_item_id = ?", it.PaymentItemID).
		Updates(map[string]any{
			"payment_item_paid_amount":      it.PaymentItemPaidAmount,
			"payment_item_late_fee_applied": it.PaymentItemLateFeeApplied,
			"payment_item_status":           it.PaymentItemStatus,
			"payment_item_waiver_reason":    it.PaymentItemWaiverReason,
			"payment_item_transaction_ids":  it.PaymentItemTransactionIDs,
			"payment_item_updated_at":       time.Now(),
		}).Error
}

type ItemPayment struct {
	Amount           decimal.Decimal
	AllowOverpayment bool
	Method           string
	ReferenceNumber  *string
	Notes            *string
	PayerName        *string
	PaymentDate      *time.Time
}

// ItemLedgerResult: item terbaru + schedule yang sudah dihitung ulang (+ transaksi bila ada).
type ItemLedgerResult struct {
	Item        model.PaymentItemModel
	Schedule    model.PaymentScheduleModel
	Transaction *txModel.TransactionModel
}

// ApplyPayment membayar satu item dan selalu mencatat Transaction.
func (s *Service) ApplyPayment(ctx context.Context, itemID uuid.UUID, in ItemPayment) (*ItemLedgerResult, error) {
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = string(txModel.MethodCash)
	}
	if !txModel.IsValidMethod(method) {
		return nil, apperror.Validation("invalid payment method", map[string][]string{
			"paymentMethod": {"must be one of cash bank_transfer cheque upi card gateway other"},
		})
	}

	var out ItemLedgerResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := lockItem(tx, itemID)
		if err != nil {
			return err
		}
		before := Outstanding(*it)
		if err := ApplyToItem(it, in.Amount, in.AllowOverpayment); err != nil {
			return err
		}

		sched, err := scheduleHeader(tx, it.PaymentItemScheduleID)
		if err != nil {
			return err
		}
		trx := s.newTransaction(sched, method, in.Amount, in.PaymentDate)
		trx.TransactionAppliedAmount = in.Amount
		trx.TransactionPaymentItemIDs = []string{it.PaymentItemID.String()}
		trx.TransactionAllocations = []txModel.AllocationLine{{
			PaymentItemID: it.PaymentItemID,
			Applied:       in.Amount,
			BalanceBefore: before,
			BalanceAfter:  Outstanding(*it),
		}}
		trx.TransactionReference = in.ReferenceNumber
		trx.TransactionNotes = in.Notes
		trx.TransactionPayerName = in.PayerName
		if err := tx.Create(&trx).Error; err != nil {
			return err
		}

		it.PaymentItemTransactionIDs = append(it.PaymentItemTransactionIDs, trx.TransactionID.String())
		if err := saveItem(tx, it); err != nil {
			return err
		}
		fresh, err := RecomputeSchedule(tx, it.PaymentItemScheduleID)
		if err != nil {
			return err
		}
		out = ItemLedgerResult{Item: *it, Schedule: *fresh, Transaction: &trx}
		return nil
	})
	if err != nil {
		return nil, helper.MapDBError("apply payment", err, "transaction number collision, retry")
	}
	s.logger().Info("payment applied",
		"payment_item_id", itemID,
		"transaction_id", out.Transaction.TransactionID,
		"amount", in.Amount.StringFixed(2),
	)
	return &out, nil
}

func (s *Service) Waive(ctx context.Context, itemID uuid.UUID, reason string) (*ItemLedgerResult, error) {
	return s.mutateItem(ctx, itemID, "waive item", func(it *model.PaymentItemModel) error {
		return WaiveItem(it, reason)
	})
}

func (s *Service) ApplyLateFee(ctx context.Context, itemID uuid.UUID, amount decimal.Decimal) (*ItemLedgerResult, error) {
	return s.mutateItem(ctx, itemID, "apply late fee", func(it *model.PaymentItemModel) error {
		return AddLateFee(it, amount)
	})
}

func (s *Service) mutateItem(ctx context.Context, itemID uuid.UUID, op string, fn func(*model.PaymentItemModel) error) (*ItemLedgerResult, error) {
	var out ItemLedgerResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		it, err := lockItem(tx, itemID)
		if err != nil {
			return err
		}
		if err := fn(it); err != nil {
			return err
		}
		if err := saveItem(tx, it); err != nil {
			return err
		}
		fresh, err := RecomputeSchedule(tx, it.PaymentItemScheduleID)
		if err != nil {
			return err
		}
		out = ItemLedgerResult{Item: *it, Schedule: *fresh}
		return nil
	})
	if err != nil {
		return nil, helper.MapDBError(op, err, "")
	}
	return &out, nil
}

func scheduleHeader(tx *gorm.DB, scheduleID uuid.UUID) (*model.PaymentScheduleModel, error) {
	var sched model.PaymentScheduleModel
	if err := tx.First(&sched, "payment_schedule_id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("payment schedule")
		}
		return nil, err
	}
	return &sched, nil
}

// newTransaction menyiapkan header Transaction income/fee_payment.
func (s *Service) newTransaction(sched *model.PaymentScheduleModel, method string, amount decimal.Decimal, paidOn *time.Time) txModel.TransactionModel {
	now := s.now()
	date := dbtime.DateOf(now.In(dbtime.AppLocation()))
	if paidOn != nil && !paidOn.IsZero() {
		date = dbtime.DateOf(*paidOn)
	}
	var payerRef *string
	if sched != nil {
		ref := sched.PaymentScheduleStudentID.String()
		payerRef = &ref
	}
	return txModel.TransactionModel{
		TransactionNumber:         helper.GenNumber("TXN", now),
		TransactionType:           txModel.TransactionIncome,
		TransactionCategory:       txModel.CategoryFeePayment,
		TransactionAmount:         amount,
		TransactionPaymentMethod:  txModel.PaymentMethod(method),
		TransactionDate:           date,
		TransactionStatus:         txModel.TransactionCompleted,
		TransactionPayerReference: payerRef,
		TransactionReceiptNumber:  helper.GenNumber("RCPT", now),
	}
}
