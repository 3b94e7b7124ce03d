// file: internals/features/finance/payment_schedules/service/batch.go
package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/payment_schedules/model"
	txModel "schoolfee_backend/internals/features/finance/transactions/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
)

/* =========================================================
   Allocation (pure)
========================================================= */

type Allocation struct {
	Lines    []txModel.AllocationLine
	TotalDue decimal.Decimal
	Applied  decimal.Decimal
	Leftover decimal.Decimal
}

// Allocate mengisi item sesuai urutan yang diberikan (greedy). Begitu uang habis,
// item sisanya tidak disentuh. Leftover = uang yang tidak tertampung.
func Allocate(items []model.PaymentItemModel, amount decimal.Decimal) Allocation {
	out := Allocation{Lines: []txModel.AllocationLine{}}
	left := amount
	for _, it := range items {
		due := Outstanding(it)
		out.TotalDue = out.TotalDue.Add(due)
		if !left.IsPositive() || !due.IsPositive() {
			continue
		}
		apply := decimal.Min(due, left)
		out.Lines = append(out.Lines, txModel.AllocationLine{
			PaymentItemID: it.PaymentItemID,
			Applied:       apply,
			BalanceBefore: due,
			BalanceAfter:  due.Sub(apply),
		})
		left = left.Sub(apply)
	}
	out.Applied = amount.Sub(left)
	out.Leftover = left
	return out
}

/* =========================================================
   Batch payment
========================================================= */

type BatchPaymentRequest struct {
	ItemIDs         []uuid.UUID
	PaymentMethod   string
	Amount          decimal.Decimal
	ReferenceNumber *string
	Notes           *string
	PaymentDate     *time.Time
	PayerName       *string
}

func ValidateBatch(req BatchPaymentRequest) error {
	errs := map[string][]string{}
	if len(req.ItemIDs) == 0 {
		errs["itemIds"] = append(errs["itemIds"], "must contain at least one item")
	}
	if dups := lo.FindDuplicates(req.ItemIDs); len(dups) > 0 {
		errs["itemIds"] = append(errs["itemIds"], "must not contain duplicates")
	}
	if lo.Contains(req.ItemIDs, uuid.Nil) {
		errs["itemIds"] = append(errs["itemIds"], "must be valid UUIDs")
	}
	method := strings.TrimSpace(req.PaymentMethod)
	switch {
	case method == "":
		errs["paymentMethod"] = append(errs["paymentMethod"], "is required")
	case !txModel.IsValidMethod(method):
		errs["paymentMethod"] = append(errs["paymentMethod"], "must be one of cash bank_transfer cheque upi card gateway other")
	}
	if !req.Amount.IsPositive() {
		errs["amount"] = append(errs["amount"], "must be greater than 0")
	}
	if len(errs) > 0 {
		return apperror.Validation("invalid batch payment", errs)
	}
	return nil
}

type BatchResult struct {
	Transaction txModel.TransactionModel     `json:"transaction"`
	Items       []model.PaymentItemModel     `json:"items"`
	Schedules   []model.PaymentScheduleModel `json:"schedules"`
}

// lockItems mengunci item dengan urutan id (hindari deadlock antar batch),
// lalu mengembalikannya dalam urutan permintaan.
func lockItems(tx *gorm.DB, ids []uuid.UUID) ([]model.PaymentItemModel, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	var rows []model.PaymentItemModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_item_id IN ?", sorted).
		Order("payment_item_id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := lo.KeyBy(rows, func(r model.PaymentItemModel) uuid.UUID { return r.PaymentItemID })

	out := make([]model.PaymentItemModel, 0, len(ids))
	var missing []string
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			missing = append(missing, id.String())
			continue
		}
		out = append(out, it)
	}
	if len(missing) > 0 {
		e := apperror.NotFound("payment item")
		e.Fields = map[string][]string{"itemIds": missing}
		return nil, e
	}
	return out, nil
}

// ProcessBatch: satu nominal dibagi ke beberapa item. Update item, hitung ulang
// schedule & insert Transaction berada di satu tx; gagal satu, batal semua.
func (s *Service) ProcessBatch(ctx context.Context, req BatchPaymentRequest) (*BatchResult, error) {
	if err := ValidateBatch(req); err != nil {
		return nil, err
	}
	var out *BatchResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.ProcessBatchTx(tx, req)
		return err
	})
	if err != nil {
		return nil, helper.MapDBError("process batch payment", err, "transaction number collision, retry")
	}

	s.logger().Info("batch payment processed",
		"transaction_id", out.Transaction.TransactionID,
		"items", len(out.Items),
		"amount", req.Amount.StringFixed(2),
		"unapplied", out.Transaction.TransactionUnappliedAmount.StringFixed(2),
	)
	return out, nil
}

// ProcessBatchTx menjalankan batch di dalam tx milik pemanggil (dipakai webhook gateway).
func (s *Service) ProcessBatchTx(tx *gorm.DB, req BatchPaymentRequest) (*BatchResult, error) {
	if err := ValidateBatch(req); err != nil {
		return nil, err
	}
	method := strings.TrimSpace(req.PaymentMethod)

	items, err := lockItems(tx, req.ItemIDs)
	if err != nil {
		return nil, err
	}

	alloc := Allocate(items, req.Amount)
	if !alloc.Applied.IsPositive() {
		return nil, apperror.Conflict("selected payment items have no outstanding balance")
	}
	if alloc.Leftover.IsPositive() && s.Settings.OverpaymentPolicy != configs.OverpaymentUnapplied {
		return nil, apperror.Newf(apperror.KindOverpaymentRejected,
			"amount %s exceeds outstanding %s of the selected items",
			req.Amount.StringFixed(2), alloc.TotalDue.StringFixed(2))
	}

	byID := make(map[uuid.UUID]*model.PaymentItemModel, len(items))
	for i := range items {
		byID[items[i].PaymentItemID] = &items[i]
	}
	touched := make([]*model.PaymentItemModel, 0, len(alloc.Lines))
	for _, line := range alloc.Lines {
		it := byID[line.PaymentItemID]
		if err := ApplyToItem(it, line.Applied, false); err != nil {
			return nil, err
		}
		touched = append(touched, it)
	}

	first, err := scheduleHeader(tx, touched[0].PaymentItemScheduleID)
	if err != nil {
		return nil, err
	}
	trx := s.newTransaction(first, method, req.Amount, req.PaymentDate)
	trx.TransactionAppliedAmount = alloc.Applied
	trx.TransactionUnappliedAmount = alloc.Leftover
	trx.TransactionPaymentItemIDs = lo.Map(touched, func(it *model.PaymentItemModel, _ int) string {
		return it.PaymentItemID.String()
	})
	trx.TransactionAllocations = alloc.Lines
	trx.TransactionReference = req.ReferenceNumber
	trx.TransactionNotes = req.Notes
	trx.TransactionPayerName = req.PayerName
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}

	out := &BatchResult{Transaction: trx}
	for _, it := range touched {
		it.PaymentItemTransactionIDs = append(it.PaymentItemTransactionIDs, trx.TransactionID.String())
		if err := saveItem(tx, it); err != nil {
			return nil, err
		}
		out.Items = append(out.Items, *it)
	}

	scheduleIDs := lo.Uniq(lo.Map(touched, func(it *model.PaymentItemModel, _ int) uuid.UUID {
		return it.PaymentItemScheduleID
	}))
	for _, sid := range scheduleIDs {
		fresh, err := RecomputeSchedule(tx, sid)
		if err != nil {
			return nil, err
		}
		out.Schedules = append(out.Schedules, *fresh)
	}
	return out, nil
}
