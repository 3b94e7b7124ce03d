// file: internals/features/finance/transactions/service/transaction_service.go
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"schoolfee_backend/internals/features/finance/transactions/dto"
	"schoolfee_backend/internals/features/finance/transactions/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
)

// Transaksi append-only: service ini hanya membaca.
type Service struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{DB: db} }

func ValidateQuery(q dto.ListTransactionQuery) error {
	errs := map[string][]string{}
	if m := strings.TrimSpace(q.Method); m != "" && !model.IsValidMethod(m) {
		errs["method"] = []string{"unknown payment method"}
	}
	switch model.TransactionType(strings.TrimSpace(q.Type)) {
	case "", model.TransactionIncome, model.TransactionExpense, model.TransactionTransfer, model.TransactionRefund:
	default:
		errs["type"] = []string{"must be one of income expense transfer refund"}
	}
	if q.From != nil && q.To != nil && q.To.Before(*q.From) {
		errs["to"] = []string{"must not be before from"}
	}
	if len(errs) > 0 {
		return apperror.Validation("invalid filter", errs)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.TransactionModel, error) {
	var m model.TransactionModel
	if err := s.DB.WithContext(ctx).First(&m, "transaction_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("transaction")
		}
		return nil, apperror.Internal("get transaction", err)
	}
	return &m, nil
}

func (s *Service) List(ctx context.Context, q dto.ListTransactionQuery, p helper.Paging) ([]model.TransactionModel, int64, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, 0, err
	}
	tx := s.DB.WithContext(ctx).Model(&model.TransactionModel{})
	if q.StudentID != nil {
		tx = tx.Where("transaction_payer_reference = ?", q.StudentID.String())
	}
	if q.PaymentItemID != nil {
		tx = tx.Where("? = ANY(transaction_payment_item_ids)", q.PaymentItemID.String())
	}
	if m := strings.TrimSpace(q.Method); m != "" {
		tx = tx.Where("transaction_payment_method = ?", m)
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		tx = tx.Where("transaction_type = ?", t)
	}
	if q.From != nil {
		tx = tx.Where("transaction_date >= ?", *q.From)
	}
	if q.To != nil {
		tx = tx.Where("transaction_date <= ?", *q.To)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, apperror.Internal("count transactions", err)
	}
	var rows []model.TransactionModel
	if err := tx.Order("transaction_date DESC, transaction_created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&rows).Error; err != nil {
		return nil, 0, apperror.Internal("list transactions", err)
	}
	return rows, total, nil
}
