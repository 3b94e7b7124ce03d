// file: internals/features/finance/gateway/service/gateway_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/gateway/dto"
	"schoolfee_backend/internals/features/finance/gateway/model"
	psModel "schoolfee_backend/internals/features/finance/payment_schedules/model"
	psService "schoolfee_backend/internals/features/finance/payment_schedules/service"
	txModel "schoolfee_backend/internals/features/finance/transactions/model"
	helper "schoolfee_backend/internals/helpers"
	"schoolfee_backend/internals/helpers/apperror"
	"schoolfee_backend/internals/helpers/dbtime"
)

// ErrInvalidSignature: notifikasi yang tidak lolos verifikasi signature.
var ErrInvalidSignature = errors.New("invalid midtrans signature")

type Service struct {
	DB        *gorm.DB
	Snap      SnapCreator
	ServerKey string
	Ledger    *psService.Service
	Log       *slog.Logger
}

// New: uang dari gateway sudah diterima, jadi kelebihan selalu dicatat sebagai unapplied.
func New(db *gorm.DB, settings configs.Settings) *Service {
	ledgerSettings := settings
	ledgerSettings.OverpaymentPolicy = configs.OverpaymentUnapplied

	s := &Service{
		DB:        db,
		ServerKey: settings.MidtransServerKey,
		Ledger:    psService.New(db, ledgerSettings),
		Log:       slog.Default().With("component", "gateway"),
	}
	if settings.MidtransServerKey != "" {
		s.Snap = NewSnapClient(settings.MidtransServerKey, settings.MidtransUseProd)
	}
	return s
}

func (s *Service) Configured() bool { return s.Snap != nil && s.ServerKey != "" }

/* =========================================================
   Checkout
========================================================= */

type CheckoutRequest struct {
	ItemIDs  []uuid.UUID
	Customer CustomerInput
}

// Checkout membuat order Midtrans atas sisa tagihan item yang dipilih.
// gross_amount dibulatkan ke atas (Midtrans hanya menerima bilangan bulat).
func (s *Service) Checkout(ctx context.Context, in CheckoutRequest) (*model.GatewayOrderModel, error) {
	if !s.Configured() {
		return nil, apperror.Conflict("payment gateway is not configured")
	}
	if dups := lo.FindDuplicates(in.ItemIDs); len(dups) > 0 {
		return nil, apperror.Validation("invalid checkout", map[string][]string{"itemIds": {"must not contain duplicates"}})
	}

	db := s.DB.WithContext(ctx)
	var items []psModel.PaymentItemModel
	if err := db.Where("payment_item_id IN ?", in.ItemIDs).Find(&items).Error; err != nil {
		return nil, apperror.Internal("load payment items", err)
	}
	if len(items) != len(in.ItemIDs) {
		return nil, apperror.NotFound("payment item")
	}

	amount := decimal.Zero
	for _, it := range items {
		due := psService.Outstanding(it)
		if !due.IsPositive() {
			return nil, apperror.Conflict("payment item " + it.PaymentItemID.String() + " has no outstanding balance")
		}
		amount = amount.Add(due)
	}

	scheduleIDs := lo.Uniq(lo.Map(items, func(it psModel.PaymentItemModel, _ int) uuid.UUID { return it.PaymentItemScheduleID }))
	var schedules []psModel.PaymentScheduleModel
	if err := db.Where("payment_schedule_id IN ?", scheduleIDs).Find(&schedules).Error; err != nil {
		return nil, apperror.Internal("load payment schedules", err)
	}
	students := lo.Uniq(lo.Map(schedules, func(m psModel.PaymentScheduleModel, _ int) uuid.UUID { return m.PaymentScheduleStudentID }))
	currencies := lo.Uniq(lo.Map(schedules, func(m psModel.PaymentScheduleModel, _ int) string { return m.PaymentScheduleCurrency }))
	if len(students) != 1 || len(currencies) != 1 {
		return nil, apperror.Validation("invalid checkout", map[string][]string{
			"itemIds": {"items must belong to one student and one currency"},
		})
	}

	now := time.Now()
	order := model.GatewayOrderModel{
		GatewayOrderID:             helper.GenNumber("PAY", now),
		GatewayOrderPaymentItemIDs: lo.Map(in.ItemIDs, func(id uuid.UUID, _ int) string { return id.String() }),
		GatewayOrderStudentID:      &students[0],
		GatewayOrderAmount:         amount,
		GatewayOrderGrossAmount:    amount.Ceil().IntPart(),
		GatewayOrderCurrency:       currencies[0],
		GatewayOrderStatus:         model.OrderPending,
	}

	resp, merr := s.Snap.CreateTransaction(BuildSnapRequest(order, in.Customer))
	if merr != nil {
		return nil, apperror.Internal("create snap transaction", merr)
	}
	order.GatewayOrderSnapToken = &resp.Token
	order.GatewayOrderRedirectURL = &resp.RedirectURL

	if err := db.Create(&order).Error; err != nil {
		return nil, helper.MapDBError("create gateway order", err, "gateway order id collision, retry")
	}
	s.Log.Info("gateway checkout created",
		"order_id", order.GatewayOrderID,
		"items", len(items),
		"gross_amount", order.GatewayOrderGrossAmount,
	)
	return &order, nil
}

/* =========================================================
   Notification (webhook)
========================================================= */

type NotificationResult struct {
	OrderID       string            `json:"order_id"`
	Status        model.OrderStatus `json:"status,omitempty"`
	Ignored       bool              `json:"ignored,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	TransactionID *uuid.UUID        `json:"transaction_id,omitempty"`
}

func parseSettlementTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, dbtime.AppLocation())
	if err != nil {
		return nil
	}
	return &t
}

// HandleNotification: verifikasi signature, kunci order, dan saat settlement
// terapkan pembayaran ke ledger di tx yang sama (idempotent per order).
func (s *Service) HandleNotification(ctx context.Context, n dto.MidtransNotification, raw []byte) (*NotificationResult, error) {
	if !VerifySignature(n, s.ServerKey) {
		return nil, ErrInvalidSignature
	}
	out := &NotificationResult{OrderID: n.OrderID}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.GatewayOrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&order, "gateway_order_id = ?", n.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				out.Ignored, out.Reason = true, "order not found"
				return nil
			}
			return err
		}

		order.GatewayOrderLastPayload = datatypes.JSON(raw)
		if n.TransactionID != "" {
			ref := n.TransactionID
			order.GatewayOrderGatewayRef = &ref
		}

		next := MapStatus(n)
		switch {
		case order.GatewayOrderStatus == model.OrderSettled:
			// sudah diterapkan; notifikasi ulang diabaikan
			out.Ignored, out.Reason = true, "already settled"
		case next == model.OrderSettled:
			if err := s.settle(tx, &order, n); err != nil {
				return err
			}
		case next != "":
			order.GatewayOrderStatus = next
		}
		out.Status = order.GatewayOrderStatus
		out.TransactionID = order.GatewayOrderTransactionID
		return tx.Save(&order).Error
	})
	if err != nil {
		return nil, apperror.Wrap("handle midtrans notification", err)
	}
	return out, nil
}

func (s *Service) settle(tx *gorm.DB, order *model.GatewayOrderModel, n dto.MidtransNotification) error {
	ids := make([]uuid.UUID, 0, len(order.GatewayOrderPaymentItemIDs))
	for _, raw := range order.GatewayOrderPaymentItemIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	notes := "midtrans order " + order.GatewayOrderID
	req := psService.BatchPaymentRequest{
		ItemIDs:         ids,
		PaymentMethod:   string(txModel.MethodGateway),
		Amount:          decimal.NewFromInt(order.GatewayOrderGrossAmount),
		ReferenceNumber: order.GatewayOrderGatewayRef,
		Notes:           &notes,
		PaymentDate:     parseSettlementTime(n.SettlementTime),
	}

	order.GatewayOrderStatus = model.OrderSettled
	res, err := s.Ledger.ProcessBatchTx(tx, req)
	if errors.Is(err, apperror.ErrConflict) {
		// item sudah lunas lewat jalur lain; uang tetap tercatat di order untuk rekonsiliasi
		s.Log.Warn("gateway settlement found nothing to apply", "order_id", order.GatewayOrderID)
		return nil
	}
	if err != nil {
		return err
	}
	id := res.Transaction.TransactionID
	order.GatewayOrderTransactionID = &id
	s.Log.Info("gateway settlement applied",
		"order_id", order.GatewayOrderID,
		"transaction_id", id,
		"unapplied", res.Transaction.TransactionUnappliedAmount.StringFixed(2),
	)
	return nil
}
