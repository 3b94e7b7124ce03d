// file: internals/features/finance/gateway/dto/gateway_dto.go
package dto

import (
	"github.com/google/uuid"
)

type CheckoutDTO struct {
	ItemIDs       []uuid.UUID `json:"itemIds" validate:"required,min=1,max=50"`
	CustomerName  string      `json:"customerName" validate:"required,max=120"`
	CustomerEmail string      `json:"customerEmail" validate:"omitempty,email,max=120"`
	CustomerPhone string      `json:"customerPhone" validate:"omitempty,max=30"`
}

// MidtransNotification: payload notifikasi HTTP Midtrans (field lain diabaikan).
type MidtransNotification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`
}
