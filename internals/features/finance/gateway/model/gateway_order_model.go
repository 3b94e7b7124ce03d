// file: internals/features/finance/gateway/model/gateway_order_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderSettled   OrderStatus = "settled"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
	OrderExpired   OrderStatus = "expired"
)

// --- MODEL gateway_orders ----------------------------------------------------
// Satu order Midtrans = satu checkout atas beberapa payment item.
type GatewayOrderModel struct {
	GatewayOrderID             string          `json:"gateway_order_id" gorm:"column:gateway_order_id;type:varchar(60);primaryKey"`
	GatewayOrderPaymentItemIDs pq.StringArray  `json:"gateway_order_payment_item_ids" gorm:"column:gateway_order_payment_item_ids;type:text[];not null"`
	GatewayOrderStudentID      *uuid.UUID      `json:"gateway_order_student_id,omitempty" gorm:"column:gateway_order_student_id;type:uuid;index"`
	GatewayOrderAmount         decimal.Decimal `json:"gateway_order_amount" gorm:"column:gateway_order_amount;type:numeric(14,2);not null"`
	GatewayOrderGrossAmount    int64           `json:"gateway_order_gross_amount" gorm:"column:gateway_order_gross_amount;not null"`
	GatewayOrderCurrency       string          `json:"gateway_order_currency" gorm:"column:gateway_order_currency;type:varchar(3);not null"`
	GatewayOrderStatus         OrderStatus     `json:"gateway_order_status" gorm:"column:gateway_order_status;type:varchar(16);not null;default:'pending';index"`

	GatewayOrderSnapToken   *string `json:"gateway_order_snap_token,omitempty" gorm:"column:gateway_order_snap_token;type:varchar(120)"`
	GatewayOrderRedirectURL *string `json:"gateway_order_redirect_url,omitempty" gorm:"column:gateway_order_redirect_url;type:text"`

	// diisi setelah settlement diterapkan ke ledger
	GatewayOrderTransactionID *uuid.UUID     `json:"gateway_order_transaction_id,omitempty" gorm:"column:gateway_order_transaction_id;type:uuid"`
	GatewayOrderGatewayRef    *string        `json:"gateway_order_gateway_ref,omitempty" gorm:"column:gateway_order_gateway_ref;type:varchar(80)"`
	GatewayOrderLastPayload   datatypes.JSON `json:"-" gorm:"column:gateway_order_last_payload;type:jsonb"`

	GatewayOrderCreatedAt time.Time `json:"gateway_order_created_at" gorm:"column:gateway_order_created_at;type:timestamptz;not null;autoCreateTime"`
	GatewayOrderUpdatedAt time.Time `json:"gateway_order_updated_at" gorm:"column:gateway_order_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (GatewayOrderModel) TableName() string { return "gateway_orders" }
