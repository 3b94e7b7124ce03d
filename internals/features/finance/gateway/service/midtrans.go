// file: internals/features/finance/gateway/service/midtrans.go
package service

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"schoolfee_backend/internals/features/finance/gateway/dto"
	"schoolfee_backend/internals/features/finance/gateway/model"
)

/* =========================================================
   Midtrans Snap client
========================================================= */

// SnapCreator: bagian snap.Client yang dipakai checkout.
type SnapCreator interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// NewSnapClient: useProduction=false untuk Sandbox.
func NewSnapClient(serverKey string, useProduction bool) *snap.Client {
	var c snap.Client
	if useProduction {
		c.New(serverKey, midtrans.Production)
	} else {
		c.New(serverKey, midtrans.Sandbox)
	}
	return &c
}

type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// BuildSnapRequest: satu baris item berisi total, supaya Σ item == gross_amount.
func BuildSnapRequest(o model.GatewayOrderModel, cust CustomerInput) *snap.Request {
	first, last := splitName(cust.Name)
	name := fmt.Sprintf("School fees (%d items)", len(o.GatewayOrderPaymentItemIDs))
	if len(o.GatewayOrderPaymentItemIDs) == 1 {
		name = "School fee"
	}
	return &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  o.GatewayOrderID,
			GrossAmt: o.GatewayOrderGrossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: cust.Email,
			Phone: cust.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       truncate(o.GatewayOrderID, 50),
			Name:     name,
			Price:    o.GatewayOrderGrossAmount,
			Qty:      1,
			Category: "SCHOOL_FEE",
		}},
	}
}

/* =========================================================
   Notification helpers
========================================================= */

// VerifySignature: SHA512(order_id + status_code + gross_amount + ServerKey).
func VerifySignature(n dto.MidtransNotification, serverKey string) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || serverKey == "" {
		return false
	}
	return SignatureFor(n.OrderID, n.StatusCode, n.GrossAmount, serverKey) == want
}

func SignatureFor(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// MapStatus: status Midtrans -> status order. "" artinya tidak ada perubahan.
func MapStatus(n dto.MidtransNotification) model.OrderStatus {
	fraud := strings.ToLower(n.FraudStatus)
	switch strings.ToLower(n.TransactionStatus) {
	case "capture":
		switch fraud {
		case "accept", "":
			return model.OrderSettled
		case "challenge":
			return model.OrderPending
		}
		return model.OrderFailed
	case "settlement":
		return model.OrderSettled
	case "pending":
		return model.OrderPending
	case "deny", "failure":
		return model.OrderFailed
	case "cancel":
		return model.OrderCancelled
	case "expire":
		return model.OrderExpired
	}
	return ""
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "Parent", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
