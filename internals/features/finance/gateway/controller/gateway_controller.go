// file: internals/features/finance/gateway/controller/gateway_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"schoolfee_backend/internals/configs"
	"schoolfee_backend/internals/features/finance/gateway/dto"
	"schoolfee_backend/internals/features/finance/gateway/service"
	helper "schoolfee_backend/internals/helpers"
)

type GatewayController struct {
	Svc *service.Service
}

func NewGatewayController(db *gorm.DB, settings configs.Settings) *GatewayController {
	return &GatewayController{Svc: service.New(db, settings)}
}

// POST /payment-schedules/gateway/checkout
func (h *GatewayController) Checkout(c *fiber.Ctx) error {
	var in dto.CheckoutDTO
	if err := helper.BodyParseAndValidate(c, &in); err != nil {
		return helper.JsonAppError(c, err)
	}
	order, err := h.Svc.Checkout(c.UserContext(), service.CheckoutRequest{
		ItemIDs: in.ItemIDs,
		Customer: service.CustomerInput{
			Name:  in.CustomerName,
			Email: in.CustomerEmail,
			Phone: in.CustomerPhone,
		},
	})
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, "checkout created", order)
}

// POST /api/public/payment-gateway/notification
func (h *GatewayController) Notification(c *fiber.Ctx) error {
	if h.Svc.ServerKey == "" {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "payment gateway is not configured")
	}
	var n dto.MidtransNotification
	if err := json.Unmarshal(c.Body(), &n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}

	res, err := h.Svc.HandleNotification(c.UserContext(), n, c.Body())
	if errors.Is(err, service.ErrInvalidSignature) {
		slog.Warn("midtrans notification rejected", "order_id", n.OrderID, "request_id", helper.RequestID(c))
		return helper.JsonError(c, fiber.StatusUnauthorized, "invalid signature")
	}
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	// 200 juga untuk order yang tidak dikenal supaya Midtrans tidak retry terus
	return helper.JsonOK(c, "ok", res)
}
