package controller

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/configs"
)

func post(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestGatewayWithoutServerKey(t *testing.T) {
	h := NewGatewayController(nil, configs.Settings{})
	app := fiber.New()
	app.Post("/checkout", h.Checkout)
	app.Post("/notification", h.Notification)

	assert.Equal(t, fiber.StatusUnprocessableEntity, post(t, app, "/checkout", `{"itemIds":[]}`))
	assert.Equal(t, fiber.StatusConflict, post(t, app, "/checkout",
		`{"itemIds":["6f1c2a4e-8a51-4f7e-9a53-0d7a3c1b2e10"],"customerName":"Asha"}`))
	assert.Equal(t, fiber.StatusServiceUnavailable, post(t, app, "/notification", `{"order_id":"PAY-1"}`))
}

func TestNotificationRejectsBadSignature(t *testing.T) {
	h := NewGatewayController(nil, configs.Settings{})
	h.Svc.ServerKey = "server-key"
	app := fiber.New()
	app.Post("/notification", h.Notification)

	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/notification", `{oops`))
	assert.Equal(t, fiber.StatusUnauthorized, post(t, app, "/notification",
		`{"order_id":"PAY-1","status_code":"200","gross_amount":"1000.00","signature_key":"deadbeef","transaction_status":"settlement"}`))
}
