package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolfee_backend/internals/configs"
	helper "schoolfee_backend/internals/helpers"
)

// Semua kasus di sini gagal sebelum menyentuh DB, jadi controller dibuat tanpa koneksi.
func newTestApp() *fiber.App {
	h := NewPaymentScheduleController(nil, configs.Settings{OverpaymentPolicy: configs.OverpaymentReject})
	app := fiber.New()
	grp := app.Group("/payment-schedules")
	grp.Post("/enrollment/:enrollmentId/create", h.Generate)
	grp.Post("/regenerate/:enrollmentId", h.Regenerate)
	grp.Get("/pending", h.ListPending)
	grp.Post("/batch-payment", h.BatchPayment)
	grp.Post("/items/:itemId/pay", h.PayItem)
	grp.Post("/items/:itemId/waive", h.WaiveItem)
	grp.Get("/:scheduleId", h.Get)
	return app
}

func call(t *testing.T, app *fiber.App, method, path, body string) (int, helper.ErrorResponse) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var out helper.ErrorResponse
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestInvalidPathIDs(t *testing.T) {
	app := newTestApp()

	status, body := call(t, app, fiber.MethodPost, "/payment-schedules/enrollment/not-a-uuid/create", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", body.ErrorCode)
	assert.Contains(t, body.Errors, "enrollmentId")

	status, body = call(t, app, fiber.MethodGet, "/payment-schedules/123", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Errors, "scheduleId")

	status, body = call(t, app, fiber.MethodGet, "/payment-schedules/pending?student_id=x", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Errors, "student_id")
}

func TestBatchPaymentValidation(t *testing.T) {
	app := newTestApp()

	status, body := call(t, app, fiber.MethodPost, "/payment-schedules/batch-payment", `{"itemIds":[],"amount":"0"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.False(t, body.Success)
	assert.Contains(t, body.Errors, "itemIds")
	assert.Contains(t, body.Errors, "paymentMethod")
	assert.Contains(t, body.Errors, "amount")

	dup := `{"itemIds":["6f1c2a4e-8a51-4f7e-9a53-0d7a3c1b2e10","6f1c2a4e-8a51-4f7e-9a53-0d7a3c1b2e10"],` +
		`"paymentMethod":"crypto","amount":"10"}`
	status, body = call(t, app, fiber.MethodPost, "/payment-schedules/batch-payment", dup)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"must not contain duplicates"}, body.Errors["itemIds"])
	assert.Contains(t, body.Errors, "paymentMethod")
	assert.NotContains(t, body.Errors, "amount")

	status, body = call(t, app, fiber.MethodPost, "/payment-schedules/batch-payment", `{not json`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Errors, "body")
}

func TestItemEndpointsValidation(t *testing.T) {
	app := newTestApp()
	item := "/payment-schedules/items/6f1c2a4e-8a51-4f7e-9a53-0d7a3c1b2e10"

	status, body := call(t, app, fiber.MethodPost, item+"/pay", `{"amount":"10","paymentMethod":"barter"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Errors, "paymentMethod")

	status, body = call(t, app, fiber.MethodPost, item+"/waive", `{"reason":""}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, []string{"is required"}, body.Errors["reason"])
}

func TestRegenerateRejectsUnknownPreference(t *testing.T) {
	app := newTestApp()

	status, body := call(t, app, fiber.MethodPost,
		"/payment-schedules/regenerate/6f1c2a4e-8a51-4f7e-9a53-0d7a3c1b2e10", `{"paymentPreference":"weekly"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, body.Errors, "paymentPreference")
}
