package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newApp() *fiber.App {
	app := fiber.New()
	g := app.Group("/api/a",
		AuthJWT(AuthJWTOpts{Secret: testSecret}),
		OnlyRoles("", "admin", "finance"),
	)
	g.Get("/ping", func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocUserID).(string))
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/api/a/ping", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthJWT(t *testing.T) {
	app := newApp()
	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, doGet(t, app, "garbage"))
	assert.Equal(t, fiber.StatusUnauthorized,
		doGet(t, app, sign(t, jwt.MapClaims{"sub": "u1", "role": "admin", "exp": exp}, "wrong")))
	assert.Equal(t, fiber.StatusUnauthorized,
		doGet(t, app, sign(t, jwt.MapClaims{"sub": "u1", "role": "admin", "exp": time.Now().Add(-time.Minute).Unix()}, testSecret)))

	assert.Equal(t, fiber.StatusForbidden,
		doGet(t, app, sign(t, jwt.MapClaims{"sub": "u1", "role": "student", "exp": exp}, testSecret)))
	assert.Equal(t, fiber.StatusOK,
		doGet(t, app, sign(t, jwt.MapClaims{"sub": "u1", "role": "Admin", "exp": exp}, testSecret)))
	assert.Equal(t, fiber.StatusOK,
		doGet(t, app, sign(t, jwt.MapClaims{"id": "u2", "roles": []any{"teacher", "finance"}, "exp": exp}, testSecret)))
}

func TestAuthJWTWithoutSecretRejects(t *testing.T) {
	app := fiber.New()
	app.Get("/x", AuthJWT(AuthJWTOpts{}), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest(fiber.MethodGet, "/x", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRolesFromClaims(t *testing.T) {
	got := RolesFromClaims(jwt.MapClaims{"role": " Owner ", "roles_global": []any{"ADMIN", 3, ""}})
	assert.Equal(t, []string{"owner", "admin"}, got)
}
