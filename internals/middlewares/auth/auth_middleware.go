// file: internals/middlewares/auth/auth_middleware.go
package auth

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "schoolfee_backend/internals/helpers"
)

// Locals key yang diisi AuthJWT.
const (
	LocUserID = "user_id"
	LocRoles  = "roles"
	LocClaims = "jwt_claims"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // pakai cookie access_token jika tidak ada Bearer
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		raw := extractToken(c, o.AllowCookieFallback)
		if raw == "" {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			slog.Debug("jwt rejected", "error", err, "request_id", helper.RequestID(c))
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Invalid token claims")
		}

		c.Locals(LocClaims, claims)
		c.Locals(LocRoles, RolesFromClaims(claims))
		for _, k := range []string{"id", "sub", "user_id"} {
			if v := strClaim(claims, k); v != "" {
				c.Locals(LocUserID, v)
				break
			}
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx, cookieFallback bool) string {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	if cookieFallback {
		return strings.TrimSpace(c.Cookies("access_token"))
	}
	return ""
}

// RolesFromClaims membaca "role" (string) dan "roles" / "roles_global" (array).
func RolesFromClaims(claims jwt.MapClaims) []string {
	out := make([]string, 0, 2)
	if r := strClaim(claims, "role"); r != "" {
		out = append(out, strings.ToLower(r))
	}
	for _, k := range []string{"roles", "roles_global"} {
		arr, ok := claims[k].([]any)
		if !ok {
			continue
		}
		for _, it := range arr {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.ToLower(strings.TrimSpace(s)))
			}
		}
	}
	return out
}

func strClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
