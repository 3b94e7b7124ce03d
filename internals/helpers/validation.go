// file: internals/helpers/validation.go
package helper

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"schoolfee_backend/internals/helpers/apperror"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator mengembalikan instance validator bersama; nama field pakai tag json.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// ValidateStruct menjalankan validator lalu memetakan hasilnya ke apperror validation.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperror.Validation("invalid input", nil)
	}
	return apperror.Validation("validation failed", FieldErrors(ve))
}

// FieldErrors: validator.ValidationErrors -> map field -> daftar pesan
func FieldErrors(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if field == "" {
			field = strings.ToLower(fe.StructField())
		}
		out[field] = append(out[field], messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "dive":
		return "has invalid entries"
	case "unique":
		return "must not contain duplicates"
	default:
		return "failed on '" + fe.Tag() + "'"
	}
}

// BodyParseAndValidate: parse body JSON ke dst lalu validasi.
// Error dikembalikan dalam bentuk apperror, siap dipakai JsonAppError.
func BodyParseAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Validation("invalid request body", map[string][]string{
			"body": {err.Error()},
		})
	}
	return ValidateStruct(dst)
}
