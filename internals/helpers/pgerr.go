// file: internals/helpers/pgerr.go
package helper

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"schoolfee_backend/internals/helpers/apperror"
)

// PGCode mengambil SQLSTATE dari error pgx maupun lib/pq ("" kalau bukan error postgres).
func PGCode(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || PGCode(err) == "23505"
}

// MapDBError menerjemahkan error storage ke apperror.
// uniqueMsg dipakai bila unique violation (23505) -> AlreadyExists.
func MapDBError(op string, err error, uniqueMsg string) error {
	if err == nil {
		return nil
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.New(apperror.KindNotFound, "record not found")
	}
	switch PGCode(err) {
	case "23505":
		if uniqueMsg == "" {
			uniqueMsg = "duplicate record"
		}
		return apperror.AlreadyExists(uniqueMsg)
	case "23503":
		return apperror.Validation("referenced record does not exist", nil)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.AlreadyExists(uniqueMsg)
	}
	return apperror.Internal(op, err)
}
