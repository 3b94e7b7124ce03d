// file: internals/helpers/apperror/apperror.go
package apperror

import (
	"errors"
	"fmt"
)

// Kind adalah kategori error yang bisa dibaca mesin (dipakai di response "error_code").
type Kind string

const (
	KindValidation          Kind = "validation_error"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindAlreadyExists       Kind = "already_exists"
	KindInvalidAmount       Kind = "invalid_amount"
	KindOverpaymentRejected Kind = "overpayment_rejected"
	KindNoApplicableFees    Kind = "no_applicable_fees"
	KindInternal            Kind = "internal"
)

// Error membawa kind + pesan aman untuk user. Cause tidak pernah dikirim ke client.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is mencocokkan berdasarkan Kind, jadi errors.Is(err, apperror.ErrNotFound) jalan.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// Sentinel per kind (Message kosong = cocok untuk semua pesan dengan kind tsb).
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrConflict            = &Error{Kind: KindConflict}
	ErrAlreadyExists       = &Error{Kind: KindAlreadyExists}
	ErrInvalidAmount       = &Error{Kind: KindInvalidAmount}
	ErrOverpaymentRejected = &Error{Kind: KindOverpaymentRejected}
	ErrInternal            = &Error{Kind: KindInternal}
)

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func AlreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Internal membungkus error storage; message generik, cause disimpan untuk log.
func Internal(op string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Cause: fmt.Errorf("%s: %w", op, cause)}
}

// KindOf mengembalikan kind dari err (internal kalau bukan *Error).
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Wrap: kalau err sudah *Error dikembalikan apa adanya, selain itu jadi Internal.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(op, err)
}
