package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind mengelompokkan error bisnis supaya controller bisa memetakan
// ke status HTTP dan UI bisa bereaksi (mis. "name taken" vs "table occupied").
type ErrorKind string

const (
	KindNotFound              ErrorKind = "not_found"
	KindConflict              ErrorKind = "conflict"
	KindInvalidTransition     ErrorKind = "invalid_transition"
	KindValidation            ErrorKind = "validation"
	KindDependencyUnavailable ErrorKind = "dependency_unavailable"
)

type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFoundf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Dependency membungkus error storage transient setelah retry habis.
func Dependency(err error) *AppError {
	return &AppError{Kind: KindDependencyUnavailable, Message: "storage temporarily unavailable", Err: err}
}

// KindOf -> kind dari error; error tak dikenal dianggap dependency failure
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependencyUnavailable
}

// HTTPStatus memetakan kind ke kode HTTP di satu tempat.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
