package domain

import (
	"errors"
	"net/http"
)

// Коды ошибок приложения.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeDuplicateUsername  = "DUPLICATE_USERNAME"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternal           = "INTERNAL"
)

// AppError - ошибка с кодом, который понимает транспортный слой.
type AppError struct {
	Code    string
	Message string
	Origin  error // исходная ошибка, если есть
}

func (e *AppError) Error() string {
	if e.Origin != nil {
		return e.Message + ": " + e.Origin.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Origin }

// Is позволяет сравнивать AppError по коду через errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func NewAppError(code, message string, origin error) *AppError {
	return &AppError{Code: code, Message: message, Origin: origin}
}

var (
	ErrNotFound           = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrInvalidInput       = &AppError{Code: CodeInvalidInput, Message: "invalid input"}
	ErrUnauthorized       = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden          = &AppError{Code: CodeForbidden, Message: "forbidden"}
	ErrDuplicateUsername  = &AppError{Code: CodeDuplicateUsername, Message: "username already taken"}
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Message: "incorrect username or password"}
)

// Invalid возвращает ошибку INVALID_INPUT с конкретным сообщением.
func Invalid(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// CodeOf возвращает код ошибки или CodeInternal для прочих ошибок.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus переводит ошибку в HTTP статус.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeDuplicateUsername:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
