package errs

import (
	"errors"
	"net/http"
)

// Базовые «виды» ошибок. Доменные ошибки оборачивают их через %w,
// транспорт смотрит только на вид.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrUpstream    = errors.New("upstream error")
	ErrUnavailable = errors.New("service unavailable")
)

func ToHTTP(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Public — текст, который можно отдать клиенту: для 5xx детали скрываем.
func Public(err error) string {
	if err == nil {
		return ""
	}
	if ToHTTP(err) >= http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}
