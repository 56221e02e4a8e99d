package dto

import (
	"net/http"
	"strings"
)

// General error codes raised by the HTTP layer itself
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	// Input errors
	ErrCodeBadRequest:  http.StatusBadRequest,
	"INVALID_INPUT":    http.StatusBadRequest,
	"INVALID_QUANTITY": http.StatusBadRequest,
	"INVALID_PRICE":    http.StatusBadRequest,
	"INVALID_AMOUNT":   http.StatusBadRequest,
	"INVALID_PRODUCT":  http.StatusBadRequest,
	"INVALID_DOCUMENT": http.StatusBadRequest,
	"INVALID_ACCOUNT":  http.StatusBadRequest,

	// Reference errors
	"NOT_FOUND":       http.StatusNotFound,
	"UNKNOWN_PRODUCT": http.StatusNotFound,
	"UNKNOWN_ACCOUNT": http.StatusNotFound,

	// Business rule errors
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"ALREADY_EXISTS":     http.StatusConflict,

	// Contention
	"LOCK_TIMEOUT": http.StatusServiceUnavailable,

	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unmapped codes fall back on their prefix family, then on 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	if strings.HasPrefix(code, "UNKNOWN_") {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
