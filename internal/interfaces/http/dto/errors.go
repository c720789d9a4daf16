package dto

import (
	"net/http"
	"strings"
)

// Error codes, formatted ERR_<CATEGORY>.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	// request shape
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	// identity
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"

	// order settlement
	ErrCodeValidationMismatch = "ERR_VALIDATION_MISMATCH"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeCapacityExceeded   = "ERR_CAPACITY_EXCEEDED"
	ErrCodeInvalidState       = "ERR_INVALID_STATE"
	ErrCodeConflict           = "ERR_CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,

	ErrCodeValidationMismatch: http.StatusUnprocessableEntity,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeCapacityExceeded:   http.StatusServiceUnavailable,
	ErrCodeInvalidState:       http.StatusConflict,
	ErrCodeConflict:           http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code, 500 when the
// code is unknown.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_STATE":       ErrCodeInvalidState,
	"VALIDATION_MISMATCH": ErrCodeValidationMismatch,
	"CAPACITY_EXCEEDED":   ErrCodeCapacityExceeded,
	"CONFLICT":            ErrCodeConflict,
	"UNAUTHORIZED":        ErrCodeUnauthorized,
}

// inputGuardPrefixes mark domain codes raised by entity constructors and
// guards, such as INVALID_SKU or NO_ITEMS.
var inputGuardPrefixes = []string{"INVALID_", "NO_"}

// NormalizeErrorCode converts a domain error code to its API form. Input
// guard codes become ERR_INVALID_INPUT; API codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	for _, prefix := range inputGuardPrefixes {
		if strings.HasPrefix(code, prefix) {
			return ErrCodeInvalidInput
		}
	}
	return code
}
