package dto

import (
	"net/http"
	"strings"
)

// API error codes, reported in error.code.
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeBadRequest       = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON      = "ERR_INVALID_JSON"
	ErrCodePayloadTooLarge  = "ERR_PAYLOAD_TOO_LARGE"
	ErrCodeValidation       = "ERR_VALIDATION"
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeBusinessRule        = "ERR_BUSINESS_RULE"

	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

var statusByCode = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeValidation:       http.StatusBadRequest,
	ErrCodeValidationFormat: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// HTTPStatus returns the status for an API code, 500 for unknown codes.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodes maps domain error codes onto API codes.
var domainCodes = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"UNKNOWN_RESOURCE": ErrCodeNotFound,

	"ORDER_ENTRY_NOT_FOUND":    ErrCodeNotFound,
	"ORDER_SCOPE_INVALID":      ErrCodeValidation,
	"ORDER_BATCH_EMPTY":        ErrCodeValidation,
	"ORDER_BATCH_TOO_LARGE":    ErrCodeValidation,
	"ORDER_BATCH_INVALID":      ErrCodeValidation,
	"ORDER_INDEX_OUT_OF_RANGE": ErrCodeValidation,
	"SORT_ORDER_CONFLICT":      ErrCodeConflict,
	"REORDER_IN_PROGRESS":      ErrCodeConflict,
	"ORDER_VERSION_MISMATCH":   ErrCodeConcurrencyConflict,
	"ORDER_AT_BOUNDARY":        ErrCodeBusinessRule,
	"ORDER_NO_CHANGE":          ErrCodeBusinessRule,
	"ORDER_LIST_EMPTY":         ErrCodeBusinessRule,
	"ORDER_SCOPE_FULL":         ErrCodeBusinessRule,
}

// APICode maps a domain code to the API code and the reason to report with
// it. Entity field checks (INVALID_<FIELD>) become ERR_VALIDATION. Codes
// that are already API codes pass through with an empty reason.
func APICode(domainCode string) (code, reason string) {
	code, ok := domainCodes[domainCode]
	switch {
	case ok:
	case strings.HasPrefix(domainCode, "INVALID_") && len(domainCode) > len("INVALID_"):
		code = ErrCodeValidation
	default:
		code = domainCode
	}
	if code != domainCode {
		reason = domainCode
	}
	return code, reason
}
