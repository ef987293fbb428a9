package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidTaxInput     = "ERR_INVALID_TAX_INPUT"
	ErrCodeInvalidPaymentAmt   = "ERR_INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidEmail        = "ERR_INVALID_EMAIL"
	ErrCodeInvalidPhone        = "ERR_INVALID_PHONE"
	ErrCodeInvalidGSTIN        = "ERR_INVALID_GSTIN"
	ErrCodeInvalidName         = "ERR_INVALID_NAME"
	ErrCodeMissingIdempotency  = "ERR_MISSING_IDEMPOTENCY_KEY"
	ErrCodeRequestBodyTooLarge = "ERR_REQUEST_BODY_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeBalanceConflict     = "ERR_BALANCE_CONFLICT"
	ErrCodeDuplicateRequest    = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
	ErrCodeOverpayment         = "ERR_OVERPAYMENT_REJECTED"
	ErrCodeInvalidPartyRole    = "ERR_INVALID_PARTY_ROLE"
	ErrCodePartyInactive       = "ERR_PARTY_INACTIVE"
	ErrCodeAlreadyReversed     = "ERR_ALREADY_REVERSED"
	ErrCodeDocumentHasPayments = "ERR_DOCUMENT_HAS_PAYMENTS"
	ErrCodeAlreadyActive       = "ERR_ALREADY_ACTIVE"
	ErrCodeAlreadyInactive     = "ERR_ALREADY_INACTIVE"
	ErrCodeFeatureDisabled     = "ERR_FEATURE_DISABLED"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidTaxInput:     http.StatusBadRequest,
	ErrCodeInvalidPaymentAmt:   http.StatusBadRequest,
	ErrCodeInvalidEmail:        http.StatusBadRequest,
	ErrCodeInvalidPhone:        http.StatusBadRequest,
	ErrCodeInvalidGSTIN:        http.StatusBadRequest,
	ErrCodeInvalidName:         http.StatusBadRequest,
	ErrCodeMissingIdempotency:  http.StatusBadRequest,
	ErrCodeRequestBodyTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeBalanceConflict:     http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeOverpayment:         http.StatusUnprocessableEntity,
	ErrCodeInvalidPartyRole:    http.StatusUnprocessableEntity,
	ErrCodePartyInactive:       http.StatusUnprocessableEntity,
	ErrCodeAlreadyReversed:     http.StatusUnprocessableEntity,
	ErrCodeDocumentHasPayments: http.StatusUnprocessableEntity,
	ErrCodeAlreadyActive:       http.StatusUnprocessableEntity,
	ErrCodeAlreadyInactive:     http.StatusUnprocessableEntity,
	ErrCodeFeatureDisabled:     http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code (e.g. "BALANCE_CONFLICT")
// to its API form ("ERR_BALANCE_CONFLICT"). Codes already in API form pass
// through unchanged.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
