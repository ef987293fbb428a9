package shared

import "errors"

// DomainError represents a domain-level error with a stable, machine readable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped errors with a custom message
// still satisfy errors.Is against the sentinel values below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// AsDomainError extracts a *DomainError from an error chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Error codes shared across the accounting core
const (
	CodeNotFound             = "NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeInvalidState         = "INVALID_STATE"
	CodeInvalidTaxInput      = "INVALID_TAX_INPUT"
	CodeInvalidPaymentAmount = "INVALID_PAYMENT_AMOUNT"
	CodeOverpaymentRejected  = "OVERPAYMENT_REJECTED"
	CodeBalanceConflict      = "BALANCE_CONFLICT"
	CodeInvalidPartyRole     = "INVALID_PARTY_ROLE"
	CodePartyInactive        = "PARTY_INACTIVE"
	CodeAlreadyReversed      = "ALREADY_REVERSED"
	CodeDocumentHasPayments  = "DOCUMENT_HAS_PAYMENTS"
	CodeDuplicateRequest     = "DUPLICATE_REQUEST"
	CodeFeatureDisabled      = "FEATURE_DISABLED"
)

// Common domain errors
var (
	ErrNotFound             = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists        = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput         = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict  = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrForbidden            = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState         = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrInvalidTaxInput      = NewDomainError(CodeInvalidTaxInput, "Invalid tax input")
	ErrInvalidPaymentAmount = NewDomainError(CodeInvalidPaymentAmount, "Payment amount must be positive")
	ErrOverpaymentRejected  = NewDomainError(CodeOverpaymentRejected, "Payment exceeds outstanding balance")
	ErrBalanceConflict      = NewDomainError(CodeBalanceConflict, "Grand total is less than the amount already paid")
	ErrInvalidPartyRole     = NewDomainError(CodeInvalidPartyRole, "Party must be a customer, a vendor, or both")
	ErrDuplicateRequest     = NewDomainError(CodeDuplicateRequest, "Request with this idempotency key was already processed")
	ErrFeatureDisabled      = NewDomainError(CodeFeatureDisabled, "Feature is disabled")
)
