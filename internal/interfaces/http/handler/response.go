package handler

import (
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/interfaces/http/dto"
)

// APIResponse is the success envelope shown in the OpenAPI document
// @Description Response envelope; data holds the typed payload
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope shown in the OpenAPI document
// @Description Failure envelope; error.code is one of the ERR_* codes below
type ErrorResponse struct {
	Success bool      `json:"success" example:"false"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody mirrors dto.ErrorInfo with the codes this API returns
type ErrorBody struct {
	Code      string                 `json:"code" example:"ERR_OVERPAYMENT_REJECTED" enums:"ERR_VALIDATION,ERR_INVALID_INPUT,ERR_INVALID_JSON,ERR_INVALID_TAX_INPUT,ERR_INVALID_PAYMENT_AMOUNT,ERR_UNAUTHORIZED,ERR_TOKEN_INVALID,ERR_TOKEN_EXPIRED,ERR_FORBIDDEN,ERR_NOT_FOUND,ERR_CONCURRENCY_CONFLICT,ERR_BALANCE_CONFLICT,ERR_DUPLICATE_REQUEST,ERR_INVALID_STATE,ERR_OVERPAYMENT_REJECTED,ERR_INVALID_PARTY_ROLE,ERR_PARTY_INACTIVE,ERR_ALREADY_REVERSED,ERR_DOCUMENT_HAS_PAYMENTS,ERR_FEATURE_DISABLED,ERR_RATE_LIMITED,ERR_INTERNAL"`
	Message   string                 `json:"message" example:"payment 5000.00 exceeds outstanding balance 1180.00"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   []dto.ValidationDetail `json:"details,omitempty"`
}

// ledgerErrorCodes are the domain codes the document, payment and party
// endpoints can return, normalized by HandleError to their ERR_ form
var ledgerErrorCodes = []string{
	shared.CodeNotFound,
	shared.CodeInvalidInput,
	shared.CodeConcurrencyConflict,
	shared.CodeInvalidState,
	shared.CodeInvalidTaxInput,
	shared.CodeInvalidPaymentAmount,
	shared.CodeOverpaymentRejected,
	shared.CodeBalanceConflict,
	shared.CodeInvalidPartyRole,
	shared.CodePartyInactive,
	shared.CodeAlreadyReversed,
	shared.CodeDocumentHasPayments,
	shared.CodeDuplicateRequest,
	shared.CodeFeatureDisabled,
}
