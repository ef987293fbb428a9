package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	"github.com/profitpath/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client key that deduplicates payment retries
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// PaymentHandler handles payment ledger endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *appledger.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *appledger.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a payment against a document
// @Description  Appends a ledger entry and reconciles the document balance. A repeated Idempotency-Key returns ERR_DUPLICATE_REQUEST.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        Idempotency-Key header string false "Client retry key"
// @Param        request body appledger.RecordPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[appledger.PaymentResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appledger.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Idempotency-Key is too long")
		return
	}
	req.RecordedBy = userID(c)

	result, err := h.paymentService.RecordPayment(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// List godoc
// @ID           listPayments
// @Summary      List the ledger entries of a document
// @Description  Payments and reversals, oldest payment date first
// @Tags         payments
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[[]appledger.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payments)
}

// Reverse godoc
// @ID           reversePayment
// @Summary      Reverse a payment
// @Description  Appends a compensating entry. The original entry is never modified.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Param        request body appledger.ReversePaymentRequest true "Reversal reason"
// @Success      201 {object} APIResponse[appledger.PaymentResultResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id}/reverse [post]
func (h *PaymentHandler) Reverse(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appledger.ReversePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.ReversedBy = userID(c)

	result, err := h.paymentService.ReversePayment(c.Request.Context(), tenantID, paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// DeleteLegacy godoc
// @ID           deletePayment
// @Summary      Delete a payment (deprecated)
// @Description  Removes a payment that was never reversed. Disabled unless features.legacy_payment_delete is set; use the reverse endpoint instead.
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[appledger.BalanceResponse]
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Deprecated
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) DeleteLegacy(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.paymentService.DeleteLegacy(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Deprecation", "true")
	h.Success(c, balance)
}
