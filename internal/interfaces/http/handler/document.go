package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/profitpath/backend/internal/application/invoicing"
	appledger "github.com/profitpath/backend/internal/application/ledger"
)

// DocumentHandler handles invoice and purchase document endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *invoicingapp.DocumentService
	reconciler      *appledger.Reconciler
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *invoicingapp.DocumentService, reconciler *appledger.Reconciler) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		reconciler:      reconciler,
	}
}

// Create godoc
// @ID           createDocument
// @Summary      Create an invoice or purchase
// @Description  Prices every line with GST and cess. Invoices need a customer party, purchases a vendor party.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.CreateDocumentRequest true "Document creation request"
// @Success      201 {object} APIResponse[invoicingapp.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req invoicingapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// GetByID godoc
// @ID           getDocument
// @Summary      Get a document with its lines
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[invoicingapp.DocumentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// List godoc
// @ID           listDocuments
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        search query string false "Number contains"
// @Param        kind query string false "Document kind" Enums(INVOICE, PURCHASE)
// @Param        status query string false "Payment status" Enums(OPEN, PARTIAL, PAID, OVERPAID, CANCELLED)
// @Param        party_id query string false "Party ID" format(uuid)
// @Param        from_date query string false "Document date from (YYYY-MM-DD)"
// @Param        to_date query string false "Document date to (YYYY-MM-DD)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]invoicingapp.DocumentListResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var filter invoicingapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	docs, total, err := h.documentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, pageSize := pageOrDefault(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, docs, total, page, pageSize)
}

// UpdateLines godoc
// @ID           updateDocumentLines
// @Summary      Replace the lines of a document
// @Description  Recomputes totals and reconciles the balance against the ledger
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body invoicingapp.UpdateLinesRequest true "New lines"
// @Success      200 {object} APIResponse[invoicingapp.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/lines [put]
func (h *DocumentHandler) UpdateLines(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.UpdateLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.UpdateLines(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Cancel godoc
// @ID           cancelDocument
// @Summary      Cancel a document
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body invoicingapp.CancelDocumentRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[invoicingapp.DocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	doc, err := h.documentService.Cancel(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete godoc
// @ID           deleteDocument
// @Summary      Delete a document
// @Description  Only documents without ledger entries can be deleted
// @Tags         documents
// @Param        id path string true "Document ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBalance godoc
// @ID           getDocumentBalance
// @Summary      Get the stored balance of a document
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[appledger.BalanceResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/balance [get]
func (h *DocumentHandler) GetBalance(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	balance, err := h.documentService.GetBalance(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Reconcile godoc
// @ID           reconcileDocument
// @Summary      Recompute the balance of a document from its ledger
// @Description  Idempotent. Running it twice without new ledger entries leaves the document unchanged.
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[appledger.BalanceResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/reconcile [post]
func (h *DocumentHandler) Reconcile(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.reconciler.Reconcile(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appledger.ToBalanceResponse(doc))
}
