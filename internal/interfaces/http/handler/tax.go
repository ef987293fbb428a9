package handler

import (
	"github.com/gin-gonic/gin"
	invoicingapp "github.com/profitpath/backend/internal/application/invoicing"
)

// TaxHandler prices lines without creating a document
type TaxHandler struct {
	BaseHandler
	documentService *invoicingapp.DocumentService
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(documentService *invoicingapp.DocumentService) *TaxHandler {
	return &TaxHandler{documentService: documentService}
}

// Preview godoc
// @ID           previewTax
// @Summary      Preview the GST and cess breakdown of lines
// @Tags         tax
// @Accept       json
// @Produce      json
// @Param        request body invoicingapp.TaxPreviewRequest true "Lines to price"
// @Success      200 {object} APIResponse[invoicingapp.TaxPreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tax/preview [post]
func (h *TaxHandler) Preview(c *gin.Context) {
	if _, ok := h.tenantID(c); !ok {
		return
	}
	var req invoicingapp.TaxPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	preview, err := h.documentService.TaxPreview(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}
