package handler

import (
	"github.com/gin-gonic/gin"
	cashflowapp "github.com/profitpath/backend/internal/application/cashflow"
)

// CashflowHandler handles cashflow projection endpoints
type CashflowHandler struct {
	BaseHandler
	cashflowService *cashflowapp.Service
}

// NewCashflowHandler creates a new CashflowHandler
func NewCashflowHandler(cashflowService *cashflowapp.Service) *CashflowHandler {
	return &CashflowHandler{cashflowService: cashflowService}
}

// Project godoc
// @ID           projectCashflow
// @Summary      Project cash in and out over a date range
// @Description  Buckets ledger movements by day, week, month, quarter or year. Inflows come from invoices, outflows from purchases.
// @Tags         cashflow
// @Produce      json
// @Param        from query string true "Range start (YYYY-MM-DD)"
// @Param        to query string true "Range end, inclusive (YYYY-MM-DD)"
// @Param        granularity query string false "Bucket size" Enums(DAY, WEEK, MONTH, QUARTER, YEAR) default(MONTH)
// @Success      200 {object} APIResponse[cashflowapp.ProjectionResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cashflow [get]
func (h *CashflowHandler) Project(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req cashflowapp.ProjectionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	projection, err := h.cashflowService.Project(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, projection)
}
