package cashflow

import (
	"time"

	"github.com/profitpath/backend/internal/domain/cashflow"
)

// ProjectionRequest is the query of a projection
type ProjectionRequest struct {
	From        time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To          time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
	Granularity string    `form:"granularity" binding:"omitempty,oneof=DAY WEEK MONTH QUARTER YEAR day week month quarter year"`
}

// ProjectionResponse is a projection with its totals row
type ProjectionResponse struct {
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	Granularity string            `json:"granularity"`
	Buckets     []cashflow.Bucket `json:"buckets"`
	Totals      cashflow.Totals   `json:"totals"`
}
