package handler

import (
	"context"

	"github.com/google/uuid"
	partnerapp "github.com/profitpath/backend/internal/application/partner"
)

const defaultPageSize = 20

type partyToggle func(ctx context.Context, tenantID, id uuid.UUID) (*partnerapp.PartyResponse, error)

// pageOrDefault applies the list defaults used by the services
func pageOrDefault(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}
