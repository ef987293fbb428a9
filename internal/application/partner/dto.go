package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/profitpath/backend/internal/domain/shared/valueobject"
)

// CreatePartyRequest represents a request to create a new party
type CreatePartyRequest struct {
	Name           string                  `json:"name" binding:"required,min=1,max=200"`
	IsCustomer     bool                    `json:"is_customer"`
	IsVendor       bool                    `json:"is_vendor"`
	Email          string                  `json:"email" binding:"omitempty,email,max=200"`
	Phone          string                  `json:"phone" binding:"max=30"`
	GSTEnabled     bool                    `json:"gst_enabled"`
	GSTIN          string                  `json:"gstin" binding:"omitempty,len=15"`
	BillingAddress *valueobject.AddressDTO `json:"billing_address"`
	Notes          string                  `json:"notes" binding:"max=2000"`
}

// UpdatePartyRequest represents a request to update a party's details.
// Nil fields are left unchanged.
type UpdatePartyRequest struct {
	Name           *string                 `json:"name" binding:"omitempty,min=1,max=200"`
	Email          *string                 `json:"email" binding:"omitempty,max=200"`
	Phone          *string                 `json:"phone" binding:"omitempty,max=30"`
	GSTEnabled     *bool                   `json:"gst_enabled"`
	GSTIN          *string                 `json:"gstin" binding:"omitempty,len=15"`
	BillingAddress *valueobject.AddressDTO `json:"billing_address"`
	Notes          *string                 `json:"notes" binding:"omitempty,max=2000"`
}

// SetRolesRequest replaces both role flags
type SetRolesRequest struct {
	IsCustomer *bool `json:"is_customer" binding:"required"`
	IsVendor   *bool `json:"is_vendor" binding:"required"`
}

// PartyListFilter represents filter options for party list
type PartyListFilter struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=customer vendor"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID             uuid.UUID               `json:"id"`
	TenantID       uuid.UUID               `json:"tenant_id"`
	Name           string                  `json:"name"`
	IsCustomer     bool                    `json:"is_customer"`
	IsVendor       bool                    `json:"is_vendor"`
	GSTEnabled     bool                    `json:"gst_enabled"`
	GSTIN          string                  `json:"gstin,omitempty"`
	StateCode      string                  `json:"state_code,omitempty"`
	Email          string                  `json:"email,omitempty"`
	Phone          string                  `json:"phone,omitempty"`
	BillingAddress *valueobject.AddressDTO `json:"billing_address,omitempty"`
	IsActive       bool                    `json:"is_active"`
	Notes          string                  `json:"notes,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// ToPartyResponse converts a domain Party to PartyResponse
func ToPartyResponse(p *partner.Party) PartyResponse {
	resp := PartyResponse{
		ID:         p.ID,
		TenantID:   p.TenantID,
		Name:       p.Name,
		IsCustomer: p.IsCustomer,
		IsVendor:   p.IsVendor,
		GSTEnabled: p.GSTEnabled,
		GSTIN:      p.GSTIN,
		StateCode:  p.StateCode(),
		Email:      p.Email,
		Phone:      p.Phone,
		IsActive:   p.IsActive,
		Notes:      p.Notes,
		Version:    p.Version,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if !p.BillingAddress.IsEmpty() {
		addr := p.BillingAddress.ToDTO()
		resp.BillingAddress = &addr
	}
	return resp
}

// LegacyRoleReport summarizes a legacy role backfill run
type LegacyRoleReport struct {
	Scanned  int `json:"scanned"`
	Migrated int `json:"migrated"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}
