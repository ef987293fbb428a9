package partner

import (
	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
)

// AggregateTypeParty is the aggregate type name of Party
const AggregateTypeParty = "Party"

// Event type constants
const (
	EventTypePartyCreated       = "PartyCreated"
	EventTypePartyRolesChanged  = "PartyRolesChanged"
	EventTypePartyStatusChanged = "PartyStatusChanged"
)

// PartyCreatedEvent is published when a new party is created
type PartyCreatedEvent struct {
	shared.BaseDomainEvent
	PartyID    uuid.UUID `json:"party_id"`
	Name       string    `json:"name"`
	IsCustomer bool      `json:"is_customer"`
	IsVendor   bool      `json:"is_vendor"`
}

// NewPartyCreatedEvent creates a new PartyCreatedEvent
func NewPartyCreatedEvent(p *Party) *PartyCreatedEvent {
	return &PartyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyCreated, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		Name:            p.Name,
		IsCustomer:      p.IsCustomer,
		IsVendor:        p.IsVendor,
	}
}

// PartyRolesChangedEvent is published when the role flags change
type PartyRolesChangedEvent struct {
	shared.BaseDomainEvent
	PartyID  uuid.UUID `json:"party_id"`
	OldRoles Roles     `json:"old_roles"`
	NewRoles Roles     `json:"new_roles"`
}

// NewPartyRolesChangedEvent creates a new PartyRolesChangedEvent
func NewPartyRolesChangedEvent(p *Party, old Roles) *PartyRolesChangedEvent {
	return &PartyRolesChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyRolesChanged, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		OldRoles:        old,
		NewRoles:        p.Roles(),
	}
}

// PartyStatusChangedEvent is published when a party is activated or deactivated
type PartyStatusChangedEvent struct {
	shared.BaseDomainEvent
	PartyID  uuid.UUID `json:"party_id"`
	IsActive bool      `json:"is_active"`
}

// NewPartyStatusChangedEvent creates a new PartyStatusChangedEvent
func NewPartyStatusChangedEvent(p *Party) *PartyStatusChangedEvent {
	return &PartyStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePartyStatusChanged, AggregateTypeParty, p.ID, p.TenantID),
		PartyID:         p.ID,
		IsActive:        p.IsActive,
	}
}
