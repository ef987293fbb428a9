package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
)

// PartyFilter narrows party listings
type PartyFilter struct {
	shared.Filter
	IsCustomer *bool
	IsVendor   *bool
	IsActive   *bool
}

// LegacyPartyRow is a party row that still carries only the legacy party_type value
type LegacyPartyRow struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	LegacyType string
}

// PartyRepository defines the interface for party persistence
type PartyRepository interface {
	// FindByIDForTenant finds a party by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Party, error)

	// FindAllForTenant lists parties for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PartyFilter) ([]Party, int64, error)

	// Save inserts a new party
	Save(ctx context.Context, party *Party) error

	// SaveWithLock updates a party if its stored version still equals expectedVersion
	SaveWithLock(ctx context.Context, party *Party, expectedVersion int) error

	// FindPendingLegacyRoles returns rows whose role flags were never backfilled,
	// ordered by id and starting after the given id (uuid.Nil for the first page)
	FindPendingLegacyRoles(ctx context.Context, after uuid.UUID, limit int) ([]LegacyPartyRow, error)

	// ApplyLegacyRoles writes backfilled role flags and marks the row migrated
	ApplyLegacyRoles(ctx context.Context, id uuid.UUID, roles Roles) error
}
