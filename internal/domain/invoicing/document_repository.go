package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
)

// DocumentFilter narrows document listings
type DocumentFilter struct {
	shared.Filter
	Kind     DocumentKind
	Status   DocumentStatus
	PartyID  *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
}

// DocumentRef identifies a document across tenants
type DocumentRef struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	// FindByIDForTenant finds a document and its lines
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)

	// FindByIDForUpdate finds a document and takes a row lock for the
	// rest of the surrounding transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Document, error)

	// FindAllForTenant lists documents without their lines
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]Document, int64, error)

	// Save inserts a new document together with its lines
	Save(ctx context.Context, doc *Document) error

	// SaveWithLock updates a document if its stored version still equals
	// expectedVersion. Lines are rewritten when they changed.
	SaveWithLock(ctx context.Context, doc *Document, expectedVersion int) error

	// Delete removes a document and its lines
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// GenerateNumber returns the next document number for kind and year
	GenerateNumber(ctx context.Context, tenantID uuid.UUID, kind DocumentKind, at time.Time) (string, error)

	// FindStale returns documents with ledger activity after their last reconcile,
	// ordered by id and starting after the given id (uuid.Nil for the first page)
	FindStale(ctx context.Context, after uuid.UUID, limit int) ([]DocumentRef, error)
}
