// Package partner manages parties and their customer / vendor roles.
package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/shared/valueobject"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultLegacyBatchSize = 500

// PartyService handles party-related business operations
type PartyService struct {
	partyRepo partner.PartyRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo partner.PartyRepository, publisher shared.EventPublisher, l *zap.Logger) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		publisher: publisher,
		logger:    l.Named("parties"),
	}
}

// Create creates a new party. At least one role is required.
func (s *PartyService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePartyRequest) (*PartyResponse, error) {
	party, err := partner.NewParty(tenantID, req.Name, partner.Roles{IsCustomer: req.IsCustomer, IsVendor: req.IsVendor})
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Phone != "" || req.Notes != "" {
		if err := party.UpdateDetails(party.Name, req.Email, req.Phone, req.Notes); err != nil {
			return nil, err
		}
	}
	if req.BillingAddress != nil {
		if err := setAddress(party, *req.BillingAddress); err != nil {
			return nil, err
		}
	}
	if req.GSTEnabled {
		if err := party.EnableGST(req.GSTIN); err != nil {
			return nil, err
		}
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("party created",
		zap.String("party_id", party.ID.String()),
		zap.Bool("is_customer", party.IsCustomer),
		zap.Bool("is_vendor", party.IsVendor),
	)
	s.publish(ctx, party.PullDomainEvents()...)

	resp := ToPartyResponse(party)
	return &resp, nil
}

// GetByID retrieves a party by ID
func (s *PartyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToPartyResponse(party)
	return &resp, nil
}

// List retrieves a page of parties
func (s *PartyService) List(ctx context.Context, tenantID uuid.UUID, filter PartyListFilter) ([]PartyResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := partner.PartyFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}
	yes := true
	switch filter.Role {
	case "customer":
		domainFilter.IsCustomer = &yes
	case "vendor":
		domainFilter.IsVendor = &yes
	}
	switch filter.Status {
	case "active":
		domainFilter.IsActive = &yes
	case "inactive":
		no := false
		domainFilter.IsActive = &no
	}

	parties, total, err := s.partyRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PartyResponse, len(parties))
	for i := range parties {
		out[i] = ToPartyResponse(&parties[i])
	}
	return out, total, nil
}

// Update changes the descriptive fields, billing address and GST registration
func (s *PartyService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdatePartyRequest) (*PartyResponse, error) {
	return s.mutate(ctx, tenantID, id, func(party *partner.Party) error {
		name, email, phone, notes := party.Name, party.Email, party.Phone, party.Notes
		if req.Name != nil {
			name = *req.Name
		}
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if req.Notes != nil {
			notes = *req.Notes
		}
		if err := party.UpdateDetails(name, email, phone, notes); err != nil {
			return err
		}

		if req.GSTEnabled != nil && !*req.GSTEnabled {
			party.DisableGST()
		}
		if req.BillingAddress != nil {
			if err := setAddress(party, *req.BillingAddress); err != nil {
				return err
			}
		}
		enable := req.GSTEnabled != nil && *req.GSTEnabled
		if enable || (party.GSTEnabled && (req.GSTIN != nil || req.BillingAddress != nil)) {
			gstin := party.GSTIN
			if req.GSTIN != nil {
				gstin = *req.GSTIN
			}
			return party.EnableGST(gstin)
		}
		return nil
	})
}

// SetRoles replaces the role flags. Clearing both fails with INVALID_PARTY_ROLE.
func (s *PartyService) SetRoles(ctx context.Context, tenantID, id uuid.UUID, req SetRolesRequest) (*PartyResponse, error) {
	roles := partner.Roles{IsCustomer: req.IsCustomer != nil && *req.IsCustomer, IsVendor: req.IsVendor != nil && *req.IsVendor}
	return s.mutate(ctx, tenantID, id, func(party *partner.Party) error {
		return party.SetRoles(roles)
	})
}

// Activate reactivates a deactivated party
func (s *PartyService) Activate(ctx context.Context, tenantID, id uuid.UUID) (*PartyResponse, error) {
	return s.mutate(ctx, tenantID, id, func(party *partner.Party) error {
		return party.Activate()
	})
}

// Deactivate soft-deletes a party. Existing documents keep referencing it.
func (s *PartyService) Deactivate(ctx context.Context, tenantID, id uuid.UUID) (*PartyResponse, error) {
	return s.mutate(ctx, tenantID, id, func(party *partner.Party) error {
		return party.Deactivate()
	})
}

func (s *PartyService) mutate(ctx context.Context, tenantID, id uuid.UUID, fn func(*partner.Party) error) (*PartyResponse, error) {
	party, err := s.partyRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	expected := party.Version
	if err := fn(party); err != nil {
		return nil, err
	}
	if party.Version == expected {
		resp := ToPartyResponse(party)
		return &resp, nil
	}
	if err := s.partyRepo.SaveWithLock(ctx, party, expected); err != nil {
		return nil, err
	}
	s.publish(ctx, party.PullDomainEvents()...)

	resp := ToPartyResponse(party)
	return &resp, nil
}

// MigrateLegacyRoles backfills role flags of rows that only carry the legacy
// party_type value. Rows with an unknown legacy value are logged and skipped;
// they stay pending for a later run.
func (s *PartyService) MigrateLegacyRoles(ctx context.Context, batchSize int) (report LegacyRoleReport, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "migrate_legacy_roles")
	defer telemetry.EndSpan(span, &err)

	if batchSize <= 0 {
		batchSize = defaultLegacyBatchSize
	}
	log := logger.Enrich(ctx, s.logger)

	after := uuid.Nil
	for {
		rows, err := s.partyRepo.FindPendingLegacyRoles(ctx, after, batchSize)
		if err != nil {
			return report, err
		}
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Scanned++
			roles, err := partner.RolesFromLegacyType(row.LegacyType)
			if err != nil {
				report.Skipped++
				log.Warn("unknown legacy party type",
					zap.String("party_id", row.ID.String()),
					zap.String("party_type", row.LegacyType),
				)
				continue
			}
			if err := s.partyRepo.ApplyLegacyRoles(ctx, row.ID, roles); err != nil {
				report.Failed++
				log.Error("legacy role backfill failed",
					zap.String("party_id", row.ID.String()),
					zap.Error(err),
				)
				continue
			}
			report.Migrated++
		}
		if len(rows) < batchSize {
			break
		}
		after = rows[len(rows)-1].ID
	}

	span.SetAttributes(
		attribute.Int("migrated", report.Migrated),
		attribute.Int("skipped", report.Skipped),
	)
	log.Info("legacy party roles migrated",
		zap.Int("scanned", report.Scanned),
		zap.Int("migrated", report.Migrated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *PartyService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, s.logger).Warn("failed to publish events", zap.Error(err))
	}
}

func setAddress(party *partner.Party, dto valueobject.AddressDTO) error {
	addr, err := dto.ToAddress()
	if err != nil {
		return shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	party.SetBillingAddress(addr)
	return nil
}
