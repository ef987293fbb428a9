package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPartyRepository implements partner.PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByIDForTenant finds a party by ID within a tenant
func (r *GormPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists parties for a tenant with the total count before pagination
func (r *GormPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.PartyFilter) ([]partner.Party, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PartyModel{}).Where("tenant_id = ?", tenantID)
	if filter.IsCustomer != nil {
		query = query.Where("is_customer = ?", *filter.IsCustomer)
	}
	if filter.IsVendor != nil {
		query = query.Where("is_vendor = ?", *filter.IsVendor)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(gstin) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PartySortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderDir == "" && orderBy == "name" {
		orderDir = "ASC"
	}

	var rows []models.PartyModel
	if err := query.Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	parties := make([]partner.Party, len(rows))
	for i := range rows {
		parties[i] = *rows[i].ToDomain()
	}
	return parties, total, nil
}

// Save inserts a new party
func (r *GormPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	return r.db.WithContext(ctx).Create(models.PartyModelFromDomain(party)).Error
}

// SaveWithLock updates a party only if the stored version equals expectedVersion
func (r *GormPartyRepository) SaveWithLock(ctx context.Context, party *partner.Party, expectedVersion int) error {
	model := models.PartyModelFromDomain(party)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("tenant_id = ? AND version = ?", party.TenantID, expectedVersion).
		Select("*").
		Omit("id", "tenant_id", "created_at", "party_type", "roles_backfilled_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeConcurrencyConflict, "the party has been modified by another request")
	}
	return nil
}

// FindPendingLegacyRoles returns rows carrying a legacy party_type that were never
// backfilled, ordered by id and starting after the given id
func (r *GormPartyRepository) FindPendingLegacyRoles(ctx context.Context, after uuid.UUID, limit int) ([]partner.LegacyPartyRow, error) {
	var rows []models.PartyModel
	if err := r.db.WithContext(ctx).
		Select("id", "tenant_id", "party_type").
		Where("party_type IS NOT NULL AND party_type <> '' AND roles_backfilled_at IS NULL").
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]partner.LegacyPartyRow, len(rows))
	for i, m := range rows {
		out[i] = partner.LegacyPartyRow{ID: m.ID, TenantID: m.TenantID, LegacyType: m.LegacyType}
	}
	return out, nil
}

// ApplyLegacyRoles writes role flags derived from the legacy type and marks the row as migrated
func (r *GormPartyRepository) ApplyLegacyRoles(ctx context.Context, id uuid.UUID, roles partner.Roles) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.PartyModel{}).
		Where("id = ? AND roles_backfilled_at IS NULL", id).
		Updates(map[string]any{
			"is_customer":         roles.IsCustomer,
			"is_vendor":           roles.IsVendor,
			"roles_backfilled_at": now,
			"updated_at":          now,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.PartyRepository = (*GormPartyRepository)(nil)
