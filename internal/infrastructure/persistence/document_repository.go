package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDocumentRepository implements invoicing.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByIDForTenant finds a document and its lines
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", preloadLines).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a document with SELECT ... FOR UPDATE. The lock is
// held until the surrounding transaction ends. SQLite ignores the clause and
// relies on its database level write lock.
func (r *GormDocumentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*invoicing.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", model.ID).
		Order("position ASC").
		Find(&model.Lines).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists documents, without lines, with the total count before pagination
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter invoicing.DocumentFilter) ([]invoicing.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("tenant_id = ?", tenantID)
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.FromDate != nil {
		query = query.Where("document_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("document_date <= ?", *filter.ToDate)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(party_name) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, DocumentSortFields, "document_date")
	var rows []models.DocumentModel
	if err := query.
		Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	docs := make([]invoicing.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, total, nil
}

// Save inserts a new document together with its lines
func (r *GormDocumentRepository) Save(ctx context.Context, doc *invoicing.Document) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(models.DocumentModelFromDomain(doc)).Error; err != nil {
			return err
		}
		return insertLines(tx, doc)
	})
	if err != nil {
		return err
	}
	doc.MarkLinesPersisted()
	return nil
}

// SaveWithLock updates a document only if the stored version equals
// expectedVersion. Lines are replaced when the aggregate reports a change.
func (r *GormDocumentRepository) SaveWithLock(ctx context.Context, doc *invoicing.Document, expectedVersion int) error {
	model := models.DocumentModelFromDomain(doc)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(model).
			Where("tenant_id = ? AND version = ?", doc.TenantID, expectedVersion).
			Select("*").
			Omit("id", "tenant_id", "created_at", "number", "kind", clause.Associations).
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError(shared.CodeConcurrencyConflict, "the document has been modified by another request")
		}
		if !doc.LinesChanged() {
			return nil
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		return insertLines(tx, doc)
	})
	if err != nil {
		return err
	}
	doc.MarkLinesPersisted()
	return nil
}

func insertLines(tx *gorm.DB, doc *invoicing.Document) error {
	lines := models.LineItemModelsFromDomain(doc)
	if len(lines) == 0 {
		return nil
	}
	return tx.Create(&lines).Error
}

// Delete removes a document and its lines
func (r *GormDocumentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).Delete(&models.LineItemModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.DocumentModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GenerateNumber issues the next number for a tenant, kind and year, e.g. INV-2026-00042.
// The sequence row update serializes concurrent callers.
func (r *GormDocumentRepository) GenerateNumber(ctx context.Context, tenantID uuid.UUID, kind invoicing.DocumentKind, at time.Time) (string, error) {
	year := at.UTC().Year()
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.DocumentSequenceModel{TenantID: tenantID, Kind: string(kind), Year: year}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.DocumentSequenceModel{}).
			Where("tenant_id = ? AND kind = ? AND year = ?", tenantID, string(kind), year).
			Update("last_value", gorm.Expr("last_value + 1")).Error; err != nil {
			return err
		}
		var seq models.DocumentSequenceModel
		if err := tx.Where("tenant_id = ? AND kind = ? AND year = ?", tenantID, string(kind), year).
			First(&seq).Error; err != nil {
			return err
		}
		next = seq.LastValue
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate %s number: %w", kind, err)
	}
	return fmt.Sprintf("%s-%d-%05d", kind.NumberPrefix(), year, next), nil
}

// FindStale returns documents whose ledger changed after their last reconcile
func (r *GormDocumentRepository) FindStale(ctx context.Context, after uuid.UUID, limit int) ([]invoicing.DocumentRef, error) {
	var rows []models.DocumentModel
	if err := r.db.WithContext(ctx).
		Select("id", "tenant_id").
		Where("reconciled_at IS NULL OR (last_ledger_at IS NOT NULL AND last_ledger_at > reconciled_at)").
		Where("id > ?", after).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	refs := make([]invoicing.DocumentRef, len(rows))
	for i, m := range rows {
		refs[i] = invoicing.DocumentRef{ID: m.ID, TenantID: m.TenantID}
	}
	return refs, nil
}

var _ invoicing.DocumentRepository = (*GormDocumentRepository)(nil)
