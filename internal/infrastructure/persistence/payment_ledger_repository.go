package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentLedger implements ledger.PaymentLedger using GORM.
// It only ever inserts rows; the legacy delete is the single exception.
type GormPaymentLedger struct {
	db *gorm.DB
}

// NewGormPaymentLedger creates a new GormPaymentLedger
func NewGormPaymentLedger(db *gorm.DB) *GormPaymentLedger {
	return &GormPaymentLedger{db: db}
}

// Append inserts a new event
func (r *GormPaymentLedger) Append(ctx context.Context, event *ledger.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(models.PaymentEventModelFromDomain(event)).Error
}

// FindByIDForTenant finds a single event
func (r *GormPaymentLedger) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.PaymentEvent, error) {
	var model models.PaymentEventModel
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

// ListForDocument returns all events of a document ordered by payment date, then created_at
func (r *GormPaymentLedger) ListForDocument(ctx context.Context, tenantID, documentID uuid.UUID) ([]ledger.PaymentEvent, error) {
	var rows []models.PaymentEventModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Order("payment_date ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPaymentEvents(rows), nil
}

// SumForDocument returns the signed sum of all events of a document.
// Summing happens in decimal so SQLite's float arithmetic never touches it.
func (r *GormPaymentLedger) SumForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (decimal.Decimal, error) {
	var rows []models.PaymentEventModel
	if err := r.db.WithContext(ctx).
		Select("entry_type", "amount").
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	return ledger.Sum(toPaymentEvents(rows)), nil
}

// CountForDocument counts events of any type for a document
func (r *GormPaymentLedger) CountForDocument(ctx context.Context, tenantID, documentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentEventModel{}).
		Where("tenant_id = ? AND document_id = ?", tenantID, documentID).
		Count(&count).Error
	return count, err
}

// IsReversed reports whether a reversal references the payment
func (r *GormPaymentLedger) IsReversed(ctx context.Context, tenantID, paymentID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentEventModel{}).
		Where("tenant_id = ? AND reverses_id = ? AND entry_type = ?", tenantID, paymentID, string(ledger.EntryReversal)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListInRange returns events with from <= payment_date <= to
func (r *GormPaymentLedger) ListInRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]ledger.PaymentEvent, error) {
	var rows []models.PaymentEventModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND payment_date >= ? AND payment_date <= ?", tenantID, from.UTC(), to.UTC()).
		Order("payment_date ASC").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPaymentEvents(rows), nil
}

// DeleteLegacy physically removes a payment event
func (r *GormPaymentLedger) DeleteLegacy(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.PaymentEventModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toPaymentEvents(rows []models.PaymentEventModel) []ledger.PaymentEvent {
	events := make([]ledger.PaymentEvent, len(rows))
	for i := range rows {
		events[i] = *rows[i].ToDomain()
	}
	return events
}

var _ ledger.PaymentLedger = (*GormPaymentLedger)(nil)
