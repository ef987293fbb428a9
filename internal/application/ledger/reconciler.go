// Package ledger orchestrates the payment ledger: recording and reversing
// payments and keeping each document's cached paid/balance amounts equal to
// the ledger sum.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 5 * time.Second
	defaultBatchSize = 100
)

// Options tunes locking and batch sizes
type Options struct {
	LockTTL   time.Duration
	BatchSize int
}

// Reconciler recomputes document balances from the payment ledger. Every
// write to a document or its ledger goes through WithDocumentLock so that
// writers on the same document are serialized, also across instances when the
// locker is shared.
type Reconciler struct {
	txScope   TransactionScope
	locker    shared.Locker
	publisher shared.EventPublisher
	logger    *zap.Logger
	lockTTL   time.Duration
	batchSize int
}

// NewReconciler creates a new Reconciler
func NewReconciler(txScope TransactionScope, locker shared.Locker, publisher shared.EventPublisher, l *zap.Logger, opts Options) *Reconciler {
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Reconciler{
		txScope:   txScope,
		locker:    locker,
		publisher: publisher,
		logger:    l.Named("reconciler"),
		lockTTL:   opts.LockTTL,
		batchSize: opts.BatchSize,
	}
}

// Refresh re-sums the ledger of doc inside the open transaction and applies it
// to doc. It does not save; the caller persists doc with SaveWithLock against
// the version it loaded. Returns whether doc changed.
func Refresh(ctx context.Context, repos TransactionalRepositories, doc *invoicing.Document, at time.Time) (bool, error) {
	paid, err := repos.Payments().SumForDocument(ctx, doc.TenantID, doc.ID)
	if err != nil {
		return false, err
	}
	return doc.Reconcile(paid, at), nil
}

// WithDocumentLock runs fn while holding the per-document lock
func (r *Reconciler) WithDocumentLock(ctx context.Context, documentID uuid.UUID, fn func() error) error {
	release, err := r.locker.Acquire(ctx, "document:"+documentID.String(), r.lockTTL)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Reconcile brings a document's paid and balance amounts in line with its
// ledger. Calling it again without ledger activity returns the same document
// and leaves the version untouched.
func (r *Reconciler) Reconcile(ctx context.Context, tenantID, documentID uuid.UUID) (doc *invoicing.Document, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconcile", "document",
		attribute.String("document_id", documentID.String()))
	defer telemetry.EndSpan(span, &err)

	var changed bool
	err = r.WithDocumentLock(ctx, documentID, func() error {
		return r.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			loaded, err := repos.Documents().FindByIDForUpdate(ctx, tenantID, documentID)
			if err != nil {
				return err
			}
			expected := loaded.Version
			changed, err = Refresh(ctx, repos, loaded, time.Now().UTC())
			if err != nil {
				return err
			}
			if changed {
				if err := repos.Documents().SaveWithLock(ctx, loaded, expected); err != nil {
					return err
				}
			}
			doc = loaded
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Bool("changed", changed))
	if changed {
		logger.Enrich(ctx, r.logger).Info("document reconciled",
			zap.String("document_id", doc.ID.String()),
			zap.String("paid_amount", doc.PaidAmount.String()),
			zap.String("status", string(doc.Status)),
		)
	}
	r.publish(ctx, doc.PullDomainEvents()...)
	return doc, nil
}

// StaleReport summarizes a ReconcileStale run
type StaleReport struct {
	Scanned    int `json:"scanned"`
	Reconciled int `json:"reconciled"`
	Failed     int `json:"failed"`
}

// ReconcileStale reconciles every document with ledger activity after its
// last reconcile, in id order and in batches. A failing document is logged
// and skipped.
func (r *Reconciler) ReconcileStale(ctx context.Context) (StaleReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconcile", "stale")
	defer span.End()

	var report StaleReport
	after := uuid.Nil
	for {
		var refs []invoicing.DocumentRef
		err := r.txScope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
			var err error
			refs, err = repos.Documents().FindStale(ctx, after, r.batchSize)
			return err
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return report, err
		}

		for _, ref := range refs {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Scanned++
			if _, err := r.Reconcile(ctx, ref.TenantID, ref.ID); err != nil {
				report.Failed++
				logger.Enrich(ctx, r.logger).Error("stale reconcile failed",
					zap.String("document_id", ref.ID.String()),
					zap.String("tenant_id", ref.TenantID.String()),
					zap.Error(err),
				)
				continue
			}
			report.Reconciled++
		}
		if len(refs) < r.batchSize {
			break
		}
		after = refs[len(refs)-1].ID
	}

	span.SetAttributes(
		attribute.Int("scanned", report.Scanned),
		attribute.Int("failed", report.Failed),
	)
	logger.Enrich(ctx, r.logger).Info("stale reconcile finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("reconciled", report.Reconciled),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (r *Reconciler) publish(ctx context.Context, events ...shared.DomainEvent) {
	if r.publisher == nil || len(events) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, events...); err != nil {
		logger.Enrich(ctx, r.logger).Warn("failed to publish events", zap.Error(err))
	}
}
