package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultIdempotencyTTL = 24 * time.Hour

// PaymentFeatures are the behaviour switches of the payment service
type PaymentFeatures struct {
	// AllowOverpayment is the default when a request does not say otherwise
	AllowOverpayment bool
	// LegacyDelete enables DeleteLegacy
	LegacyDelete bool
}

// PaymentService appends to the payment ledger and reconciles the affected
// document in the same transaction
type PaymentService struct {
	reconciler     *Reconciler
	idempotency    shared.IdempotencyStore
	features       PaymentFeatures
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	reconciler *Reconciler,
	idempotency shared.IdempotencyStore,
	features PaymentFeatures,
	idempotencyTTL time.Duration,
	l *zap.Logger,
) *PaymentService {
	if idempotencyTTL <= 0 {
		idempotencyTTL = defaultIdempotencyTTL
	}
	return &PaymentService{
		reconciler:     reconciler,
		idempotency:    idempotency,
		features:       features,
		idempotencyTTL: idempotencyTTL,
		logger:         l.Named("payments"),
	}
}

// RecordPayment appends a payment for a document. A repeated request with the
// same idempotency key fails with DUPLICATE_REQUEST; a failed request releases
// its key so the client may retry.
func (s *PaymentService) RecordPayment(ctx context.Context, tenantID, documentID uuid.UUID, req RecordPaymentRequest) (result *PaymentResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		attribute.String("document_id", documentID.String()),
		attribute.String("amount", req.Amount.String()),
	)
	defer telemetry.EndSpan(span, &err)

	if !req.Amount.IsPositive() {
		return nil, shared.ErrInvalidPaymentAmount
	}
	method, err := ledger.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	allowOverpayment := s.features.AllowOverpayment
	if req.AllowOverpayment != nil {
		allowOverpayment = *req.AllowOverpayment
	}

	if req.IdempotencyKey != "" {
		key := "payment:" + tenantID.String() + ":" + documentID.String() + ":" + req.IdempotencyKey
		fresh, markErr := s.idempotency.MarkProcessed(ctx, key, s.idempotencyTTL)
		if markErr != nil {
			return nil, markErr
		}
		if !fresh {
			return nil, shared.ErrDuplicateRequest
		}
		defer func() {
			if err != nil {
				if ferr := s.idempotency.Forget(context.WithoutCancel(ctx), key); ferr != nil {
					logger.Enrich(ctx, s.logger).Warn("failed to release idempotency key", zap.Error(ferr))
				}
			}
		}()
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paymentDate = *req.PaymentDate
	}

	var (
		payment *ledger.PaymentEvent
		doc     *invoicing.Document
	)
	err = s.reconciler.WithDocumentLock(ctx, documentID, func() error {
		return s.reconciler.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			doc, err = repos.Documents().FindByIDForUpdate(ctx, tenantID, documentID)
			if err != nil {
				return err
			}
			expected := doc.Version
			now := time.Now().UTC()

			if _, err := Refresh(ctx, repos, doc, now); err != nil {
				return err
			}
			if err := doc.ValidatePayment(req.Amount, allowOverpayment); err != nil {
				return err
			}
			payment, err = ledger.NewPayment(doc, ledger.PaymentInput{
				Amount:          req.Amount,
				Method:          method,
				ReferenceNumber: req.ReferenceNumber,
				Notes:           req.Notes,
				PaymentDate:     paymentDate,
				RecordedBy:      req.RecordedBy,
			})
			if err != nil {
				return err
			}
			if err := repos.Payments().Append(ctx, payment); err != nil {
				return err
			}
			return s.settle(ctx, repos, doc, expected, now)
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance", doc.BalanceAmount.String()),
		zap.String("status", string(doc.Status)),
	)
	s.reconciler.publish(ctx, append([]shared.DomainEvent{ledger.NewPaymentRecordedEvent(payment)}, doc.PullDomainEvents()...)...)

	return &PaymentResultResponse{Payment: ToPaymentResponse(payment), Balance: ToBalanceResponse(doc)}, nil
}

// ListPayments returns the ledger of a document, oldest payment date first
func (s *PaymentService) ListPayments(ctx context.Context, tenantID, documentID uuid.UUID) ([]PaymentResponse, error) {
	var events []ledger.PaymentEvent
	err := s.reconciler.txScope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Documents().FindByIDForTenant(ctx, tenantID, documentID); err != nil {
			return err
		}
		var err error
		events, err = repos.Payments().ListForDocument(ctx, tenantID, documentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(events), nil
}

// ReversePayment appends a REVERSAL entry undoing a payment. A payment can be
// reversed once and reversals themselves cannot be reversed.
func (s *PaymentService) ReversePayment(ctx context.Context, tenantID, paymentID uuid.UUID, req ReversePaymentRequest) (result *PaymentResultResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "reverse",
		attribute.String("payment_id", paymentID.String()))
	defer telemetry.EndSpan(span, &err)

	original, err := s.findPayment(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	var (
		reversal *ledger.PaymentEvent
		doc      *invoicing.Document
	)
	err = s.reconciler.WithDocumentLock(ctx, original.DocumentID, func() error {
		return s.reconciler.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			doc, err = repos.Documents().FindByIDForUpdate(ctx, tenantID, original.DocumentID)
			if err != nil {
				return err
			}
			expected := doc.Version
			now := time.Now().UTC()

			// the payment may have been deleted since it was read outside the lock
			current, err := repos.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
			if err != nil {
				return err
			}
			reversed, err := repos.Payments().IsReversed(ctx, tenantID, paymentID)
			if err != nil {
				return err
			}
			if reversed {
				return shared.NewDomainError(shared.CodeAlreadyReversed, "payment has already been reversed")
			}
			reversal, err = ledger.NewReversal(current, req.Reason, req.ReversedBy)
			if err != nil {
				return err
			}
			if err := repos.Payments().Append(ctx, reversal); err != nil {
				return err
			}
			return s.settle(ctx, repos, doc, expected, now)
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("payment reversed",
		zap.String("payment_id", paymentID.String()),
		zap.String("reversal_id", reversal.ID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("reason", reversal.ReversalReason),
	)
	s.reconciler.publish(ctx, append([]shared.DomainEvent{ledger.NewPaymentReversedEvent(reversal)}, doc.PullDomainEvents()...)...)

	return &PaymentResultResponse{Payment: ToPaymentResponse(reversal), Balance: ToBalanceResponse(doc)}, nil
}

// DeleteLegacy physically removes a payment that was never reversed. It only
// exists for clients of the old delete endpoint and is off unless enabled.
func (s *PaymentService) DeleteLegacy(ctx context.Context, tenantID, paymentID uuid.UUID) (balance *BalanceResponse, err error) {
	if !s.features.LegacyDelete {
		return nil, shared.NewDomainError(shared.CodeFeatureDisabled, "payment delete is disabled, reverse the payment instead")
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "delete_legacy",
		attribute.String("payment_id", paymentID.String()))
	defer telemetry.EndSpan(span, &err)

	payment, err := s.findPayment(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.IsReversal() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "reversal entries cannot be deleted")
	}

	var doc *invoicing.Document
	err = s.reconciler.WithDocumentLock(ctx, payment.DocumentID, func() error {
		return s.reconciler.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			var err error
			doc, err = repos.Documents().FindByIDForUpdate(ctx, tenantID, payment.DocumentID)
			if err != nil {
				return err
			}
			expected := doc.Version
			now := time.Now().UTC()

			if _, err := repos.Payments().FindByIDForTenant(ctx, tenantID, paymentID); err != nil {
				return err
			}
			reversed, err := repos.Payments().IsReversed(ctx, tenantID, paymentID)
			if err != nil {
				return err
			}
			if reversed {
				return shared.NewDomainError(shared.CodeAlreadyReversed, "payment has a reversal and cannot be deleted")
			}
			if err := repos.Payments().DeleteLegacy(ctx, tenantID, paymentID); err != nil {
				return err
			}
			return s.settle(ctx, repos, doc, expected, now)
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Warn("payment hard deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("amount", payment.Amount.String()),
	)
	s.reconciler.publish(ctx, append([]shared.DomainEvent{ledger.NewPaymentDeletedEvent(payment)}, doc.PullDomainEvents()...)...)

	resp := ToBalanceResponse(doc)
	return &resp, nil
}

// settle stamps ledger activity on doc, re-sums its ledger and saves it
func (s *PaymentService) settle(ctx context.Context, repos TransactionalRepositories, doc *invoicing.Document, expected int, now time.Time) error {
	doc.MarkLedgerActivity(now)
	if _, err := Refresh(ctx, repos, doc, now); err != nil {
		return err
	}
	return repos.Documents().SaveWithLock(ctx, doc, expected)
}

func (s *PaymentService) findPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.PaymentEvent, error) {
	var payment *ledger.PaymentEvent
	err := s.reconciler.txScope.ExecuteReadOnly(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.Payments().FindByIDForTenant(ctx, tenantID, paymentID)
		return err
	})
	return payment, err
}
