// Package cashflow serves cash-in / cash-out projections straight from the
// payment ledger.
package cashflow

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	"github.com/profitpath/backend/internal/domain/cashflow"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/infrastructure/logger"
	"github.com/profitpath/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options tunes the read path
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	MaxRangeDays int
}

// Service projects the ledger into cashflow buckets
type Service struct {
	txScope      appledger.TransactionScope
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
	maxRangeDays int
}

// NewService creates a new cashflow Service
func NewService(txScope appledger.TransactionScope, l *zap.Logger, opts Options) *Service {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 50 * time.Millisecond
	}
	return &Service{
		txScope:      txScope,
		logger:       l.Named("cashflow"),
		maxRetries:   opts.MaxRetries,
		retryBackoff: opts.RetryBackoff,
		maxRangeDays: opts.MaxRangeDays,
	}
}

// Project returns one bucket per period between from and to, both included,
// plus the totals over all buckets. Periods without movements are zero
// buckets.
func (s *Service) Project(ctx context.Context, tenantID uuid.UUID, req ProjectionRequest) (resp *ProjectionResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cashflow", "project",
		attribute.String("granularity", req.Granularity))
	defer telemetry.EndSpan(span, &err)

	granularity, err := cashflow.ParseGranularity(req.Granularity)
	if err != nil {
		return nil, err
	}
	r, err := cashflow.NewDateRange(req.From, req.To, s.maxRangeDays)
	if err != nil {
		return nil, err
	}

	var movements []cashflow.Movement
	attempts := 0
	op := func() error {
		attempts++
		movements = nil
		err := s.txScope.ExecuteReadOnly(ctx, func(repos appledger.TransactionalRepositories) error {
			events, err := repos.Payments().ListInRange(ctx, tenantID, r.From, r.To)
			if err != nil {
				return err
			}
			movements = toMovements(events)
			return nil
		})
		if err == nil {
			return nil
		}
		if _, ok := shared.AsDomainError(err); ok {
			return backoff.Permanent(err)
		}
		logger.Enrich(ctx, s.logger).Warn("cashflow read failed",
			zap.Int("attempt", attempts),
			zap.Error(err),
		)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryBackoff), uint64(s.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		logger.Enrich(ctx, s.logger).Error("cashflow projection failed",
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, err
	}

	buckets, totals := cashflow.Project(r, granularity, movements)
	span.SetAttributes(
		attribute.Int("buckets", len(buckets)),
		attribute.Int("movements", len(movements)),
	)
	return &ProjectionResponse{
		From:        r.From,
		To:          r.To,
		Granularity: string(granularity),
		Buckets:     buckets,
		Totals:      totals,
	}, nil
}

// toMovements maps ledger entries to signed movements: payments on invoices
// are cash in, payments on purchases cash out. Reversals carry a negative
// amount in the same direction.
func toMovements(events []ledger.PaymentEvent) []cashflow.Movement {
	out := make([]cashflow.Movement, 0, len(events))
	for i := range events {
		e := &events[i]
		dir := cashflow.Inflow
		if e.DocumentKind == invoicing.KindPurchase {
			dir = cashflow.Outflow
		}
		out = append(out, cashflow.Movement{
			Date:      e.PaymentDate,
			Direction: dir,
			Amount:    e.SignedAmount(),
		})
	}
	return out
}
