package telemetry

import (
	"context"
	"errors"

	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor gets no meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// LedgerMetrics counts payment ledger activity. It is subscribed to the event
// bus, so it only ever sees committed changes.
type LedgerMetrics struct {
	payments      metric.Int64Counter
	paymentAmount metric.Int64Counter
	reversals     metric.Int64Counter
	deletes       metric.Int64Counter
	reconciles    metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	m := &LedgerMetrics{}
	var err error

	if m.payments, err = meter.Int64Counter("pp_payment_recorded_total",
		metric.WithDescription("Payments appended to the ledger"),
		metric.WithUnit("{payments}")); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = meter.Int64Counter("pp_payment_amount_total",
		metric.WithDescription("Recorded payment amount in paise"),
		metric.WithUnit("{paise}")); err != nil {
		return nil, err
	}
	if m.reversals, err = meter.Int64Counter("pp_payment_reversed_total",
		metric.WithDescription("Payments undone by a reversal entry"),
		metric.WithUnit("{payments}")); err != nil {
		return nil, err
	}
	if m.deletes, err = meter.Int64Counter("pp_payment_legacy_deleted_total",
		metric.WithDescription("Payments removed through the legacy delete endpoint"),
		metric.WithUnit("{payments}")); err != nil {
		return nil, err
	}
	if m.reconciles, err = meter.Int64Counter("pp_document_reconciled_total",
		metric.WithDescription("Documents whose paid amount changed on reconcile"),
		metric.WithUnit("{documents}")); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *LedgerMetrics) EventTypes() []string {
	return []string{
		ledger.EventTypePaymentRecorded,
		ledger.EventTypePaymentReversed,
		ledger.EventTypePaymentDeleted,
		invoicing.EventTypeDocumentReconciled,
	}
}

// Handle implements shared.EventHandler
func (m *LedgerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.PaymentRecordedEvent:
		attrs := metric.WithAttributes(
			attribute.String("document_kind", string(e.DocumentKind)),
			attribute.String("method", string(e.Method)),
		)
		m.payments.Add(ctx, 1, attrs)
		m.paymentAmount.Add(ctx, toPaise(e.Amount), attrs)
	case *ledger.PaymentReversedEvent:
		m.reversals.Add(ctx, 1, metric.WithAttributes(attribute.String("document_kind", string(e.DocumentKind))))
	case *ledger.PaymentDeletedEvent:
		m.deletes.Add(ctx, 1)
	case *invoicing.DocumentReconciledEvent:
		m.reconciles.Add(ctx, 1, metric.WithAttributes(
			attribute.String("document_kind", string(e.Kind)),
			attribute.String("status", string(e.Status)),
		))
	}
	return nil
}

func toPaise(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
