package telemetry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/invoicing"
	"github.com/profitpath/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		}
	}
	return sums
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := NewLedgerMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}

func TestLedgerMetrics_Handle(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewLedgerMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	payment := &ledger.PaymentEvent{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		DocumentID:   uuid.New(),
		DocumentKind: invoicing.KindInvoice,
		EntryType:    ledger.EntryPayment,
		Amount:       decimal.RequireFromString("1180.50"),
		Method:       ledger.MethodUPI,
	}
	require.NoError(t, m.Handle(ctx, ledger.NewPaymentRecordedEvent(payment)))

	reversal, err := ledger.NewReversal(payment, "bounced", nil)
	require.NoError(t, err)
	require.NoError(t, m.Handle(ctx, ledger.NewPaymentReversedEvent(reversal)))
	require.NoError(t, m.Handle(ctx, ledger.NewPaymentDeletedEvent(payment)))

	sums := collectSums(t, reader)
	assert.Equal(t, int64(1), sums["pp_payment_recorded_total"])
	assert.Equal(t, int64(118050), sums["pp_payment_amount_total"])
	assert.Equal(t, int64(1), sums["pp_payment_reversed_total"])
	assert.Equal(t, int64(1), sums["pp_payment_legacy_deleted_total"])
}

func TestLedgerMetrics_EventTypes(t *testing.T) {
	m := &LedgerMetrics{}
	assert.ElementsMatch(t, []string{
		ledger.EventTypePaymentRecorded,
		ledger.EventTypePaymentReversed,
		ledger.EventTypePaymentDeleted,
		invoicing.EventTypeDocumentReconciled,
	}, m.EventTypes())
}
