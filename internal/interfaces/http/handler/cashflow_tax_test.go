package handler

import (
	"net/http"
	"testing"

	cashflowapp "github.com/profitpath/backend/internal/application/cashflow"
	invoicingapp "github.com/profitpath/backend/internal/application/invoicing"
	"github.com/profitpath/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashflowHandler_Project(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	party := env.createParty(t, "Acme Traders", true, true)
	invoice := env.createInvoice(t, party.ID)
	purchase := env.createDocument(t, "PURCHASE", party.ID)

	env.recordPayment(t, invoice.ID, "500", "2026-04-05T00:00:00Z")
	env.recordPayment(t, purchase.ID, "300", "2026-05-10T00:00:00Z")

	t.Run("monthly", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/cashflow?from=2026-04-01&to=2026-06-30&granularity=month", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		p := testutil.DecodeData[cashflowapp.ProjectionResponse](t, w)

		require.Len(t, p.Buckets, 3)
		assert.Equal(t, "2026-04", p.Buckets[0].Period)
		assert.True(t, p.Buckets[0].CashIn.Equal(decimal.NewFromInt(500)))
		assert.True(t, p.Buckets[1].CashOut.Equal(decimal.NewFromInt(300)))
		assert.True(t, p.Buckets[1].Net.Equal(decimal.NewFromInt(-300)))
		assert.True(t, p.Buckets[2].Net.IsZero())

		assert.True(t, p.Totals.CashIn.Equal(decimal.NewFromInt(500)))
		assert.True(t, p.Totals.CashOut.Equal(decimal.NewFromInt(300)))
		assert.True(t, p.Totals.Net.Equal(decimal.NewFromInt(200)))
	})

	t.Run("missing bound", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/cashflow?from=2026-04-01", nil)
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})

	t.Run("inverted range", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/cashflow?from=2026-06-01&to=2026-04-01", nil)
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_INVALID_INPUT")
	})

	t.Run("unknown granularity", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/cashflow?from=2026-04-01&to=2026-06-30&granularity=hourly", nil)
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})
}

func TestTaxHandler_Preview(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	lines := []map[string]any{
		{"description": "Consulting", "quantity": "2", "unit_price": "500", "gst_rate": "18"},
	}

	t.Run("intra-state", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/tax/preview", map[string]any{"is_intra_state": true, "lines": lines})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		p := testutil.DecodeData[invoicingapp.TaxPreviewResponse](t, w)

		require.Len(t, p.Lines, 1)
		assert.True(t, p.Totals.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.True(t, p.Totals.CGST.Equal(decimal.NewFromInt(90)))
		assert.True(t, p.Totals.SGST.Equal(decimal.NewFromInt(90)))
		assert.True(t, p.Totals.UTGST.IsZero())
		assert.True(t, p.Totals.GrandTotal.Equal(decimal.NewFromInt(1180)))
	})

	t.Run("inter-state", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/tax/preview", map[string]any{"is_intra_state": false, "lines": lines})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		p := testutil.DecodeData[invoicingapp.TaxPreviewResponse](t, w)

		assert.True(t, p.Totals.CGST.IsZero())
		assert.True(t, p.Totals.SGST.IsZero())
		assert.True(t, p.Totals.UTGST.Equal(decimal.NewFromInt(180)))
		assert.True(t, p.Totals.GrandTotal.Equal(decimal.NewFromInt(1180)))
	})

	t.Run("no lines", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/tax/preview", map[string]any{"lines": []map[string]any{}})
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := env.doWithHeaders(t, http.MethodPost, "/tax/preview",
			map[string]any{"lines": lines}, map[string]string{"X-Anonymous": "1"})
		testutil.AssertError(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
	})
}
