package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	"github.com/profitpath/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentHandler_Record(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	customer := env.createParty(t, "Acme Traders", true, false)
	doc := env.createInvoice(t, customer.ID)
	path := "/documents/" + doc.ID.String() + "/payments"

	t.Run("partial payment", func(t *testing.T) {
		res := env.recordPayment(t, doc.ID, "500", "2026-04-05T00:00:00Z")

		assert.Equal(t, "PAYMENT", res.Payment.EntryType)
		assert.Equal(t, "UPI", res.Payment.Method)
		require.NotNil(t, res.Payment.RecordedBy)
		assert.Equal(t, env.userID, *res.Payment.RecordedBy)
		assert.True(t, res.Balance.PaidAmount.Equal(decimal.NewFromInt(500)))
		assert.True(t, res.Balance.BalanceAmount.Equal(decimal.NewFromInt(680)))
		assert.Equal(t, "PARTIAL", res.Balance.Status)
	})

	t.Run("overpayment rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, map[string]any{"amount": "1000"})
		testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_OVERPAYMENT_REJECTED")
	})

	t.Run("overpayment allowed per request", func(t *testing.T) {
		other := env.createInvoice(t, customer.ID)
		w := env.do(t, http.MethodPost, "/documents/"+other.ID.String()+"/payments", map[string]any{
			"amount":            "1200",
			"allow_overpayment": true,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		res := testutil.DecodeData[appledger.PaymentResultResponse](t, w)
		assert.Equal(t, "OVERPAID", res.Balance.Status)
		assert.True(t, res.Balance.BalanceAmount.Equal(decimal.NewFromInt(-20)))
	})

	t.Run("non-positive amount", func(t *testing.T) {
		w := env.do(t, http.MethodPost, path, map[string]any{"amount": "0"})
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")

		w = env.do(t, http.MethodPost, path, map[string]any{"amount": "-5"})
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})

	t.Run("unknown document", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/documents/"+uuid.NewString()+"/payments", map[string]any{"amount": "10"})
		testutil.AssertError(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
	})
}

func TestPaymentHandler_IdempotencyKey(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	customer := env.createParty(t, "Acme Traders", true, false)
	doc := env.createInvoice(t, customer.ID)
	path := "/documents/" + doc.ID.String() + "/payments"
	body := map[string]any{"amount": "100"}

	w := env.doWithHeaders(t, http.MethodPost, path, body, map[string]string{IdempotencyKeyHeader: "pay-001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.doWithHeaders(t, http.MethodPost, path, body, map[string]string{IdempotencyKeyHeader: "pay-001"})
	testutil.AssertError(t, w, http.StatusConflict, "ERR_DUPLICATE_REQUEST")

	w = env.doWithHeaders(t, http.MethodPost, path, body,
		map[string]string{IdempotencyKeyHeader: strings.Repeat("k", maxIdempotencyKeyLength+1)})
	testutil.AssertError(t, w, http.StatusBadRequest, "ERR_INVALID_INPUT")

	w = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	payments := testutil.DecodeData[[]appledger.PaymentResponse](t, w)
	assert.Len(t, payments, 1)
}

func TestPaymentHandler_Reverse(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	customer := env.createParty(t, "Acme Traders", true, false)
	doc := env.createInvoice(t, customer.ID)
	paid := env.recordPayment(t, doc.ID, "1180", "2026-04-05T00:00:00Z")
	path := "/payments/" + paid.Payment.ID.String() + "/reverse"

	w := env.do(t, http.MethodPost, path, map[string]any{"reason": "cheque bounced"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rev := testutil.DecodeData[appledger.PaymentResultResponse](t, w)
	assert.Equal(t, "REVERSAL", rev.Payment.EntryType)
	require.NotNil(t, rev.Payment.ReversesID)
	assert.Equal(t, paid.Payment.ID, *rev.Payment.ReversesID)
	assert.Equal(t, "OPEN", rev.Balance.Status)
	assert.True(t, rev.Balance.BalanceAmount.Equal(decimal.NewFromInt(1180)))

	w = env.do(t, http.MethodPost, path, map[string]any{"reason": "again"})
	testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_ALREADY_REVERSED")

	w = env.do(t, http.MethodPost, "/payments/"+rev.Payment.ID.String()+"/reverse", map[string]any{"reason": "undo"})
	testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_INVALID_STATE")

	w = env.do(t, http.MethodPost, path, map[string]any{})
	testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")

	// the ledger keeps both entries
	w = env.do(t, http.MethodGet, "/documents/"+doc.ID.String()+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := testutil.DecodeData[[]appledger.PaymentResponse](t, w)
	require.Len(t, entries, 2)
	assert.Equal(t, "PAYMENT", entries[0].EntryType)
	assert.Equal(t, "REVERSAL", entries[1].EntryType)
}

func TestPaymentHandler_DeleteLegacy(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := newAPIEnv(t, envOptions{})
		customer := env.createParty(t, "Acme Traders", true, false)
		doc := env.createInvoice(t, customer.ID)
		paid := env.recordPayment(t, doc.ID, "100", "2026-04-05T00:00:00Z")

		w := env.do(t, http.MethodDelete, "/payments/"+paid.Payment.ID.String(), nil)
		testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_FEATURE_DISABLED")
	})

	t.Run("enabled removes the entry", func(t *testing.T) {
		env := newAPIEnv(t, envOptions{legacyDelete: true})
		customer := env.createParty(t, "Acme Traders", true, false)
		doc := env.createInvoice(t, customer.ID)
		paid := env.recordPayment(t, doc.ID, "100", "2026-04-05T00:00:00Z")

		w := env.do(t, http.MethodDelete, "/payments/"+paid.Payment.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "true", w.Header().Get("Deprecation"))
		balance := testutil.DecodeData[appledger.BalanceResponse](t, w)
		assert.True(t, balance.PaidAmount.IsZero())
		assert.Equal(t, "OPEN", balance.Status)

		w = env.do(t, http.MethodGet, "/documents/"+doc.ID.String()+"/payments", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, testutil.DecodeData[[]appledger.PaymentResponse](t, w))
	})
}
