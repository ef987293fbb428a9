package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cashflowapp "github.com/profitpath/backend/internal/application/cashflow"
	invoicingapp "github.com/profitpath/backend/internal/application/invoicing"
	appledger "github.com/profitpath/backend/internal/application/ledger"
	partnerapp "github.com/profitpath/backend/internal/application/partner"
	"github.com/profitpath/backend/internal/domain/shared/valueobject"
	"github.com/profitpath/backend/internal/infrastructure/auth"
	"github.com/profitpath/backend/internal/infrastructure/cache"
	"github.com/profitpath/backend/internal/infrastructure/persistence"
	"github.com/profitpath/backend/internal/interfaces/http/middleware"
	"github.com/profitpath/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	middleware.SetupValidator()
}

// apiEnv serves the handlers over an in-memory database with a fixed tenant
type apiEnv struct {
	engine    *gin.Engine
	tenantID  uuid.UUID
	userID    uuid.UUID
	published *testutil.RecordingPublisher
}

type envOptions struct {
	legacyDelete bool
}

func newAPIEnv(t *testing.T, opts envOptions) *apiEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	idem := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = idem.Close() })

	pub := &testutil.RecordingPublisher{}
	scope := persistence.NewGormTransactionScope(db)
	partyRepo := persistence.NewGormPartyRepository(db)
	reconciler := appledger.NewReconciler(scope, cache.NewInMemoryLocker(), pub, zap.NewNop(), appledger.Options{})

	parties := partnerapp.NewPartyService(partyRepo, pub, zap.NewNop())
	documents := invoicingapp.NewDocumentService(scope, partyRepo, reconciler, pub,
		invoicingapp.TaxSettings{HomeStateCode: "29"}, zap.NewNop())
	payments := appledger.NewPaymentService(reconciler, idem,
		appledger.PaymentFeatures{LegacyDelete: opts.legacyDelete}, time.Hour, zap.NewNop())
	cashflow := cashflowapp.NewService(scope, zap.NewNop(), cashflowapp.Options{})

	env := &apiEnv{
		tenantID:  uuid.New(),
		userID:    uuid.New(),
		published: pub,
	}

	engine := gin.New()
	engine.Use(middleware.RequestID(), env.authenticate)

	partyH := NewPartyHandler(parties)
	engine.POST("/parties", partyH.Create)
	engine.GET("/parties", partyH.List)
	engine.GET("/parties/:id", partyH.GetByID)
	engine.PUT("/parties/:id", partyH.Update)
	engine.PUT("/parties/:id/roles", partyH.SetRoles)
	engine.POST("/parties/:id/activate", partyH.Activate)
	engine.POST("/parties/:id/deactivate", partyH.Deactivate)

	documentH := NewDocumentHandler(documents, reconciler)
	paymentH := NewPaymentHandler(payments)
	engine.POST("/documents", documentH.Create)
	engine.GET("/documents", documentH.List)
	engine.GET("/documents/:id", documentH.GetByID)
	engine.PUT("/documents/:id/lines", documentH.UpdateLines)
	engine.POST("/documents/:id/cancel", documentH.Cancel)
	engine.DELETE("/documents/:id", documentH.Delete)
	engine.GET("/documents/:id/balance", documentH.GetBalance)
	engine.POST("/documents/:id/reconcile", documentH.Reconcile)
	engine.POST("/documents/:id/payments", paymentH.Record)
	engine.GET("/documents/:id/payments", paymentH.List)
	engine.POST("/payments/:id/reverse", paymentH.Reverse)
	engine.DELETE("/payments/:id", paymentH.DeleteLegacy)

	engine.GET("/cashflow", NewCashflowHandler(cashflow).Project)
	engine.POST("/tax/preview", NewTaxHandler(documents).Preview)

	env.engine = engine
	return env
}

// authenticate stands in for the JWT middleware. Requests carrying
// X-Anonymous get no identity.
func (e *apiEnv) authenticate(c *gin.Context) {
	if c.GetHeader("X-Anonymous") != "" {
		c.Next()
		return
	}
	c.Set(middleware.JWTClaimsKey, &auth.Claims{
		TenantID: e.tenantID.String(),
		UserID:   e.userID.String(),
		Username: "accountant",
		Roles:    []string{"admin"},
	})
	c.Set(middleware.JWTTenantIDKey, e.tenantID)
	c.Set(middleware.JWTUserIDKey, e.userID)
	c.Next()
}

func (e *apiEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoJSON(t, e.engine, method, path, body, nil)
}

func (e *apiEnv) doWithHeaders(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoJSON(t, e.engine, method, path, body, headers)
}

// createParty stores a party billed in Karnataka (state 29)
func (e *apiEnv) createParty(t *testing.T, name string, customer, vendor bool) partnerapp.PartyResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/parties", map[string]any{
		"name":        name,
		"is_customer": customer,
		"is_vendor":   vendor,
		"billing_address": valueobject.AddressDTO{
			Line1:     "12 MG Road",
			City:      "Bengaluru",
			State:     "Karnataka",
			StateCode: "29",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[partnerapp.PartyResponse](t, w)
}

// createInvoice creates a 2 x 500 @ 18% invoice dated 2026-04-01 (1180 in total)
func (e *apiEnv) createInvoice(t *testing.T, partyID uuid.UUID) invoicingapp.DocumentResponse {
	t.Helper()
	return e.createDocument(t, "INVOICE", partyID)
}

func (e *apiEnv) createDocument(t *testing.T, kind string, partyID uuid.UUID) invoicingapp.DocumentResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/documents", map[string]any{
		"kind":          kind,
		"party_id":      partyID,
		"document_date": "2026-04-01T00:00:00Z",
		"lines": []map[string]any{
			{"description": "Consulting", "quantity": "2", "unit_price": "500", "gst_rate": "18"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[invoicingapp.DocumentResponse](t, w)
}

func (e *apiEnv) recordPayment(t *testing.T, documentID uuid.UUID, amount, date string) appledger.PaymentResultResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/documents/"+documentID.String()+"/payments", map[string]any{
		"amount":       amount,
		"method":       "UPI",
		"payment_date": date,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[appledger.PaymentResultResponse](t, w)
}
