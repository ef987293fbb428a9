package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	partnerapp "github.com/profitpath/backend/internal/application/partner"
	"github.com/profitpath/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyHandler_Create(t *testing.T) {
	env := newAPIEnv(t, envOptions{})

	t.Run("customer and vendor", func(t *testing.T) {
		party := env.createParty(t, "Acme Traders", true, true)

		assert.Equal(t, "Acme Traders", party.Name)
		assert.True(t, party.IsCustomer)
		assert.True(t, party.IsVendor)
		assert.True(t, party.IsActive)
		assert.Equal(t, "29", party.StateCode)
		assert.Equal(t, env.tenantID, party.TenantID)
	})

	t.Run("no role", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/parties", map[string]any{"name": "Nobody"})
		testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_INVALID_PARTY_ROLE")
	})

	t.Run("missing name", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/parties", map[string]any{"is_customer": true})
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})

	t.Run("malformed body", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/parties", "not an object")
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_INVALID_JSON")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w := env.doWithHeaders(t, http.MethodPost, "/parties",
			map[string]any{"name": "Acme", "is_customer": true},
			map[string]string{"X-Anonymous": "1"})
		testutil.AssertError(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
	})
}

func TestPartyHandler_GetByID(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	party := env.createParty(t, "Acme Traders", true, false)

	t.Run("found", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/parties/"+party.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := testutil.DecodeData[partnerapp.PartyResponse](t, w)
		assert.Equal(t, party.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/parties/"+uuid.NewString(), nil)
		testutil.AssertError(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
	})

	t.Run("malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/parties/not-a-uuid", nil)
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_INVALID_INPUT")
	})
}

func TestPartyHandler_List(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	env.createParty(t, "Alpha Stores", true, false)
	env.createParty(t, "Beta Supplies", false, true)
	env.createParty(t, "Gamma Exports", true, true)

	t.Run("customers", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/parties?role=customer", nil)
		require.Equal(t, http.StatusOK, w.Code)
		env := testutil.DecodeEnvelope(t, w)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(2), env.Meta.Total)
		assert.Equal(t, 1, env.Meta.Page)
		assert.Equal(t, defaultPageSize, env.Meta.PageSize)
	})

	t.Run("paged", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/parties?page=2&page_size=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		parties := testutil.DecodeData[[]partnerapp.PartyResponse](t, w)
		require.Len(t, parties, 1)
		assert.Equal(t, "Gamma Exports", parties[0].Name)
	})

	t.Run("bad role filter", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/parties?role=employee", nil)
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})
}

func TestPartyHandler_RolesAndStatus(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	party := env.createParty(t, "Acme Traders", true, false)
	base := "/parties/" + party.ID.String()

	w := env.do(t, http.MethodPut, base+"/roles", map[string]any{"is_customer": true, "is_vendor": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := testutil.DecodeData[partnerapp.PartyResponse](t, w)
	assert.True(t, updated.IsVendor)

	w = env.do(t, http.MethodPut, base+"/roles", map[string]any{"is_customer": false, "is_vendor": false})
	testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_INVALID_PARTY_ROLE")

	w = env.do(t, http.MethodPut, base+"/roles", map[string]any{"is_customer": true})
	testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")

	w = env.do(t, http.MethodPost, base+"/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, testutil.DecodeData[partnerapp.PartyResponse](t, w).IsActive)

	w = env.do(t, http.MethodPost, base+"/deactivate", nil)
	testutil.AssertError(t, w, http.StatusUnprocessableEntity, "ERR_ALREADY_INACTIVE")

	w = env.do(t, http.MethodPost, base+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, testutil.DecodeData[partnerapp.PartyResponse](t, w).IsActive)
}

func TestPartyHandler_Update(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	party := env.createParty(t, "Acme Traders", true, false)

	w := env.do(t, http.MethodPut, "/parties/"+party.ID.String(), map[string]any{
		"name":  "Acme Traders Pvt Ltd",
		"email": "accounts@acme.example",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := testutil.DecodeData[partnerapp.PartyResponse](t, w)
	assert.Equal(t, "Acme Traders Pvt Ltd", updated.Name)
	assert.Equal(t, "accounts@acme.example", updated.Email)
	assert.Greater(t, updated.Version, party.Version)
}
