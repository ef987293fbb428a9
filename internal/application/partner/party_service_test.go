package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockPartyRepository is a mock implementation of PartyRepository
type MockPartyRepository struct {
	mock.Mock
}

func (m *MockPartyRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Party, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Party), args.Error(1)
}

func (m *MockPartyRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.PartyFilter) ([]partner.Party, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]partner.Party), args.Get(1).(int64), args.Error(2)
}

func (m *MockPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	args := m.Called(ctx, party)
	return args.Error(0)
}

func (m *MockPartyRepository) SaveWithLock(ctx context.Context, party *partner.Party, expectedVersion int) error {
	args := m.Called(ctx, party, expectedVersion)
	return args.Error(0)
}

func (m *MockPartyRepository) FindPendingLegacyRoles(ctx context.Context, after uuid.UUID, limit int) ([]partner.LegacyPartyRow, error) {
	args := m.Called(ctx, after, limit)
	return args.Get(0).([]partner.LegacyPartyRow), args.Error(1)
}

func (m *MockPartyRepository) ApplyLegacyRoles(ctx context.Context, id uuid.UUID, roles partner.Roles) error {
	args := m.Called(ctx, id, roles)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func newTestPartyService() (*PartyService, *MockPartyRepository, *MockEventPublisher) {
	repo := new(MockPartyRepository)
	pub := new(MockEventPublisher)
	return NewPartyService(repo, pub, zap.NewNop()), repo, pub
}

func existingParty(t *testing.T, tenantID uuid.UUID, roles partner.Roles) *partner.Party {
	t.Helper()
	p, err := partner.NewParty(tenantID, "Acme Traders", roles)
	require.NoError(t, err)
	p.PullDomainEvents()
	return p
}

func TestPartyService_Create(t *testing.T) {
	tenantID := uuid.New()

	t.Run("customer with GST registration", func(t *testing.T) {
		svc, repo, pub := newTestPartyService()
		repo.On("Save", mock.Anything, mock.AnythingOfType("*partner.Party")).Return(nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.Create(context.Background(), tenantID, CreatePartyRequest{
			Name:       "  Acme Traders ",
			IsCustomer: true,
			Email:      "billing@acme.example",
			GSTEnabled: true,
			GSTIN:      "29ABCDE1234F1Z5",
			BillingAddress: &valueobject.AddressDTO{
				Line1: "12 MG Road", City: "Bengaluru", State: "Karnataka", StateCode: "29", Pincode: "560001",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme Traders", resp.Name)
		assert.True(t, resp.IsCustomer)
		assert.False(t, resp.IsVendor)
		assert.True(t, resp.IsActive)
		assert.Equal(t, "29", resp.StateCode)
		require.NotNil(t, resp.BillingAddress)
		assert.Equal(t, "Bengaluru", resp.BillingAddress.City)

		repo.AssertExpectations(t)
		events := pub.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		require.Len(t, events, 1)
		assert.Equal(t, partner.EventTypePartyCreated, events[0].EventType())
	})

	t.Run("no role is rejected", func(t *testing.T) {
		svc, repo, _ := newTestPartyService()
		_, err := svc.Create(context.Background(), tenantID, CreatePartyRequest{Name: "Nobody"})
		assert.ErrorIs(t, err, shared.ErrInvalidPartyRole)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("GSTIN from another state is rejected", func(t *testing.T) {
		svc, repo, _ := newTestPartyService()
		_, err := svc.Create(context.Background(), tenantID, CreatePartyRequest{
			Name:       "Acme",
			IsVendor:   true,
			GSTEnabled: true,
			GSTIN:      "27ABCDE1234F1Z5",
			BillingAddress: &valueobject.AddressDTO{
				Line1: "12 MG Road", City: "Bengaluru", State: "Karnataka", StateCode: "29",
			},
		})
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INVALID_GSTIN", de.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid address", func(t *testing.T) {
		svc, _, _ := newTestPartyService()
		_, err := svc.Create(context.Background(), tenantID, CreatePartyRequest{
			Name:           "Acme",
			IsCustomer:     true,
			BillingAddress: &valueobject.AddressDTO{Line1: "x", City: "y", State: "z", StateCode: "KA"},
		})
		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, shared.CodeInvalidInput, de.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo, pub := newTestPartyService()
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("db down"))
		_, err := svc.Create(context.Background(), tenantID, CreatePartyRequest{Name: "Acme", IsCustomer: true})
		assert.EqualError(t, err, "db down")
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestPartyService_SetRoles(t *testing.T) {
	tenantID := uuid.New()
	yes, no := true, false

	t.Run("adds the vendor role", func(t *testing.T) {
		svc, repo, pub := newTestPartyService()
		party := existingParty(t, tenantID, partner.Roles{IsCustomer: true})
		expected := party.Version
		repo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)
		repo.On("SaveWithLock", mock.Anything, party, expected).Return(nil)
		pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.SetRoles(context.Background(), tenantID, party.ID, SetRolesRequest{IsCustomer: &yes, IsVendor: &yes})
		require.NoError(t, err)
		assert.True(t, resp.IsCustomer)
		assert.True(t, resp.IsVendor)
		repo.AssertExpectations(t)

		events := pub.Calls[0].Arguments.Get(1).([]shared.DomainEvent)
		require.Len(t, events, 1)
		assert.Equal(t, partner.EventTypePartyRolesChanged, events[0].EventType())
	})

	t.Run("clearing both roles fails", func(t *testing.T) {
		svc, repo, _ := newTestPartyService()
		party := existingParty(t, tenantID, partner.Roles{IsCustomer: true})
		repo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)

		_, err := svc.SetRoles(context.Background(), tenantID, party.ID, SetRolesRequest{IsCustomer: &no, IsVendor: &no})
		assert.ErrorIs(t, err, shared.ErrInvalidPartyRole)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unchanged roles skip the write", func(t *testing.T) {
		svc, repo, _ := newTestPartyService()
		party := existingParty(t, tenantID, partner.Roles{IsVendor: true})
		repo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)

		resp, err := svc.SetRoles(context.Background(), tenantID, party.ID, SetRolesRequest{IsCustomer: &no, IsVendor: &yes})
		require.NoError(t, err)
		assert.True(t, resp.IsVendor)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent modification", func(t *testing.T) {
		svc, repo, _ := newTestPartyService()
		party := existingParty(t, tenantID, partner.Roles{IsCustomer: true})
		repo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)
		repo.On("SaveWithLock", mock.Anything, party, mock.Anything).Return(shared.ErrConcurrencyConflict)

		_, err := svc.SetRoles(context.Background(), tenantID, party.ID, SetRolesRequest{IsCustomer: &yes, IsVendor: &yes})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestPartyService_ActivateDeactivate(t *testing.T) {
	tenantID := uuid.New()
	svc, repo, pub := newTestPartyService()
	party := existingParty(t, tenantID, partner.Roles{IsCustomer: true})
	repo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)
	repo.On("SaveWithLock", mock.Anything, party, mock.Anything).Return(nil)
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Deactivate(context.Background(), tenantID, party.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsActive)

	_, err = svc.Deactivate(context.Background(), tenantID, party.ID)
	require.Error(t, err)
	de, _ := shared.AsDomainError(err)
	assert.Equal(t, "ALREADY_INACTIVE", de.Code)

	resp, err = svc.Activate(context.Background(), tenantID, party.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsActive)
	repo.AssertNumberOfCalls(t, "SaveWithLock", 2)
}

func TestPartyService_Update(t *testing.T) {
	tenantID := uuid.New()
	svc, repo, _ := newTestPartyService()
	party := existingParty(t, tenantID, partner.Roles{IsCustomer: true})
	repo.On("FindByIDForTenant", mock.Anything, tenantID, party.ID).Return(party, nil)
	repo.On("SaveWithLock", mock.Anything, party, mock.Anything).Return(nil)

	name := "Acme Traders Pvt Ltd"
	enable := true
	gstin := "33ABCDE1234F1Z5"
	resp, err := svc.Update(context.Background(), tenantID, party.ID, UpdatePartyRequest{
		Name:       &name,
		GSTEnabled: &enable,
		GSTIN:      &gstin,
		BillingAddress: &valueobject.AddressDTO{
			Line1: "1 Anna Salai", City: "Chennai", State: "Tamil Nadu", StateCode: "33",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.True(t, resp.GSTEnabled)
	assert.Equal(t, "33", resp.StateCode)

	t.Run("moving a registered party to another state fails", func(t *testing.T) {
		_, err := svc.Update(context.Background(), tenantID, party.ID, UpdatePartyRequest{
			BillingAddress: &valueobject.AddressDTO{Line1: "1 MG Road", City: "Bengaluru", State: "Karnataka", StateCode: "29"},
		})
		require.Error(t, err)
		de, _ := shared.AsDomainError(err)
		assert.Equal(t, "INVALID_GSTIN", de.Code)
	})

	t.Run("unknown party", func(t *testing.T) {
		missing := uuid.New()
		repo.On("FindByIDForTenant", mock.Anything, tenantID, missing).Return(nil, shared.ErrNotFound)
		_, err := svc.Update(context.Background(), tenantID, missing, UpdatePartyRequest{Name: &name})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPartyService_List(t *testing.T) {
	tenantID := uuid.New()
	svc, repo, _ := newTestPartyService()
	party := existingParty(t, tenantID, partner.Roles{IsVendor: true})

	repo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f partner.PartyFilter) bool {
		return f.IsVendor != nil && *f.IsVendor && f.IsCustomer == nil &&
			f.IsActive != nil && !*f.IsActive &&
			f.Page == 1 && f.PageSize == 20 && f.OrderBy == "name" && f.OrderDir == "asc"
	})).Return([]partner.Party{*party}, int64(1), nil)

	items, total, err := svc.List(context.Background(), tenantID, PartyListFilter{Role: "vendor", Status: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, party.ID, items[0].ID)
	repo.AssertExpectations(t)
}

func TestPartyService_MigrateLegacyRoles(t *testing.T) {
	svc, repo, _ := newTestPartyService()
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = uuid.New()
	}
	firstPage := []partner.LegacyPartyRow{
		{ID: ids[0], LegacyType: "Customer"},
		{ID: ids[1], LegacyType: " supplier "},
	}
	secondPage := []partner.LegacyPartyRow{
		{ID: ids[2], LegacyType: "Vendor"},
		{ID: ids[3], LegacyType: "Distributor"},
	}
	thirdPage := []partner.LegacyPartyRow{
		{ID: ids[4], LegacyType: "CUSTOMER"},
	}

	repo.On("FindPendingLegacyRoles", mock.Anything, uuid.Nil, 2).Return(firstPage, nil)
	repo.On("FindPendingLegacyRoles", mock.Anything, ids[1], 2).Return(secondPage, nil)
	repo.On("FindPendingLegacyRoles", mock.Anything, ids[3], 2).Return(thirdPage, nil)
	repo.On("ApplyLegacyRoles", mock.Anything, ids[0], partner.Roles{IsCustomer: true}).Return(nil)
	repo.On("ApplyLegacyRoles", mock.Anything, ids[1], partner.Roles{IsVendor: true}).Return(nil)
	repo.On("ApplyLegacyRoles", mock.Anything, ids[2], partner.Roles{IsVendor: true}).Return(nil)
	repo.On("ApplyLegacyRoles", mock.Anything, ids[4], partner.Roles{IsCustomer: true}).Return(shared.ErrNotFound)

	report, err := svc.MigrateLegacyRoles(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, LegacyRoleReport{Scanned: 5, Migrated: 3, Skipped: 1, Failed: 1}, report)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "ApplyLegacyRoles", mock.Anything, ids[3], mock.Anything)
}
