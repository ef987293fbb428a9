package models

import (
	"time"

	"github.com/profitpath/backend/internal/domain/partner"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/shared/valueobject"
)

// PartyModel is the persistence model for Party.
// LegacyType holds the pre-roles party_type value of migrated rows.
type PartyModel struct {
	TenantAggregateModel
	Name              string              `gorm:"type:varchar(200);not null"`
	IsCustomer        bool                `gorm:"not null;default:false;index"`
	IsVendor          bool                `gorm:"not null;default:false;index"`
	GSTEnabled        bool                `gorm:"not null;default:false"`
	GSTIN             string              `gorm:"column:gstin;type:varchar(15)"`
	Email             string              `gorm:"type:varchar(200)"`
	Phone             string              `gorm:"type:varchar(30)"`
	BillingAddress    valueobject.Address `gorm:"type:text"`
	IsActive          bool                `gorm:"not null;default:true;index"`
	Notes             string              `gorm:"type:text"`
	LegacyType        string              `gorm:"column:party_type;type:varchar(20)"`
	RolesBackfilledAt *time.Time
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party
func (m *PartyModel) ToDomain() *partner.Party {
	p := &partner.Party{
		TenantAggregateRoot: shared.TenantAggregateRoot{},
		Name:                m.Name,
		IsCustomer:          m.IsCustomer,
		IsVendor:            m.IsVendor,
		GSTEnabled:          m.GSTEnabled,
		GSTIN:               m.GSTIN,
		Email:               m.Email,
		Phone:               m.Phone,
		BillingAddress:      m.BillingAddress,
		IsActive:            m.IsActive,
		Notes:               m.Notes,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the model from a domain Party
func (m *PartyModel) FromDomain(p *partner.Party) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.IsCustomer = p.IsCustomer
	m.IsVendor = p.IsVendor
	m.GSTEnabled = p.GSTEnabled
	m.GSTIN = p.GSTIN
	m.Email = p.Email
	m.Phone = p.Phone
	m.BillingAddress = p.BillingAddress
	m.IsActive = p.IsActive
	m.Notes = p.Notes
}

// PartyModelFromDomain creates a persistence model from a domain Party
func PartyModelFromDomain(p *partner.Party) *PartyModel {
	m := &PartyModel{}
	m.FromDomain(p)
	return m
}
