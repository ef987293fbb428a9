package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/profitpath/backend/internal/domain/shared"
	"github.com/profitpath/backend/internal/domain/shared/valueobject"
)

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{6,18}$`)
)

// Roles holds the two independent role flags of a party
type Roles struct {
	IsCustomer bool `json:"is_customer"`
	IsVendor   bool `json:"is_vendor"`
}

// Validate requires at least one role
func (r Roles) Validate() error {
	if !r.IsCustomer && !r.IsVendor {
		return shared.ErrInvalidPartyRole
	}
	return nil
}

// Party is a business counterparty. A party may be a customer, a vendor, or both.
type Party struct {
	shared.TenantAggregateRoot
	Name           string
	IsCustomer     bool
	IsVendor       bool
	GSTEnabled     bool
	GSTIN          string
	Email          string
	Phone          string
	BillingAddress valueobject.Address
	IsActive       bool
	Notes          string
}

// NewParty creates an active party with the given roles
func NewParty(tenantID uuid.UUID, name string, roles Roles) (*Party, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := roles.Validate(); err != nil {
		return nil, err
	}

	p := &Party{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		IsCustomer:          roles.IsCustomer,
		IsVendor:            roles.IsVendor,
		IsActive:            true,
	}
	p.AddDomainEvent(NewPartyCreatedEvent(p))
	return p, nil
}

// Roles returns the current role flags
func (p *Party) Roles() Roles {
	return Roles{IsCustomer: p.IsCustomer, IsVendor: p.IsVendor}
}

// SetRoles replaces both role flags
func (p *Party) SetRoles(roles Roles) error {
	if err := roles.Validate(); err != nil {
		return err
	}
	old := p.Roles()
	if old == roles {
		return nil
	}
	p.IsCustomer = roles.IsCustomer
	p.IsVendor = roles.IsVendor
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()

	p.AddDomainEvent(NewPartyRolesChangedEvent(p, old))
	return nil
}

// UpdateDetails replaces the descriptive fields
func (p *Party) UpdateDetails(name, email, phone, notes string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email != "" && !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}

	p.Name = name
	p.Email = email
	p.Phone = phone
	p.Notes = notes
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()
	return nil
}

// SetBillingAddress sets the billing address
func (p *Party) SetBillingAddress(addr valueobject.Address) {
	p.BillingAddress = addr
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()
}

// EnableGST registers the party's GSTIN. The GSTIN state prefix must match the
// billing address when one is set.
func (p *Party) EnableGST(gstin string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if !gstinPattern.MatchString(gstin) {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be a valid 15 character identifier")
	}
	if !p.BillingAddress.IsEmpty() && p.BillingAddress.StateCode() != gstin[:2] {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN state code does not match billing address")
	}
	p.GSTEnabled = true
	p.GSTIN = gstin
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()
	return nil
}

// DisableGST clears GST registration
func (p *Party) DisableGST() {
	p.GSTEnabled = false
	p.GSTIN = ""
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()
}

// StateCode returns the party's GST state code, from the GSTIN when registered
// and from the billing address otherwise. Empty when neither is known.
func (p *Party) StateCode() string {
	if p.GSTEnabled && len(p.GSTIN) >= 2 {
		return p.GSTIN[:2]
	}
	return p.BillingAddress.StateCode()
}

// Activate reactivates a soft-deleted party
func (p *Party) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Party is already active")
	}
	p.IsActive = true
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()
	p.AddDomainEvent(NewPartyStatusChangedEvent(p))
	return nil
}

// Deactivate soft-deletes the party
func (p *Party) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Party is already inactive")
	}
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	p.IncrementVersion()
	p.AddDomainEvent(NewPartyStatusChangedEvent(p))
	return nil
}

// CanBeInvoiced checks that sales documents may be raised for the party
func (p *Party) CanBeInvoiced() error {
	if !p.IsActive {
		return shared.NewDomainError(shared.CodePartyInactive, "Party is inactive")
	}
	if !p.IsCustomer {
		return shared.NewDomainError(shared.CodeInvalidPartyRole, "Party is not a customer")
	}
	return nil
}

// CanBeBilled checks that purchase documents may be recorded from the party
func (p *Party) CanBeBilled() error {
	if !p.IsActive {
		return shared.NewDomainError(shared.CodePartyInactive, "Party is inactive")
	}
	if !p.IsVendor {
		return shared.NewDomainError(shared.CodeInvalidPartyRole, "Party is not a vendor")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Party name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Party name cannot exceed 200 characters")
	}
	return nil
}
