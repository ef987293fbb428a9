package partner

import (
	"fmt"
	"strings"

	"github.com/profitpath/backend/internal/domain/shared"
)

// Legacy party type values found in the single-valued party_type column
const (
	LegacyTypeCustomer = "Customer"
	LegacyTypeSupplier = "Supplier"
	LegacyTypeVendor   = "Vendor"
)

// RolesFromLegacyType maps a legacy party_type value to role flags.
// It is only used while migrating old rows.
func RolesFromLegacyType(legacyType string) (Roles, error) {
	switch strings.ToLower(strings.TrimSpace(legacyType)) {
	case "customer":
		return Roles{IsCustomer: true}, nil
	case "supplier", "vendor":
		return Roles{IsVendor: true}, nil
	}
	return Roles{}, shared.NewDomainError(shared.CodeInvalidPartyRole,
		fmt.Sprintf("unknown legacy party type %q", legacyType))
}
