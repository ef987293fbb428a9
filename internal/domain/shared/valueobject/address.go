package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	stateCodePattern = regexp.MustCompile(`^[0-9]{2}$`)
	pincodePattern   = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// Address is an immutable billing address.
// StateCode is the two digit GST state code and decides intra/inter state supply.
type Address struct {
	line1     string
	line2     string
	city      string
	state     string
	stateCode string
	pincode   string
	country   string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithLine2 sets the second address line
func WithLine2(line2 string) AddressOption {
	return func(a *Address) {
		a.line2 = strings.TrimSpace(line2)
	}
}

// WithPincode sets the postal index number
func WithPincode(pincode string) AddressOption {
	return func(a *Address) {
		a.pincode = strings.TrimSpace(pincode)
	}
}

// WithCountry overrides the default country
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.TrimSpace(country)
	}
}

// NewAddress creates a new Address. line1, city, state and stateCode are required.
func NewAddress(line1, city, state, stateCode string, opts ...AddressOption) (Address, error) {
	addr := Address{
		line1:     strings.TrimSpace(line1),
		city:      strings.TrimSpace(city),
		state:     strings.TrimSpace(state),
		stateCode: strings.TrimSpace(stateCode),
		country:   "India",
	}
	for _, opt := range opts {
		opt(&addr)
	}

	if addr.line1 == "" {
		return Address{}, fmt.Errorf("address line1 cannot be empty")
	}
	if len(addr.line1) > 200 || len(addr.line2) > 200 {
		return Address{}, fmt.Errorf("address lines cannot exceed 200 characters")
	}
	if addr.city == "" {
		return Address{}, fmt.Errorf("city cannot be empty")
	}
	if addr.state == "" {
		return Address{}, fmt.Errorf("state cannot be empty")
	}
	if !stateCodePattern.MatchString(addr.stateCode) {
		return Address{}, fmt.Errorf("state code must be two digits, got %q", addr.stateCode)
	}
	if addr.pincode != "" && !pincodePattern.MatchString(addr.pincode) {
		return Address{}, fmt.Errorf("invalid pincode %q", addr.pincode)
	}
	return addr, nil
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

func (a Address) Line1() string     { return a.line1 }
func (a Address) Line2() string     { return a.line2 }
func (a Address) City() string      { return a.city }
func (a Address) State() string     { return a.state }
func (a Address) StateCode() string { return a.stateCode }
func (a Address) Pincode() string   { return a.pincode }
func (a Address) Country() string   { return a.country }

// IsEmpty returns true if no address has been set
func (a Address) IsEmpty() bool {
	return a.line1 == "" && a.city == "" && a.state == ""
}

// SameState reports whether both addresses fall in the same GST state
func (a Address) SameState(stateCode string) bool {
	return a.stateCode != "" && a.stateCode == stateCode
}

// String returns the address on a single line
func (a Address) String() string {
	if a.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, 6)
	for _, p := range []string{a.line1, a.line2, a.city, a.state, a.pincode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Equals returns true if both addresses are equal
func (a Address) Equals(other Address) bool {
	return a == other
}

// AddressDTO is the serialized form used by JSON columns and API payloads
type AddressDTO struct {
	Line1     string `json:"line1"`
	Line2     string `json:"line2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	StateCode string `json:"state_code"`
	Pincode   string `json:"pincode,omitempty"`
	Country   string `json:"country,omitempty"`
}

// ToDTO converts Address to AddressDTO
func (a Address) ToDTO() AddressDTO {
	return AddressDTO{
		Line1:     a.line1,
		Line2:     a.line2,
		City:      a.city,
		State:     a.state,
		StateCode: a.stateCode,
		Pincode:   a.pincode,
		Country:   a.country,
	}
}

// ToAddress validates the DTO and builds an Address. An all-blank DTO yields EmptyAddress.
func (d AddressDTO) ToAddress() (Address, error) {
	if d.Line1 == "" && d.City == "" && d.State == "" && d.StateCode == "" {
		return EmptyAddress(), nil
	}
	opts := []AddressOption{WithLine2(d.Line2), WithPincode(d.Pincode)}
	if d.Country != "" {
		opts = append(opts, WithCountry(d.Country))
	}
	return NewAddress(d.Line1, d.City, d.State, d.StateCode, opts...)
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.ToDTO())
}

// UnmarshalJSON implements json.Unmarshaler, applying the same validation as NewAddress
func (a *Address) UnmarshalJSON(data []byte) error {
	var d AddressDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	addr, err := d.ToAddress()
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Value implements driver.Valuer so Address can be stored as a JSON column
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	b, err := json.Marshal(a.ToDTO())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = EmptyAddress()
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
	var d AddressDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to unmarshal address: %w", err)
	}
	addr, err := d.ToAddress()
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
