package types

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strings"
)

// Address identifies an account on the external token ledger.
// The canonical form is "0x" followed by 40 hex digits, lowercase.
// The zero value (empty string) and the all-zero address are both the
// zero sentinel: no allocation or schedule may target them.
type Address string

// ZeroAddress is the zero-value sentinel.
const ZeroAddress Address = ""

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ParseAddress validates and normalizes an address string. The empty
// string is rejected: callers wanting the zero sentinel use ZeroAddress
// directly.
func ParseAddress(s string) (Address, error) {
	if !addressPattern.MatchString(s) {
		return ZeroAddress, fmt.Errorf("types: parse address %q: want 0x followed by 40 hex digits", s)
	}
	return Address(strings.ToLower(s)), nil
}

// MustAddress is like ParseAddress but panics on error. Use for literals.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

// IsZero reports whether the address is the zero sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress || a == "0x0000000000000000000000000000000000000000"
}

// String returns the canonical string form.
func (a Address) String() string { return string(a) }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input decodes
// to the zero sentinel, mirroring how the sentinel marshals.
func (a *Address) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*a = ZeroAddress
		return nil
	}
	parsed, err := ParseAddress(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Address) Value() (driver.Value, error) {
	return string(a), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Address) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = ZeroAddress
		return nil
	case string:
		return a.UnmarshalText([]byte(v))
	case []byte:
		return a.UnmarshalText(v)
	default:
		return fmt.Errorf("types: cannot scan %T into Address", src)
	}
}
