package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"
)

// Amount represents a token quantity in the token's smallest unit.
// It is unsigned, arbitrary precision, and all arithmetic is integer-only;
// no floating point anywhere. The zero value is a valid zero amount.
//
// Amount is immutable: every operation returns a new value and never
// mutates its receiver or operands.
type Amount struct {
	n *big.Int // nil means zero; invariant: never negative
}

// ZeroAmount is the zero token quantity.
var ZeroAmount = Amount{}

// NewAmount creates an Amount from a uint64.
func NewAmount(v uint64) Amount {
	return Amount{n: new(big.Int).SetUint64(v)}
}

// AmountFromBig creates an Amount from a big.Int. The input is copied.
// Returns an error if v is negative.
func AmountFromBig(v *big.Int) (Amount, error) {
	if v == nil {
		return Amount{}, nil
	}
	if v.Sign() < 0 {
		return Amount{}, fmt.Errorf("types: negative amount %s", v)
	}
	return Amount{n: new(big.Int).Set(v)}, nil
}

// ParseAmount parses a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("types: parse amount %q: not a base-10 integer", s)
	}
	return AmountFromBig(v)
}

// MustAmount is like ParseAmount but panics on error. Use for literals.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// big returns the underlying value, treating nil as zero. Read-only.
func (a Amount) big() *big.Int {
	if a.n == nil {
		return new(big.Int)
	}
	return a.n
}

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{n: new(big.Int).Add(a.big(), other.big())}
}

// Sub returns a - other. Panics if the result would be negative:
// callers are expected to have checked ordering first, and an unchecked
// underflow on a monetary quantity is a programming error.
func (a Amount) Sub(other Amount) Amount {
	r := new(big.Int).Sub(a.big(), other.big())
	if r.Sign() < 0 {
		panic(fmt.Sprintf("types: amount underflow: %s - %s", a, other))
	}
	return Amount{n: r}
}

// MulDiv returns floor(a * num / den). This is the only proration
// primitive: truncation always rounds down, in the protocol's favor.
// Panics if den is zero.
func (a Amount) MulDiv(num, den int64) Amount {
	if den == 0 {
		panic("types: amount division by zero")
	}
	r := new(big.Int).Mul(a.big(), big.NewInt(num))
	r.Quo(r, big.NewInt(den))
	if r.Sign() < 0 {
		panic(fmt.Sprintf("types: negative proration: %s * %d / %d", a, num, den))
	}
	return Amount{n: r}
}

// Cmp compares two amounts: -1 if a < other, 0 if equal, +1 if a > other.
func (a Amount) Cmp(other Amount) int { return a.big().Cmp(other.big()) }

// Equal reports whether both amounts are equal.
func (a Amount) Equal(other Amount) bool { return a.Cmp(other) == 0 }

// LessThan reports whether a < other.
func (a Amount) LessThan(other Amount) bool { return a.Cmp(other) < 0 }

// GreaterThan reports whether a > other.
func (a Amount) GreaterThan(other Amount) bool { return a.Cmp(other) > 0 }

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.n == nil || a.n.Sign() == 0 }

// IsPositive reports whether the amount is greater than zero.
func (a Amount) IsPositive() bool { return a.n != nil && a.n.Sign() > 0 }

// Min returns the smaller of two amounts.
func (a Amount) Min(other Amount) Amount {
	if a.Cmp(other) <= 0 {
		return a
	}
	return other
}

// BigInt returns a copy of the underlying integer.
func (a Amount) BigInt() *big.Int { return new(big.Int).Set(a.big()) }

// String returns the base-10 representation.
func (a Amount) String() string { return a.big().String() }

// MarshalJSON implements json.Marshaler. Amounts serialize as strings
// because they routinely exceed the range JSON numbers survive.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler. Accepts a string or a number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Fall back to a bare JSON number.
		s = string(data)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("types: negative amount %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("types: cannot scan %T into Amount", src)
	}
}

// SumAmounts calculates the sum of multiple amounts.
func SumAmounts(values ...Amount) Amount {
	total := Amount{}
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
