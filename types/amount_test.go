package types

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestAmountConstructors(t *testing.T) {
	tests := []struct {
		name    string
		amount  Amount
		display string
	}{
		{"Zero value", Amount{}, "0"},
		{"ZeroAmount", ZeroAmount, "0"},
		{"Small", NewAmount(42), "42"},
		{"Large uint64", NewAmount(18446744073709551615), "18446744073709551615"},
		{"Parsed", MustAmount("1000000000000000000000000"), "1000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.amount.String(); got != tt.display {
				t.Errorf("String: got %s, want %s", got, tt.display)
			}
		})
	}
}

func TestParseAmountRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Negative", "-5"},
		{"Hex", "0x10"},
		{"Garbage", "ten"},
		{"Decimal point", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAmount(tt.input); err == nil {
				t.Errorf("ParseAmount(%q): expected error", tt.input)
			}
		})
	}
}

func TestAmountArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Amount
		expected Amount
	}{
		{"Add", func() Amount { return NewAmount(100).Add(NewAmount(200)) }, NewAmount(300)},
		{"Add zero", func() Amount { return NewAmount(100).Add(ZeroAmount) }, NewAmount(100)},
		{"Sub", func() Amount { return NewAmount(500).Sub(NewAmount(200)) }, NewAmount(300)},
		{"Sub to zero", func() Amount { return NewAmount(200).Sub(NewAmount(200)) }, ZeroAmount},
		{"Min smaller", func() Amount { return NewAmount(50).Min(NewAmount(100)) }, NewAmount(50)},
		{"Min larger", func() Amount { return NewAmount(300).Min(NewAmount(100)) }, NewAmount(100)},
		{"Sum", func() Amount { return SumAmounts(NewAmount(1), NewAmount(2), NewAmount(3)) }, NewAmount(6)},
		{"Sum empty", func() Amount { return SumAmounts() }, ZeroAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op(); !got.Equal(tt.expected) {
				t.Errorf("Got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAmountSubUnderflowPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for underflow")
		}
	}()

	_ = NewAmount(100).Sub(NewAmount(101))
}

func TestAmountMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		amount   Amount
		num, den int64
		expected Amount
	}{
		{"Exact half", NewAmount(1000), 1, 2, NewAmount(500)},
		{"Quarter elapsed", NewAmount(1000), 250, 1000, NewAmount(250)},
		{"Floors down", NewAmount(1000), 1, 3, NewAmount(333)},
		{"Floors to zero", NewAmount(2), 1, 3, ZeroAmount},
		{"Full", NewAmount(777), 10, 10, NewAmount(777)},
		{"Zero numerator", NewAmount(1000), 0, 10, ZeroAmount},
		{"Indivisible total", NewAmount(7), 5, 10, NewAmount(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.amount.MulDiv(tt.num, tt.den)
			if !got.Equal(tt.expected) {
				t.Errorf("MulDiv(%d, %d): got %v, want %v", tt.num, tt.den, got, tt.expected)
			}
		})
	}
}

func TestAmountMulDivBeyondInt64(t *testing.T) {
	// 2^80 halves cleanly even though it does not fit an int64.
	base, _ := AmountFromBig(new(big.Int).Lsh(big.NewInt(1), 80))
	want, _ := AmountFromBig(new(big.Int).Lsh(big.NewInt(1), 79))
	if got := base.MulDiv(1, 2); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAmountComparison(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Amount
		less    bool
		greater bool
		equal   bool
	}{
		{"Equal", NewAmount(100), NewAmount(100), false, false, true},
		{"Less", NewAmount(50), NewAmount(100), true, false, false},
		{"Greater", NewAmount(200), NewAmount(100), false, true, false},
		{"Zero equal", ZeroAmount, NewAmount(0), false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.LessThan(tt.b); got != tt.less {
				t.Errorf("LessThan: got %v, want %v", got, tt.less)
			}
			if got := tt.a.GreaterThan(tt.b); got != tt.greater {
				t.Errorf("GreaterThan: got %v, want %v", got, tt.greater)
			}
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal: got %v, want %v", got, tt.equal)
			}
		})
	}
}

func TestAmountPredicates(t *testing.T) {
	if !ZeroAmount.IsZero() {
		t.Error("ZeroAmount.IsZero: got false")
	}
	if ZeroAmount.IsPositive() {
		t.Error("ZeroAmount.IsPositive: got true")
	}
	if NewAmount(1).IsZero() {
		t.Error("NewAmount(1).IsZero: got true")
	}
	if !NewAmount(1).IsPositive() {
		t.Error("NewAmount(1).IsPositive: got false")
	}
}

func TestAmountImmutability(t *testing.T) {
	a := NewAmount(100)
	_ = a.Add(NewAmount(50))
	_ = a.MulDiv(3, 2)
	if !a.Equal(NewAmount(100)) {
		t.Errorf("operations mutated receiver: got %v", a)
	}
}

func TestAmountJSON(t *testing.T) {
	original := MustAmount("123456789012345678901234567890")
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"123456789012345678901234567890"` {
		t.Errorf("Marshal: got %s", data)
	}

	var decoded Amount
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.Equal(original) {
		t.Errorf("round trip: got %v, want %v", decoded, original)
	}
}
