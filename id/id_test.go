package id

import "testing"

func TestSequentialIDZeroSentinel(t *testing.T) {
	if !AllocationID(0).IsZero() {
		t.Error("AllocationID(0).IsZero: got false")
	}
	if AllocationID(1).IsZero() {
		t.Error("AllocationID(1).IsZero: got true")
	}
	if !ScheduleID(0).IsZero() {
		t.Error("ScheduleID(0).IsZero: got false")
	}
	if !AirdropID(0).IsZero() {
		t.Error("AirdropID(0).IsZero: got false")
	}
}

func TestParseAllocationID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AllocationID
		wantErr bool
	}{
		{"One", "1", 1, false},
		{"Zero sentinel", "0", 0, false},
		{"Large", "18446744073709551615", 18446744073709551615, false},
		{"Negative", "-1", 0, true},
		{"Garbage", "abc", 0, true},
		{"Empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAllocationID(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEventID(t *testing.T) {
	eid := NewEventID()
	if eid.IsNil() {
		t.Fatal("NewEventID returned nil id")
	}
	s := eid.String()
	if len(s) == 0 {
		t.Fatal("empty string form")
	}
	if s[:4] != PrefixEvent+"_" {
		t.Errorf("prefix: got %q, want %q", s[:4], PrefixEvent+"_")
	}

	parsed, err := ParseEventID(s)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.String() != s {
		t.Errorf("round trip: got %q, want %q", parsed.String(), s)
	}
}

func TestParseEventIDRejectsWrongPrefix(t *testing.T) {
	if _, err := ParseEventID("usr_01h2xcejqtf2nbrexx3vqjhp41"); err == nil {
		t.Error("expected error for wrong prefix")
	}
	if _, err := ParseEventID("not-a-typeid"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestEventIDOrdering(t *testing.T) {
	// TypeIDs are K-sortable: later ids compare lexically >= earlier ones.
	a := NewEventID().String()
	b := NewEventID().String()
	if b < a {
		t.Errorf("ordering: %q < %q", b, a)
	}
}
