// Package id defines the identity types for all vesting ledger entities.
//
// Allocations, schedules, and airdrops use sequential uint64 identifiers:
// 1-based, assigned in creation order by the store, with 0 reserved as the
// "absent/unlinked" sentinel. A schedule whose AllocationID is zero is not
// linked to any allocation. Sequential ids are never reused and a failed
// create never consumes one.
//
// Events on the append-only audit stream use TypeIDs instead: K-sortable
// (UUIDv7-based), globally unique, URL-safe in the format "evt_suffix".
package id

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"go.jetify.com/typeid/v2"
)

// AllocationID identifies an allocation record. Zero means "no allocation".
type AllocationID uint64

// ScheduleID identifies a vesting schedule. Zero is invalid.
type ScheduleID uint64

// AirdropID identifies an executed airdrop batch. Zero is invalid.
type AirdropID uint64

// IsZero reports whether the id is the absent sentinel.
func (i AllocationID) IsZero() bool { return i == 0 }

// IsZero reports whether the id is the absent sentinel.
func (i ScheduleID) IsZero() bool { return i == 0 }

// IsZero reports whether the id is the absent sentinel.
func (i AirdropID) IsZero() bool { return i == 0 }

func (i AllocationID) String() string { return strconv.FormatUint(uint64(i), 10) }
func (i ScheduleID) String() string   { return strconv.FormatUint(uint64(i), 10) }
func (i AirdropID) String() string    { return strconv.FormatUint(uint64(i), 10) }

// ParseAllocationID parses a base-10 allocation id.
func ParseAllocationID(s string) (AllocationID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id: parse allocation id %q: %w", s, err)
	}
	return AllocationID(v), nil
}

// ParseScheduleID parses a base-10 schedule id.
func ParseScheduleID(s string) (ScheduleID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("id: parse schedule id %q: %w", s, err)
	}
	return ScheduleID(v), nil
}

// ──────────────────────────────────────────────────
// Event identities
// ──────────────────────────────────────────────────

// PrefixEvent is the TypeID prefix for audit stream events.
const PrefixEvent = "evt"

// EventID identifies an event on the append-only audit stream.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type EventID struct {
	inner typeid.TypeID
	valid bool
}

// NilEventID is the zero-value EventID.
var NilEventID EventID

// NewEventID generates a new globally unique event id.
func NewEventID() EventID {
	tid, err := typeid.Generate(PrefixEvent)
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", PrefixEvent, err))
	}
	return EventID{inner: tid, valid: true}
}

// ParseEventID parses an event id string (e.g. "evt_01h2xcejqtf2nbrexx3vqjhp41").
func ParseEventID(s string) (EventID, error) {
	if s == "" {
		return NilEventID, fmt.Errorf("id: parse event id: empty string")
	}
	tid, err := typeid.Parse(s)
	if err != nil {
		return NilEventID, fmt.Errorf("id: parse event id %q: %w", s, err)
	}
	if tid.Prefix() != PrefixEvent {
		return NilEventID, fmt.Errorf("id: expected prefix %q, got %q", PrefixEvent, tid.Prefix())
	}
	return EventID{inner: tid, valid: true}, nil
}

// MustParseEventID is like ParseEventID but panics on error.
func MustParseEventID(s string) EventID {
	parsed, err := ParseEventID(s)
	if err != nil {
		panic(err)
	}
	return parsed
}

// String returns the full TypeID string representation (evt_suffix).
// Returns an empty string for the nil id.
func (i EventID) String() string {
	if !i.valid {
		return ""
	}
	return i.inner.String()
}

// IsNil reports whether this id is the zero value.
func (i EventID) IsNil() bool { return !i.valid }

// MarshalText implements encoding.TextMarshaler.
func (i EventID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}
	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *EventID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = NilEventID
		return nil
	}
	parsed, err := ParseEventID(string(data))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (i EventID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}
	return i.inner.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (i *EventID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*i = NilEventID
		return nil
	case string:
		if v == "" {
			*i = NilEventID
			return nil
		}
		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = NilEventID
			return nil
		}
		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into EventID", src)
	}
}
