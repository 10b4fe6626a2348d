// Package event defines the append-only audit stream both ledgers write.
//
// Every state mutation appends exactly one event (plus a totals update where
// the running aggregates moved) inside the same atomic unit as the mutation
// itself. Events are never updated or deleted.
package event

import (
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Kind names the mutation an event records.
type Kind string

const (
	KindAllocationCreated Kind = "allocation_created"
	KindAllocationReduced Kind = "allocation_reduced"
	KindAllocationRevoked Kind = "allocation_revoked"
	KindAirdropExecuted   Kind = "airdrop_executed"
	KindManagerAdded      Kind = "manager_added"
	KindManagerRemoved    Kind = "manager_removed"

	KindScheduleCreated Kind = "schedule_created"
	KindTokensReleased  Kind = "tokens_released"
	KindManualUnlock    Kind = "manual_unlock"
	KindScheduleRevoked Kind = "schedule_revoked"
	KindTotalsUpdated   Kind = "totals_updated"

	// KindReductionFailed records the documented best-effort path: a claim
	// or manual unlock minted successfully but the linked allocation could
	// not be reduced. The discrepancy is recorded, not propagated.
	KindReductionFailed Kind = "reduction_failed"
	// KindMintFailed records a mint that failed after the accounting had
	// already been persisted.
	KindMintFailed Kind = "mint_failed"
)

// Event is one record on the audit stream. Fields that do not apply to a
// given kind are left at their zero values.
type Event struct {
	ID           id.EventID      `json:"id"`
	Kind         Kind            `json:"kind"`
	At           time.Time       `json:"at"`
	Caller       types.Address   `json:"caller,omitempty"`
	Beneficiary  types.Address   `json:"beneficiary,omitempty"`
	AllocationID id.AllocationID `json:"allocation_id,omitempty"`
	ScheduleID   id.ScheduleID   `json:"schedule_id,omitempty"`
	AirdropID    id.AirdropID    `json:"airdrop_id,omitempty"`
	Amount       types.Amount    `json:"amount,omitempty"`
	// Remaining carries the allocation balance left behind by a revocation
	// or reduction, and the schedule's unvested remainder on revoke.
	Remaining types.Amount `json:"remaining,omitempty"`
	Reason    string       `json:"reason,omitempty"`
}

// New creates an event of the given kind stamped with a fresh id.
func New(kind Kind, at time.Time) *Event {
	return &Event{
		ID:   id.NewEventID(),
		Kind: kind,
		At:   at,
	}
}

// ListOpts filters event stream queries.
type ListOpts struct {
	Kind   Kind
	Limit  int
	Offset int
}
