// Package allocation defines the allocation ledger's records.
//
// An allocation is a reserved, revocable quantity of tokens earmarked for
// one beneficiary. Creating an allocation moves no tokens: it is a
// bookkeeping reservation that a vesting schedule may later draw against.
// Records are never deleted; revoked and drained allocations persist as an
// audit trail.
package allocation

import (
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Allocation is a reserved token quantity for a single beneficiary.
// Amount only ever decreases: by reduction when a linked schedule releases
// tokens, or implicitly frozen by revocation. Beneficiary is immutable.
type Allocation struct {
	types.Entity
	ID          id.AllocationID `json:"id"`
	Beneficiary types.Address   `json:"beneficiary"`
	Amount      types.Amount    `json:"amount"`
	Revoked     bool            `json:"revoked"`
}

// Usable reports whether the allocation can still back releases.
func (a *Allocation) Usable() bool {
	return !a.Revoked && a.Amount.IsPositive()
}

// Airdrop is the record of one executed airdrop batch. An airdrop is an
// instant, fully-vested allocation: each entry creates an allocation and
// mints to the beneficiary in the same operation, bypassing vesting.
type Airdrop struct {
	types.Entity
	ID      id.AirdropID   `json:"id"`
	Caller  types.Address  `json:"caller"`
	Entries []AirdropEntry `json:"entries"`
}

// AirdropEntry is one beneficiary/amount pair of an airdrop batch.
type AirdropEntry struct {
	AllocationID id.AllocationID `json:"allocation_id"`
	Beneficiary  types.Address   `json:"beneficiary"`
	Amount       types.Amount    `json:"amount"`
}

// Total returns the sum of all entry amounts.
func (a *Airdrop) Total() types.Amount {
	total := types.ZeroAmount
	for _, e := range a.Entries {
		total = total.Add(e.Amount)
	}
	return total
}
