// Package vesting provides a token vesting and allocation accounting
// engine for Go applications.
//
// It is designed as a library, not a service. Import it directly into
// your application and wire it to your token backend. It provides:
//
//   - An allocation ledger reserving token amounts per beneficiary
//   - Cliff-plus-linear vesting schedules with claim and manual unlock
//   - Instant fully-vested airdrops, atomic across the whole batch
//   - Revocation paths that keep both ledgers consistent
//   - A pluggable token-minting boundary
//   - An append-only audit event stream
//   - Lifecycle plugins for audit trails and metrics
//
// # Quick Start
//
// Create both ledgers over a shared store and a token minter:
//
//	import (
//	    vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
//	    "github.com/SoftHorizonSolutions/ttn-token-sub000/store/memory"
//	    "github.com/SoftHorizonSolutions/ttn-token-sub000/token"
//	)
//
//	admin := vesting.MustAddress("0x00000000000000000000000000000000000000a1")
//	st := memory.New()
//	tok := token.NewLedger()
//
//	allocations := vesting.NewAllocationLedger(st, tok, admin)
//	schedules := vesting.NewScheduleLedger(st, tok, allocations, allocations.Book(), admin)
//
// Allocations reserve amounts without moving tokens:
//
//	aid, err := allocations.CreateAllocation(ctx, admin, beneficiary, vesting.NewAmount(1000))
//
// Schedules release those amounts over a time curve:
//
//	sid, err := schedules.CreateSchedule(ctx, admin, vesting.ScheduleParams{
//	    Beneficiary:  beneficiary,
//	    TotalAmount:  vesting.NewAmount(1000),
//	    Start:        start,
//	    Cliff:        90 * 24 * time.Hour,
//	    Duration:     365 * 24 * time.Hour,
//	    AllocationID: aid,
//	})
//
//	released, err := schedules.Claim(ctx, beneficiary, sid)
//
// # Accounting Model
//
// All amounts use arbitrary-precision unsigned integers in the token's
// smallest unit; there is no floating point anywhere in the engine.
// Linear vesting prorates with floor division at one-second granularity,
// so partial periods always round down.
//
// Release accounting is persisted before the mint. A mint failure after
// the accounting landed surfaces as *MintError and is recorded on the
// event stream; the accounting is not rolled back.
//
// # Identifiers
//
// Allocations, airdrops, and schedules use sequential integer ids
// starting at 1, with 0 reserved as the null sentinel. Audit events use
// TypeIDs:
//
//	evt_01h2xcejqtf2nbrexx3vqjhp41
//
// TypeIDs are K-sortable, giving the event stream natural time-ordering.
package vesting
