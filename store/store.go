// Package store defines the unified storage interface for the vesting
// ledgers. Tables are append-only and keyed by sequential integer id
// starting at 1; a secondary index maps each beneficiary to the ids they
// own. The store assigns ids inside the Create methods so the sequence
// lives next to the table it keys: callers see the id on the record after
// a successful create, and a failed create consumes none.
package store

import (
	"context"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Store is the unified storage interface for both ledgers. Methods are
// declared explicitly rather than via embedded sub-interfaces to avoid
// naming conflicts.
type Store interface {
	// Allocation methods
	CreateAllocation(ctx context.Context, a *allocation.Allocation) error
	GetAllocation(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error)
	ListAllocationsByBeneficiary(ctx context.Context, beneficiary types.Address) ([]*allocation.Allocation, error)
	UpdateAllocation(ctx context.Context, a *allocation.Allocation) error
	CountAllocations(ctx context.Context) (uint64, error)

	// Airdrop methods
	CreateAirdrop(ctx context.Context, a *allocation.Airdrop) error
	GetAirdrop(ctx context.Context, aid id.AirdropID) (*allocation.Airdrop, error)

	// Schedule methods
	CreateSchedule(ctx context.Context, s *schedule.Schedule) error
	GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error)
	ListSchedulesByBeneficiary(ctx context.Context, beneficiary types.Address) ([]*schedule.Schedule, error)
	UpdateSchedule(ctx context.Context, s *schedule.Schedule) error
	CountSchedules(ctx context.Context) (uint64, error)

	// Manager registry methods
	AddManager(ctx context.Context, addr types.Address) error
	RemoveManager(ctx context.Context, addr types.Address) error
	IsManager(ctx context.Context, addr types.Address) (bool, error)
	ListManagers(ctx context.Context) ([]types.Address, error)

	// Running totals
	Totals(ctx context.Context) (schedule.Totals, error)
	SetTotals(ctx context.Context, t schedule.Totals) error

	// Event stream
	AppendEvent(ctx context.Context, e *event.Event) error
	ListEvents(ctx context.Context, opts event.ListOpts) ([]*event.Event, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
