// Package plugin provides an extensible plugin system for the vesting
// ledgers. Plugins hook into lifecycle events to extend functionality.
package plugin

import (
	"context"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, ledger any) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Allocation ledger hooks
// ──────────────────────────────────────────────────

// OnAllocationCreated is called when a new allocation is created.
type OnAllocationCreated interface {
	Plugin
	OnAllocationCreated(ctx context.Context, a *allocation.Allocation) error
}

// OnAllocationReduced is called when an allocation's balance is reduced.
type OnAllocationReduced interface {
	Plugin
	OnAllocationReduced(ctx context.Context, a *allocation.Allocation, amount types.Amount) error
}

// OnAllocationRevoked is called when an allocation is revoked.
type OnAllocationRevoked interface {
	Plugin
	OnAllocationRevoked(ctx context.Context, a *allocation.Allocation) error
}

// OnAirdropExecuted is called after an airdrop batch completes.
type OnAirdropExecuted interface {
	Plugin
	OnAirdropExecuted(ctx context.Context, a *allocation.Airdrop) error
}

// OnManagerChanged is called when the manager registry gains or loses
// an address.
type OnManagerChanged interface {
	Plugin
	OnManagerChanged(ctx context.Context, addr types.Address, added bool) error
}

// ──────────────────────────────────────────────────
// Schedule ledger hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated is called when a new vesting schedule is created.
type OnScheduleCreated interface {
	Plugin
	OnScheduleCreated(ctx context.Context, s *schedule.Schedule) error
}

// OnTokensReleased is called after a claim releases tokens.
type OnTokensReleased interface {
	Plugin
	OnTokensReleased(ctx context.Context, s *schedule.Schedule, amount types.Amount) error
}

// OnManualUnlock is called after an administrative off-curve release.
type OnManualUnlock interface {
	Plugin
	OnManualUnlock(ctx context.Context, s *schedule.Schedule, amount types.Amount) error
}

// OnScheduleRevoked is called when a schedule is revoked. unvested is the
// forfeited remainder; forced reports whether the allocation ledger was
// deliberately skipped.
type OnScheduleRevoked interface {
	Plugin
	OnScheduleRevoked(ctx context.Context, s *schedule.Schedule, unvested types.Amount, forced bool) error
}

// OnTotalsUpdated is called whenever the running aggregates move.
type OnTotalsUpdated interface {
	Plugin
	OnTotalsUpdated(ctx context.Context, t schedule.Totals) error
}

// ──────────────────────────────────────────────────
// Discrepancy hooks
// ──────────────────────────────────────────────────

// OnReductionFailed is called when a claim or manual unlock minted
// successfully but the linked allocation could not be reduced. The ledger
// swallows the failure; this hook is how it becomes observable.
type OnReductionFailed interface {
	Plugin
	OnReductionFailed(ctx context.Context, sid id.ScheduleID, aid id.AllocationID, amount types.Amount, err error) error
}

// OnMintFailed is called when the token ledger rejected a mint after the
// release accounting was already persisted.
type OnMintFailed interface {
	Plugin
	OnMintFailed(ctx context.Context, sid id.ScheduleID, beneficiary types.Address, amount types.Amount, err error) error
}

// ──────────────────────────────────────────────────
// Gate hooks
// ──────────────────────────────────────────────────

// OnPauseChanged is called when a ledger's pause flag flips.
type OnPauseChanged interface {
	Plugin
	OnPauseChanged(ctx context.Context, ledgerName string, paused bool) error
}
