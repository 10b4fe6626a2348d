// Package observability provides a metrics extension that records vesting
// lifecycle event counts via an injected MetricFactory.
package observability

import (
	"context"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/plugin"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnAllocationCreated = (*MetricsExtension)(nil)
	_ plugin.OnAllocationReduced = (*MetricsExtension)(nil)
	_ plugin.OnAllocationRevoked = (*MetricsExtension)(nil)
	_ plugin.OnAirdropExecuted   = (*MetricsExtension)(nil)
	_ plugin.OnManagerChanged    = (*MetricsExtension)(nil)
	_ plugin.OnScheduleCreated   = (*MetricsExtension)(nil)
	_ plugin.OnTokensReleased    = (*MetricsExtension)(nil)
	_ plugin.OnManualUnlock      = (*MetricsExtension)(nil)
	_ plugin.OnScheduleRevoked   = (*MetricsExtension)(nil)
	_ plugin.OnReductionFailed   = (*MetricsExtension)(nil)
	_ plugin.OnMintFailed        = (*MetricsExtension)(nil)
	_ plugin.OnPauseChanged      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics. Register it as a
// plugin on both ledgers to track vesting activity.
type MetricsExtension struct {
	factory MetricFactory

	// Allocation metrics
	AllocationCreated Counter
	AllocationReduced Counter
	AllocationRevoked Counter
	AirdropExecuted   Counter
	AirdropBatchSize  Histogram

	// Manager metrics
	ManagerAdded   Counter
	ManagerRemoved Counter

	// Schedule metrics
	ScheduleCreated Counter
	TokensReleased  Counter
	ManualUnlocks   Counter
	ScheduleRevoked Counter
	ForcedRevoked   Counter

	// Discrepancy metrics
	ReductionFailures Counter
	MintFailures      Counter

	// Gate metrics
	PauseFlips Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided
// MetricFactory. Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Allocation metrics
		AllocationCreated: factory.Counter("vesting.allocation.created"),
		AllocationReduced: factory.Counter("vesting.allocation.reduced"),
		AllocationRevoked: factory.Counter("vesting.allocation.revoked"),
		AirdropExecuted:   factory.Counter("vesting.airdrop.executed"),
		AirdropBatchSize:  factory.Histogram("vesting.airdrop.batch.size"),

		// Manager metrics
		ManagerAdded:   factory.Counter("vesting.manager.added"),
		ManagerRemoved: factory.Counter("vesting.manager.removed"),

		// Schedule metrics
		ScheduleCreated: factory.Counter("vesting.schedule.created"),
		TokensReleased:  factory.Counter("vesting.tokens.released"),
		ManualUnlocks:   factory.Counter("vesting.schedule.manual_unlocks"),
		ScheduleRevoked: factory.Counter("vesting.schedule.revoked"),
		ForcedRevoked:   factory.Counter("vesting.schedule.force_revoked"),

		// Discrepancy metrics
		ReductionFailures: factory.Counter("vesting.allocation.reduction_failures"),
		MintFailures:      factory.Counter("vesting.token.mint_failures"),

		// Gate metrics
		PauseFlips: factory.Counter("vesting.ledger.pause_flips"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ any) error {
	return nil
}

// ──────────────────────────────────────────────────
// Allocation ledger hooks
// ──────────────────────────────────────────────────

// OnAllocationCreated implements plugin.OnAllocationCreated.
func (m *MetricsExtension) OnAllocationCreated(_ context.Context, _ *allocation.Allocation) error {
	m.AllocationCreated.Inc()
	return nil
}

// OnAllocationReduced implements plugin.OnAllocationReduced.
func (m *MetricsExtension) OnAllocationReduced(_ context.Context, _ *allocation.Allocation, _ types.Amount) error {
	m.AllocationReduced.Inc()
	return nil
}

// OnAllocationRevoked implements plugin.OnAllocationRevoked.
func (m *MetricsExtension) OnAllocationRevoked(_ context.Context, _ *allocation.Allocation) error {
	m.AllocationRevoked.Inc()
	return nil
}

// OnAirdropExecuted implements plugin.OnAirdropExecuted.
func (m *MetricsExtension) OnAirdropExecuted(_ context.Context, a *allocation.Airdrop) error {
	m.AirdropExecuted.Inc()
	m.AirdropBatchSize.Observe(float64(len(a.Entries)))
	return nil
}

// OnManagerChanged implements plugin.OnManagerChanged.
func (m *MetricsExtension) OnManagerChanged(_ context.Context, _ types.Address, added bool) error {
	if added {
		m.ManagerAdded.Inc()
	} else {
		m.ManagerRemoved.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Schedule ledger hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated implements plugin.OnScheduleCreated.
func (m *MetricsExtension) OnScheduleCreated(_ context.Context, _ *schedule.Schedule) error {
	m.ScheduleCreated.Inc()
	return nil
}

// OnTokensReleased implements plugin.OnTokensReleased.
func (m *MetricsExtension) OnTokensReleased(_ context.Context, _ *schedule.Schedule, _ types.Amount) error {
	m.TokensReleased.Inc()
	return nil
}

// OnManualUnlock implements plugin.OnManualUnlock.
func (m *MetricsExtension) OnManualUnlock(_ context.Context, _ *schedule.Schedule, _ types.Amount) error {
	m.ManualUnlocks.Inc()
	return nil
}

// OnScheduleRevoked implements plugin.OnScheduleRevoked.
func (m *MetricsExtension) OnScheduleRevoked(_ context.Context, _ *schedule.Schedule, _ types.Amount, forced bool) error {
	m.ScheduleRevoked.Inc()
	if forced {
		m.ForcedRevoked.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Discrepancy hooks
// ──────────────────────────────────────────────────

// OnReductionFailed implements plugin.OnReductionFailed.
func (m *MetricsExtension) OnReductionFailed(_ context.Context, _ id.ScheduleID, _ id.AllocationID, _ types.Amount, _ error) error {
	m.ReductionFailures.Inc()
	return nil
}

// OnMintFailed implements plugin.OnMintFailed.
func (m *MetricsExtension) OnMintFailed(_ context.Context, _ id.ScheduleID, _ types.Address, _ types.Amount, _ error) error {
	m.MintFailures.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Gate hooks
// ──────────────────────────────────────────────────

// OnPauseChanged implements plugin.OnPauseChanged.
func (m *MetricsExtension) OnPauseChanged(_ context.Context, _ string, _ bool) error {
	m.PauseFlips.Inc()
	return nil
}
