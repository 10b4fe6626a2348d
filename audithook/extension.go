// Package audithook bridges vesting lifecycle events to an audit trail
// backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/plugin"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnAllocationCreated = (*Extension)(nil)
	_ plugin.OnAllocationReduced = (*Extension)(nil)
	_ plugin.OnAllocationRevoked = (*Extension)(nil)
	_ plugin.OnAirdropExecuted   = (*Extension)(nil)
	_ plugin.OnManagerChanged    = (*Extension)(nil)
	_ plugin.OnScheduleCreated   = (*Extension)(nil)
	_ plugin.OnTokensReleased    = (*Extension)(nil)
	_ plugin.OnManualUnlock      = (*Extension)(nil)
	_ plugin.OnScheduleRevoked   = (*Extension)(nil)
	_ plugin.OnReductionFailed   = (*Extension)(nil)
	_ plugin.OnMintFailed        = (*Extension)(nil)
	_ plugin.OnPauseChanged      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement. Defined
// locally so this package carries no backend dependency; callers inject
// the concrete emitter at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges vesting lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Allocation ledger hooks
// ──────────────────────────────────────────────────

// OnAllocationCreated implements plugin.OnAllocationCreated.
func (e *Extension) OnAllocationCreated(ctx context.Context, a *allocation.Allocation) error {
	return e.record(ctx, ActionAllocationCreated, SeverityInfo, OutcomeSuccess,
		ResourceAllocation, a.ID.String(), CategoryAllocation, nil,
		"beneficiary", a.Beneficiary.String(),
		"amount", a.Amount.String(),
	)
}

// OnAllocationReduced implements plugin.OnAllocationReduced.
func (e *Extension) OnAllocationReduced(ctx context.Context, a *allocation.Allocation, amount types.Amount) error {
	return e.record(ctx, ActionAllocationReduced, SeverityInfo, OutcomeSuccess,
		ResourceAllocation, a.ID.String(), CategoryAllocation, nil,
		"amount", amount.String(),
		"remaining", a.Amount.String(),
	)
}

// OnAllocationRevoked implements plugin.OnAllocationRevoked.
func (e *Extension) OnAllocationRevoked(ctx context.Context, a *allocation.Allocation) error {
	return e.record(ctx, ActionAllocationRevoked, SeverityWarning, OutcomeSuccess,
		ResourceAllocation, a.ID.String(), CategoryAllocation, nil,
		"beneficiary", a.Beneficiary.String(),
		"remaining", a.Amount.String(),
	)
}

// OnAirdropExecuted implements plugin.OnAirdropExecuted.
func (e *Extension) OnAirdropExecuted(ctx context.Context, a *allocation.Airdrop) error {
	return e.record(ctx, ActionAirdropExecuted, SeverityInfo, OutcomeSuccess,
		ResourceAirdrop, a.ID.String(), CategoryAllocation, nil,
		"entries", len(a.Entries),
		"total", a.Total().String(),
	)
}

// OnManagerChanged implements plugin.OnManagerChanged.
func (e *Extension) OnManagerChanged(ctx context.Context, addr types.Address, added bool) error {
	action := ActionManagerRemoved
	if added {
		action = ActionManagerAdded
	}
	return e.record(ctx, action, SeverityWarning, OutcomeSuccess,
		ResourceManager, addr.String(), CategoryAccess, nil,
		"address", addr.String(),
	)
}

// ──────────────────────────────────────────────────
// Schedule ledger hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated implements plugin.OnScheduleCreated.
func (e *Extension) OnScheduleCreated(ctx context.Context, s *schedule.Schedule) error {
	return e.record(ctx, ActionScheduleCreated, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, s.ID.String(), CategoryVesting, nil,
		"beneficiary", s.Beneficiary.String(),
		"total", s.TotalAmount.String(),
		"allocation_id", s.AllocationID.String(),
	)
}

// OnTokensReleased implements plugin.OnTokensReleased.
func (e *Extension) OnTokensReleased(ctx context.Context, s *schedule.Schedule, amount types.Amount) error {
	return e.record(ctx, ActionTokensReleased, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, s.ID.String(), CategoryVesting, nil,
		"beneficiary", s.Beneficiary.String(),
		"amount", amount.String(),
		"released", s.Released.String(),
	)
}

// OnManualUnlock implements plugin.OnManualUnlock.
func (e *Extension) OnManualUnlock(ctx context.Context, s *schedule.Schedule, amount types.Amount) error {
	return e.record(ctx, ActionManualUnlock, SeverityWarning, OutcomeSuccess,
		ResourceSchedule, s.ID.String(), CategoryVesting, nil,
		"beneficiary", s.Beneficiary.String(),
		"amount", amount.String(),
	)
}

// OnScheduleRevoked implements plugin.OnScheduleRevoked.
func (e *Extension) OnScheduleRevoked(ctx context.Context, s *schedule.Schedule, unvested types.Amount, forced bool) error {
	return e.record(ctx, ActionScheduleRevoked, SeverityWarning, OutcomeSuccess,
		ResourceSchedule, s.ID.String(), CategoryVesting, nil,
		"beneficiary", s.Beneficiary.String(),
		"unvested", unvested.String(),
		"forced", forced,
	)
}

// ──────────────────────────────────────────────────
// Discrepancy hooks
// ──────────────────────────────────────────────────

// OnReductionFailed implements plugin.OnReductionFailed.
func (e *Extension) OnReductionFailed(ctx context.Context, sid id.ScheduleID, aid id.AllocationID, amount types.Amount, err error) error {
	return e.record(ctx, ActionReductionFailed, SeverityError, OutcomePartial,
		ResourceAllocation, aid.String(), CategoryToken, err,
		"schedule_id", sid.String(),
		"amount", amount.String(),
	)
}

// OnMintFailed implements plugin.OnMintFailed.
func (e *Extension) OnMintFailed(ctx context.Context, sid id.ScheduleID, beneficiary types.Address, amount types.Amount, err error) error {
	return e.record(ctx, ActionMintFailed, SeverityCritical, OutcomeFailure,
		ResourceSchedule, sid.String(), CategoryToken, err,
		"beneficiary", beneficiary.String(),
		"amount", amount.String(),
	)
}

// ──────────────────────────────────────────────────
// Gate hooks
// ──────────────────────────────────────────────────

// OnPauseChanged implements plugin.OnPauseChanged.
func (e *Extension) OnPauseChanged(ctx context.Context, ledgerName string, paused bool) error {
	action := ActionUnpaused
	severity := SeverityInfo
	if paused {
		action = ActionPaused
		severity = SeverityCritical
	}
	return e.record(ctx, action, severity, OutcomeSuccess,
		ResourceLedger, ledgerName, CategoryAccess, nil,
		"ledger", ledgerName,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
