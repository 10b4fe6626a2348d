package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Registry manages all registered plugins and provides efficient dispatch.
// Interfaces are cached per hook at registration time so emission is a
// slice walk, not a type switch.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	onInit              []OnInit
	onShutdown          []OnShutdown
	onAllocationCreated []OnAllocationCreated
	onAllocationReduced []OnAllocationReduced
	onAllocationRevoked []OnAllocationRevoked
	onAirdropExecuted   []OnAirdropExecuted
	onManagerChanged    []OnManagerChanged
	onScheduleCreated   []OnScheduleCreated
	onTokensReleased    []OnTokensReleased
	onManualUnlock      []OnManualUnlock
	onScheduleRevoked   []OnScheduleRevoked
	onTotalsUpdated     []OnTotalsUpdated
	onReductionFailed   []OnReductionFailed
	onMintFailed        []OnMintFailed
	onPauseChanged      []OnPauseChanged
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{logger: slog.Default()}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnAllocationCreated); ok {
		r.onAllocationCreated = append(r.onAllocationCreated, v)
	}
	if v, ok := p.(OnAllocationReduced); ok {
		r.onAllocationReduced = append(r.onAllocationReduced, v)
	}
	if v, ok := p.(OnAllocationRevoked); ok {
		r.onAllocationRevoked = append(r.onAllocationRevoked, v)
	}
	if v, ok := p.(OnAirdropExecuted); ok {
		r.onAirdropExecuted = append(r.onAirdropExecuted, v)
	}
	if v, ok := p.(OnManagerChanged); ok {
		r.onManagerChanged = append(r.onManagerChanged, v)
	}
	if v, ok := p.(OnScheduleCreated); ok {
		r.onScheduleCreated = append(r.onScheduleCreated, v)
	}
	if v, ok := p.(OnTokensReleased); ok {
		r.onTokensReleased = append(r.onTokensReleased, v)
	}
	if v, ok := p.(OnManualUnlock); ok {
		r.onManualUnlock = append(r.onManualUnlock, v)
	}
	if v, ok := p.(OnScheduleRevoked); ok {
		r.onScheduleRevoked = append(r.onScheduleRevoked, v)
	}
	if v, ok := p.(OnTotalsUpdated); ok {
		r.onTotalsUpdated = append(r.onTotalsUpdated, v)
	}
	if v, ok := p.(OnReductionFailed); ok {
		r.onReductionFailed = append(r.onReductionFailed, v)
	}
	if v, ok := p.(OnMintFailed); ok {
		r.onMintFailed = append(r.onMintFailed, v)
	}
	if v, ok := p.(OnPauseChanged); ok {
		r.onPauseChanged = append(r.onPauseChanged, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())
	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger any) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnInit", func() error {
			return p.OnInit(ctx, ledger)
		})
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnShutdown", func() error {
			return p.OnShutdown(ctx)
		})
	}
}

// EmitAllocationCreated emits an allocation created event.
func (r *Registry) EmitAllocationCreated(ctx context.Context, a *allocation.Allocation) {
	r.mu.RLock()
	plugins := r.onAllocationCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnAllocationCreated", func() error {
			return p.OnAllocationCreated(ctx, a)
		})
	}
}

// EmitAllocationReduced emits an allocation reduced event.
func (r *Registry) EmitAllocationReduced(ctx context.Context, a *allocation.Allocation, amount types.Amount) {
	r.mu.RLock()
	plugins := r.onAllocationReduced
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnAllocationReduced", func() error {
			return p.OnAllocationReduced(ctx, a, amount)
		})
	}
}

// EmitAllocationRevoked emits an allocation revoked event.
func (r *Registry) EmitAllocationRevoked(ctx context.Context, a *allocation.Allocation) {
	r.mu.RLock()
	plugins := r.onAllocationRevoked
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnAllocationRevoked", func() error {
			return p.OnAllocationRevoked(ctx, a)
		})
	}
}

// EmitAirdropExecuted emits an airdrop executed event.
func (r *Registry) EmitAirdropExecuted(ctx context.Context, a *allocation.Airdrop) {
	r.mu.RLock()
	plugins := r.onAirdropExecuted
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnAirdropExecuted", func() error {
			return p.OnAirdropExecuted(ctx, a)
		})
	}
}

// EmitManagerChanged emits a manager registry change event.
func (r *Registry) EmitManagerChanged(ctx context.Context, addr types.Address, added bool) {
	r.mu.RLock()
	plugins := r.onManagerChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnManagerChanged", func() error {
			return p.OnManagerChanged(ctx, addr, added)
		})
	}
}

// EmitScheduleCreated emits a schedule created event.
func (r *Registry) EmitScheduleCreated(ctx context.Context, s *schedule.Schedule) {
	r.mu.RLock()
	plugins := r.onScheduleCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnScheduleCreated", func() error {
			return p.OnScheduleCreated(ctx, s)
		})
	}
}

// EmitTokensReleased emits a tokens released event.
func (r *Registry) EmitTokensReleased(ctx context.Context, s *schedule.Schedule, amount types.Amount) {
	r.mu.RLock()
	plugins := r.onTokensReleased
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnTokensReleased", func() error {
			return p.OnTokensReleased(ctx, s, amount)
		})
	}
}

// EmitManualUnlock emits a manual unlock event.
func (r *Registry) EmitManualUnlock(ctx context.Context, s *schedule.Schedule, amount types.Amount) {
	r.mu.RLock()
	plugins := r.onManualUnlock
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnManualUnlock", func() error {
			return p.OnManualUnlock(ctx, s, amount)
		})
	}
}

// EmitScheduleRevoked emits a schedule revoked event.
func (r *Registry) EmitScheduleRevoked(ctx context.Context, s *schedule.Schedule, unvested types.Amount, forced bool) {
	r.mu.RLock()
	plugins := r.onScheduleRevoked
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnScheduleRevoked", func() error {
			return p.OnScheduleRevoked(ctx, s, unvested, forced)
		})
	}
}

// EmitTotalsUpdated emits a totals updated event.
func (r *Registry) EmitTotalsUpdated(ctx context.Context, t schedule.Totals) {
	r.mu.RLock()
	plugins := r.onTotalsUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnTotalsUpdated", func() error {
			return p.OnTotalsUpdated(ctx, t)
		})
	}
}

// EmitReductionFailed emits a reduction failed discrepancy event.
func (r *Registry) EmitReductionFailed(ctx context.Context, sid id.ScheduleID, aid id.AllocationID, amount types.Amount, err error) {
	r.mu.RLock()
	plugins := r.onReductionFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnReductionFailed", func() error {
			return p.OnReductionFailed(ctx, sid, aid, amount, err)
		})
	}
}

// EmitMintFailed emits a mint failed discrepancy event.
func (r *Registry) EmitMintFailed(ctx context.Context, sid id.ScheduleID, beneficiary types.Address, amount types.Amount, err error) {
	r.mu.RLock()
	plugins := r.onMintFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnMintFailed", func() error {
			return p.OnMintFailed(ctx, sid, beneficiary, amount, err)
		})
	}
}

// EmitPauseChanged emits a pause flag change event.
func (r *Registry) EmitPauseChanged(ctx context.Context, ledgerName string, paused bool) {
	r.mu.RLock()
	plugins := r.onPauseChanged
	r.mu.RUnlock()

	for _, p := range plugins {
		r.call(ctx, p.Name(), "OnPauseChanged", func() error {
			return p.OnPauseChanged(ctx, ledgerName, paused)
		})
	}
}

// call runs one hook with a timeout and logs failures. Plugins must never
// block or fail the accounting pipeline.
func (r *Registry) call(ctx context.Context, pluginName, hook string, fn func() error) {
	if err := r.callWithTimeout(ctx, pluginName, fn); err != nil {
		r.logger.Warn("plugin hook failed",
			"plugin", pluginName,
			"hook", hook,
			"error", err,
		)
	}
}

// callWithTimeout calls a plugin function with a timeout.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
