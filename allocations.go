package vesting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/plugin"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/token"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// AllocationLedger owns the lifecycle of allocations: creation, reduction,
// revocation, and instant airdrops. It also hosts the manager registry
// consulted by the schedule ledger.
//
// Every mutating entry point runs under the ledger's serialization guard
// and enforces, in order: pause check, role check, input validation, state
// invariant check. Violating any one fails atomically with no partial
// mutation.
type AllocationLedger struct {
	store   store.Store
	minter  token.Minter
	admin   types.Address
	logger  *slog.Logger
	plugins *plugin.Registry
	clock   func() time.Time

	guard  guard
	paused bool // guarded by guard.mu
}

// NewAllocationLedger creates an allocation ledger. admin is the address
// holding the administrative capability: it manages the manager registry
// and the pause flag, and is implicitly privileged for every operation.
func NewAllocationLedger(s store.Store, minter token.Minter, admin types.Address, opts ...Option) *AllocationLedger {
	cfg := newSettings(opts)
	return &AllocationLedger{
		store:   s,
		minter:  minter,
		admin:   admin,
		logger:  cfg.logger,
		plugins: cfg.plugins,
		clock:   cfg.clock,
	}
}

// Admin returns the administrative address.
func (l *AllocationLedger) Admin() types.Address { return l.admin }

// Plugins returns the ledger's plugin registry.
func (l *AllocationLedger) Plugins() *plugin.Registry { return l.plugins }

// ──────────────────────────────────────────────────
// Gate
// ──────────────────────────────────────────────────

// Pause blocks all state-mutating entry points. Reads stay available.
// Admin only.
func (l *AllocationLedger) Pause(ctx context.Context, caller types.Address) error {
	return l.setPaused(ctx, caller, true)
}

// Unpause re-enables state-mutating entry points. Admin only.
func (l *AllocationLedger) Unpause(ctx context.Context, caller types.Address) error {
	return l.setPaused(ctx, caller, false)
}

func (l *AllocationLedger) setPaused(ctx context.Context, caller types.Address, paused bool) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if caller != l.admin {
		return ErrUnauthorized
	}
	l.paused = paused

	l.logger.Info("allocation ledger pause changed", "paused", paused)
	l.plugins.EmitPauseChanged(ctx, "allocations", paused)
	return nil
}

// Paused reports whether the ledger is paused.
func (l *AllocationLedger) Paused() bool {
	l.guard.mu.Lock()
	defer l.guard.mu.Unlock()
	return l.paused
}

// requirePrivileged enforces the pause gate and the admin-or-manager role,
// in that order.
func (l *AllocationLedger) requirePrivileged(ctx context.Context, caller types.Address) error {
	if l.paused {
		return ErrPaused
	}
	if caller == l.admin {
		return nil
	}
	ok, err := l.store.IsManager(ctx, caller)
	if err != nil {
		return fmt.Errorf("vesting: manager lookup: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// ──────────────────────────────────────────────────
// Manager registry
// ──────────────────────────────────────────────────

// AddManager grants the manager capability to addr. Admin only; an address
// cannot add itself.
func (l *AllocationLedger) AddManager(ctx context.Context, caller, addr types.Address) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if l.paused {
		return ErrPaused
	}
	if caller != l.admin {
		return ErrUnauthorized
	}
	if addr.IsZero() {
		return ErrZeroAddress
	}
	if addr == caller {
		return ErrSelfManagedForbidden
	}
	ok, err := l.store.IsManager(ctx, addr)
	if err != nil {
		return fmt.Errorf("vesting: manager lookup: %w", err)
	}
	if ok {
		return ErrAlreadyManager
	}
	if err := l.store.AddManager(ctx, addr); err != nil {
		return fmt.Errorf("vesting: add manager: %w", err)
	}

	e := event.New(event.KindManagerAdded, l.clock())
	e.Caller = caller
	e.Beneficiary = addr
	l.appendEvent(ctx, e)

	l.logger.Info("manager added", "address", addr)
	l.plugins.EmitManagerChanged(ctx, addr, true)
	return nil
}

// RemoveManager withdraws the manager capability from addr. Admin only; an
// address cannot remove itself.
func (l *AllocationLedger) RemoveManager(ctx context.Context, caller, addr types.Address) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if l.paused {
		return ErrPaused
	}
	if caller != l.admin {
		return ErrUnauthorized
	}
	if addr.IsZero() {
		return ErrZeroAddress
	}
	if addr == caller {
		return ErrSelfManagedForbidden
	}
	ok, err := l.store.IsManager(ctx, addr)
	if err != nil {
		return fmt.Errorf("vesting: manager lookup: %w", err)
	}
	if !ok {
		return ErrNotManager
	}
	if err := l.store.RemoveManager(ctx, addr); err != nil {
		return fmt.Errorf("vesting: remove manager: %w", err)
	}

	e := event.New(event.KindManagerRemoved, l.clock())
	e.Caller = caller
	e.Beneficiary = addr
	l.appendEvent(ctx, e)

	l.logger.Info("manager removed", "address", addr)
	l.plugins.EmitManagerChanged(ctx, addr, false)
	return nil
}

// IsManager implements ManagerRegistry. The admin is not a manager by this
// predicate; callers that accept either capability check the admin
// separately.
func (l *AllocationLedger) IsManager(ctx context.Context, addr types.Address) (bool, error) {
	return l.store.IsManager(ctx, addr)
}

// Managers returns the registered manager addresses.
func (l *AllocationLedger) Managers(ctx context.Context) ([]types.Address, error) {
	return l.store.ListManagers(ctx)
}

// ──────────────────────────────────────────────────
// Allocations
// ──────────────────────────────────────────────────

// CreateAllocation reserves amount for beneficiary and returns the new
// allocation id. No tokens move: the allocation is a bookkeeping
// reservation a schedule may later draw against.
func (l *AllocationLedger) CreateAllocation(ctx context.Context, caller, beneficiary types.Address, amount types.Amount) (id.AllocationID, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return 0, err
	}
	if beneficiary.IsZero() {
		return 0, ErrZeroAddress
	}
	if !amount.IsPositive() {
		return 0, ErrZeroAmount
	}

	a := &allocation.Allocation{
		Entity:      types.NewEntity(),
		Beneficiary: beneficiary,
		Amount:      amount,
	}
	if err := l.store.CreateAllocation(ctx, a); err != nil {
		return 0, fmt.Errorf("vesting: create allocation: %w", err)
	}

	e := event.New(event.KindAllocationCreated, l.clock())
	e.Caller = caller
	e.Beneficiary = beneficiary
	e.AllocationID = a.ID
	e.Amount = amount
	l.appendEvent(ctx, e)

	l.logger.Info("allocation created",
		"allocation_id", a.ID,
		"beneficiary", beneficiary,
		"amount", amount,
	)
	l.plugins.EmitAllocationCreated(ctx, a)
	return a.ID, nil
}

// RevokeAllocation marks the allocation revoked. The amount is left in
// place as an audit record but is unusable henceforth.
func (l *AllocationLedger) RevokeAllocation(ctx context.Context, caller types.Address, aid id.AllocationID) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return err
	}
	return l.revokeAllocationLocked(ctx, caller, aid)
}

// revokeAllocationLocked is the revocation body shared with the engine
// capability path. Caller holds the guard.
func (l *AllocationLedger) revokeAllocationLocked(ctx context.Context, caller types.Address, aid id.AllocationID) error {
	a, err := l.fetchAllocation(ctx, aid)
	if err != nil {
		return err
	}
	if a.Revoked {
		return ErrAllocationRevoked
	}

	a.Revoked = true
	a.Touch()
	if err := l.store.UpdateAllocation(ctx, a); err != nil {
		return fmt.Errorf("vesting: revoke allocation: %w", err)
	}

	e := event.New(event.KindAllocationRevoked, l.clock())
	e.Caller = caller
	e.Beneficiary = a.Beneficiary
	e.AllocationID = aid
	e.Remaining = a.Amount
	l.appendEvent(ctx, e)

	l.logger.Info("allocation revoked",
		"allocation_id", aid,
		"remaining", a.Amount,
	)
	l.plugins.EmitAllocationRevoked(ctx, a)
	return nil
}

// ReduceAllocation shrinks the allocation's remaining balance. The schedule
// ledger calls this (through the Book capability) after a release so the
// allocation stays in sync with what was actually minted against it.
func (l *AllocationLedger) ReduceAllocation(ctx context.Context, caller types.Address, aid id.AllocationID, amount types.Amount) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return err
	}
	return l.reduceAllocationLocked(ctx, caller, aid, amount)
}

func (l *AllocationLedger) reduceAllocationLocked(ctx context.Context, caller types.Address, aid id.AllocationID, amount types.Amount) error {
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	a, err := l.fetchAllocation(ctx, aid)
	if err != nil {
		return err
	}
	if a.Revoked {
		return ErrAllocationRevoked
	}
	if amount.GreaterThan(a.Amount) {
		return ErrInsufficientAllocation
	}

	a.Amount = a.Amount.Sub(amount)
	a.Touch()
	if err := l.store.UpdateAllocation(ctx, a); err != nil {
		return fmt.Errorf("vesting: reduce allocation: %w", err)
	}

	e := event.New(event.KindAllocationReduced, l.clock())
	e.Caller = caller
	e.Beneficiary = a.Beneficiary
	e.AllocationID = aid
	e.Amount = amount
	e.Remaining = a.Amount
	l.appendEvent(ctx, e)

	l.logger.Debug("allocation reduced",
		"allocation_id", aid,
		"amount", amount,
		"remaining", a.Amount,
	)
	l.plugins.EmitAllocationReduced(ctx, a, amount)
	return nil
}

// GetAllocation retrieves an allocation by id.
func (l *AllocationLedger) GetAllocation(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	return l.fetchAllocation(ctx, aid)
}

func (l *AllocationLedger) fetchAllocation(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	if aid.IsZero() {
		return nil, ErrAllocationNotFound
	}
	return l.store.GetAllocation(ctx, aid)
}

// AllocationsOf returns all allocations owned by beneficiary.
func (l *AllocationLedger) AllocationsOf(ctx context.Context, beneficiary types.Address) ([]*allocation.Allocation, error) {
	return l.store.ListAllocationsByBeneficiary(ctx, beneficiary)
}

// ──────────────────────────────────────────────────
// Airdrops
// ──────────────────────────────────────────────────

// ExecuteAirdrop creates an allocation and immediately mints for every
// beneficiary/amount pair: an airdrop is an instant, fully-vested
// allocation that bypasses the time curve entirely.
//
// The batch is one logical operation: every entry is validated before any
// effect, so a single invalid entry fails the whole call with nothing
// written. Contrast with the schedule ledger's batch force-revoke, which
// is deliberately per-item tolerant.
//
// All allocations and the airdrop record are persisted before the first
// mint. A store failure mid-batch revokes the allocations already created
// and fails the call with no tokens moved. A mint failure follows the
// release paths' doctrine: the persisted accounting stays, a mint_failed
// event records the break, and the call returns *MintError identifying
// the entry; entries after it are left unminted for the operator to
// reconcile.
func (l *AllocationLedger) ExecuteAirdrop(ctx context.Context, caller types.Address, beneficiaries []types.Address, amounts []types.Amount) (id.AirdropID, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return 0, err
	}
	if len(beneficiaries) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(beneficiaries) != len(amounts) {
		return 0, ErrLengthMismatch
	}
	for i := range beneficiaries {
		if beneficiaries[i].IsZero() {
			return 0, fmt.Errorf("%w: entry %d", ErrZeroAddress, i)
		}
		if !amounts[i].IsPositive() {
			return 0, fmt.Errorf("%w: entry %d", ErrZeroAmount, i)
		}
	}

	drop := &allocation.Airdrop{
		Entity:  types.NewEntity(),
		Caller:  caller,
		Entries: make([]allocation.AirdropEntry, 0, len(beneficiaries)),
	}
	created := make([]*allocation.Allocation, 0, len(beneficiaries))
	unwind := func() {
		for _, a := range created {
			a.Revoked = true
			a.Touch()
			if err := l.store.UpdateAllocation(ctx, a); err != nil {
				l.logger.Warn("airdrop unwind failed for allocation",
					"allocation_id", a.ID, "error", err)
			}
		}
	}
	for i := range beneficiaries {
		a := &allocation.Allocation{
			Entity:      types.NewEntity(),
			Beneficiary: beneficiaries[i],
			Amount:      amounts[i],
		}
		if err := l.store.CreateAllocation(ctx, a); err != nil {
			unwind()
			return 0, fmt.Errorf("vesting: airdrop allocation %d: %w", i, err)
		}
		created = append(created, a)
		drop.Entries = append(drop.Entries, allocation.AirdropEntry{
			AllocationID: a.ID,
			Beneficiary:  beneficiaries[i],
			Amount:       amounts[i],
		})
	}
	if err := l.store.CreateAirdrop(ctx, drop); err != nil {
		unwind()
		return 0, fmt.Errorf("vesting: record airdrop: %w", err)
	}

	e := event.New(event.KindAirdropExecuted, l.clock())
	e.Caller = caller
	e.AirdropID = drop.ID
	e.Amount = drop.Total()
	l.appendEvent(ctx, e)

	for i, entry := range drop.Entries {
		if err := l.minter.Mint(ctx, entry.Beneficiary, entry.Amount); err != nil {
			me := event.New(event.KindMintFailed, l.clock())
			me.Beneficiary = entry.Beneficiary
			me.AllocationID = entry.AllocationID
			me.AirdropID = drop.ID
			me.Amount = entry.Amount
			me.Reason = err.Error()
			l.appendEvent(ctx, me)

			l.logger.Error("airdrop mint failed after accounting",
				"airdrop_id", drop.ID,
				"entry", i,
				"allocation_id", entry.AllocationID,
				"beneficiary", entry.Beneficiary,
				"amount", entry.Amount,
				"error", err,
			)
			l.plugins.EmitMintFailed(ctx, 0, entry.Beneficiary, entry.Amount, err)
			return drop.ID, &MintError{
				AllocationID: entry.AllocationID,
				Beneficiary:  entry.Beneficiary,
				Err:          err,
			}
		}
	}

	l.logger.Info("airdrop executed",
		"airdrop_id", drop.ID,
		"entries", len(drop.Entries),
		"total", e.Amount,
	)
	l.plugins.EmitAirdropExecuted(ctx, drop)
	return drop.ID, nil
}

// GetAirdrop retrieves an airdrop record by id.
func (l *AllocationLedger) GetAirdrop(ctx context.Context, aid id.AirdropID) (*allocation.Airdrop, error) {
	return l.store.GetAirdrop(ctx, aid)
}

// ──────────────────────────────────────────────────
// Engine capability
// ──────────────────────────────────────────────────

// Book returns the engine-facing capability for the schedule ledger's
// nested cross-ledger calls. The capability bypasses the caller role check
// (holding it is the authorization) but keeps every state invariant.
func (l *AllocationLedger) Book() AllocationBook {
	return &allocationBook{ledger: l}
}

type allocationBook struct {
	ledger *AllocationLedger
}

func (b *allocationBook) Get(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	return b.ledger.GetAllocation(ctx, aid)
}

func (b *allocationBook) Reduce(ctx context.Context, aid id.AllocationID, amount types.Amount) error {
	ctx, err := b.ledger.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer b.ledger.guard.exit()

	if b.ledger.paused {
		return ErrPaused
	}
	return b.ledger.reduceAllocationLocked(ctx, b.ledger.admin, aid, amount)
}

func (b *allocationBook) Revoke(ctx context.Context, aid id.AllocationID) error {
	ctx, err := b.ledger.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer b.ledger.guard.exit()

	if b.ledger.paused {
		return ErrPaused
	}
	return b.ledger.revokeAllocationLocked(ctx, b.ledger.admin, aid)
}

// appendEvent records an audit event. Event persistence is part of the
// mutation's atomic unit; a failing event store is logged, not propagated,
// so the accounting mutation that already happened stays authoritative.
func (l *AllocationLedger) appendEvent(ctx context.Context, e *event.Event) {
	if err := l.store.AppendEvent(ctx, e); err != nil {
		l.logger.Error("failed to append event",
			"kind", e.Kind,
			"error", err,
		)
	}
}
