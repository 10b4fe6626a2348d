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
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/token"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// ScheduleLedger owns vesting schedules: their creation, the claim and
// manual-unlock release paths, and revocation. It consults the injected
// ManagerRegistry for the manager role and uses the AllocationBook
// capability for nested calls into the allocation ledger.
//
// Release accounting is persisted BEFORE the mint. A mint that fails after
// the accounting landed does not roll the accounting back; the failure is
// recorded on the event stream and surfaced as a *MintError for the
// operator to reconcile.
type ScheduleLedger struct {
	store    store.Store
	minter   token.Minter
	managers ManagerRegistry
	book     AllocationBook
	admin    types.Address
	logger   *slog.Logger
	plugins  *plugin.Registry
	clock    func() time.Time

	guard  guard
	paused bool // guarded by guard.mu
}

// NewScheduleLedger creates a schedule ledger. managers is typically the
// AllocationLedger itself; book is its Book() capability. Either may be nil
// when the deployment runs schedules standalone: a nil registry grants the
// manager role to nobody, and schedules must then be unlinked because no
// allocation calls can be made.
func NewScheduleLedger(s store.Store, minter token.Minter, managers ManagerRegistry, book AllocationBook, admin types.Address, opts ...Option) *ScheduleLedger {
	cfg := newSettings(opts)
	return &ScheduleLedger{
		store:    s,
		minter:   minter,
		managers: managers,
		book:     book,
		admin:    admin,
		logger:   cfg.logger,
		plugins:  cfg.plugins,
		clock:    cfg.clock,
	}
}

// Admin returns the administrative address.
func (l *ScheduleLedger) Admin() types.Address { return l.admin }

// Plugins returns the ledger's plugin registry.
func (l *ScheduleLedger) Plugins() *plugin.Registry { return l.plugins }

// Pause blocks all state-mutating entry points. Admin only.
func (l *ScheduleLedger) Pause(ctx context.Context, caller types.Address) error {
	return l.setPaused(ctx, caller, true)
}

// Unpause re-enables state-mutating entry points. Admin only.
func (l *ScheduleLedger) Unpause(ctx context.Context, caller types.Address) error {
	return l.setPaused(ctx, caller, false)
}

func (l *ScheduleLedger) setPaused(ctx context.Context, caller types.Address, paused bool) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if caller != l.admin {
		return ErrUnauthorized
	}
	l.paused = paused

	l.logger.Info("schedule ledger pause changed", "paused", paused)
	l.plugins.EmitPauseChanged(ctx, "schedules", paused)
	return nil
}

// Paused reports whether the ledger is paused.
func (l *ScheduleLedger) Paused() bool {
	l.guard.mu.Lock()
	defer l.guard.mu.Unlock()
	return l.paused
}

func (l *ScheduleLedger) requirePrivileged(ctx context.Context, caller types.Address) error {
	if l.paused {
		return ErrPaused
	}
	if caller == l.admin {
		return nil
	}
	if l.managers == nil {
		return ErrUnauthorized
	}
	ok, err := l.managers.IsManager(ctx, caller)
	if err != nil {
		return fmt.Errorf("vesting: manager lookup: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// ──────────────────────────────────────────────────
// Creation
// ──────────────────────────────────────────────────

// ScheduleParams describes a schedule to create. AllocationID of zero
// creates an unlinked schedule whose releases mint without drawing down
// any allocation.
type ScheduleParams struct {
	Beneficiary types.Address
	TotalAmount types.Amount
	Start       time.Time
	Cliff       time.Duration
	Duration    time.Duration
	// AllocationID optionally backs the schedule with an allocation. The
	// allocation must belong to the same beneficiary, be unrevoked, and
	// hold at least TotalAmount at creation time.
	AllocationID id.AllocationID
}

// CreateSchedule registers a vesting schedule and bumps the total-vested
// aggregate. All validation, including the linked-allocation checks, runs
// before anything is written: a failed create assigns no id and moves no
// totals.
func (l *ScheduleLedger) CreateSchedule(ctx context.Context, caller types.Address, params ScheduleParams) (id.ScheduleID, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return 0, err
	}
	if params.Beneficiary.IsZero() {
		return 0, ErrZeroAddress
	}
	if !params.TotalAmount.IsPositive() {
		return 0, ErrZeroAmount
	}
	if params.Duration <= 0 {
		return 0, ErrZeroDuration
	}
	if params.Duration < time.Second {
		return 0, ErrDurationTooShort
	}
	if params.Cliff < 0 || params.Cliff > params.Duration {
		return 0, ErrCliffTooLong
	}
	if params.Start.Before(l.clock()) {
		return 0, ErrStartInPast
	}
	if !params.AllocationID.IsZero() {
		if l.book == nil {
			return 0, ErrAllocationNotFound
		}
		a, err := l.book.Get(ctx, params.AllocationID)
		if err != nil {
			return 0, err
		}
		if a.Revoked {
			return 0, ErrAllocationRevoked
		}
		if a.Beneficiary != params.Beneficiary {
			return 0, ErrBeneficiaryMismatch
		}
		if params.TotalAmount.GreaterThan(a.Amount) {
			return 0, ErrInsufficientAllocation
		}
	}

	s := &schedule.Schedule{
		Entity:       types.NewEntity(),
		Beneficiary:  params.Beneficiary,
		TotalAmount:  params.TotalAmount,
		Released:     types.ZeroAmount,
		Start:        params.Start,
		Cliff:        params.Cliff,
		Duration:     params.Duration,
		AllocationID: params.AllocationID,
		Status:       schedule.StatusActive,
	}
	if err := l.store.CreateSchedule(ctx, s); err != nil {
		return 0, fmt.Errorf("vesting: create schedule: %w", err)
	}

	e := event.New(event.KindScheduleCreated, l.clock())
	e.Caller = caller
	e.Beneficiary = s.Beneficiary
	e.ScheduleID = s.ID
	e.AllocationID = s.AllocationID
	e.Amount = s.TotalAmount
	l.appendEvent(ctx, e)

	l.bumpTotals(ctx, func(t *schedule.Totals) {
		t.TotalVested = t.TotalVested.Add(s.TotalAmount)
	})

	l.logger.Info("schedule created",
		"schedule_id", s.ID,
		"beneficiary", s.Beneficiary,
		"total", s.TotalAmount,
		"start", s.Start,
		"cliff", s.Cliff,
		"duration", s.Duration,
	)
	l.plugins.EmitScheduleCreated(ctx, s)
	return s.ID, nil
}

// ──────────────────────────────────────────────────
// Release paths
// ──────────────────────────────────────────────────

// Releasable returns the amount currently eligible for claim on the
// schedule. Read only; available while paused.
func (l *ScheduleLedger) Releasable(ctx context.Context, sid id.ScheduleID) (types.Amount, error) {
	s, err := l.fetchSchedule(ctx, sid)
	if err != nil {
		return types.ZeroAmount, err
	}
	return s.ReleasableAt(l.clock()), nil
}

// Claim releases everything the curve has unlocked so far and mints it to
// the beneficiary. Only the beneficiary may claim; claiming twice in the
// same instant releases on the first call and fails the second with
// ErrNothingDue.
func (l *ScheduleLedger) Claim(ctx context.Context, caller types.Address, sid id.ScheduleID) (types.Amount, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return types.ZeroAmount, err
	}
	defer l.guard.exit()

	if l.paused {
		return types.ZeroAmount, ErrPaused
	}
	s, err := l.fetchSchedule(ctx, sid)
	if err != nil {
		return types.ZeroAmount, err
	}
	if caller != s.Beneficiary {
		return types.ZeroAmount, ErrNotBeneficiary
	}
	if err := l.checkActive(s); err != nil {
		return types.ZeroAmount, err
	}

	due := s.ReleasableAt(l.clock())
	if due.IsZero() {
		return types.ZeroAmount, ErrNothingDue
	}
	if err := l.release(ctx, caller, s, due, event.KindTokensReleased); err != nil {
		return types.ZeroAmount, err
	}

	l.plugins.EmitTokensReleased(ctx, s, due)
	return due, nil
}

// ManualUnlock releases an arbitrary amount ahead of the curve. Admin or
// manager only; the amount is capped by the unreleased balance, not by the
// vested position, so an unlock can run arbitrarily far ahead of time.
// Subsequent claims clamp to zero until the curve catches up.
func (l *ScheduleLedger) ManualUnlock(ctx context.Context, caller types.Address, sid id.ScheduleID, amount types.Amount) error {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrZeroAmount
	}
	s, err := l.fetchSchedule(ctx, sid)
	if err != nil {
		return err
	}
	if err := l.checkActive(s); err != nil {
		return err
	}
	if amount.GreaterThan(s.Unreleased()) {
		return ErrExceedsUnreleased
	}

	if err := l.release(ctx, caller, s, amount, event.KindManualUnlock); err != nil {
		return err
	}

	l.plugins.EmitManualUnlock(ctx, s, amount)
	return nil
}

// release is the shared accounting body of Claim and ManualUnlock. It
// persists the bumped Released (marking the schedule completed on full
// release), bumps total-claimed, appends the release event, mints, and
// finally draws the linked allocation down. The mint and the allocation
// reduction run after persistence: a mint failure surfaces as *MintError
// without rollback, and a reduction failure is recorded but swallowed so a
// stale allocation never strands a legitimate release.
func (l *ScheduleLedger) release(ctx context.Context, caller types.Address, s *schedule.Schedule, amount types.Amount, kind event.Kind) error {
	now := l.clock()

	s.Released = s.Released.Add(amount)
	if s.Released.Equal(s.TotalAmount) {
		s.Status = schedule.StatusCompleted
	}
	s.Touch()
	if err := l.store.UpdateSchedule(ctx, s); err != nil {
		return fmt.Errorf("vesting: update schedule: %w", err)
	}

	e := event.New(kind, now)
	e.Caller = caller
	e.Beneficiary = s.Beneficiary
	e.ScheduleID = s.ID
	e.AllocationID = s.AllocationID
	e.Amount = amount
	e.Remaining = s.Unreleased()
	l.appendEvent(ctx, e)

	l.bumpTotals(ctx, func(t *schedule.Totals) {
		t.TotalClaimed = t.TotalClaimed.Add(amount)
	})

	if err := l.minter.Mint(ctx, s.Beneficiary, amount); err != nil {
		me := event.New(event.KindMintFailed, now)
		me.Beneficiary = s.Beneficiary
		me.ScheduleID = s.ID
		me.Amount = amount
		me.Reason = err.Error()
		l.appendEvent(ctx, me)

		l.logger.Error("mint failed after release accounting",
			"schedule_id", s.ID,
			"beneficiary", s.Beneficiary,
			"amount", amount,
			"error", err,
		)
		l.plugins.EmitMintFailed(ctx, s.ID, s.Beneficiary, amount, err)
		return &MintError{ScheduleID: s.ID, Beneficiary: s.Beneficiary, Err: err}
	}

	if !s.AllocationID.IsZero() && l.book != nil {
		if err := l.book.Reduce(ctx, s.AllocationID, amount); err != nil {
			re := event.New(event.KindReductionFailed, now)
			re.Beneficiary = s.Beneficiary
			re.ScheduleID = s.ID
			re.AllocationID = s.AllocationID
			re.Amount = amount
			re.Reason = err.Error()
			l.appendEvent(ctx, re)

			l.logger.Warn("allocation reduction failed after release",
				"schedule_id", s.ID,
				"allocation_id", s.AllocationID,
				"amount", amount,
				"error", err,
			)
			l.plugins.EmitReductionFailed(ctx, s.ID, s.AllocationID, amount, err)
		}
	}

	l.logger.Info("tokens released",
		"schedule_id", s.ID,
		"beneficiary", s.Beneficiary,
		"amount", amount,
		"released", s.Released,
		"status", s.Status,
	)
	return nil
}

// ──────────────────────────────────────────────────
// Revocation
// ──────────────────────────────────────────────────

// Revoke terminates the schedule, forfeiting its entire unreleased balance
// including any vested-but-unclaimed portion, and revokes the linked
// allocation. The allocation revoke runs first and a failure there aborts
// the schedule mutation, so the two ledgers cannot end up half revoked.
// Returns the forfeited amount. Admin or manager only.
func (l *ScheduleLedger) Revoke(ctx context.Context, caller types.Address, sid id.ScheduleID) (types.Amount, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return types.ZeroAmount, err
	}
	defer l.guard.exit()

	if err := l.requirePrivileged(ctx, caller); err != nil {
		return types.ZeroAmount, err
	}
	s, err := l.fetchSchedule(ctx, sid)
	if err != nil {
		return types.ZeroAmount, err
	}
	if err := l.checkActive(s); err != nil {
		return types.ZeroAmount, err
	}
	if s.Unreleased().IsZero() {
		return types.ZeroAmount, ErrNothingToRevoke
	}

	if !s.AllocationID.IsZero() {
		if l.book == nil {
			return types.ZeroAmount, ErrAllocationNotFound
		}
		if err := l.book.Revoke(ctx, s.AllocationID); err != nil {
			return types.ZeroAmount, fmt.Errorf("vesting: revoke linked allocation: %w", err)
		}
	}
	return l.revokeLocked(ctx, caller, s, false)
}

// ForceRevoke terminates the schedule without touching the allocation
// ledger at all, for cleanup when the linked allocation is already gone or
// inconsistent. Returns the forfeited amount. Admin only.
func (l *ScheduleLedger) ForceRevoke(ctx context.Context, caller types.Address, sid id.ScheduleID) (types.Amount, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return types.ZeroAmount, err
	}
	defer l.guard.exit()

	if l.paused {
		return types.ZeroAmount, ErrPaused
	}
	if caller != l.admin {
		return types.ZeroAmount, ErrUnauthorized
	}
	s, err := l.fetchSchedule(ctx, sid)
	if err != nil {
		return types.ZeroAmount, err
	}
	if err := l.checkActive(s); err != nil {
		return types.ZeroAmount, err
	}
	return l.revokeLocked(ctx, caller, s, true)
}

// BatchForceRevoke force-revokes each listed schedule, tolerating bad
// entries: zero ids, missing schedules, and already-terminal schedules are
// skipped rather than failing the batch. Returns the number of schedules
// actually revoked. Admin only.
//
// Contrast with ExecuteAirdrop on the allocation ledger, which is strictly
// all or nothing: revocation is cleanup, and cleanup that aborts on the
// first stale entry would never finish.
func (l *ScheduleLedger) BatchForceRevoke(ctx context.Context, caller types.Address, sids []id.ScheduleID) (int, error) {
	ctx, err := l.guard.enter(ctx)
	if err != nil {
		return 0, err
	}
	defer l.guard.exit()

	if l.paused {
		return 0, ErrPaused
	}
	if caller != l.admin {
		return 0, ErrUnauthorized
	}
	if len(sids) == 0 {
		return 0, ErrEmptyBatch
	}

	revoked := 0
	for _, sid := range sids {
		if sid.IsZero() {
			continue
		}
		s, err := l.fetchSchedule(ctx, sid)
		if err != nil {
			l.logger.Debug("batch revoke skipping schedule", "schedule_id", sid, "error", err)
			continue
		}
		if s.Terminal() {
			continue
		}
		if _, err := l.revokeLocked(ctx, caller, s, true); err != nil {
			l.logger.Warn("batch revoke failed for schedule", "schedule_id", sid, "error", err)
			continue
		}
		revoked++
	}
	return revoked, nil
}

// revokeLocked marks the schedule revoked and unwinds its unreleased
// remainder from the total-vested aggregate. Already-claimed tokens stay
// counted as vested; everything else, including vested-but-unclaimed
// amounts, is frozen and leaves the aggregate. Caller holds the guard and
// has already authorized and settled the allocation side.
func (l *ScheduleLedger) revokeLocked(ctx context.Context, caller types.Address, s *schedule.Schedule, forced bool) (types.Amount, error) {
	now := l.clock()
	unvested := s.Unreleased()

	s.Status = schedule.StatusRevoked
	s.Touch()
	if err := l.store.UpdateSchedule(ctx, s); err != nil {
		return types.ZeroAmount, fmt.Errorf("vesting: revoke schedule: %w", err)
	}

	e := event.New(event.KindScheduleRevoked, now)
	e.Caller = caller
	e.Beneficiary = s.Beneficiary
	e.ScheduleID = s.ID
	e.AllocationID = s.AllocationID
	e.Remaining = unvested
	if forced {
		e.Reason = "forced"
	}
	l.appendEvent(ctx, e)

	if unvested.IsPositive() {
		l.bumpTotals(ctx, func(t *schedule.Totals) {
			t.TotalVested = t.TotalVested.Sub(t.TotalVested.Min(unvested))
		})
	}

	l.logger.Info("schedule revoked",
		"schedule_id", s.ID,
		"beneficiary", s.Beneficiary,
		"unvested", unvested,
		"forced", forced,
	)
	l.plugins.EmitScheduleRevoked(ctx, s, unvested, forced)
	return unvested, nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// GetSchedule retrieves a schedule by id.
func (l *ScheduleLedger) GetSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	return l.fetchSchedule(ctx, sid)
}

func (l *ScheduleLedger) fetchSchedule(ctx context.Context, sid id.ScheduleID) (*schedule.Schedule, error) {
	if sid.IsZero() {
		return nil, ErrScheduleNotFound
	}
	return l.store.GetSchedule(ctx, sid)
}

// LinkedAllocation resolves the allocation a schedule draws from.
// Schedules created with a zero allocation id mint directly and have
// none; those return ErrAllocationUnlinked.
func (l *ScheduleLedger) LinkedAllocation(ctx context.Context, sid id.ScheduleID) (*allocation.Allocation, error) {
	s, err := l.fetchSchedule(ctx, sid)
	if err != nil {
		return nil, err
	}
	if s.AllocationID.IsZero() {
		return nil, ErrAllocationUnlinked
	}
	if l.book == nil {
		return nil, ErrAllocationNotFound
	}
	return l.book.Get(ctx, s.AllocationID)
}

// SchedulesOf returns all schedules owned by beneficiary.
func (l *ScheduleLedger) SchedulesOf(ctx context.Context, beneficiary types.Address) ([]*schedule.Schedule, error) {
	return l.store.ListSchedulesByBeneficiary(ctx, beneficiary)
}

// Totals returns the process-wide running aggregates.
func (l *ScheduleLedger) Totals(ctx context.Context) (schedule.Totals, error) {
	return l.store.Totals(ctx)
}

func (l *ScheduleLedger) checkActive(s *schedule.Schedule) error {
	switch s.Status {
	case schedule.StatusRevoked:
		return ErrScheduleRevoked
	case schedule.StatusCompleted:
		return ErrScheduleCompleted
	}
	return nil
}

// bumpTotals applies fn to the running aggregates and appends the matching
// totals event. Aggregates are observational; a failing totals store is
// logged rather than failing the mutation that triggered the bump.
func (l *ScheduleLedger) bumpTotals(ctx context.Context, fn func(*schedule.Totals)) {
	t, err := l.store.Totals(ctx)
	if err != nil {
		l.logger.Error("failed to load totals", "error", err)
		return
	}
	fn(&t)
	if err := l.store.SetTotals(ctx, t); err != nil {
		l.logger.Error("failed to persist totals", "error", err)
		return
	}

	e := event.New(event.KindTotalsUpdated, l.clock())
	e.Amount = t.TotalVested
	e.Remaining = t.TotalClaimed
	l.appendEvent(ctx, e)
	l.plugins.EmitTotalsUpdated(ctx, t)
}

func (l *ScheduleLedger) appendEvent(ctx context.Context, e *event.Event) {
	if err := l.store.AppendEvent(ctx, e); err != nil {
		l.logger.Error("failed to append event",
			"kind", e.Kind,
			"error", err,
		)
	}
}
