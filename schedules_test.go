package vesting_test

import (
	"context"
	"errors"
	"testing"
	"time"

	vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/event"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/schedule"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store/memory"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/token"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// fakeClock is a mutable time source shared by both ledgers under test.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type vestingFixture struct {
	clock       *fakeClock
	store       *memory.Store
	tokens      *token.Ledger
	allocations *vesting.AllocationLedger
	schedules   *vesting.ScheduleLedger
	start       time.Time
}

func newVestingFixture(t *testing.T) *vestingFixture {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	st := memory.New()
	tok := token.NewLedger()
	alloc := vesting.NewAllocationLedger(st, tok, admin, vesting.WithClock(clock.Now))
	sched := vesting.NewScheduleLedger(st, tok, alloc, alloc.Book(), admin, vesting.WithClock(clock.Now))
	return &vestingFixture{
		clock:       clock,
		store:       st,
		tokens:      tok,
		allocations: alloc,
		schedules:   sched,
		start:       start,
	}
}

func (f *vestingFixture) params(total uint64, allocID id.AllocationID) vesting.ScheduleParams {
	return vesting.ScheduleParams{
		Beneficiary:  alice,
		TotalAmount:  vesting.NewAmount(total),
		Start:        f.start,
		Cliff:        100 * time.Second,
		Duration:     1000 * time.Second,
		AllocationID: allocID,
	}
}

func (f *vestingFixture) mustAllocate(t *testing.T, beneficiary types.Address, total uint64) id.AllocationID {
	t.Helper()
	aid, err := f.allocations.CreateAllocation(context.Background(), admin, beneficiary, vesting.NewAmount(total))
	if err != nil {
		t.Fatal(err)
	}
	return aid
}

func TestCreateSchedule(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 1000)
	sid, err := f.schedules.CreateSchedule(ctx, admin, f.params(1000, aid))
	if err != nil {
		t.Fatal(err)
	}
	if sid != 1 {
		t.Errorf("first id: got %v, want 1", sid)
	}

	s, err := f.schedules.GetSchedule(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if s.Status != schedule.StatusActive || !s.Released.IsZero() || s.AllocationID != aid {
		t.Errorf("got %+v", s)
	}

	totals, _ := f.schedules.Totals(ctx)
	if !totals.TotalVested.Equal(vesting.NewAmount(1000)) {
		t.Errorf("total vested: got %v, want 1000", totals.TotalVested)
	}
	if !totals.TotalClaimed.IsZero() {
		t.Errorf("total claimed: got %v, want 0", totals.TotalClaimed)
	}
}

func TestCreateScheduleUnlinked(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, err := f.schedules.CreateSchedule(ctx, admin, f.params(500, 0))
	if err != nil {
		t.Fatal(err)
	}
	s, _ := f.schedules.GetSchedule(ctx, sid)
	if !s.AllocationID.IsZero() {
		t.Errorf("allocation id: got %v, want 0", s.AllocationID)
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 500)
	bobAid := f.mustAllocate(t, bob, 500)
	revokedAid := f.mustAllocate(t, alice, 500)
	if err := f.allocations.RevokeAllocation(ctx, admin, revokedAid); err != nil {
		t.Fatal(err)
	}

	mutate := func(fn func(*vesting.ScheduleParams)) vesting.ScheduleParams {
		p := f.params(500, aid)
		fn(&p)
		return p
	}

	tests := []struct {
		name    string
		caller  types.Address
		params  vesting.ScheduleParams
		wantErr error
	}{
		{"Unprivileged caller", mallory, f.params(500, aid), vesting.ErrUnauthorized},
		{"Zero beneficiary", admin, mutate(func(p *vesting.ScheduleParams) { p.Beneficiary = types.ZeroAddress }), vesting.ErrZeroAddress},
		{"Zero amount", admin, mutate(func(p *vesting.ScheduleParams) { p.TotalAmount = vesting.ZeroAmount }), vesting.ErrZeroAmount},
		{"Zero duration", admin, mutate(func(p *vesting.ScheduleParams) { p.Duration = 0 }), vesting.ErrZeroDuration},
		{"Sub-second duration", admin, mutate(func(p *vesting.ScheduleParams) { p.Duration = 500 * time.Millisecond }), vesting.ErrDurationTooShort},
		{"Cliff exceeds duration", admin, mutate(func(p *vesting.ScheduleParams) { p.Cliff = 2000 * time.Second }), vesting.ErrCliffTooLong},
		{"Start in past", admin, mutate(func(p *vesting.ScheduleParams) { p.Start = f.start.Add(-time.Second) }), vesting.ErrStartInPast},
		{"Missing allocation", admin, mutate(func(p *vesting.ScheduleParams) { p.AllocationID = 999 }), vesting.ErrAllocationNotFound},
		{"Revoked allocation", admin, mutate(func(p *vesting.ScheduleParams) { p.AllocationID = revokedAid }), vesting.ErrAllocationRevoked},
		{"Foreign allocation", admin, mutate(func(p *vesting.ScheduleParams) { p.AllocationID = bobAid }), vesting.ErrBeneficiaryMismatch},
		{"Exceeds allocation", admin, mutate(func(p *vesting.ScheduleParams) { p.TotalAmount = vesting.NewAmount(501) }), vesting.ErrInsufficientAllocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.schedules.CreateSchedule(ctx, tt.caller, tt.params); !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}

	// None of the failed creates consumed an id or moved the totals.
	sid, err := f.schedules.CreateSchedule(ctx, admin, f.params(500, aid))
	if err != nil {
		t.Fatal(err)
	}
	if sid != 1 {
		t.Errorf("id after failed creates: got %v, want 1", sid)
	}
	totals, _ := f.schedules.Totals(ctx)
	if !totals.TotalVested.Equal(vesting.NewAmount(500)) {
		t.Errorf("total vested: got %v, want 500", totals.TotalVested)
	}
}

func TestClaim(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 1000)
	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, aid))

	// Before the cliff nothing is due.
	f.clock.Advance(50 * time.Second)
	if _, err := f.schedules.Claim(ctx, alice, sid); !errors.Is(err, vesting.ErrNothingDue) {
		t.Errorf("before cliff: got %v", err)
	}

	// Only the beneficiary may claim.
	f.clock.Advance(200 * time.Second) // t = 250s
	if _, err := f.schedules.Claim(ctx, admin, sid); !errors.Is(err, vesting.ErrNotBeneficiary) {
		t.Errorf("admin claim: got %v", err)
	}
	if _, err := f.schedules.Claim(ctx, mallory, sid); !errors.Is(err, vesting.ErrNotBeneficiary) {
		t.Errorf("stranger claim: got %v", err)
	}

	released, err := f.schedules.Claim(ctx, alice, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !released.Equal(vesting.NewAmount(250)) {
		t.Errorf("released: got %v, want 250", released)
	}
	bal, _ := f.tokens.BalanceOf(ctx, alice)
	if !bal.Equal(vesting.NewAmount(250)) {
		t.Errorf("balance: got %v, want 250", bal)
	}

	// The linked allocation is drawn down in step.
	a, _ := f.allocations.GetAllocation(ctx, aid)
	if !a.Amount.Equal(vesting.NewAmount(750)) {
		t.Errorf("allocation: got %v, want 750", a.Amount)
	}

	// Claiming again in the same instant finds nothing due.
	if _, err := f.schedules.Claim(ctx, alice, sid); !errors.Is(err, vesting.ErrNothingDue) {
		t.Errorf("double claim: got %v", err)
	}

	// Totals track the claim.
	totals, _ := f.schedules.Totals(ctx)
	if !totals.TotalClaimed.Equal(vesting.NewAmount(250)) {
		t.Errorf("total claimed: got %v, want 250", totals.TotalClaimed)
	}
}

func TestClaimCompletesSchedule(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))

	f.clock.Advance(1000 * time.Second)
	released, err := f.schedules.Claim(ctx, alice, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !released.Equal(vesting.NewAmount(1000)) {
		t.Errorf("released: got %v, want 1000", released)
	}

	s, _ := f.schedules.GetSchedule(ctx, sid)
	if s.Status != schedule.StatusCompleted {
		t.Errorf("status: got %s, want completed", s.Status)
	}

	// A completed schedule refuses further claims with its own error.
	if _, err := f.schedules.Claim(ctx, alice, sid); !errors.Is(err, vesting.ErrScheduleCompleted) {
		t.Errorf("claim on completed: got %v", err)
	}
}

func TestReleasable(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))

	f.clock.Advance(500 * time.Second)
	due, err := f.schedules.Releasable(ctx, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !due.Equal(vesting.NewAmount(500)) {
		t.Errorf("got %v, want 500", due)
	}

	if _, err := f.schedules.Releasable(ctx, 999); !errors.Is(err, vesting.ErrScheduleNotFound) {
		t.Errorf("missing: got %v", err)
	}
}

func TestLinkedAllocation(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 1000)
	linked, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, aid))
	direct, _ := f.schedules.CreateSchedule(ctx, admin, f.params(100, 0))

	a, err := f.schedules.LinkedAllocation(ctx, linked)
	if err != nil {
		t.Fatal(err)
	}
	if a.ID != aid {
		t.Errorf("got allocation %v, want %v", a.ID, aid)
	}
	if _, err := f.schedules.LinkedAllocation(ctx, direct); !errors.Is(err, vesting.ErrAllocationUnlinked) {
		t.Errorf("direct schedule: got %v", err)
	}
	if _, err := f.schedules.LinkedAllocation(ctx, 999); !errors.Is(err, vesting.ErrScheduleNotFound) {
		t.Errorf("missing schedule: got %v", err)
	}
}

func TestManualUnlock(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 1000)
	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, aid))

	// Privileged only.
	if err := f.schedules.ManualUnlock(ctx, alice, sid, vesting.NewAmount(100)); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("beneficiary unlock: got %v", err)
	}

	// Unlock runs ahead of the curve, before the cliff even.
	if err := f.schedules.ManualUnlock(ctx, admin, sid, vesting.NewAmount(400)); err != nil {
		t.Fatal(err)
	}
	bal, _ := f.tokens.BalanceOf(ctx, alice)
	if !bal.Equal(vesting.NewAmount(400)) {
		t.Errorf("balance: got %v, want 400", bal)
	}

	// Bounded by the unreleased balance.
	if err := f.schedules.ManualUnlock(ctx, admin, sid, vesting.NewAmount(601)); !errors.Is(err, vesting.ErrExceedsUnreleased) {
		t.Errorf("over unlock: got %v", err)
	}
	if err := f.schedules.ManualUnlock(ctx, admin, sid, vesting.ZeroAmount); !errors.Is(err, vesting.ErrZeroAmount) {
		t.Errorf("zero unlock: got %v", err)
	}

	// The curve has to catch up before a claim releases more.
	f.clock.Advance(250 * time.Second) // vested 250 < released 400
	if _, err := f.schedules.Claim(ctx, alice, sid); !errors.Is(err, vesting.ErrNothingDue) {
		t.Errorf("claim behind unlock: got %v", err)
	}
	f.clock.Advance(250 * time.Second) // vested 500
	released, err := f.schedules.Claim(ctx, alice, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !released.Equal(vesting.NewAmount(100)) {
		t.Errorf("catch-up claim: got %v, want 100", released)
	}
}

func TestManualUnlockCompletesOnFullRelease(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))

	if err := f.schedules.ManualUnlock(ctx, admin, sid, vesting.NewAmount(1000)); err != nil {
		t.Fatal(err)
	}
	s, _ := f.schedules.GetSchedule(ctx, sid)
	if s.Status != schedule.StatusCompleted {
		t.Errorf("status: got %s, want completed", s.Status)
	}
}

// failMinter rejects every mint.
type failMinter struct{}

func (failMinter) Mint(context.Context, types.Address, types.Amount) error {
	return errors.New("rpc unavailable")
}

func TestClaimMintFailureKeepsAccounting(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	st := memory.New()
	sched := vesting.NewScheduleLedger(st, failMinter{}, nil, nil, admin, vesting.WithClock(clock.Now))
	ctx := context.Background()

	sid, err := sched.CreateSchedule(ctx, admin, vesting.ScheduleParams{
		Beneficiary: alice,
		TotalAmount: vesting.NewAmount(1000),
		Start:       start,
		Duration:    1000 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(500 * time.Second)
	_, err = sched.Claim(ctx, alice, sid)
	var me *vesting.MintError
	if !errors.As(err, &me) {
		t.Fatalf("got %v, want *MintError", err)
	}
	if me.ScheduleID != sid || me.Beneficiary != alice {
		t.Errorf("mint error fields: %+v", me)
	}

	// The accounting is not rolled back.
	s, _ := sched.GetSchedule(ctx, sid)
	if !s.Released.Equal(vesting.NewAmount(500)) {
		t.Errorf("released: got %v, want 500", s.Released)
	}

	// And the failure is on the event stream.
	failures, _ := st.ListEvents(ctx, event.ListOpts{Kind: event.KindMintFailed})
	if len(failures) != 1 {
		t.Fatalf("mint_failed events: got %d, want 1", len(failures))
	}
	if failures[0].ScheduleID != sid {
		t.Errorf("event schedule id: got %v", failures[0].ScheduleID)
	}
}

// failReduceBook reads through to a real allocation but refuses reductions.
type failReduceBook struct {
	inner vesting.AllocationBook
}

func (b failReduceBook) Get(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error) {
	return b.inner.Get(ctx, aid)
}

func (b failReduceBook) Reduce(context.Context, id.AllocationID, types.Amount) error {
	return errors.New("allocation store unavailable")
}

func (b failReduceBook) Revoke(ctx context.Context, aid id.AllocationID) error {
	return b.inner.Revoke(ctx, aid)
}

func TestClaimSurvivesReductionFailure(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	st := memory.New()
	tok := token.NewLedger()
	alloc := vesting.NewAllocationLedger(st, tok, admin, vesting.WithClock(clock.Now))
	sched := vesting.NewScheduleLedger(st, tok, alloc, failReduceBook{inner: alloc.Book()}, admin, vesting.WithClock(clock.Now))
	ctx := context.Background()

	aid, _ := alloc.CreateAllocation(ctx, admin, alice, vesting.NewAmount(1000))
	sid, _ := sched.CreateSchedule(ctx, admin, vesting.ScheduleParams{
		Beneficiary:  alice,
		TotalAmount:  vesting.NewAmount(1000),
		Start:        start,
		Duration:     1000 * time.Second,
		AllocationID: aid,
	})

	clock.Advance(500 * time.Second)
	released, err := sched.Claim(ctx, alice, sid)
	if err != nil {
		t.Fatalf("claim should swallow the reduction failure: %v", err)
	}
	if !released.Equal(vesting.NewAmount(500)) {
		t.Errorf("released: got %v, want 500", released)
	}

	// The discrepancy is recorded rather than propagated.
	failures, _ := st.ListEvents(ctx, event.ListOpts{Kind: event.KindReductionFailed})
	if len(failures) != 1 {
		t.Fatalf("reduction_failed events: got %d, want 1", len(failures))
	}
	a, _ := alloc.GetAllocation(ctx, aid)
	if !a.Amount.Equal(vesting.NewAmount(1000)) {
		t.Errorf("allocation untouched: got %v", a.Amount)
	}
}

func TestRevoke(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 1000)
	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, aid))

	f.clock.Advance(250 * time.Second)
	if _, err := f.schedules.Claim(ctx, alice, sid); err != nil {
		t.Fatal(err)
	}

	if _, err := f.schedules.Revoke(ctx, mallory, sid); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("unprivileged revoke: got %v", err)
	}
	forfeited, err := f.schedules.Revoke(ctx, admin, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !forfeited.Equal(vesting.NewAmount(750)) {
		t.Errorf("forfeited: got %v, want 750", forfeited)
	}

	s, _ := f.schedules.GetSchedule(ctx, sid)
	if s.Status != schedule.StatusRevoked {
		t.Errorf("status: got %s", s.Status)
	}

	// The linked allocation is revoked in the same operation.
	a, _ := f.allocations.GetAllocation(ctx, aid)
	if !a.Revoked {
		t.Error("allocation not revoked")
	}

	// Even vested-but-unclaimed amounts are frozen.
	f.clock.Advance(250 * time.Second)
	if _, err := f.schedules.Claim(ctx, alice, sid); !errors.Is(err, vesting.ErrScheduleRevoked) {
		t.Errorf("claim after revoke: got %v", err)
	}
	if err := f.schedules.ManualUnlock(ctx, admin, sid, vesting.NewAmount(1)); !errors.Is(err, vesting.ErrScheduleRevoked) {
		t.Errorf("unlock after revoke: got %v", err)
	}

	// Unvested remainder (1000 - 250 vested) left the running total.
	totals, _ := f.schedules.Totals(ctx)
	if !totals.TotalVested.Equal(vesting.NewAmount(250)) {
		t.Errorf("total vested: got %v, want 250", totals.TotalVested)
	}
	if !totals.TotalClaimed.Equal(vesting.NewAmount(250)) {
		t.Errorf("total claimed: got %v, want 250", totals.TotalClaimed)
	}
}

func TestRevokePropagatesAllocationFailure(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	aid := f.mustAllocate(t, alice, 1000)
	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, aid))

	// Revoking the allocation out from under the schedule poisons Revoke.
	if err := f.allocations.RevokeAllocation(ctx, admin, aid); err != nil {
		t.Fatal(err)
	}
	if _, err := f.schedules.Revoke(ctx, admin, sid); !errors.Is(err, vesting.ErrAllocationRevoked) {
		t.Errorf("got %v, want ErrAllocationRevoked", err)
	}

	// The schedule stayed active; ForceRevoke is the cleanup path.
	s, _ := f.schedules.GetSchedule(ctx, sid)
	if s.Status != schedule.StatusActive {
		t.Errorf("status: got %s, want active", s.Status)
	}
	if _, err := f.schedules.ForceRevoke(ctx, admin, sid); err != nil {
		t.Fatal(err)
	}
	s, _ = f.schedules.GetSchedule(ctx, sid)
	if s.Status != schedule.StatusRevoked {
		t.Errorf("status after force: got %s", s.Status)
	}
}

func TestRevokeNothingToRevoke(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))
	f.clock.Advance(1000 * time.Second)
	if _, err := f.schedules.Claim(ctx, alice, sid); err != nil {
		t.Fatal(err)
	}

	// Fully released and completed: revoke has nothing left to take.
	if _, err := f.schedules.Revoke(ctx, admin, sid); !errors.Is(err, vesting.ErrScheduleCompleted) {
		t.Errorf("got %v", err)
	}
}

func TestForceRevokeAdminOnly(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	if err := f.allocations.AddManager(ctx, admin, manager); err != nil {
		t.Fatal(err)
	}
	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))

	if _, err := f.schedules.ForceRevoke(ctx, manager, sid); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("manager force revoke: got %v", err)
	}
	forfeited, err := f.schedules.ForceRevoke(ctx, admin, sid)
	if err != nil {
		t.Fatal(err)
	}
	if !forfeited.Equal(vesting.NewAmount(1000)) {
		t.Errorf("forfeited: got %v, want 1000", forfeited)
	}
	if _, err := f.schedules.ForceRevoke(ctx, admin, sid); !errors.Is(err, vesting.ErrScheduleRevoked) {
		t.Errorf("double force revoke: got %v", err)
	}
}

func TestBatchForceRevoke(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid1, _ := f.schedules.CreateSchedule(ctx, admin, f.params(100, 0))
	sid2, _ := f.schedules.CreateSchedule(ctx, admin, f.params(200, 0))
	sid3, _ := f.schedules.CreateSchedule(ctx, admin, f.params(300, 0))
	if _, err := f.schedules.ForceRevoke(ctx, admin, sid3); err != nil {
		t.Fatal(err)
	}

	// Bad entries are skipped, good ones are revoked, and the count
	// reports only what actually changed.
	n, err := f.schedules.BatchForceRevoke(ctx, admin,
		[]id.ScheduleID{sid1, 0, 999, sid2, sid3})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("revoked count: got %d, want 2", n)
	}
	for _, sid := range []id.ScheduleID{sid1, sid2, sid3} {
		s, _ := f.schedules.GetSchedule(ctx, sid)
		if s.Status != schedule.StatusRevoked {
			t.Errorf("schedule %v: got %s", sid, s.Status)
		}
	}

	if _, err := f.schedules.BatchForceRevoke(ctx, admin, nil); !errors.Is(err, vesting.ErrEmptyBatch) {
		t.Errorf("empty batch: got %v", err)
	}
	if _, err := f.schedules.BatchForceRevoke(ctx, mallory, []id.ScheduleID{sid1}); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("unprivileged: got %v", err)
	}
}

func TestSchedulePauseGate(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))
	f.clock.Advance(500 * time.Second)

	if err := f.schedules.Pause(ctx, admin); err != nil {
		t.Fatal(err)
	}

	if _, err := f.schedules.CreateSchedule(ctx, admin, f.params(10, 0)); !errors.Is(err, vesting.ErrPaused) {
		t.Errorf("create while paused: got %v", err)
	}
	if _, err := f.schedules.Claim(ctx, alice, sid); !errors.Is(err, vesting.ErrPaused) {
		t.Errorf("claim while paused: got %v", err)
	}
	if _, err := f.schedules.Revoke(ctx, admin, sid); !errors.Is(err, vesting.ErrPaused) {
		t.Errorf("revoke while paused: got %v", err)
	}

	// Reads stay available while paused.
	if _, err := f.schedules.Releasable(ctx, sid); err != nil {
		t.Errorf("releasable while paused: %v", err)
	}

	// The allocation ledger's gate is independent.
	if _, err := f.allocations.CreateAllocation(ctx, admin, alice, vesting.NewAmount(1)); err != nil {
		t.Errorf("allocation ledger affected by schedule pause: %v", err)
	}

	if err := f.schedules.Unpause(ctx, admin); err != nil {
		t.Fatal(err)
	}
	if _, err := f.schedules.Claim(ctx, alice, sid); err != nil {
		t.Errorf("claim after unpause: %v", err)
	}
}

func TestScheduleEventsAppended(t *testing.T) {
	f := newVestingFixture(t)
	ctx := context.Background()

	sid, _ := f.schedules.CreateSchedule(ctx, admin, f.params(1000, 0))
	f.clock.Advance(500 * time.Second)
	if _, err := f.schedules.Claim(ctx, alice, sid); err != nil {
		t.Fatal(err)
	}
	if _, err := f.schedules.Revoke(ctx, admin, sid); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		kind event.Kind
		want int
	}{
		{event.KindScheduleCreated, 1},
		{event.KindTokensReleased, 1},
		{event.KindScheduleRevoked, 1},
		{event.KindTotalsUpdated, 3},
	} {
		events, err := f.store.ListEvents(ctx, event.ListOpts{Kind: tt.kind})
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != tt.want {
			t.Errorf("%s: got %d, want %d", tt.kind, len(events), tt.want)
		}
	}
}
