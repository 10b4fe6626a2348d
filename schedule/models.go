// Package schedule defines vesting schedule records and the release curve.
//
// A schedule is a time-curve (cliff + linear ramp) governing how much of a
// total amount a beneficiary may claim over time. The releasable-amount
// computation is a pure function of the schedule and a time instant, so the
// curve can be tested without a real clock.
package schedule

import (
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Status is the stored lifecycle state of a schedule.
//
// Completed and Revoked are distinct terminal states: a fully-claimed
// schedule remains distinguishable from an administratively revoked one,
// but both permit no further releases.
type Status string

const (
	// StatusActive means the schedule can still release tokens.
	StatusActive Status = "active"
	// StatusCompleted means the full total has been released. Terminal.
	StatusCompleted Status = "completed"
	// StatusRevoked means an admin revoked the schedule. Terminal: the
	// unvested remainder is forfeit and even already-vested-but-unclaimed
	// amounts can no longer be released.
	StatusRevoked Status = "revoked"
)

// Phase is the derived position of an active schedule on its time curve.
type Phase string

const (
	// PhasePending means the cliff has not been reached; nothing releasable.
	PhasePending Phase = "pending"
	// PhaseVesting means the schedule is inside the linear window.
	PhaseVesting Phase = "vesting"
	// PhaseFullyVested means the end has passed; the full remainder is due.
	PhaseFullyVested Phase = "fully_vested"
)

// Schedule is a time-locked release curve, optionally drawing against a
// pre-reserved allocation. TotalAmount is immutable once set; Released
// only ever increases and never exceeds TotalAmount.
type Schedule struct {
	types.Entity
	ID          id.ScheduleID `json:"id"`
	Beneficiary types.Address `json:"beneficiary"`
	TotalAmount types.Amount  `json:"total_amount"`
	Released    types.Amount  `json:"released"`
	Start       time.Time     `json:"start"`
	Cliff       time.Duration `json:"cliff"`
	Duration    time.Duration `json:"duration"`
	// AllocationID links the schedule to an allocation ledger entry.
	// Zero means unlinked: releases mint fresh tokens directly.
	AllocationID id.AllocationID `json:"allocation_id"`
	Status       Status          `json:"status"`
}

// Terminal reports whether the schedule permits further releases.
func (s *Schedule) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusRevoked
}

// Unreleased returns the amount not yet released.
func (s *Schedule) Unreleased() types.Amount {
	return s.TotalAmount.Sub(s.Released)
}

// PhaseAt returns the curve position at the given instant. Meaningful for
// active schedules; terminal schedules report the end-of-curve phase.
func (s *Schedule) PhaseAt(now time.Time) Phase {
	switch {
	case now.Before(s.Start.Add(s.Cliff)):
		return PhasePending
	case now.Before(s.Start.Add(s.Duration)):
		return PhaseVesting
	default:
		return PhaseFullyVested
	}
}

// VestedAt returns the amount the curve has unlocked by the given instant,
// ignoring what has already been released. Zero before the cliff; the full
// total at or after start+duration; in between, the linear proration
// floor(total * elapsed / duration) at one-second granularity. The floor
// division truncates in the protocol's favor on every partial period.
func (s *Schedule) VestedAt(now time.Time) types.Amount {
	if now.Before(s.Start.Add(s.Cliff)) {
		return types.ZeroAmount
	}
	if !now.Before(s.Start.Add(s.Duration)) {
		return s.TotalAmount
	}
	elapsed := int64(now.Sub(s.Start) / time.Second)
	total := int64(s.Duration / time.Second)
	if total <= 0 {
		// A duration below the one-second grain has no linear window:
		// everything past the cliff is vested.
		return s.TotalAmount
	}
	return s.TotalAmount.MulDiv(elapsed, total)
}

// ReleasableAt returns the amount currently eligible for claim at the given
// instant: the vested amount net of what has already been released, zero for
// terminal schedules. When manual unlocks have run ahead of the curve the
// result clamps to zero rather than going negative.
func (s *Schedule) ReleasableAt(now time.Time) types.Amount {
	if s.Terminal() {
		return types.ZeroAmount
	}
	vested := s.VestedAt(now)
	if !vested.GreaterThan(s.Released) {
		return types.ZeroAmount
	}
	return vested.Sub(s.Released)
}

// Totals are the process-wide running aggregates, updated on every schedule
// creation, claim, manual unlock, and revoke. Purely observational: no
// control decision reads them.
type Totals struct {
	// TotalVested is the sum of all schedule totals ever created, minus
	// the unvested remainders of revoked schedules.
	TotalVested types.Amount `json:"total_vested"`
	// TotalClaimed is the sum of all amounts ever released, by claim or
	// by manual unlock.
	TotalClaimed types.Amount `json:"total_claimed"`
}
