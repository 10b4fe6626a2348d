package vesting

import (
	"errors"
	"fmt"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Sentinel errors. Every distinct failure condition has its own sentinel so
// callers can assert on the specific reason rather than "any failure".
var (
	// Authorization errors
	ErrUnauthorized   = errors.New("vesting: caller lacks required role")
	ErrNotBeneficiary = errors.New("vesting: caller is not the schedule beneficiary")

	// Input validation errors
	ErrZeroAddress      = errors.New("vesting: zero beneficiary address")
	ErrZeroAmount       = errors.New("vesting: amount must be positive")
	ErrZeroDuration     = errors.New("vesting: duration must be positive")
	ErrDurationTooShort = errors.New("vesting: duration shorter than one second")
	ErrCliffTooLong     = errors.New("vesting: cliff exceeds duration")
	ErrStartInPast      = errors.New("vesting: start time is in the past")
	ErrLengthMismatch   = errors.New("vesting: beneficiary and amount lists differ in length")
	ErrEmptyBatch       = errors.New("vesting: empty batch")

	// Reference errors
	ErrAllocationNotFound   = errors.New("vesting: allocation not found")
	ErrAirdropNotFound      = errors.New("vesting: airdrop not found")
	ErrScheduleNotFound     = errors.New("vesting: schedule not found")
	ErrBeneficiaryMismatch  = errors.New("vesting: allocation belongs to a different beneficiary")
	ErrAllocationRevoked    = errors.New("vesting: allocation is revoked")
	ErrAllocationUnlinked   = errors.New("vesting: schedule has no linked allocation")
	ErrSelfManagedForbidden = errors.New("vesting: an address cannot manage its own manager entry")

	// State conflict errors
	ErrScheduleRevoked        = errors.New("vesting: schedule is revoked")
	ErrScheduleCompleted      = errors.New("vesting: schedule is fully released")
	ErrNothingDue             = errors.New("vesting: nothing due to release")
	ErrNothingToRevoke        = errors.New("vesting: no unvested remainder to revoke")
	ErrExceedsUnreleased      = errors.New("vesting: amount exceeds unreleased balance")
	ErrInsufficientAllocation = errors.New("vesting: allocation balance insufficient")
	ErrAlreadyManager         = errors.New("vesting: address is already a manager")
	ErrNotManager             = errors.New("vesting: address is not a manager")

	// System errors
	ErrPaused        = errors.New("vesting: ledger is paused")
	ErrReentrantCall = errors.New("vesting: reentrant call into guarded ledger")

	// Store errors
	ErrStoreClosed = errors.New("vesting: store is closed")
)

// IsAuthorization reports whether the error is a missing-capability failure.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotBeneficiary)
}

// IsInvalidInput reports whether the error is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrZeroAddress) ||
		errors.Is(err, ErrZeroAmount) ||
		errors.Is(err, ErrZeroDuration) ||
		errors.Is(err, ErrDurationTooShort) ||
		errors.Is(err, ErrCliffTooLong) ||
		errors.Is(err, ErrStartInPast) ||
		errors.Is(err, ErrLengthMismatch) ||
		errors.Is(err, ErrEmptyBatch)
}

// IsInvalidReference reports whether the error names a missing, foreign, or
// revoked referent.
func IsInvalidReference(err error) bool {
	return errors.Is(err, ErrAllocationNotFound) ||
		errors.Is(err, ErrAirdropNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrBeneficiaryMismatch) ||
		errors.Is(err, ErrAllocationRevoked) ||
		errors.Is(err, ErrAllocationUnlinked) ||
		errors.Is(err, ErrSelfManagedForbidden)
}

// IsStateConflict reports whether the operation was valid but the record's
// current state forbids it.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrScheduleRevoked) ||
		errors.Is(err, ErrScheduleCompleted) ||
		errors.Is(err, ErrNothingDue) ||
		errors.Is(err, ErrNothingToRevoke) ||
		errors.Is(err, ErrExceedsUnreleased) ||
		errors.Is(err, ErrInsufficientAllocation) ||
		errors.Is(err, ErrAlreadyManager) ||
		errors.Is(err, ErrNotManager)
}

// IsSystemHalted reports whether the ledger refused the call as a whole.
func IsSystemHalted(err error) bool {
	return errors.Is(err, ErrPaused) ||
		errors.Is(err, ErrReentrantCall)
}

// MintError wraps a token ledger failure that occurred after the release
// or airdrop accounting was already persisted. The accounting is NOT
// rolled back; the operator reconciles by retrying the mint (the token
// ledger is idempotent-safe for the amounts this engine computes).
// ScheduleID is set on the claim and unlock paths, AllocationID on the
// airdrop path.
type MintError struct {
	ScheduleID   id.ScheduleID
	AllocationID id.AllocationID
	Beneficiary  types.Address
	Err          error
}

func (e *MintError) Error() string {
	if !e.AllocationID.IsZero() && e.ScheduleID.IsZero() {
		return fmt.Sprintf("vesting: mint for allocation %s failed after accounting was persisted: %v",
			e.AllocationID, e.Err)
	}
	return fmt.Sprintf("vesting: mint for schedule %s failed after accounting was persisted: %v",
		e.ScheduleID, e.Err)
}

func (e *MintError) Unwrap() error { return e.Err }
