package audithook

// Action constants for audit events.
const (
	// Allocation actions
	ActionAllocationCreated = "allocation.created"
	ActionAllocationReduced = "allocation.reduced"
	ActionAllocationRevoked = "allocation.revoked"
	ActionAirdropExecuted   = "airdrop.executed"

	// Manager actions
	ActionManagerAdded   = "manager.added"
	ActionManagerRemoved = "manager.removed"

	// Schedule actions
	ActionScheduleCreated = "schedule.created"
	ActionTokensReleased  = "tokens.released"
	ActionManualUnlock    = "schedule.manual_unlock"
	ActionScheduleRevoked = "schedule.revoked"

	// Discrepancy actions
	ActionReductionFailed = "allocation.reduction_failed"
	ActionMintFailed      = "token.mint_failed"

	// Gate actions
	ActionPaused   = "ledger.paused"
	ActionUnpaused = "ledger.unpaused"
)

// Resource constants for audit events.
const (
	ResourceAllocation = "allocation"
	ResourceAirdrop    = "airdrop"
	ResourceManager    = "manager"
	ResourceSchedule   = "schedule"
	ResourceLedger     = "ledger"
)

// Category constants for audit events.
const (
	CategoryAllocation = "allocation"
	CategoryVesting    = "vesting"
	CategoryAccess     = "access"
	CategoryToken      = "token"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
