package vesting

import "github.com/SoftHorizonSolutions/ttn-token-sub000/types"

// Re-export common types for convenience so users don't have to import the
// types package.

// Amount is re-exported from the types package.
type Amount = types.Amount

// Address is re-exported from the types package.
type Address = types.Address

// Entity is re-exported from the types package.
type Entity = types.Entity

// Re-export Amount constructors
var (
	NewAmount   = types.NewAmount
	ParseAmount = types.ParseAmount
	MustAmount  = types.MustAmount
	SumAmounts  = types.SumAmounts
	ZeroAmount  = types.ZeroAmount
)

// Re-export Address constructors
var (
	ParseAddress = types.ParseAddress
	MustAddress  = types.MustAddress
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
