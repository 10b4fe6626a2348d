// Package token defines the external token ledger boundary.
//
// The vesting engine mutates the token ledger and never inspects it for
// truth: balances are a side effect, not an input to any control decision.
// The concrete ledger lives outside this module; Ledger here is an
// in-memory implementation for tests and examples.
package token

import (
	"context"
	"sync"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Minter mints tokens to a beneficiary. Implementations must tolerate the
// engine calling with the amounts it computes, repeatedly if an earlier
// attempt's outcome was lost: the engine carries no idempotency key.
type Minter interface {
	Mint(ctx context.Context, beneficiary types.Address, amount types.Amount) error
}

// BalanceReader exposes balances for external tooling. The engine's
// control logic never reads balances.
type BalanceReader interface {
	BalanceOf(ctx context.Context, addr types.Address) (types.Amount, error)
}

// MinterFunc adapts a plain function to a Minter.
type MinterFunc func(ctx context.Context, beneficiary types.Address, amount types.Amount) error

// Mint implements Minter.
func (f MinterFunc) Mint(ctx context.Context, beneficiary types.Address, amount types.Amount) error {
	return f(ctx, beneficiary, amount)
}

// Ledger is an in-memory token ledger for tests and examples.
type Ledger struct {
	mu       sync.RWMutex
	balances map[types.Address]types.Amount
	mints    int
}

// NewLedger creates an empty in-memory token ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[types.Address]types.Amount)}
}

// Mint implements Minter.
func (l *Ledger) Mint(_ context.Context, beneficiary types.Address, amount types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[beneficiary] = l.balances[beneficiary].Add(amount)
	l.mints++
	return nil
}

// BalanceOf implements BalanceReader.
func (l *Ledger) BalanceOf(_ context.Context, addr types.Address) (types.Amount, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[addr], nil
}

// Mints returns the number of mint calls issued so far.
func (l *Ledger) Mints() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.mints
}
