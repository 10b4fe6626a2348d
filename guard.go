package vesting

import (
	"context"
	"sync"
)

// guard is the per-ledger serialization point. The mutex imposes one total
// order on all mutating entry points of a ledger instance; the context
// marker detects a nested call back into the same guarded ledger (direct,
// or via the token ledger's callback surface) and rejects it instead of
// deadlocking. Granularity is deliberately coarse: whole ledger, not
// per record.
type guard struct {
	mu sync.Mutex
}

// enteredKey marks a context as executing inside a specific guard.
type enteredKey struct{ g *guard }

// enter serializes the caller and returns a context that nested calls must
// carry. Returns ErrReentrantCall if ctx already passed through this guard.
func (g *guard) enter(ctx context.Context) (context.Context, error) {
	if ctx.Value(enteredKey{g}) != nil {
		return nil, ErrReentrantCall
	}
	g.mu.Lock()
	return context.WithValue(ctx, enteredKey{g}, struct{}{}), nil
}

// exit releases the serialization lock.
func (g *guard) exit() {
	g.mu.Unlock()
}
