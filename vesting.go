package vesting

import (
	"context"
	"log/slog"
	"time"

	"github.com/SoftHorizonSolutions/ttn-token-sub000/allocation"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/id"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/plugin"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// ManagerRegistry answers whether an address holds the manager capability.
// The allocation ledger hosts the single manager list and implements this
// interface; the schedule ledger receives it by injection so one list
// governs both allocation and vesting operations, while either ledger can
// be tested in isolation with a stub.
type ManagerRegistry interface {
	IsManager(ctx context.Context, addr types.Address) (bool, error)
}

// ManagerRegistryFunc adapts a plain function to a ManagerRegistry.
type ManagerRegistryFunc func(ctx context.Context, addr types.Address) (bool, error)

// IsManager implements ManagerRegistry.
func (f ManagerRegistryFunc) IsManager(ctx context.Context, addr types.Address) (bool, error) {
	return f(ctx, addr)
}

// AllocationBook is the engine-facing capability surface of the allocation
// ledger. Holding the value is the authorization: the schedule ledger
// obtains one from AllocationLedger.Book() at wiring time and uses it for
// the nested cross-ledger calls inside claims, unlocks, and revokes.
type AllocationBook interface {
	Get(ctx context.Context, aid id.AllocationID) (*allocation.Allocation, error)
	Reduce(ctx context.Context, aid id.AllocationID, amount types.Amount) error
	Revoke(ctx context.Context, aid id.AllocationID) error
}

// settings are the options shared by both ledger constructors.
type settings struct {
	logger  *slog.Logger
	clock   func() time.Time
	plugins *plugin.Registry
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:  slog.Default(),
		clock:   time.Now,
		plugins: plugin.NewRegistry(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	s.plugins.WithLogger(s.logger)
	return s
}

// Option configures a ledger instance.
type Option func(*settings)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithClock sets the time source. The default is time.Now; tests inject a
// fixed clock so cliff and full-vest boundaries can be checked exactly.
func WithClock(clock func() time.Time) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithPlugin registers a lifecycle plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(s *settings) {
		_ = s.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithRegistry shares a plugin registry between ledgers so one plugin set
// observes both.
func WithRegistry(r *plugin.Registry) Option {
	return func(s *settings) {
		s.plugins = r
	}
}
