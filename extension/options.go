package extension

import (
	vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/plugin"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/token"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// Option configures the vesting Forge extension.
type Option func(*Extension)

// WithStore sets the store for both ledgers.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithMinter sets the token-minting boundary. The default is the
// in-process token.Ledger, which is only useful for development.
func WithMinter(m token.Minter) Option {
	return func(e *Extension) {
		e.minter = m
	}
}

// WithAdmin sets the administrative address programmatically.
func WithAdmin(admin types.Address) Option {
	return func(e *Extension) {
		e.config.AdminAddress = admin.String()
	}
}

// WithLedgerOption passes a vesting.Option through to both ledgers.
func WithLedgerOption(opt vesting.Option) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, opt)
	}
}

// WithPlugin registers a plugin on both ledgers.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.ledgerOpts = append(e.ledgerOpts, vesting.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithSQLitePath backs the store with a SQLite database at the given path.
func WithSQLitePath(path string) Option {
	return func(e *Extension) { e.config.SQLitePath = path }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
