// Package extension provides the Forge extension adapter for the vesting
// ledgers.
//
// It implements the forge.Extension interface to integrate both ledgers
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.vesting" or "vesting" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	vesting "github.com/SoftHorizonSolutions/ttn-token-sub000"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store/memory"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/store/sqlite"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/token"
	"github.com/SoftHorizonSolutions/ttn-token-sub000/types"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "vesting"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Token vesting and allocation accounting engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts the vesting ledgers as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config      Config
	allocations *vesting.AllocationLedger
	schedules   *vesting.ScheduleLedger
	store       store.Store
	minter      token.Minter
	ledgerOpts  []vesting.Option
}

// New creates a new vesting Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Allocations returns the allocation ledger. Nil until Register runs.
func (e *Extension) Allocations() *vesting.AllocationLedger { return e.allocations }

// Schedules returns the schedule ledger. Nil until Register runs.
func (e *Extension) Schedules() *vesting.ScheduleLedger { return e.schedules }

// Register implements [forge.Extension]. It loads configuration,
// initializes both ledgers, and registers them in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	admin, err := types.ParseAddress(e.config.AdminAddress)
	if err != nil {
		return errors.New("vesting: admin_address is missing or not a valid 0x address")
	}

	if e.store == nil {
		if e.config.SQLitePath != "" {
			s, err := sqlite.Open(e.config.SQLitePath)
			if err != nil {
				return err
			}
			e.store = s
		} else {
			e.store = memory.New()
		}
	}
	if e.minter == nil {
		e.minter = token.NewLedger()
	}

	alloc := vesting.NewAllocationLedger(e.store, e.minter, admin, e.ledgerOpts...)
	sched := vesting.NewScheduleLedger(e.store, e.minter, alloc, alloc.Book(), admin, e.ledgerOpts...)
	e.allocations = alloc
	e.schedules = sched

	if err := vessel.Provide(fapp.Container(), func() (*vesting.AllocationLedger, error) {
		return e.allocations, nil
	}); err != nil {
		return err
	}
	return vessel.Provide(fapp.Container(), func() (*vesting.ScheduleLedger, error) {
		return e.schedules, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.allocations == nil {
		return errors.New("vesting: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.store.Migrate(ctx); err != nil {
			return err
		}
	}
	e.allocations.Plugins().EmitInit(ctx, e.allocations)
	e.schedules.Plugins().EmitInit(ctx, e.schedules)

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(ctx context.Context) error {
	if e.allocations != nil {
		e.allocations.Plugins().EmitShutdown(ctx)
		e.schedules.Plugins().EmitShutdown(ctx)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("vesting: store not initialized")
	}
	return e.store.Ping(ctx)
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("vesting: configuration is required but not found in config files; " +
				"ensure 'extensions.vesting' or 'vesting' key exists in your config")
		}
		e.config = programmaticConfig
	} else {
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("vesting: configuration loaded",
		forge.F("admin_address", e.config.AdminAddress),
		forge.F("sqlite_path", e.config.SQLitePath),
		forge.F("disable_migrate", e.config.DisableMigrate),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.vesting" first (namespaced pattern).
	if cm.IsSet("extensions.vesting") {
		if err := cm.Bind("extensions.vesting", &cfg); err == nil {
			e.Logger().Debug("vesting: loaded config from file",
				forge.F("key", "extensions.vesting"),
			)
			return cfg, true
		}
		e.Logger().Warn("vesting: failed to bind extensions.vesting config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "vesting" key.
	if cm.IsSet("vesting") {
		if err := cm.Bind("vesting", &cfg); err == nil {
			e.Logger().Debug("vesting: loaded config from file",
				forge.F("key", "vesting"),
			)
			return cfg, true
		}
		e.Logger().Warn("vesting: failed to bind vesting config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML takes precedence for string fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if yamlConfig.AdminAddress == "" && programmaticConfig.AdminAddress != "" {
		yamlConfig.AdminAddress = programmaticConfig.AdminAddress
	}
	if yamlConfig.SQLitePath == "" && programmaticConfig.SQLitePath != "" {
		yamlConfig.SQLitePath = programmaticConfig.SQLitePath
	}
	return yamlConfig
}
