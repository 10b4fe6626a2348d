package extension

// Config holds the vesting extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.vesting" or "vesting" keys).
type Config struct {
	// AdminAddress is the address holding the administrative capability on
	// both ledgers. Required unless set programmatically.
	AdminAddress string `json:"admin_address" mapstructure:"admin_address" yaml:"admin_address"`

	// SQLitePath, when set, backs the store with a SQLite database at the
	// given path instead of the in-memory store.
	SQLitePath string `json:"sqlite_path" mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
