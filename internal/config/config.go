package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig selects and parameterizes the storage backend. The
// fields are opaque to the domain core; each backend consumes only the
// ones it needs.
type StorageConfig struct {
	// Backend selects the persistence engine.
	Backend string `mapstructure:"backend" validate:"required,oneof=json sqlite postgres"`

	// Path is the primary file for the json backend or the database
	// file for the sqlite backend.
	Path string `mapstructure:"path" validate:"required"`

	// URL is the connection string for the postgres backend.
	URL string `mapstructure:"url" validate:"required_if=Backend postgres"`

	// MaxBackups caps the json backend's rotating backup directory.
	MaxBackups int `mapstructure:"max_backups" validate:"gte=1"`
}
