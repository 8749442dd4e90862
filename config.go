package sitetree

import (
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Config captures the module's runtime configuration. The zero value yields a
// fully in-memory module with logging disabled.
type Config struct {
	Logging  LoggingConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Features Features
}

// LoggingConfig controls the module's structured logging output.
type LoggingConfig struct {
	// Enabled switches logging on. Disabled modules use a no-op logger.
	Enabled bool
	// Level is one of trace, debug, info, warn, error.
	Level string
	// Format is one of json, console, pretty.
	Format string
	// AddSource annotates log records with file and line.
	AddSource bool
}

// StorageConfig selects the persistence backend. A nil DB keeps everything in
// process memory.
type StorageConfig struct {
	DB *bun.DB
}

// CacheConfig enables read-through caching on the bun repositories. Both
// members must be set for caching to take effect; it is ignored when storage
// is in-memory.
type CacheConfig struct {
	Service       cache.CacheService
	KeySerializer cache.KeySerializer
}

// Features toggles optional behaviour.
type Features struct {
	// PayloadValidation checks bulk field updates against the template's
	// derived JSON schema before any value is written.
	PayloadValidation bool
}

// DefaultConfig returns the baseline configuration: in-memory storage, info
// level console logging, payload validation on.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Format:  "console",
		},
		Features: Features{
			PayloadValidation: true,
		},
	}
}
