package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent packets configuration stored as
// config.toml in the .mountain_village/ directory. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	Limits      LimitsConfig      `toml:"limits"`
	Reconstruct ReconstructConfig `toml:"reconstruct"`
}

// StorageConfig holds durable storage settings.
type StorageConfig struct {
	// Root is the date-partitioned packet storage root.
	Root string `toml:"root,omitempty"`

	// ArchivePath is the SQLite database of pre-compression originals.
	ArchivePath string `toml:"archive_path,omitempty"`
}

// LimitsConfig holds packet admission and compression limits, in tokens.
type LimitsConfig struct {
	MaxPacketSize        int `toml:"max_packet_size,omitempty"`
	CompressionThreshold int `toml:"compression_threshold,omitempty"`
}

// ReconstructConfig holds context reconstruction settings.
type ReconstructConfig struct {
	// TokenBudget is the default budget for a context snapshot.
	TokenBudget int `toml:"token_budget,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and
// setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.root": {
		get: func(c *Config) string { return c.Storage.Root },
		set: func(c *Config, v string) error { c.Storage.Root = v; return nil },
	},
	"storage.archive_path": {
		get: func(c *Config) string { return c.Storage.ArchivePath },
		set: func(c *Config, v string) error { c.Storage.ArchivePath = v; return nil },
	},
	"limits.max_packet_size": {
		get: func(c *Config) string { return strconv.Itoa(c.Limits.MaxPacketSize) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("limits.max_packet_size must be an integer: %w", err)
			}
			c.Limits.MaxPacketSize = n
			return nil
		},
	},
	"limits.compression_threshold": {
		get: func(c *Config) string { return strconv.Itoa(c.Limits.CompressionThreshold) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("limits.compression_threshold must be an integer: %w", err)
			}
			c.Limits.CompressionThreshold = n
			return nil
		},
	},
	"reconstruct.token_budget": {
		get: func(c *Config) string { return strconv.Itoa(c.Reconstruct.TokenBudget) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("reconstruct.token_budget must be an integer: %w", err)
			}
			c.Reconstruct.TokenBudget = n
			return nil
		},
	},
}
