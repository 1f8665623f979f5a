package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --budget
// on both "packets reconstruct" and "packets handover").
type Flag struct {
	// Name is the long flag name (e.g. "budget").
	Name string

	// Shorthand is the one-letter short flag (e.g. "b"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "reconstruct.token_budget").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddIntFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagStorageRoot          = "storage-root"
	FlagArchivePath          = "archive-path"
	FlagMaxPacketSize        = "max-packet-size"
	FlagCompressionThreshold = "compression-threshold"
	FlagTokenBudget          = "token-budget"
)

// DefaultFlagSet returns the flag definitions shared across the packets
// commands.
func DefaultFlagSet() FlagSet {
	return FlagSet{
		FlagStorageRoot: {
			Name:        "storage-root",
			ViperKey:    "storage.root",
			Description: "directory for date-partitioned packet storage",
		},
		FlagArchivePath: {
			Name:        "archive-path",
			ViperKey:    "storage.archive_path",
			Description: "path to the SQLite archive of pre-compression originals",
		},
		FlagMaxPacketSize: {
			Name:        "max-packet-size",
			ViperKey:    "limits.max_packet_size",
			Description: "maximum packet size in estimated tokens",
		},
		FlagCompressionThreshold: {
			Name:        "compression-threshold",
			ViperKey:    "limits.compression_threshold",
			Description: "token count above which packet content is compressed",
		},
		FlagTokenBudget: {
			Name:        "budget",
			Shorthand:   "b",
			ViperKey:    "reconstruct.token_budget",
			Description: "token budget for context reconstruction",
		},
	}
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *int) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultInt returns the default int value for a viper key from NewDefaultConfig.
func defaultInt(viperKey string) int {
	v := viper.New()
	setViperDefaults(v)
	return v.GetInt(viperKey)
}
