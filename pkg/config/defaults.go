package config

import "github.com/mountainvillage/packets/pkg/packet"

const (
	defaultStorageDir  = "packets"
	defaultArchiveFile = "archive.db"

	defaultTokenBudget = 4000
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values. Storage paths
// are relative to the resolved .mountain_village/ directory until a
// caller makes them absolute.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Root:        defaultStorageDir,
			ArchivePath: defaultArchiveFile,
		},
		Limits: LimitsConfig{
			MaxPacketSize:        packet.DefaultMaxPacketSize,
			CompressionThreshold: packet.DefaultCompressionThreshold,
		},
		Reconstruct: ReconstructConfig{
			TokenBudget: defaultTokenBudget,
		},
	}
}
