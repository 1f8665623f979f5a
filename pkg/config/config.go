package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mountainvillage/packets/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

type Configer struct {
	ddm        *dotdir.Manager
	targetDir  string
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	if target == "" {
		return cfger, nil
	}

	path := filepath.Join(target, configFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfger.targetDir = target
	cfger.targetPath = path

	return cfger, nil
}

// ValidConfigKeys returns the list of all supported configuration key
// names in a stable order matching the TOML section layout.
func ValidConfigKeys() []string {
	ordered := []string{
		"storage.root",
		"storage.archive_path",
		"limits.max_packet_size",
		"limits.compression_threshold",
		"reconstruct.token_budget",
	}

	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := configKeys[k]; ok {
			result = append(result, k)
		}
	}

	return result
}

// IsValidConfigKey returns true if the given key is a supported
// configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := configKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// GetTargetDir returns the resolved .mountain_village/ directory.
func (c *Configer) GetTargetDir() string {
	return c.targetDir
}

// LoadConfig loads the configuration from config.toml in the target
// .mountain_village/ directory. If the file does not exist, returns
// NewDefaultConfig() so callers always receive a fully-populated Config
// with sane defaults. Fields explicitly set in the file override the
// defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg with values from
// NewDefaultConfig().
func applyDefaults(cfg *Config) {
	defaults := NewDefaultConfig()

	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}

	if cfg.Storage.Root == "" {
		cfg.Storage.Root = defaults.Storage.Root
	}
	if cfg.Storage.ArchivePath == "" {
		cfg.Storage.ArchivePath = defaults.Storage.ArchivePath
	}

	if cfg.Limits.MaxPacketSize == 0 {
		cfg.Limits.MaxPacketSize = defaults.Limits.MaxPacketSize
	}
	if cfg.Limits.CompressionThreshold == 0 {
		cfg.Limits.CompressionThreshold = defaults.Limits.CompressionThreshold
	}

	if cfg.Reconstruct.TokenBudget == 0 {
		cfg.Reconstruct.TokenBudget = defaults.Reconstruct.TokenBudget
	}
}

// SaveConfig persists the configuration to config.toml in the target
// .mountain_village/ directory.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// SetConfigValue loads the config, sets the given key to the given
// value, and saves it. Returns an error if the key is not a valid
// config key.
func (c *Configer) SetConfigValue(key string, value string) error {
	info, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}

	if err := info.set(cfg, value); err != nil {
		return err
	}

	return c.SaveConfig(cfg)
}

// GetConfigValue loads the config and returns the string representation
// of the given key. Returns an error if the key is not a valid config key.
func (c *Configer) GetConfigValue(key string) (string, error) {
	info, ok := configKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}

	return info.get(cfg), nil
}

// ParseConfigTOML parses raw TOML bytes into a Config. Returns an error
// if the version field is present and not equal to CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}

	return cfg, nil
}

// ResolvePaths makes the storage paths absolute relative to the resolved
// .mountain_village/ directory. Already-absolute paths are untouched.
func (c *Configer) ResolvePaths(cfg *Config) {
	if c.targetDir == "" {
		return
	}

	if !filepath.IsAbs(cfg.Storage.Root) {
		cfg.Storage.Root = filepath.Join(c.targetDir, cfg.Storage.Root)
	}
	if !filepath.IsAbs(cfg.Storage.ArchivePath) {
		cfg.Storage.ArchivePath = filepath.Join(c.targetDir, cfg.Storage.ArchivePath)
	}
}
