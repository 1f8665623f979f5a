// Package configcmder provides the config command for managing persistent
// packets configuration stored in the .mountain_village/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent packets configuration.

Configuration is stored as config.toml in the .mountain_village/ directory
and provides default values for command flags. CLI flags always take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.root, storage.archive_path,
  limits.max_packet_size, limits.compression_threshold,
  reconstruct.token_budget

Use subcommands to get, set, or list configuration values:
  packets config set <key> <value>    Set a configuration value
  packets config get <key>            Get a configuration value
  packets config list                 List all configuration values

Examples:
  packets config set storage.root /var/lib/packets
  packets config set reconstruct.token_budget 8000
  packets config get limits.max_packet_size
  packets config list`

const configShortDesc string = "Manage persistent packets configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
