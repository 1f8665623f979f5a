// Package packetscmder
package packetscmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/mountainvillage/packets/cmd/packets/config"
	createcmder "github.com/mountainvillage/packets/cmd/packets/create"
	emitcmder "github.com/mountainvillage/packets/cmd/packets/emit"
	receivecmder "github.com/mountainvillage/packets/cmd/packets/receive"
	reconstructcmder "github.com/mountainvillage/packets/cmd/packets/reconstruct"
	statscmder "github.com/mountainvillage/packets/cmd/packets/stats"
	versioncmder "github.com/mountainvillage/packets/cmd/version"
)

const packetsLongDesc string = `Packets is bounded, consent-scoped memory for conversational agents.

Create, validate, and persist memory packets:
  packets create        Build a new packet from content
  packets receive       Validate an incoming packet
  packets emit          Validate, buffer, and persist a packet
  packets reconstruct   Rebuild a token-budgeted context snapshot
  packets stats         Show store statistics
  packets config        Manage persistent configuration`

const packetsShortDesc string = "Packets - Conversational Memory"

func NewPacketsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packets",
		Short: packetsShortDesc,
		Long:  packetsLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .mountain_village/ directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	// Add subcommands
	cmd.AddCommand(createcmder.NewCreateCmd())
	cmd.AddCommand(receivecmder.NewReceiveCmd())
	cmd.AddCommand(emitcmder.NewEmitCmd())
	cmd.AddCommand(reconstructcmder.NewReconstructCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
