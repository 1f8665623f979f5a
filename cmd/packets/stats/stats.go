// Package statscmder provides the stats subcommand for reporting store
// occupancy over the persisted packets.
package statscmder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountainvillage/packets/pkg/cliui"
	"github.com/mountainvillage/packets/pkg/config"
	"github.com/mountainvillage/packets/pkg/logger"
	"github.com/mountainvillage/packets/pkg/packet"
	"github.com/mountainvillage/packets/pkg/persist"
	"github.com/mountainvillage/packets/pkg/store"
)

type statsCommander struct {
	jsonOut   bool
	configDir string
	debug     bool

	logger *slog.Logger
}

const statsLongDesc string = `Show store statistics.

Replays the persisted packets from the storage root into a fresh store
and reports buffer and tier occupancy plus the aggregate token count
held across the memory tiers.

Examples:
  packets stats
  packets stats --json`

const statsShortDesc string = "Show store statistics"

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.configDir, err = cmd.Flags().GetString("config-dir")
			if err != nil {
				return fmt.Errorf("could not get config-dir flag: %w", err)
			}

			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.jsonOut, "json", false, "Print statistics as JSON")

	return cmd
}

func (c *statsCommander) run() error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return err
	}
	cfger.ResolvePaths(cfg)

	fileStore, err := persist.NewFileStore(cfg.Storage.Root, persist.WithLogger(c.logger))
	if err != nil {
		return err
	}

	entries, err := fileStore.Index()
	if err != nil {
		return err
	}

	s := store.New(store.WithLogger(c.logger))
	for _, entry := range entries {
		p, err := fileStore.Load(entry.Path)
		if err != nil {
			c.logger.Debug("skipping unreadable packet", "packet", entry.ID, "error", err)
			continue
		}
		data, err := packet.Marshal(p)
		if err != nil {
			continue
		}
		if _, err := s.Receive(data); err != nil {
			c.logger.Debug("skipping invalid packet", "packet", entry.ID, "error", err)
		}
	}

	stats := s.Stats()

	if c.jsonOut {
		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding stats: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	printStats(stats, cfg.Storage.Root)
	return nil
}

func printStats(stats store.Stats, root string) {
	fmt.Printf("\n  %s %s\n\n",
		cliui.KeyStyle.Render("Storage root:"),
		cliui.DimStyle.Render(root),
	)

	rows := []struct {
		label string
		value string
	}{
		{"Handler version", stats.Version},
		{"Total packets", fmt.Sprintf("%d", stats.TotalPackets)},
		{"Incoming buffer", fmt.Sprintf("%d / %d", stats.IncomingBuffer, stats.BufferLimit)},
		{"Outgoing buffer", fmt.Sprintf("%d / %d", stats.OutgoingBuffer, stats.BufferLimit)},
		{"Session memories", fmt.Sprintf("%d / %d", stats.SessionMemories, store.SessionCapacity)},
		{"Context layers", fmt.Sprintf("%d / %d", stats.ContextLayers, store.ContextCapacity)},
		{"Identity", fmt.Sprintf("%t", stats.HasIdentity)},
		{"Total tokens", fmt.Sprintf("%d", stats.TotalTokens)},
	}

	for _, row := range rows {
		fmt.Printf("  %s %s\n",
			cliui.KeyStyle.Render(fmt.Sprintf("%-18s", row.label)),
			cliui.ValueStyle.Render(row.value),
		)
	}
	fmt.Println()
}
