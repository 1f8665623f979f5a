// Package reconstructcmder provides the reconstruct subcommand for
// rebuilding a token-budgeted context snapshot from persisted packets.
package reconstructcmder

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountainvillage/packets/pkg/config"
	"github.com/mountainvillage/packets/pkg/logger"
	"github.com/mountainvillage/packets/pkg/packet"
	"github.com/mountainvillage/packets/pkg/persist"
	"github.com/mountainvillage/packets/pkg/store"
)

type reconstructCommander struct {
	budget       int
	skipIdentity bool
	configDir    string
	debug        bool

	logger *slog.Logger
}

const reconstructLongDesc string = `Rebuild a context snapshot from persisted packets.

Loads every packet recorded in the storage root's index, replays it
through the receive pipeline into a fresh store, and prints a
token-budgeted context snapshot as JSON. Packets that no longer
validate (tampered files, expired consent) are skipped.

The identity packet is included first when it fits. The rest of the
budget is filled from session and context memory in priority order.

Examples:
  packets reconstruct
  packets reconstruct --budget 8000
  packets reconstruct --skip-identity`

const reconstructShortDesc string = "Rebuild a context snapshot"

func NewReconstructCmd() *cobra.Command {
	cmder := &reconstructCommander{}
	flagSet := config.DefaultFlagSet()

	cmd := &cobra.Command{
		Use:   "reconstruct",
		Short: reconstructShortDesc,
		Long:  reconstructLongDesc,
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

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, flagSet, []string{config.FlagTokenBudget})
			cmder.budget = v.GetInt("reconstruct.token_budget")

			return cmder.run()
		},
	}

	config.AddIntFlag(cmd, flagSet, config.FlagTokenBudget, &cmder.budget)
	cmd.Flags().BoolVar(&cmder.skipIdentity, "skip-identity", false, "Leave the identity packet out of the snapshot")

	return cmd
}

func (c *reconstructCommander) run() error {
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

	s, err := rebuild(fileStore, c.logger)
	if err != nil {
		return err
	}

	snapshot := s.Reconstruct(c.budget, !c.skipIdentity)

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	fmt.Println(string(out))
	return nil
}

// rebuild replays every indexed packet into a fresh store. Packets that
// fail to load or validate are skipped, not fatal: the index is a
// best-effort cache over the data files.
func rebuild(fileStore *persist.FileStore, log *slog.Logger) (*store.LayeredStore, error) {
	entries, err := fileStore.Index()
	if err != nil {
		return nil, err
	}

	s := store.New(store.WithLogger(log))

	for _, entry := range entries {
		p, err := fileStore.Load(entry.Path)
		if err != nil {
			log.Debug("skipping unreadable packet", "packet", entry.ID, "error", err)
			continue
		}

		data, err := packet.Marshal(p)
		if err != nil {
			log.Debug("skipping unencodable packet", "packet", entry.ID, "error", err)
			continue
		}

		if _, err := s.Receive(data); err != nil {
			log.Debug("skipping invalid packet", "packet", entry.ID, "error", err)
			continue
		}
	}

	return s, nil
}
