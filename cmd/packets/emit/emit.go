// Package emitcmder provides the emit subcommand for validating and
// persisting a packet under the storage root.
package emitcmder

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountainvillage/packets/pkg/cliui"
	"github.com/mountainvillage/packets/pkg/config"
	"github.com/mountainvillage/packets/pkg/events/nop"
	"github.com/mountainvillage/packets/pkg/logger"
	"github.com/mountainvillage/packets/pkg/persist"
	"github.com/mountainvillage/packets/pkg/store"
	"github.com/mountainvillage/packets/pkg/utils"
)

type emitCommander struct {
	configDir string
	logFile   string
	debug     bool

	logger *slog.Logger
}

const emitLongDesc string = `Validate and persist a packet.

Reads a serialized packet from the given file (or stdin when the file
is "-"), validates it through the receive pipeline, then emits it: the
packet is written atomically under the storage root's date directory
and appended to the lookup index.

Examples:
  packets emit packet.json
  packets create --type session notes.json | packets emit -`

const emitShortDesc string = "Validate and persist a packet"

func NewEmitCmd() *cobra.Command {
	cmder := &emitCommander{}

	cmd := &cobra.Command{
		Use:   "emit [file|-]",
		Short: emitShortDesc,
		Long:  emitLongDesc,
		Args:  cobra.ExactArgs(1),
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

			cmder.logFile, err = cmd.Flags().GetString("log-file")
			if err != nil {
				return fmt.Errorf("could not get log-file flag: %w", err)
			}

			return cmder.run(args[0])
		},
	}

	return cmd
}

func (c *emitCommander) run(source string) error {
	if err := c.initLogger(); err != nil {
		return err
	}

	raw, err := readPacket(source)
	if err != nil {
		return err
	}

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

	s := store.New(
		store.WithPersister(fileStore),
		store.WithPublisher(nop.NewPublisher()),
		store.WithLogger(c.logger),
	)

	p, err := s.Receive(raw)
	if err != nil {
		return fmt.Errorf("receiving packet: %w", err)
	}

	return cliui.Step(os.Stderr, fmt.Sprintf("Persisting %s under %s", utils.Truncate(p.ID, 16), cfg.Storage.Root), func() error {
		_, err := s.Emit(p)
		return err
	})
}

// initLogger builds the command logger: pretty output on stderr, with an
// additional JSON stream fanned out to --log-file when one is given.
func (c *emitCommander) initLogger() error {
	pretty := logger.New(logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	if c.logFile == "" {
		c.logger = pretty
		return nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	structured := logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(true),
		logger.WithWriter(f),
	)

	c.logger = logger.Multi(pretty, structured)
	return nil
}

// readPacket reads a serialized packet from a file path, or from stdin
// when the path is "-".
func readPacket(source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading packet: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("reading packet: %w", err)
	}
	return data, nil
}
