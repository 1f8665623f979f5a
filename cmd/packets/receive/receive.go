// Package receivecmder provides the receive subcommand for validating an
// incoming packet.
package receivecmder

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountainvillage/packets/pkg/cliui"
	"github.com/mountainvillage/packets/pkg/logger"
	"github.com/mountainvillage/packets/pkg/store"
)

type receiveCommander struct {
	debug bool

	logger *slog.Logger
}

const receiveLongDesc string = `Validate an incoming packet.

Reads a serialized packet from the given file (or stdin when the file
is "-") and runs it through the full receive pipeline: decoding, header
validation, integrity verification, and consent expiry. A packet that
fails any stage is rejected without side effects.

Examples:
  packets receive packet.json
  packets emit out.json | packets receive -`

const receiveShortDesc string = "Validate an incoming packet"

func NewReceiveCmd() *cobra.Command {
	cmder := &receiveCommander{}

	cmd := &cobra.Command{
		Use:   "receive [file|-]",
		Short: receiveShortDesc,
		Long:  receiveLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(args[0])
		},
	}

	return cmd
}

func (c *receiveCommander) run(source string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	raw, err := readPacket(source)
	if err != nil {
		return err
	}

	s := store.New(store.WithLogger(c.logger))

	p, err := s.Receive(raw)
	if err != nil {
		return fmt.Errorf("receiving packet: %w", err)
	}

	fmt.Printf("  %s Received %s (%s, priority %d, %d tokens)\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(p.ID),
		p.Type,
		p.Priority,
		p.Metadata.TokenCount,
	)

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
