// Package createcmder provides the create subcommand for building a new
// packet from JSON content.
package createcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mountainvillage/packets/pkg/archive"
	"github.com/mountainvillage/packets/pkg/config"
	"github.com/mountainvillage/packets/pkg/logger"
	"github.com/mountainvillage/packets/pkg/packet"
)

type createCommander struct {
	packetType string
	priority   int
	public     bool
	targets    []string
	scopes     []string
	expires    string
	configDir  string
	debug      bool

	logger *slog.Logger
}

const createLongDesc string = `Create a new packet from JSON content.

Reads a JSON object from the given file (or stdin when the file is "-")
and wraps it in a packet of the given type. Content above the compression
threshold is replaced with a compression placeholder; the original is
captured in the archive so it can be recovered later.

By default packets are private with read-only scope. Use --public or
--target/--scope to widen disclosure.

Examples:
  packets create --type session --priority 2 notes.json
  packets create --type identity - < identity.json
  packets create --type context --target claude --scope read notes.json`

const createShortDesc string = "Create a new packet"

func NewCreateCmd() *cobra.Command {
	cmder := &createCommander{}

	cmd := &cobra.Command{
		Use:   "create [file|-]",
		Short: createShortDesc,
		Long:  createLongDesc,
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

			return cmder.run(args[0])
		},
	}

	cmd.Flags().StringVarP(&cmder.packetType, "type", "t", "context", "Packet type (identity, session, context, handover, sync, checkpoint)")
	cmd.Flags().IntVarP(&cmder.priority, "priority", "p", 0, "Priority 1-4 (defaults by type)")
	cmd.Flags().BoolVar(&cmder.public, "public", false, "Mark the packet publicly shareable")
	cmd.Flags().StringSliceVar(&cmder.targets, "target", nil, "Allowed recipient (name or name:id, repeatable)")
	cmd.Flags().StringSliceVar(&cmder.scopes, "scope", nil, "Allowed scope (repeatable, defaults to read)")
	cmd.Flags().StringVar(&cmder.expires, "expires", "", "Consent expiry timestamp (RFC 3339)")

	return cmd
}

func (c *createCommander) run(source string) error {
	c.logger = logger.New(logger.WithDebug(c.debug), logger.WithWriter(os.Stderr))

	t, err := packet.ParseType(c.packetType)
	if err != nil {
		return err
	}

	content, err := readContent(source)
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

	arch, err := archive.Open(cfg.Storage.ArchivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer arch.Close()

	factory := packet.NewFactory(
		packet.WithMaxPacketSize(cfg.Limits.MaxPacketSize),
		packet.WithCompressionThreshold(cfg.Limits.CompressionThreshold),
		packet.WithCapture(arch.CaptureFunc()),
	)

	opts, err := c.newOptions()
	if err != nil {
		return err
	}

	p, err := factory.New(t, content, opts...)
	if err != nil {
		return err
	}

	if p.Compressed() {
		c.logger.Debug("content compressed",
			"packet", p.ID,
			"original_checksum", p.Metadata.OriginalChecksum,
		)
	}

	data, err := packet.Marshal(p)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}

func (c *createCommander) newOptions() ([]packet.NewOption, error) {
	var opts []packet.NewOption

	if c.priority != 0 {
		pr, err := packet.ParsePriority(c.priority)
		if err != nil {
			return nil, err
		}
		opts = append(opts, packet.WithPriority(pr))
	}

	if c.public || len(c.targets) > 0 || len(c.scopes) > 0 || c.expires != "" {
		consent := packet.DefaultConsent()
		consent.Public = c.public
		if len(c.targets) > 0 {
			consent.Targets = c.targets
		}
		if len(c.scopes) > 0 {
			consent.Scopes = c.scopes
		}
		if c.expires != "" {
			consent.ExpiresAt = &c.expires
		}
		opts = append(opts, packet.WithConsent(consent))
	}

	return opts, nil
}

// readContent reads a JSON object from a file path, or from stdin when
// the path is "-".
func readContent(source string) (map[string]any, error) {
	var data []byte
	var err error

	if source == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}

	var content map[string]any
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("parsing content JSON: %w", err)
	}

	return content, nil
}
