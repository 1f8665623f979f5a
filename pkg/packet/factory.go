package packet

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// DefaultMaxPacketSize is the hard admission limit in tokens.
	DefaultMaxPacketSize = 8000

	// DefaultCompressionThreshold is the token count above which content
	// is replaced with the compression placeholder.
	DefaultCompressionThreshold = 4000
)

// CaptureFunc receives a packet's original content before the compression
// step replaces it, keyed by the original id and checksum. It is the hook
// an archive uses to make later decompression possible.
type CaptureFunc func(id, checksum string, content map[string]any) error

// Factory constructs packets. It owns the monotonic entropy source for
// packet ids and enforces the size and compression limits.
type Factory struct {
	maxPacketSize        int
	compressionThreshold int
	capture              CaptureFunc
	entropy              *ulid.MonotonicEntropy
}

// FactoryOption configures a Factory created with NewFactory.
type FactoryOption func(*Factory)

// WithMaxPacketSize overrides the hard admission limit in tokens.
func WithMaxPacketSize(tokens int) FactoryOption {
	return func(f *Factory) {
		f.maxPacketSize = tokens
	}
}

// WithCompressionThreshold overrides the compression trigger in tokens.
func WithCompressionThreshold(tokens int) FactoryOption {
	return func(f *Factory) {
		f.compressionThreshold = tokens
	}
}

// WithCapture installs a hook that receives original content before the
// compression step replaces it. Capture failures are ignored; the
// compressed packet is still returned.
func WithCapture(capture CaptureFunc) FactoryOption {
	return func(f *Factory) {
		f.capture = capture
	}
}

// NewFactory creates a packet factory with the default limits.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		maxPacketSize:        DefaultMaxPacketSize,
		compressionThreshold: DefaultCompressionThreshold,
		entropy:              ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// MaxPacketSize returns the hard admission limit in tokens.
func (f *Factory) MaxPacketSize() int {
	return f.maxPacketSize
}

// CompressionThreshold returns the compression trigger in tokens.
func (f *Factory) CompressionThreshold() int {
	return f.compressionThreshold
}

// NewOption configures a single packet construction.
type NewOption func(*newConfig)

type newConfig struct {
	priority    Priority
	hasPriority bool
	consent     Consent
	hasConsent  bool
}

// WithPriority overrides the type-derived default priority.
func WithPriority(p Priority) NewOption {
	return func(c *newConfig) {
		c.priority = p
		c.hasPriority = true
	}
}

// WithConsent attaches an explicit disclosure policy.
func WithConsent(consent Consent) NewOption {
	return func(c *newConfig) {
		c.consent = consent
		c.hasConsent = true
	}
}

// New constructs a packet. Content above the hard size limit fails with
// SizeExceededError; content above the compression threshold is replaced
// with the compression placeholder before the packet is returned.
func (f *Factory) New(t Type, content map[string]any, opts ...NewOption) (*Packet, error) {
	cfg := &newConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	priority := DefaultPriority(t)
	if cfg.hasPriority {
		priority = cfg.priority
	}

	consent := DefaultConsent()
	if cfg.hasConsent {
		consent = normalizeConsent(cfg.consent)
	}

	p, err := f.build(t, content, priority, consent)
	if err != nil {
		return nil, err
	}

	if p.Metadata.TokenCount > f.maxPacketSize {
		return nil, SizeExceededError{Tokens: p.Metadata.TokenCount, Limit: f.maxPacketSize}
	}

	if p.Metadata.TokenCount > f.compressionThreshold {
		return f.compress(p)
	}

	return p, nil
}

// build assembles a packet with fresh metadata. Checksum and token count
// are computed here exactly once.
func (f *Factory) build(t Type, content map[string]any, priority Priority, consent Consent) (*Packet, error) {
	if content == nil {
		content = map[string]any{}
	}

	sum, err := Checksum(content)
	if err != nil {
		return nil, EncodingError{Err: err}
	}

	tokens, err := EstimateTokens(content)
	if err != nil {
		return nil, EncodingError{Err: err}
	}

	return &Packet{
		ID:       f.newID(),
		Type:     t,
		Priority: priority,
		Consent:  consent,
		Content:  content,
		Metadata: Metadata{
			Created:    nowISO(),
			Version:    Version,
			TokenCount: tokens,
			Checksum:   sum,
		},
	}, nil
}

func (f *Factory) newID() string {
	return "cp_" + ulid.MustNew(ulid.Timestamp(time.Now()), f.entropy).String()
}
