// Package store holds the bounded buffers and memory tiers that make up
// the layered packet store, and owns routing, eviction, and context
// reconstruction.
//
// A LayeredStore is synchronous and single-threaded by design: it
// provides no internal locking, and a multi-threaded host must serialize
// access to each instance.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mountainvillage/packets/pkg/events"
	"github.com/mountainvillage/packets/pkg/packet"
	"github.com/mountainvillage/packets/pkg/ring"
)

const (
	// MaxBufferSize bounds the incoming and outgoing buffers. Oldest
	// entries are silently dropped on overflow.
	MaxBufferSize = 200

	// SessionCapacity bounds the session memory tier.
	SessionCapacity = 10

	// ContextCapacity bounds the rolling context tier.
	ContextCapacity = 20
)

// Persister is the durable write capability the store uses on emit.
// It returns the path of the persisted data file.
type Persister interface {
	Persist(p *packet.Packet) (string, error)
}

// LayeredStore is the process-lifetime packet store: two bounded FIFO
// buffers plus three type-routed memory tiers.
type LayeredStore struct {
	incoming *ring.Buffer[*packet.Packet]
	outgoing *ring.Buffer[*packet.Packet]

	// identity is a last-write-wins singleton, not a buffer.
	identity *packet.Packet
	session  *ring.Buffer[*packet.Packet]
	contexts *ring.Buffer[*packet.Packet]

	persister Persister
	publisher events.Publisher
	logger    *slog.Logger
}

// Option configures a LayeredStore created with New.
type Option func(*LayeredStore)

// WithPersister installs the durable write capability used on emit.
// Without one, emitted packets stay in memory only.
func WithPersister(p Persister) Option {
	return func(s *LayeredStore) {
		s.persister = p
	}
}

// WithPublisher installs an event publisher notified after successful
// emits. Publish failures are logged, never propagated.
func WithPublisher(pub events.Publisher) Option {
	return func(s *LayeredStore) {
		s.publisher = pub
	}
}

// WithLogger attaches a logger for non-fatal events.
func WithLogger(l *slog.Logger) Option {
	return func(s *LayeredStore) {
		s.logger = l
	}
}

// New creates an empty layered store.
func New(opts ...Option) *LayeredStore {
	s := &LayeredStore{
		incoming: ring.New[*packet.Packet](MaxBufferSize),
		outgoing: ring.New[*packet.Packet](MaxBufferSize),
		session:  ring.New[*packet.Packet](SessionCapacity),
		contexts: ring.New[*packet.Packet](ContextCapacity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Receive validates an incoming packet and routes it into its tier.
// The input may be serialized text ([]byte or string) or pre-parsed
// structured data (map[string]any). Validation runs in full before any
// state is mutated: a packet that fails decoding, integrity, or consent
// expiry is never buffered or routed.
func (s *LayeredStore) Receive(raw any) (*packet.Packet, error) {
	p, err := decode(raw)
	if err != nil {
		return nil, err
	}

	if !p.VerifyIntegrity() {
		return nil, packet.IntegrityError{ID: p.ID}
	}

	if p.Expired() {
		return nil, packet.ConsentExpiredError{ID: p.ID}
	}

	s.incoming.Push(p)
	s.route(p)

	return p, nil
}

// Emit appends the packet to the outgoing buffer, persists it, and
// returns its serialized form. Persistence failure propagates, but the
// buffer append is not rolled back: the packet stays visible in memory
// even when durable storage failed.
func (s *LayeredStore) Emit(p *packet.Packet) (string, error) {
	s.outgoing.Push(p)

	var path string
	if s.persister != nil {
		var err error
		path, err = s.persister.Persist(p)
		if err != nil {
			return "", err
		}
	}

	if s.publisher != nil {
		event := events.NewPacketEmittedEvent(p, path)
		if err := s.publisher.PublishEmit(context.Background(), event); err != nil && s.logger != nil {
			s.logger.Warn("emit event publish failed", "packet", p.ID, "error", err)
		}
	}

	data, err := packet.Marshal(p)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// route places a validated packet into its memory tier. Handover, sync,
// and checkpoint packets are buffered but never tiered.
func (s *LayeredStore) route(p *packet.Packet) {
	switch p.Type {
	case packet.TypeIdentity:
		s.identity = p
	case packet.TypeSession:
		s.session.Push(p)
	case packet.TypeContext:
		s.contexts.Push(p)
	}
}

func decode(raw any) (*packet.Packet, error) {
	switch v := raw.(type) {
	case []byte:
		return packet.Unmarshal(v)
	case string:
		return packet.Unmarshal([]byte(v))
	case map[string]any:
		return packet.FromMap(v)
	default:
		return nil, packet.EncodingError{Err: fmt.Errorf("unsupported packet format %T", raw)}
	}
}

// Identity returns the identity tier's packet, or nil when none has been
// received.
func (s *LayeredStore) Identity() *packet.Packet {
	return s.identity
}

// SessionMemory returns a snapshot of the session tier, oldest first.
func (s *LayeredStore) SessionMemory() []*packet.Packet {
	return s.session.Items()
}

// ContextLayers returns a snapshot of the context tier, oldest first.
func (s *LayeredStore) ContextLayers() []*packet.Packet {
	return s.contexts.Items()
}

// Incoming returns a snapshot of the incoming buffer, oldest first.
func (s *LayeredStore) Incoming() []*packet.Packet {
	return s.incoming.Items()
}

// Outgoing returns a snapshot of the outgoing buffer, oldest first.
func (s *LayeredStore) Outgoing() []*packet.Packet {
	return s.outgoing.Items()
}
