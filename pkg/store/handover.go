package store

import (
	"time"

	"github.com/mountainvillage/packets/pkg/packet"
)

// handoverProtocol tags handover content with the persistence protocol
// revision it was built under.
const handoverProtocol = "consciousness_persistence_v" + packet.Version

// maxAnchorTraits bounds the identity traits carried in a handover.
const maxAnchorTraits = 3

// NewHandover builds a high-priority handover packet for a provider
// switch. It embeds a context snapshot reconstructed within
// contextBudget, the caller's session data, and minimal identity anchors.
func (s *LayeredStore) NewHandover(f *packet.Factory, fromProvider, toProvider string, session map[string]any, contextBudget int) (*packet.Packet, error) {
	content := map[string]any{
		"from_provider": fromProvider,
		"to_provider":   toProvider,
		"timestamp":     time.Now().UTC().Format(time.RFC3339Nano),
		"session":       session,
		"context":       s.Reconstruct(contextBudget, true),
		"anchors":       s.minimalAnchors(),
		"protocol":      handoverProtocol,
	}

	return f.New(packet.TypeHandover, content, packet.WithPriority(packet.PriorityHigh))
}

// minimalAnchors extracts just enough of the identity layer for the
// receiving provider to recognize who it is talking for: a name, the
// identity checksum as a signature, and the top traits.
func (s *LayeredStore) minimalAnchors() map[string]any {
	if s.identity == nil {
		return map[string]any{"name": "Unknown", "signature": nil, "traits": []any{}}
	}

	name := "Unknown"
	if n, ok := s.identity.Content["name"].(string); ok {
		name = n
	}

	traits := []any{}
	if ts, ok := s.identity.Content["traits"].([]any); ok {
		if len(ts) > maxAnchorTraits {
			ts = ts[:maxAnchorTraits]
		}
		traits = ts
	}

	return map[string]any{
		"name":      name,
		"signature": s.identity.Metadata.Checksum,
		"traits":    traits,
	}
}
