package store

import "github.com/mountainvillage/packets/pkg/packet"

// Stats is a point-in-time snapshot of store occupancy.
type Stats struct {
	Version         string `json:"handler_version"`
	TotalPackets    int    `json:"total_packets"`
	IncomingBuffer  int    `json:"incoming_buffer"`
	OutgoingBuffer  int    `json:"outgoing_buffer"`
	ContextLayers   int    `json:"context_layers"`
	SessionMemories int    `json:"session_memories"`
	HasIdentity     bool   `json:"has_identity"`
	TotalTokens     int    `json:"total_tokens"`
	BufferLimit     int    `json:"buffer_limit"`
}

// Stats reports buffer and tier occupancy plus the aggregate token count
// held across the memory tiers.
func (s *LayeredStore) Stats() Stats {
	stats := Stats{
		Version:         packet.Version,
		IncomingBuffer:  s.incoming.Len(),
		OutgoingBuffer:  s.outgoing.Len(),
		ContextLayers:   s.contexts.Len(),
		SessionMemories: s.session.Len(),
		HasIdentity:     s.identity != nil,
		BufferLimit:     MaxBufferSize,
	}

	stats.TotalPackets = stats.IncomingBuffer + stats.OutgoingBuffer +
		stats.ContextLayers + stats.SessionMemories
	if stats.HasIdentity {
		stats.TotalPackets++
	}

	for _, p := range s.session.Items() {
		stats.TotalTokens += p.Metadata.TokenCount
	}
	for _, p := range s.contexts.Items() {
		stats.TotalTokens += p.Metadata.TokenCount
	}
	if s.identity != nil {
		stats.TotalTokens += s.identity.Metadata.TokenCount
	}

	return stats
}
