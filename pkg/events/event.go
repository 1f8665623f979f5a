// Package events defines transport-neutral notifications for packet
// lifecycle milestones. The engine itself never touches a wire; callers
// inject whatever Publisher backend they run.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mountainvillage/packets/pkg/packet"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypePacketEmitted is emitted after a packet is appended to the
	// outgoing buffer and durably persisted.
	EventTypePacketEmitted = "packets.packet.emitted"
)

// PacketEmittedEvent is a transport-neutral payload for an emitted packet.
type PacketEmittedEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventType     string          `json:"event_type"`
	EventID       string          `json:"event_id"`
	EmittedAt     time.Time       `json:"emitted_at"`
	PacketID      string          `json:"packet_id"`
	PacketType    packet.Type     `json:"packet_type"`
	Priority      packet.Priority `json:"priority"`
	TokenCount    int             `json:"token_count"`
	Path          string          `json:"path,omitempty"`
}

// NewPacketEmittedEvent builds the event payload for an emitted packet.
// Path is the durable file path, empty when persistence was disabled.
func NewPacketEmittedEvent(p *packet.Packet, path string) *PacketEmittedEvent {
	return &PacketEmittedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypePacketEmitted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		PacketID:      p.ID,
		PacketType:    p.Type,
		Priority:      p.Priority,
		TokenCount:    p.Metadata.TokenCount,
		Path:          path,
	}
}
