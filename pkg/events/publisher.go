package events

import "context"

// Publisher publishes packet events to a caller-supplied backend.
type Publisher interface {
	PublishEmit(ctx context.Context, event *PacketEmittedEvent) error
	Close() error
}
