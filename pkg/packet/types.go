package packet

// Type classifies a packet and determines which memory tier it routes to.
type Type string

const (
	// TypeIdentity is the core persistent identity.
	TypeIdentity Type = "identity"

	// TypeSession is session-specific memory.
	TypeSession Type = "session"

	// TypeContext is rolling context data.
	TypeContext Type = "context"

	// TypeHandover carries state across a provider switch.
	TypeHandover Type = "handover"

	// TypeSync is a cross-system synchronization packet.
	TypeSync Type = "sync"

	// TypeCheckpoint is a full state snapshot.
	TypeCheckpoint Type = "checkpoint"
)

// ParseType validates a wire tag against the closed set of packet types.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeIdentity, TypeSession, TypeContext, TypeHandover, TypeSync, TypeCheckpoint:
		return t, nil
	}
	return "", HeaderError{Field: "type", Value: s}
}

// Priority orders packets for processing. Lower values take precedence.
type Priority int

const (
	// PriorityCritical marks core identity that must be preserved.
	PriorityCritical Priority = 1

	// PriorityHigh marks recent, important context.
	PriorityHigh Priority = 2

	// PriorityMedium marks useful session data.
	PriorityMedium Priority = 3

	// PriorityLow marks older, optional context.
	PriorityLow Priority = 4
)

// ParsePriority validates a wire value against the closed set of priorities.
func ParsePriority(v int) (Priority, error) {
	switch p := Priority(v); p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return 0, HeaderError{Field: "priority", Value: v}
}

// DefaultPriority returns the priority assigned to a type when the caller
// does not supply one explicitly.
func DefaultPriority(t Type) Priority {
	switch t {
	case TypeIdentity:
		return PriorityCritical
	case TypeHandover, TypeCheckpoint:
		return PriorityHigh
	case TypeSync:
		return PriorityLow
	default:
		return PriorityMedium
	}
}
