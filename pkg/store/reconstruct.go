package store

import (
	"sort"
	"time"

	"github.com/mountainvillage/packets/pkg/packet"
)

// ReserveMargin is the token floor at which the selection walk stops,
// even if later, smaller packets would still fit.
const ReserveMargin = 100

// Layer is one selected entry of a reconstructed context snapshot.
type Layer struct {
	Type    string         `json:"type"`
	Content map[string]any `json:"content"`
	Tokens  int            `json:"tokens"`
}

// Snapshot is a token-budgeted context reconstruction.
type Snapshot struct {
	Timestamp       string  `json:"timestamp"`
	Layers          []Layer `json:"layers"`
	TotalTokens     int     `json:"total_tokens"`
	RemainingTokens int     `json:"remaining_tokens"`
	Version         string  `json:"handler_version"`
}

// Reconstruct assembles a context snapshot within tokenBudget.
//
// The identity packet, when requested and affordable, is included first.
// The remaining pool is session memory concatenated with context layers,
// sorted by priority then by ascending creation time: the earliest
// packets of a given priority win, an intentional recency-inverted
// tie-break. Selection is a greedy walk, not a knapsack optimum; chosen
// packets are never reordered and no backtracking occurs.
func (s *LayeredStore) Reconstruct(tokenBudget int, includeIdentity bool) *Snapshot {
	snapshot := &Snapshot{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Layers:    []Layer{},
		Version:   packet.Version,
	}

	remaining := tokenBudget

	if includeIdentity && s.identity != nil {
		tokens := s.identity.Metadata.TokenCount
		// An identity that does not fit is silently skipped.
		if tokens <= remaining {
			snapshot.Layers = append(snapshot.Layers, Layer{
				Type:    "identity",
				Content: s.identity.Content,
				Tokens:  tokens,
			})
			remaining -= tokens
		}
	}

	pool := append(s.SessionMemory(), s.ContextLayers()...)
	for _, p := range selectByPriority(pool, remaining) {
		tokens := p.Metadata.TokenCount
		snapshot.Layers = append(snapshot.Layers, Layer{
			Type:    tierLabel(p),
			Content: p.Content,
			Tokens:  tokens,
		})
		remaining -= tokens
	}

	snapshot.TotalTokens = tokenBudget - remaining
	snapshot.RemainingTokens = remaining

	return snapshot
}

// selectByPriority greedily picks packets from the pool within budget.
// The walk stops early once the budget drops below the reserve margin.
func selectByPriority(pool []*packet.Packet, budget int) []*packet.Packet {
	sorted := make([]*packet.Packet, len(pool))
	copy(sorted, pool)

	// Stable sort: equal (priority, created) pairs keep pool order, with
	// session entries ahead of context entries.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].Metadata.Created < sorted[j].Metadata.Created
	})

	var picked []*packet.Packet
	for _, p := range sorted {
		if tokens := p.Metadata.TokenCount; tokens <= budget {
			picked = append(picked, p)
			budget -= tokens
		}

		if budget < ReserveMargin {
			break
		}
	}

	return picked
}

func tierLabel(p *packet.Packet) string {
	switch p.Type {
	case packet.TypeSession:
		return "session"
	case packet.TypeContext:
		return "context"
	default:
		return string(p.Type)
	}
}
