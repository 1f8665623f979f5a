// Package packet implements self-describing, integrity-checked,
// consent-scoped units of conversational memory.
package packet

import (
	"time"
)

// Version is the packet protocol version recorded in metadata.
const Version = "2.3.0"

// createdLayout is a fixed-width RFC 3339 layout. Zero-padded fractional
// seconds keep lexicographic order equal to chronological order.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Consent is the disclosure policy attached to a packet.
type Consent struct {
	// Public allows disclosure to any recipient.
	Public bool `json:"public"`

	// Targets lists allowed recipients as "name" or "name:id" entries,
	// matched case-insensitively and in order.
	Targets []string `json:"targets"`

	// Scopes is the set of capabilities granted (default "read").
	Scopes []string `json:"scopes"`

	// ExpiresAt is an optional RFC 3339 UTC timestamp after which the
	// consent (not the packet) is void.
	ExpiresAt *string `json:"expires_at"`
}

// DefaultConsent returns the private, read-only policy applied when a
// packet is created without an explicit one.
func DefaultConsent() Consent {
	return Consent{
		Public:  false,
		Targets: []string{},
		Scopes:  []string{"read"},
	}
}

// Expired reports whether the consent window has passed. A missing
// expiry never expires. An unparsable timestamp is treated as not
// expired; this fail-open behavior is a documented trust boundary and
// must not be tightened without revisiting the consent tests.
func (c Consent) Expired() bool {
	if c.ExpiresAt == nil || *c.ExpiresAt == "" {
		return false
	}

	expiry, err := time.Parse(time.RFC3339, *c.ExpiresAt)
	if err != nil {
		return false
	}

	return time.Now().UTC().After(expiry)
}

// Metadata carries construction-time bookkeeping for a packet. All
// fields are computed once at construction and never recomputed.
type Metadata struct {
	// Created is the construction timestamp, RFC 3339 UTC.
	Created string `json:"created"`

	// Version is the packet protocol version.
	Version string `json:"version"`

	// TokenCount is the deterministic size estimate: one token per four
	// bytes of canonical content JSON.
	TokenCount int `json:"token_count"`

	// Checksum is a 16-hex-char digest over the canonical content JSON,
	// used purely for tamper and corruption detection.
	Checksum string `json:"checksum"`

	// Compressed marks packets whose content was replaced by the
	// compression placeholder at construction.
	Compressed bool `json:"compressed,omitempty"`

	// OriginalChecksum preserves the pre-compression content digest so a
	// recovered original can be reconciled later.
	OriginalChecksum string `json:"original_checksum,omitempty"`
}

// Packet is an immutable-after-construction unit of cached content.
// Construct packets through a Factory or Unmarshal; mutating Content
// after construction invalidates the checksum and is a programming
// error that VerifyIntegrity will expose.
type Packet struct {
	ID       string         `json:"id"`
	Type     Type           `json:"type"`
	Priority Priority       `json:"priority"`
	Consent  Consent        `json:"consent"`
	Content  map[string]any `json:"content"`
	Metadata Metadata       `json:"metadata"`
}

// VerifyIntegrity recomputes the content checksum and compares it to the
// one stored at construction.
func (p *Packet) VerifyIntegrity() bool {
	sum, err := Checksum(p.Content)
	if err != nil {
		return false
	}
	return sum == p.Metadata.Checksum
}

// Expired reports whether the packet's own consent window has passed.
func (p *Packet) Expired() bool {
	return p.Consent.Expired()
}

// Compressed reports whether the packet carries placeholder content
// produced by the compression step.
func (p *Packet) Compressed() bool {
	return p.Metadata.Compressed
}

func nowISO() string {
	return time.Now().UTC().Format(createdLayout)
}
