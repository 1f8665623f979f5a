package packet

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/oklog/ulid/v2"
)

// canonicalContent serializes content to its canonical form.
// encoding/json marshals map keys in sorted order at every level, so the
// output is deterministic for equal content regardless of insertion order.
func canonicalContent(content map[string]any) ([]byte, error) {
	if content == nil {
		content = map[string]any{}
	}
	return json.Marshal(content)
}

// Checksum computes the 16-hex-char digest over canonical content JSON.
func Checksum(content map[string]any) (string, error) {
	data, err := canonicalContent(content)
	if err != nil {
		return "", err
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])[:16], nil
}

// EstimateTokens returns the deterministic token estimate for content:
// one token per four bytes of canonical content JSON.
func EstimateTokens(content map[string]any) (int, error) {
	data, err := canonicalContent(content)
	if err != nil {
		return 0, err
	}
	return len(data) / 4, nil
}

// Marshal serializes a packet to indented JSON with stable field order:
// id, type, priority, consent, content, metadata.
func Marshal(p *Packet) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// wirePacket is the permissive decode target for Unmarshal. Header tags
// are validated before a Packet is constructed from it.
type wirePacket struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Priority int            `json:"priority"`
	Consent  *Consent       `json:"consent"`
	Content  map[string]any `json:"content"`
	Metadata Metadata       `json:"metadata"`
}

// Unmarshal reconstructs a packet from serialized text. Text that is not
// valid JSON fails with EncodingError; unrecognized type or priority tags
// fail with HeaderError. The original id and metadata are preserved so a
// round-tripped packet still verifies against its stored checksum.
func Unmarshal(data []byte) (*Packet, error) {
	var w wirePacket
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, EncodingError{Err: err}
	}
	return fromWire(w)
}

// FromMap reconstructs a packet from pre-parsed structured data, with
// the same validation and id preservation as Unmarshal.
func FromMap(m map[string]any) (*Packet, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, EncodingError{Err: err}
	}

	var w wirePacket
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, EncodingError{Err: err}
	}
	return fromWire(w)
}

func fromWire(w wirePacket) (*Packet, error) {
	t, err := ParseType(w.Type)
	if err != nil {
		return nil, err
	}

	prio, err := ParsePriority(w.Priority)
	if err != nil {
		return nil, err
	}

	consent := DefaultConsent()
	if w.Consent != nil {
		consent = normalizeConsent(*w.Consent)
	}

	// A packet reconstructed from the wire keeps its original id; only a
	// packet that never had one gets a fresh id.
	id := w.ID
	if id == "" {
		id = newID()
	}

	content := w.Content
	if content == nil {
		content = map[string]any{}
	}

	return &Packet{
		ID:       id,
		Type:     t,
		Priority: prio,
		Consent:  consent,
		Content:  content,
		Metadata: w.Metadata,
	}, nil
}

func normalizeConsent(c Consent) Consent {
	if c.Targets == nil {
		c.Targets = []string{}
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"read"}
	}
	return c
}

// newID generates a packet id from a monotonic time source plus a short
// random suffix, in the form "cp_<ulid>". Factory-constructed packets use
// the factory's monotonic entropy instead.
func newID() string {
	return "cp_" + ulid.Make().String()
}
