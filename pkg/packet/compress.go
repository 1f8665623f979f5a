package packet

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	summaryLimit  = 200
	keyPointLimit = 50
	maxKeyPoints  = 5
)

// FetchFunc looks up a packet's pre-compression original content by its
// original id and checksum. A failure means "no original available" and is
// never propagated by Decompress.
type FetchFunc func(originalID, originalChecksum string) (map[string]any, error)

// compress replaces a packet's content with the deterministic placeholder:
// a truncated summary plus key points, alongside the original id, checksum,
// and size for later reconciliation. The original content is handed to the
// capture hook (if any) before being dropped.
func (f *Factory) compress(p *Packet) (*Packet, error) {
	if f.capture != nil {
		// Capture failures leave the original unrecoverable but do not
		// block compression.
		_ = f.capture(p.ID, p.Metadata.Checksum, p.Content)
	}

	compressed := map[string]any{
		"compressed":        true,
		"original_id":       p.ID,
		"original_checksum": p.Metadata.Checksum,
		"original_size":     p.Metadata.TokenCount,
		"summary":           summarize(p.Content),
		"key_points":        keyPoints(p.Content),
	}

	out, err := f.build(p.Type, compressed, p.Priority, p.Consent)
	if err != nil {
		return nil, err
	}

	out.Metadata.Compressed = true
	out.Metadata.OriginalChecksum = p.Metadata.Checksum

	return out, nil
}

// Decompress returns a compressed packet's original content when the
// fetch capability can recover it, and the placeholder content otherwise.
// Packets that were never compressed return their content unchanged.
func Decompress(p *Packet, fetch FetchFunc) map[string]any {
	flag, ok := p.Content["compressed"].(bool)
	if !ok || !flag {
		return p.Content
	}

	if fetch != nil {
		id, _ := p.Content["original_id"].(string)
		sum, _ := p.Content["original_checksum"].(string)

		original, err := fetch(id, sum)
		if err == nil {
			return original
		}
	}

	// Graceful fallback: the placeholder is all we have.
	return p.Content
}

// summarize is a placeholder for semantic summarization: the first 200
// characters of the canonical content JSON.
func summarize(content map[string]any) string {
	data, err := canonicalContent(content)
	if err != nil {
		return ""
	}

	text := string(data)
	if len(text) > summaryLimit {
		return text[:summaryLimit] + "..."
	}
	return text
}

// keyPoints extracts up to five "key: truncated-value" strings in sorted
// key order so repeated compression of equal content is deterministic.
func keyPoints(content map[string]any) []string {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if len(keys) > maxKeyPoints {
		keys = keys[:maxKeyPoints]
	}

	points := make([]string, 0, len(keys))
	for _, k := range keys {
		points = append(points, fmt.Sprintf("%s: %s", k, truncateValue(content[k])))
	}
	return points
}

func truncateValue(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}

	text := string(data)
	if len(text) > keyPointLimit {
		return text[:keyPointLimit]
	}
	return text
}
