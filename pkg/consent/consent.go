// Package consent evaluates whether a packet may be disclosed to a given
// recipient and scope. All functions are pure predicates over the
// packet's consent policy; a denial is a plain false, never an error.
package consent

import (
	"strings"

	"github.com/mountainvillage/packets/pkg/packet"
)

// CanShare reports whether a packet may be disclosed to recipient.
// An empty scope means "any scope".
//
// Expired consent denies unconditionally, regardless of public or
// targets. Public packets grant any recipient, subject to the scope
// check. Otherwise targets are scanned in order: each entry is a bare
// name or "name:id", matched case-insensitively against the recipient on
// the bare name or on either half of a "name:id" entry. The first match
// decides; no match denies.
func CanShare(p *packet.Packet, recipient, scope string) bool {
	if p.Expired() {
		return false
	}

	if p.Consent.Public {
		return scopeAllowed(p.Consent.Scopes, scope)
	}

	r := strings.ToLower(recipient)
	for _, target := range p.Consent.Targets {
		if matchesTarget(target, r) {
			return scopeAllowed(p.Consent.Scopes, scope)
		}
	}

	return false
}

// FilterFor returns the packets disclosable to recipient, preserving
// input order.
func FilterFor(ps []*packet.Packet, recipient, scope string) []*packet.Packet {
	out := make([]*packet.Packet, 0, len(ps))
	for _, p := range ps {
		if CanShare(p, recipient, scope) {
			out = append(out, p)
		}
	}
	return out
}

func matchesTarget(target, recipient string) bool {
	if name, id, ok := strings.Cut(target, ":"); ok {
		return recipient == strings.ToLower(name) || recipient == strings.ToLower(id)
	}
	return recipient == strings.ToLower(target)
}

func scopeAllowed(scopes []string, scope string) bool {
	if scope == "" {
		return true
	}
	for _, s := range scopes {
		if s == scope {
			return true
		}
	}
	return false
}
