// Package filter implements the declarative event-match predicate.
package filter

import (
	"golang.org/x/exp/slices"
	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/hexprefix"
	"relaymere.dev/pkg/encoders/ident"
)

// F is a single filter. All fields are optional; the zero value matches
// every event.
type F struct {
	Ids     []hexprefix.T    `json:"ids,omitempty"`
	Authors []hexprefix.T    `json:"authors,omitempty"`
	Kinds   []uint32         `json:"kinds,omitempty"`
	ETags   []ident.EventId  `json:"#e,omitempty"`
	PTags   []ident.Pubkey   `json:"#p,omitempty"`
	Since   *int64           `json:"since,omitempty"`
	Until   *int64           `json:"until,omitempty"`
	Limit   *uint            `json:"limit,omitempty"`
}

// Matches reports whether ev satisfies every non-empty field of f.
func (f *F) Matches(ev *event.E) bool {
	if len(f.Ids) > 0 && !anyPrefixMatches(f.Ids, ev.Id[:]) {
		return false
	}
	if len(f.Authors) > 0 && !anyPrefixMatches(f.Authors, ev.Pubkey[:]) {
		return false
	}
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, ev.Kind) {
		return false
	}
	if len(f.ETags) > 0 && !anyTagMatches(ev, "e", f.ETags) {
		return false
	}
	if len(f.PTags) > 0 && !anyPTagMatches(ev, f.PTags) {
		return false
	}
	if f.Since != nil && ev.CreatedAt < *f.Since {
		return false
	}
	if f.Until != nil && ev.CreatedAt > *f.Until {
		return false
	}
	return true
}

func anyPrefixMatches(prefixes []hexprefix.T, b []byte) bool {
	for _, p := range prefixes {
		if p.Matches(b) {
			return true
		}
	}
	return false
}

func containsKind(kinds []uint32, k uint32) bool {
	return slices.Contains(kinds, k)
}

func anyTagMatches(ev *event.E, name string, ids []ident.EventId) bool {
	for _, id := range ids {
		want := id.String()
		if ev.Tags.HasValue(name, want) {
			return true
		}
	}
	return false
}

func anyPTagMatches(ev *event.E, pks []ident.Pubkey) bool {
	for _, pk := range pks {
		if ev.Tags.HasValue("p", pk.String()) {
			return true
		}
	}
	return false
}

// MinSince returns f.Since, or nil if unset.
func (f *F) MinSince() *int64 { return f.Since }

// MaxUntil returns f.Until, or nil if unset.
func (f *F) MaxUntil() *int64 { return f.Until }
