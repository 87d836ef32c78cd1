package event

import (
	"bytes"
	"encoding/json"

	"github.com/minio/sha256-simd"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/encoders/tag"
)

// marshalNoEscape runs v through json.Encoder with HTML escaping disabled:
// the canonical form must match byte-for-byte what every other relay and
// client computes, and Go's default Marshal rewrites '<', '>', '&' (and
// U+2028/U+2029) to \u escapes that NIP-01's id computation does not use.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Canonical is the hashable projection of a RawEvent: a six-element JSON
// array `[0, pubkey_hex, created_at, kind, tags, content]`. Its
// MarshalJSON encodes as a bare array, not an object, matching NIP-01's
// id-computation rule exactly.
type Canonical struct {
	Pubkey    ident.Pubkey
	CreatedAt int64
	Kind      uint32
	Tags      tag.Tags
	Content   string
}

func CanonicalOf(ev *E) Canonical {
	return Canonical{
		Pubkey:    ev.Pubkey,
		CreatedAt: ev.CreatedAt,
		Kind:      ev.Kind,
		Tags:      ev.Tags,
		Content:   ev.Content,
	}
}

func (c Canonical) MarshalJSON() ([]byte, error) {
	tags := c.Tags
	if tags == nil {
		tags = tag.Tags{}
	}
	return marshalNoEscape([]any{0, c.Pubkey.String(), c.CreatedAt, c.Kind, tags, c.Content})
}

// JSON returns the canonical JSON encoding. Calls MarshalJSON directly
// rather than through json.Marshal(c): the top-level Marshal call
// re-escapes HTML characters in an already-encoded Marshaler's output
// with its own default escaper, which would undo marshalNoEscape's work.
func (c Canonical) JSON() []byte {
	b, _ := c.MarshalJSON() // never errors
	return b
}

// Sha256 hashes the canonical JSON encoding with a SIMD-accelerated
// implementation, since id computation sits on the EVENT hot path.
func (c Canonical) Sha256() ident.EventId {
	sum := sha256.Sum256(c.JSON())
	return ident.EventId(sum)
}

// ComputeId returns the id this event's canonical projection hashes to,
// independent of whatever ev.Id currently holds.
func ComputeId(ev *E) ident.EventId {
	return CanonicalOf(ev).Sha256()
}

// IdMatches reports whether ev.Id equals its own computed canonical hash.
func IdMatches(ev *E) bool {
	computed := ComputeId(ev)
	return bytes.Equal(computed[:], ev.Id[:])
}
