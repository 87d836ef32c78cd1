package filter

import (
	"testing"

	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/hexprefix"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/encoders/tag"
)

func mustPubkey(t *testing.T, b byte) ident.Pubkey {
	t.Helper()
	buf := make([]byte, 32)
	buf[0] = b
	pk, err := ident.NewPubkey(buf)
	if err != nil {
		t.Fatalf("NewPubkey: %v", err)
	}
	return pk
}

func TestMatchesEmptyFilter(t *testing.T) {
	f := &F{}
	ev := &event.E{Kind: 1, Tags: tag.Tags{}}
	if !f.Matches(ev) {
		t.Fatal("empty filter should match every event")
	}
}

func TestMatchesKinds(t *testing.T) {
	f := &F{Kinds: []uint32{1, 3}}
	if !f.Matches(&event.E{Kind: 3, Tags: tag.Tags{}}) {
		t.Fatal("expected kind 3 to match")
	}
	if f.Matches(&event.E{Kind: 7, Tags: tag.Tags{}}) {
		t.Fatal("expected kind 7 to not match")
	}
}

func TestMatchesAuthorsPrefix(t *testing.T) {
	author := mustPubkey(t, 0xab)
	f := &F{Authors: []hexprefix.T{hexprefix.MustParse("ab")}}
	ev := &event.E{Pubkey: author, Tags: tag.Tags{}}
	if !f.Matches(ev) {
		t.Fatal("expected author prefix to match")
	}
	other := mustPubkey(t, 0xcd)
	ev2 := &event.E{Pubkey: other, Tags: tag.Tags{}}
	if f.Matches(ev2) {
		t.Fatal("expected non-matching author prefix to fail")
	}
}

func TestMatchesSinceUntil(t *testing.T) {
	since := int64(100)
	until := int64(200)
	f := &F{Since: &since, Until: &until}
	if !f.Matches(&event.E{CreatedAt: 150, Tags: tag.Tags{}}) {
		t.Fatal("expected 150 within [100,200] to match")
	}
	if f.Matches(&event.E{CreatedAt: 50, Tags: tag.Tags{}}) {
		t.Fatal("expected 50 before since to fail")
	}
	if f.Matches(&event.E{CreatedAt: 250, Tags: tag.Tags{}}) {
		t.Fatal("expected 250 after until to fail")
	}
}

func TestMatchesPTag(t *testing.T) {
	pk := mustPubkey(t, 0x11)
	f := &F{PTags: []ident.Pubkey{pk}}
	ev := &event.E{Tags: tag.Tags{tag.New("p", pk.String())}}
	if !f.Matches(ev) {
		t.Fatal("expected matching p tag to match")
	}
	ev2 := &event.E{Tags: tag.Tags{}}
	if f.Matches(ev2) {
		t.Fatal("expected absent p tag to fail")
	}
}
