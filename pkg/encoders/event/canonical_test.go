package event

import (
	"testing"

	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/encoders/tag"
)

func TestCanonicalJSON(t *testing.T) {
	pk, err := ident.NewPubkey([]byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x12, 0x1a, 0xa0, 0xff, 0x01, 0x02,
		0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x12, 0x1a, 0xa0, 0xff, 0x01, 0x02, 0x03, 0x04,
		0x05, 0x06, 0x07, 0x08,
	})
	if err != nil {
		t.Fatalf("NewPubkey: %v", err)
	}
	c := Canonical{
		Pubkey:    pk,
		CreatedAt: 1677538187,
		Kind:      1,
		Tags:      tag.Tags{},
		Content:   "content",
	}
	want := `[0,"0102030405060708121aa0ff0102030405060708121aa0ff0102030405060708",1677538187,1,[],"content"]`
	if got := string(c.JSON()); got != want {
		t.Fatalf("JSON() =\n%s\nwant\n%s", got, want)
	}
}

func TestCanonicalSha256(t *testing.T) {
	pk, err := ident.NewPubkey([]byte{
		0x73, 0x49, 0x15, 0x09, 0xb8, 0xe2, 0xd8, 0x08, 0x40, 0x87, 0x3b, 0x5a, 0x13, 0xba,
		0x98, 0xa5, 0xd1, 0xac, 0x3a, 0x16, 0xc9, 0x29, 0x2e, 0x10, 0x6b, 0x1f, 0x2e, 0xda,
		0x31, 0x15, 0x2c, 0x52,
	})
	if err != nil {
		t.Fatalf("NewPubkey: %v", err)
	}
	c := Canonical{
		Pubkey:    pk,
		CreatedAt: 1677711753,
		Kind:      1,
		Tags:      tag.Tags{},
		Content:   "おはのすー",
	}
	want := ident.EventId{
		0xb8, 0xe9, 0x21, 0x46, 0xc5, 0xd3, 0xc0, 0x06, 0xb2, 0xde, 0x7b, 0x2a, 0xbb, 0xdb,
		0x5f, 0xb7, 0xb5, 0xbc, 0x39, 0xde, 0xc4, 0x78, 0xa9, 0x73, 0x93, 0x36, 0x94, 0x99,
		0x95, 0x2e, 0xbb, 0x62,
	}
	if got := c.Sha256(); got != want {
		t.Fatalf("Sha256() = %s, want %s", got, want)
	}
}

func TestIdMatches(t *testing.T) {
	pk, err := ident.NewPubkey(make([]byte, 32))
	if err != nil {
		t.Fatalf("NewPubkey: %v", err)
	}
	ev := &E{Pubkey: pk, CreatedAt: 1, Kind: 1, Tags: tag.Tags{}, Content: "x"}
	ev.Id = ComputeId(ev)
	if !IdMatches(ev) {
		t.Fatal("expected freshly computed id to match")
	}
	ev.Content = "y"
	if IdMatches(ev) {
		t.Fatal("expected mutated content to invalidate id")
	}
}
