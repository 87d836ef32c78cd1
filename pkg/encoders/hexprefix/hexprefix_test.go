package hexprefix

import "testing"

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{"a", "ab", "abc", "deadbeef", "0123456789abcdef"} {
		p, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := p.String(); got != s {
			t.Fatalf("String() = %q, want %q", got, s)
		}
		if p.Len() != len(s) {
			t.Fatalf("Len() = %d, want %d", p.Len(), len(s))
		}
	}
}

func TestParseRejectsOutOfRange(t *testing.T) {
	if _, err := Parse(""); err == nil {
		t.Fatal("expected error for empty string")
	}
	long := make([]byte, 65)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := Parse(string(long)); err == nil {
		t.Fatal("expected error for 65-character prefix")
	}
}

func TestParseRejectsNonHex(t *testing.T) {
	if _, err := Parse("zz"); err == nil {
		t.Fatal("expected error for non-hex characters")
	}
}

func TestMatchesEvenPrefix(t *testing.T) {
	p := MustParse("dead")
	if !p.Matches([]byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatal("expected even-length prefix to match")
	}
	if p.Matches([]byte{0xde, 0xae, 0xbe, 0xef}) {
		t.Fatal("expected mismatch on second byte to fail")
	}
}

func TestMatchesOddPrefix(t *testing.T) {
	p := MustParse("dea")
	if !p.Matches([]byte{0xde, 0xad, 0xbe}) {
		t.Fatal("expected odd-length prefix to match on high nibble only")
	}
	if p.Matches([]byte{0xde, 0x1d, 0xbe}) {
		t.Fatal("expected mismatch on high nibble of third hex digit to fail")
	}
}

func TestMatchesTooShortTarget(t *testing.T) {
	p := MustParse("deadbeef")
	if p.Matches([]byte{0xde, 0xad}) {
		t.Fatal("expected target shorter than prefix to fail")
	}
}

func TestEqual(t *testing.T) {
	a := MustParse("dea")
	b := MustParse("dea")
	if !a.Equal(b) {
		t.Fatal("expected equal prefixes to compare equal")
	}
	c := MustParse("deb")
	if a.Equal(c) {
		t.Fatal("expected differing prefixes to compare unequal")
	}
	d := MustParse("de")
	if a.Equal(d) {
		t.Fatal("expected differing lengths to compare unequal")
	}
}
