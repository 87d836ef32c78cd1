package subscription

import (
	"strings"
	"testing"
)

func TestParseIdValid(t *testing.T) {
	id, err := ParseId("my-sub-1")
	if err != nil {
		t.Fatalf("ParseId: %v", err)
	}
	if id.String() != "my-sub-1" {
		t.Fatalf("String() = %q", id.String())
	}
}

func TestParseIdEmpty(t *testing.T) {
	if _, err := ParseId(""); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestParseIdTooLong(t *testing.T) {
	if _, err := ParseId(strings.Repeat("a", 65)); err == nil {
		t.Fatal("expected error for 65-character id")
	}
}

func TestParseIdMaxLength(t *testing.T) {
	s := strings.Repeat("a", MaxIdLength)
	if _, err := ParseId(s); err != nil {
		t.Fatalf("ParseId at max length: %v", err)
	}
}
