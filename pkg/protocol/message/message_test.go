package message

import (
	"encoding/json"
	"testing"

	"relaymere.dev/pkg/encoders/ident"
)

func TestParseRequestReq(t *testing.T) {
	req, err := ParseRequest([]byte(`["REQ","sub1",{"kinds":[1]}]`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Kind != KindReq {
		t.Fatalf("Kind = %v, want KindReq", req.Kind)
	}
	if req.Req.SubscriptionId.String() != "sub1" {
		t.Fatalf("SubscriptionId = %q", req.Req.SubscriptionId)
	}
	if len(req.Req.Filters) != 1 || req.Req.Filters[0].Kinds[0] != 1 {
		t.Fatalf("Filters = %+v", req.Req.Filters)
	}
}

func TestParseRequestReqMultipleFilters(t *testing.T) {
	req, err := ParseRequest([]byte(`["REQ","sub1",{"kinds":[1]},{"kinds":[3]}]`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if len(req.Req.Filters) != 2 {
		t.Fatalf("expected 2 filters, got %d", len(req.Req.Filters))
	}
}

func TestParseRequestReqInvalidSubscriptionId(t *testing.T) {
	_, err := ParseRequest([]byte(`["REQ","",{"kinds":[1]}]`))
	if err == nil {
		t.Fatal("expected error for empty subscription id")
	}
}

func TestParseRequestEvent(t *testing.T) {
	pk := ident.Pubkey{}
	evJSON := `{"id":"` + zeroHex(64) + `","pubkey":"` + pk.String() + `","created_at":1,"kind":1,"tags":[],"content":"hi","sig":"` + zeroHex(128) + `"}`
	req, err := ParseRequest([]byte(`["EVENT",` + evJSON + `]`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Kind != KindEvent {
		t.Fatalf("Kind = %v, want KindEvent", req.Kind)
	}
	if req.Event.Content != "hi" {
		t.Fatalf("Content = %q", req.Event.Content)
	}
}

func zeroHex(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0'
	}
	return string(b)
}

func TestParseRequestClose(t *testing.T) {
	req, err := ParseRequest([]byte(`["CLOSE","sub1"]`))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Kind != KindClose {
		t.Fatalf("Kind = %v, want KindClose", req.Kind)
	}
	if req.Close.String() != "sub1" {
		t.Fatalf("Close = %q", req.Close)
	}
}

func TestParseRequestUnknownDiscriminator(t *testing.T) {
	if _, err := ParseRequest([]byte(`["BOGUS"]`)); err == nil {
		t.Fatal("expected error for unknown discriminator")
	}
}

func TestParseRequestEmptyArray(t *testing.T) {
	if _, err := ParseRequest([]byte(`[]`)); err == nil {
		t.Fatal("expected error for empty array")
	}
}

func TestParseRequestMalformed(t *testing.T) {
	if _, err := ParseRequest([]byte(`not json`)); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestEventResponseMarshal(t *testing.T) {
	r := EventResponse{SubscriptionId: "sub1", Event: nil}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `["EVENT","sub1",null]`
	if string(b) != want {
		t.Fatalf("Marshal() = %s, want %s", b, want)
	}
}

func TestEoseResponseMarshal(t *testing.T) {
	r := EoseResponse{SubscriptionId: "sub1"}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `["EOSE","sub1"]`
	if string(b) != want {
		t.Fatalf("Marshal() = %s, want %s", b, want)
	}
}

func TestNoticeResponseMarshal(t *testing.T) {
	r := NoticeResponse{Message: "rate limited"}
	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `["NOTICE","rate limited"]`
	if string(b) != want {
		t.Fatalf("Marshal() = %s, want %s", b, want)
	}
}
