package relayinfo

import (
	"encoding/json"
	"sort"
	"testing"
)

func TestGetListPreservesOrder(t *testing.T) {
	nips := GetList(EndOfStoredEvents, BasicProtocol, RelayInformationDocument)
	want := Nips{EndOfStoredEvents, BasicProtocol, RelayInformationDocument}
	for i := range want {
		if nips[i] != want[i] {
			t.Fatalf("GetList()[%d] = %d, want %d", i, nips[i], want[i])
		}
	}
}

func TestNipsSort(t *testing.T) {
	nips := GetList(EndOfStoredEvents, BasicProtocol, RelayInformationDocument)
	sort.Sort(nips)
	want := Nips{BasicProtocol, RelayInformationDocument, EndOfStoredEvents}
	for i := range want {
		if nips[i] != want[i] {
			t.Fatalf("sorted[%d] = %d, want %d", i, nips[i], want[i])
		}
	}
}

func TestDocumentMarshalsSupportedNips(t *testing.T) {
	doc := T{Name: "r", Nips: GetList(BasicProtocol, RelayInformationDocument)}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"name":"r","supported_nips":[1,11],"limitation":{"max_message_length":0,"max_subscriptions":0,"max_filters":0,"max_limit":0,"max_subid_length":0,"min_prefix":0,"max_event_tags":0,"max_content_length":0,"min_pow_difficulty":0,"auth_required":false,"payment_required":false}}`
	if string(b) != want {
		t.Fatalf("Marshal() = %s, want %s", b, want)
	}
}

func TestAdvertisedNipsAreExactlyBasicInfoEose(t *testing.T) {
	nips := GetList(BasicProtocol, RelayInformationDocument, EndOfStoredEvents)
	want := Nips{1, 11, 15}
	for i := range want {
		if nips[i] != want[i] {
			t.Fatalf("nips[%d] = %d, want %d", i, nips[i], want[i])
		}
	}
}

func TestDefaultLimitsMatchAdvertisedValues(t *testing.T) {
	l := DefaultLimits()
	want := Limits{
		MaxMessageLength: 16384,
		MaxSubscriptions: 20,
		MaxFilters:       100,
		MaxLimit:         5000,
		MaxSubidLength:   100,
		MinPrefix:        4,
		MaxEventTags:     100,
		MaxContentLength: 8196,
		MinPowDifficulty: 30,
	}
	if l != want {
		t.Fatalf("DefaultLimits() = %+v, want %+v", l, want)
	}
}
