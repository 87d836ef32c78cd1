// Package relayinfo builds the NIP-11 relay information document served
// at the root path when a client requests application/nostr+json.
package relayinfo

// N is a NIP number advertised in a relay information document's
// supported_nips list.
type N int

const (
	BasicProtocol            N = 1
	RelayInformationDocument N = 11
	EndOfStoredEvents        N = 15
)

// Nips is a sortable list of supported NIP numbers.
type Nips []N

func (n Nips) Len() int           { return len(n) }
func (n Nips) Less(i, j int) bool { return n[i] < n[j] }
func (n Nips) Swap(i, j int)      { n[i], n[j] = n[j], n[i] }

// GetList returns ns as a Nips slice, in the order given.
func GetList(ns ...N) Nips {
	out := make(Nips, len(ns))
	copy(out, ns)
	return out
}

// Limits describes the operational limits a relay enforces. Every field
// always serializes (no omitempty): the advertised defaults are part of
// what clients rely on being present, not absence-means-unset data.
type Limits struct {
	MaxMessageLength int  `json:"max_message_length"`
	MaxSubscriptions int  `json:"max_subscriptions"`
	MaxFilters       int  `json:"max_filters"`
	MaxLimit         int  `json:"max_limit"`
	MaxSubidLength   int  `json:"max_subid_length"`
	MinPrefix        int  `json:"min_prefix"`
	MaxEventTags     int  `json:"max_event_tags"`
	MaxContentLength int  `json:"max_content_length"`
	MinPowDifficulty int  `json:"min_pow_difficulty"`
	AuthRequired     bool `json:"auth_required"`
	PaymentRequired  bool `json:"payment_required"`
}

// DefaultLimits is the limitation block advertised in the relay information
// document. The values are published only; incoming traffic is not checked
// against them.
func DefaultLimits() Limits {
	return Limits{
		MaxMessageLength: 16384,
		MaxSubscriptions: 20,
		MaxFilters:       100,
		MaxLimit:         5000,
		MaxSubidLength:   100,
		MinPrefix:        4,
		MaxEventTags:     100,
		MaxContentLength: 8196,
		MinPowDifficulty: 30,
		AuthRequired:     false,
		PaymentRequired:  false,
	}
}

// T is the NIP-11 relay information document.
type T struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Pubkey      string `json:"pubkey,omitempty"`
	Contact     string `json:"contact,omitempty"`
	Nips        Nips   `json:"supported_nips"`
	Software    string `json:"software,omitempty"`
	Version     string `json:"version,omitempty"`
	Limitation  Limits `json:"limitation"`
	Icon        string `json:"icon,omitempty"`
}
