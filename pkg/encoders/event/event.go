// Package event is the RawEvent wire form and its canonical hashing /
// signature verification.
package event

import (
	"encoding/json"
	"fmt"

	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/encoders/tag"
)

// E is the exchanged form of a signed event: field names and hex
// encoding match the NIP-01 wire format exactly.
type E struct {
	Id        ident.EventId    `json:"id"`
	Pubkey    ident.Pubkey     `json:"pubkey"`
	CreatedAt int64            `json:"created_at"`
	Kind      uint32           `json:"kind"`
	Tags      tag.Tags         `json:"tags"`
	Content   string           `json:"content"`
	Sig       ident.Signature  `json:"sig"`
}

// IsReplaceable reports whether events of this kind supersede any
// earlier event from the same pubkey rather than accumulating. Kind 3
// (contact list) is the only replaceable kind this relay's core cares
// about; see RequestDispatcher's conditional contact-list write.
func (ev *E) IsReplaceable() bool { return ev.Kind == 3 }

func (ev *E) String() string {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Sprintf("event.E{id:%s}", ev.Id)
	}
	return string(b)
}
