// Package message implements the array-form wire codec: client requests
// (REQ, EVENT, CLOSE) and server responses (EVENT, NOTICE, EOSE).
package message

import (
	"encoding/json"
	"fmt"

	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/filter"
	"relaymere.dev/pkg/encoders/subscription"
)

// Request is a decoded client frame: exactly one of its Req/Event/Close
// fields is populated, selected by Kind.
type Request struct {
	Kind  RequestKind
	Req   *ReqPayload
	Event *event.E
	Close subscription.Id
}

type RequestKind int

const (
	KindReq RequestKind = iota
	KindEvent
	KindClose
)

type ReqPayload struct {
	SubscriptionId subscription.Id
	Filters        []filter.F
}

// ParseRequest decodes a client text frame: a JSON array whose first
// element is an uppercase discriminator. Trailing elements beyond what a
// discriminator requires are ignored for forward compatibility.
func ParseRequest(data []byte) (req Request, err error) {
	var raw []json.RawMessage
	if err = json.Unmarshal(data, &raw); err != nil {
		return req, fmt.Errorf("invalid request: %w", err)
	}
	if len(raw) < 1 {
		return req, fmt.Errorf("invalid length at 0")
	}
	var disc string
	if err = json.Unmarshal(raw[0], &disc); err != nil {
		return req, fmt.Errorf("invalid value; expected REQ, EVENT or CLOSE")
	}

	switch disc {
	case "REQ":
		if len(raw) < 2 {
			return req, fmt.Errorf("invalid length at 1")
		}
		var rawID string
		if err = json.Unmarshal(raw[1], &rawID); err != nil {
			return req, fmt.Errorf("invalid length at 1")
		}
		subID, err := subscription.ParseId(rawID)
		if err != nil {
			return req, fmt.Errorf("invalid length at 1")
		}
		fs := make([]filter.F, 0, len(raw)-2)
		for i := 2; i < len(raw); i++ {
			var f filter.F
			if err = json.Unmarshal(raw[i], &f); err != nil {
				return req, fmt.Errorf("invalid length at %d", i)
			}
			fs = append(fs, f)
		}
		req.Kind = KindReq
		req.Req = &ReqPayload{SubscriptionId: subID, Filters: fs}
		return req, nil

	case "EVENT":
		if len(raw) < 2 {
			return req, fmt.Errorf("invalid length at 1")
		}
		var ev event.E
		if err = json.Unmarshal(raw[1], &ev); err != nil {
			return req, fmt.Errorf("invalid length at 1")
		}
		req.Kind = KindEvent
		req.Event = &ev
		return req, nil

	case "CLOSE":
		if len(raw) < 2 {
			return req, fmt.Errorf("invalid length at 1")
		}
		var rawID string
		if err = json.Unmarshal(raw[1], &rawID); err != nil {
			return req, fmt.Errorf("invalid length at 1")
		}
		subID, err := subscription.ParseId(rawID)
		if err != nil {
			return req, fmt.Errorf("invalid length at 1")
		}
		req.Kind = KindClose
		req.Close = subID
		return req, nil

	default:
		return req, fmt.Errorf("invalid value; expected REQ, EVENT or CLOSE")
	}
}
