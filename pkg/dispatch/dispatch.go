// Package dispatch implements the request dispatcher: it turns a parsed
// client Request into store writes, broadcaster publishes, and outbound
// EVENT/EOSE frames, and starts the subscription runner that merges live
// broadcast events into a REQ's matching stream.
package dispatch

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"relaymere.dev/pkg/broadcast"
	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/filters"
	"relaymere.dev/pkg/encoders/subscription"
	"relaymere.dev/pkg/protocol/message"
	"relaymere.dev/pkg/registry"
	"relaymere.dev/pkg/store"
	"relaymere.dev/pkg/utils/context"
	"relaymere.dev/pkg/utils/log"
)

// runnerPoll is how often a SubscriptionRunner re-checks that it is still
// the live generation for its subscription, even absent broadcast traffic.
const runnerPoll = 10 * time.Second

// Dispatcher owns the collaborators a Request needs: persistence and the
// in-process event fan-out.
type Dispatcher struct {
	Store       store.I
	Broadcaster *broadcast.Broadcaster
}

// New constructs a Dispatcher.
func New(st store.I, bc *broadcast.Broadcaster) *Dispatcher {
	return &Dispatcher{Store: st, Broadcaster: bc}
}

// Handle processes one parsed Request on behalf of conn, within ctx's
// lifetime. It never returns an error to the connection: malformed or
// unverifiable input is logged and otherwise ignored, matching the
// protocol's liberal-in-what-you-accept posture.
func (d *Dispatcher) Handle(ctx context.T, conn *registry.Connection, req message.Request) {
	switch req.Kind {
	case message.KindEvent:
		d.handleEvent(ctx, req.Event)
	case message.KindReq:
		d.handleReq(ctx, conn, req.Req)
	case message.KindClose:
		conn.CloseSubscription(req.Close)
	}
}

func (d *Dispatcher) handleEvent(ctx context.T, ev *event.E) {
	ok, err := ev.Verify()
	if err != nil || !ok {
		log.D.F("dispatch: event %s failed verification: %v", ev.Id, err)
		return
	}
	d.Broadcaster.Send(ev)
	if err := d.Store.Put(ctx, ev); err != nil {
		log.E.F("dispatch: store event: %v", err)
	}
	if ev.IsReplaceable() {
		if err := d.Store.PutContactListIfNewer(ctx, ev); err != nil {
			log.E.F("dispatch: store contact list: %v", err)
		}
	}
}

func (d *Dispatcher) handleReq(ctx context.T, conn *registry.Connection, req *message.ReqPayload) {
	if req == nil {
		return
	}
	gen := conn.OpenSubscription(req.SubscriptionId)
	fs := filters.T(req.Filters)
	events, err := d.Store.Scan(ctx, fs.MinSince(), fs.MaxUntil())
	if err != nil {
		log.E.F("dispatch: scan: %v", err)
		return
	}
	matched := make([]*event.E, 0, len(events))
	for _, ev := range events {
		if fs.Matches(ev) {
			matched = append(matched, ev)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt > matched[j].CreatedAt })
	for _, ev := range matched {
		d.sendEvent(conn, req.SubscriptionId, ev)
	}
	d.sendEose(conn, req.SubscriptionId)

	rx := d.Broadcaster.Subscribe()
	go d.runSubscription(ctx, conn, req.SubscriptionId, gen, rx, fs)
}

// runSubscription forwards matching live events to conn until superseded,
// the connection closes, ctx is done, or the broadcaster shuts down.
func (d *Dispatcher) runSubscription(
	ctx context.T, conn *registry.Connection, id subscription.Id,
	gen ulid.ULID, rx *broadcast.Receiver, fs filters.T,
) {
	defer rx.Unsubscribe()
	ticker := time.NewTicker(runnerPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if conn.Status() != registry.Connected || !conn.CurrentGeneration(id, gen) {
				return
			}
		case signal, ok := <-rx.Done:
			if !ok {
				return
			}
			switch signal.(type) {
			case broadcast.Lagged:
				continue
			default:
				return
			}
		case ev, ok := <-rx.Events:
			if !ok {
				return
			}
			if !fs.Matches(ev) {
				continue
			}
			if conn.Status() != registry.Connected || !conn.CurrentGeneration(id, gen) {
				return
			}
			d.sendEvent(conn, id, ev)
		}
	}
}

func (d *Dispatcher) sendEvent(conn *registry.Connection, id subscription.Id, ev *event.E) {
	frame, err := json.Marshal(message.EventResponse{SubscriptionId: id, Event: ev})
	if err != nil {
		log.E.F("dispatch: marshal EVENT: %v", err)
		return
	}
	conn.Send(frame)
}

func (d *Dispatcher) sendEose(conn *registry.Connection, id subscription.Id) {
	frame, err := json.Marshal(message.EoseResponse{SubscriptionId: id})
	if err != nil {
		log.E.F("dispatch: marshal EOSE: %v", err)
		return
	}
	conn.Send(frame)
}
