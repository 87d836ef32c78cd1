// Package broadcast implements the single-producer-multi-consumer event
// fan-out: an ingest channel buffered to 4096 events feeds a dedup stage
// (LRU of the last 100 ids), which copies each new event onto every
// subscriber's own bounded (cap 1000) channel. The ingest channel is not
// unbounded: Send blocks once its buffer is full.
package broadcast

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/utils/context"
)

const (
	broadcastCap = 1000
	dedupCap     = 100
)

// Closed is sent on a Receiver's done channel when the broadcaster has
// been shut down.
type Closed struct{}

// Lagged is sent on a Receiver's done channel when that receiver failed
// to keep up and some events were dropped for it specifically; the
// subscription persists.
type Lagged struct{}

// Receiver is a subscriber's view onto the broadcaster: Events delivers
// published events; Done delivers Closed or Lagged signals.
type Receiver struct {
	Events <-chan *event.E
	Done   <-chan any

	broadcaster *Broadcaster
	events      chan *event.E
	done        chan any
}

// Unsubscribe detaches this receiver. Safe to call more than once.
func (r *Receiver) Unsubscribe() {
	r.broadcaster.unsubscribe(r)
}

// Broadcaster is the EventBroadcaster: producers call Send; consumers
// call Subscribe.
type Broadcaster struct {
	ingest chan *event.E

	mu   sync.Mutex
	subs map[*Receiver]struct{}
}

// New constructs a Broadcaster and starts its dedup goroutine. A
// permanent sink-subscriber is registered so fan-out never blocks on an
// empty subscriber set.
func New(ctx context.T) *Broadcaster {
	b := &Broadcaster{
		ingest: make(chan *event.E, 4096),
		subs:   make(map[*Receiver]struct{}),
	}
	go b.dedupLoop(ctx)
	sink := b.Subscribe()
	go func() {
		for {
			select {
			case <-sink.Events:
			case <-sink.Done:
				return
			case <-ctx.Done():
				sink.Unsubscribe()
				return
			}
		}
	}()
	return b
}

// Send enqueues ev for deduplication and fan-out. Never blocks the
// caller beyond the ingest buffer filling (the ingest channel models an
// unbounded channel: producers should not be slowed by consumer speed).
func (b *Broadcaster) Send(ev *event.E) {
	b.ingest <- ev
}

// Subscribe returns a fresh Receiver that observes every event
// published after this call.
func (b *Broadcaster) Subscribe() *Receiver {
	r := &Receiver{
		broadcaster: b,
		events:      make(chan *event.E, broadcastCap),
		done:        make(chan any, 1),
	}
	r.Events = r.events
	r.Done = r.done
	b.mu.Lock()
	b.subs[r] = struct{}{}
	b.mu.Unlock()
	return r
}

func (b *Broadcaster) unsubscribe(r *Receiver) {
	b.mu.Lock()
	_, ok := b.subs[r]
	delete(b.subs, r)
	b.mu.Unlock()
	if ok {
		close(r.events)
	}
}

// dedupLoop owns the LRU exclusively; no other goroutine touches it.
func (b *Broadcaster) dedupLoop(ctx context.T) {
	cache, _ := lru.New[ident.EventId, struct{}](dedupCap)
	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case ev, ok := <-b.ingest:
			if !ok {
				b.closeAll()
				return
			}
			if _, seen := cache.Get(ev.Id); seen {
				continue
			}
			cache.Add(ev.Id, struct{}{})
			b.publish(ev)
		}
	}
}

func (b *Broadcaster) publish(ev *event.E) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for r := range b.subs {
		select {
		case r.events <- ev:
		default:
			// Receiver's channel is full: signal lag rather than block
			// the whole fan-out on one slow consumer.
			select {
			case r.done <- Lagged{}:
			default:
			}
		}
	}
}

func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for r := range b.subs {
		select {
		case r.done <- Closed{}:
		default:
		}
		close(r.events)
	}
	b.subs = make(map[*Receiver]struct{})
}
