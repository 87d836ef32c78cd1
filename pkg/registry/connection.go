// Package registry holds the set of live connections and the per-connection
// state a request dispatcher needs: outbound delivery, lifecycle status, and
// the active subscription generation used to supersede stale runners.
package registry

import (
	"sync"

	"github.com/oklog/ulid/v2"
	"relaymere.dev/pkg/encoders/subscription"
)

// Status is a Connection's lifecycle state.
type Status int

const (
	Connected Status = iota
	CloseRequesting
	Closed
)

// Connection is one live websocket session. Outbound frames enqueue onto an
// unbounded mutex-guarded slice-backed queue rather than a fixed-capacity
// channel: a single pump goroutine drains that queue into Tx, a single-slot
// channel the writer goroutine selects on, so a slow client stalls the pump
// alone and a producer's Send never blocks or drops a frame.
type Connection struct {
	Addr string
	Tx   chan []byte

	mu            sync.Mutex
	queue         [][]byte
	notify        chan struct{}
	done          chan struct{}
	status        Status
	subscriptions map[subscription.Id]ulid.ULID
}

// NewConnection constructs a Connection in the Connected state and starts
// its outbound pump goroutine.
func NewConnection(addr string) *Connection {
	c := &Connection{
		Addr:          addr,
		Tx:            make(chan []byte),
		notify:        make(chan struct{}, 1),
		done:          make(chan struct{}),
		status:        Connected,
		subscriptions: make(map[subscription.Id]ulid.ULID),
	}
	go c.pump()
	return c
}

// pump drains queue into Tx one frame at a time. It blocks on the channel
// send while the writer goroutine is busy or the client is slow; enqueue
// never blocks on pump, so a stalled consumer cannot stall a producer.
func (c *Connection) pump() {
	for {
		c.mu.Lock()
		for len(c.queue) == 0 {
			c.mu.Unlock()
			select {
			case <-c.notify:
			case <-c.done:
				return
			}
			c.mu.Lock()
		}
		frame := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		select {
		case c.Tx <- frame:
		case <-c.done:
			return
		}
	}
}

// Status returns the current lifecycle state.
func (c *Connection) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// RequestClose transitions Connected -> CloseRequesting and wakes the
// outbound writer with an empty frame so it notices the new status even
// if no other traffic is queued; the writer recognizes a CloseRequesting
// status after writing any frame and performs the close handshake then.
func (c *Connection) RequestClose() {
	c.mu.Lock()
	wake := c.status == Connected
	if wake {
		c.status = CloseRequesting
	}
	c.mu.Unlock()
	if wake {
		c.enqueue([]byte{})
	}
}

// MarkClosed transitions to Closed and stops the pump goroutine, idempotent.
func (c *Connection) MarkClosed() {
	c.mu.Lock()
	already := c.status == Closed
	c.status = Closed
	c.mu.Unlock()
	if !already {
		close(c.done)
	}
}

// Send enqueues frame for delivery. Returns false only once the connection
// has reached Closed; otherwise the frame is queued unconditionally, no
// matter how far behind the peer's socket is.
func (c *Connection) Send(frame []byte) bool {
	c.mu.Lock()
	closed := c.status == Closed
	c.mu.Unlock()
	if closed {
		return false
	}
	c.enqueue(frame)
	return true
}

// enqueue appends frame to the pending queue and wakes the pump if it is
// currently idle.
func (c *Connection) enqueue(frame []byte) {
	c.mu.Lock()
	c.queue = append(c.queue, frame)
	c.mu.Unlock()
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// OpenSubscription registers subscription_id with a fresh generation ulid,
// superseding any prior runner for the same id, and returns that ulid.
func (c *Connection) OpenSubscription(id subscription.Id) ulid.ULID {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := ulid.Make()
	c.subscriptions[id] = gen
	return gen
}

// CloseSubscription removes subscription_id, if present.
func (c *Connection) CloseSubscription(id subscription.Id) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, id)
}

// CurrentGeneration reports whether gen is still the live generation for
// subscription_id; a false return means an older runner should stop.
func (c *Connection) CurrentGeneration(id subscription.Id, gen ulid.ULID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cur, ok := c.subscriptions[id]
	return ok && cur == gen
}
