// Package mirror implements an UpstreamMirror: a websocket client that
// subscribes to an external relay for the events authored by the pubkeys
// in a local contact list, verifies and republishes what it receives
// through the same Dispatcher a direct client connection would use, and
// reconnects on any read or dial failure.
package mirror

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"
	"relaymere.dev/pkg/dispatch"
	"relaymere.dev/pkg/encoders/event"
	"relaymere.dev/pkg/encoders/ident"
	"relaymere.dev/pkg/protocol/message"
	"relaymere.dev/pkg/store"
	"relaymere.dev/pkg/utils/chk"
	"relaymere.dev/pkg/utils/context"
	"relaymere.dev/pkg/utils/log"
)

const reconnectBackoff = 3 * time.Second

// Config parameterizes a Mirror instance.
type Config struct {
	URL      string
	Pubkey   string
	Poll     time.Duration
	Store    store.I
	Dispatch *dispatch.Dispatcher
}

// Mirror follows Config.Pubkey's contact list at Config.URL, refreshing
// the author set every Config.Poll and maintaining a single subscription
// for all of them at once.
type Mirror struct {
	cfg    Config
	pubkey ident.Pubkey
	// authors caches the hex-encoded pubkeys to subscribe to; refreshed by
	// a dedicated goroutine so the connection loop never blocks on a store
	// read mid-reconnect.
	authors *xsync.MapOf[string, struct{}]
}

// New validates cfg and constructs a Mirror.
func New(cfg Config) (*Mirror, error) {
	pk, err := ident.ParsePubkey(cfg.Pubkey)
	if err != nil {
		return nil, fmt.Errorf("mirror: invalid pubkey: %w", err)
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 10 * time.Minute
	}
	return &Mirror{cfg: cfg, pubkey: pk, authors: xsync.NewMapOf[string, struct{}]()}, nil
}

// Run drives the mirror until ctx is done, reconnecting across failures.
func (m *Mirror) Run(ctx context.T) error {
	go m.refreshLoop(ctx)
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := m.connectOnce(ctx); err != nil {
			log.W.F("mirror: %v, reconnecting in %s", err, reconnectBackoff)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectBackoff):
		}
	}
}

func (m *Mirror) refreshLoop(ctx context.T) {
	m.refresh(ctx)
	ticker := time.NewTicker(m.cfg.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refresh(ctx)
		}
	}
}

func (m *Mirror) refresh(ctx context.T) {
	ev, err := m.cfg.Store.GetContactList(ctx, m.pubkey)
	if err != nil || ev == nil {
		return
	}
	seen := make(map[string]struct{}, len(ev.Tags))
	for _, t := range ev.Tags {
		if t.Name != "p" {
			continue
		}
		seen[t.Value] = struct{}{}
		m.authors.Store(t.Value, struct{}{})
	}
	m.authors.Range(func(k string, _ struct{}) bool {
		if _, ok := seen[k]; !ok {
			m.authors.Delete(k)
		}
		return true
	})
}

func (m *Mirror) authorList() []string {
	out := make([]string, 0, m.authors.Size())
	m.authors.Range(func(k string, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	return out
}

func (m *Mirror) connectOnce(ctx context.T) error {
	conn, _, err := websocket.Dial(ctx, m.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := m.sendSubscription(ctx, conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		m.handleFrame(ctx, data)
	}
}

func (m *Mirror) sendSubscription(ctx context.T, conn *websocket.Conn) error {
	subID := ulid.Make().String()
	authors := m.authorList()
	if len(authors) == 0 {
		return fmt.Errorf("no followed authors loaded from the contact list")
	}
	since := time.Now().Add(-5 * time.Second).Unix()
	frame := []any{"REQ", subID, map[string]any{"authors": authors, "since": since}}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// handleFrame decodes a relay-to-client frame and, if it is an EVENT that
// verifies, republishes it through the same path a directly-connected
// client's EVENT would take.
func (m *Mirror) handleFrame(ctx context.T, data []byte) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || len(raw) < 1 {
		return
	}
	var disc string
	if err := json.Unmarshal(raw[0], &disc); err != nil || disc != "EVENT" || len(raw) < 3 {
		return
	}
	var ev event.E
	if err := json.Unmarshal(raw[2], &ev); chk.T(err) {
		return
	}
	m.cfg.Dispatch.Handle(ctx, nil, message.Request{Kind: message.KindEvent, Event: &ev})
}
