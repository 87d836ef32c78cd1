// Package wsconn upgrades an HTTP request to a websocket and drives one
// connection's lifetime: a reader goroutine parses client frames and hands
// them to the dispatcher, a writer goroutine drains the connection's
// outbound Tx, and a ticker keeps the socket alive with periodic pings.
package wsconn

import (
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/websocket"
	"relaymere.dev/pkg/dispatch"
	"relaymere.dev/pkg/protocol/message"
	"relaymere.dev/pkg/registry"
	"relaymere.dev/pkg/utils/chk"
	"relaymere.dev/pkg/utils/context"
	"relaymere.dev/pkg/utils/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait / 2
	maxMessageSize = 1 << 20
)

// Upgrader is shared across all incoming requests; origin checking is left
// permissive since Nostr relays are routinely accessed cross-origin by
// browser clients.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve upgrades r and blocks for the connection's lifetime, registering it
// with reg and routing parsed requests to d. Returns once a read from the
// socket fails: either side closes it, it errors, or no pong arrives within
// pongWait (pings stop once ctx is done, so the read deadline then expires).
func Serve(ctx context.T, w http.ResponseWriter, r *http.Request, reg *registry.Registry, d *dispatch.Dispatcher) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if chk.E(err) {
		return
	}
	addr := remoteAddr(r, conn)
	c := registry.NewConnection(addr)
	reg.Insert(c)

	connCtx, cancel := context.Cancel(ctx)
	defer func() {
		cancel()
		c.MarkClosed()
		reg.Remove(addr)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go writer(connCtx, conn, c)
	go pinger(connCtx, cancel, conn)

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			if !strings.Contains(err.Error(), "use of closed network connection") &&
				websocket.IsUnexpectedCloseError(
					err, websocket.CloseNormalClosure, websocket.CloseGoingAway,
					websocket.CloseNoStatusReceived, websocket.CloseAbnormalClosure,
				) {
				log.W.F("wsconn: unexpected close from %s: %v", addr, err)
			}
			return
		}
		if typ != websocket.TextMessage {
			continue
		}
		req, err := message.ParseRequest(data)
		if err != nil {
			log.D.F("wsconn: %s sent invalid request: %v", addr, err)
			continue
		}
		go d.Handle(connCtx, c, req)
	}
}

// writer owns the only goroutine that writes to conn, serializing frames
// produced concurrently by the dispatcher and subscription runners.
func writer(ctx context.T, conn *websocket.Conn, c *registry.Connection) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.Tx:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if len(frame) > 0 {
				if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					log.D.F("wsconn: write: %v", err)
					return
				}
			}
			if c.Status() == registry.CloseRequesting {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait),
				)
				return
			}
		}
	}
}

func pinger(ctx context.T, cancel context.F, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		cancel()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.D.F("wsconn: ping: %v", err)
				return
			}
		}
	}
}

func remoteAddr(r *http.Request, conn *websocket.Conn) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	return conn.NetConn().RemoteAddr().String()
}
