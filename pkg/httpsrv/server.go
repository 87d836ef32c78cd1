// Package httpsrv is the relay's HTTP surface: websocket upgrade and NIP-11
// relay information document at the root path, a health probe for
// orchestration, routed through chi with a huma-described health operation
// and permissive CORS for the browser clients that dial in.
package httpsrv

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"relaymere.dev/pkg/dispatch"
	"relaymere.dev/pkg/protocol/relayinfo"
	"relaymere.dev/pkg/registry"
	"relaymere.dev/pkg/utils/chk"
	relayctx "relaymere.dev/pkg/utils/context"
	"relaymere.dev/pkg/utils/log"
	"relaymere.dev/pkg/version"
	"relaymere.dev/pkg/wsconn"
)

// Info describes the static parts of the NIP-11 document; the dynamic
// supported_nips and version fields are filled in by Server.
type Info struct {
	Name        string
	Description string
	Icon        string
}

// Server is the relay's listening HTTP surface.
type Server struct {
	Ctx      relayctx.T
	Registry *registry.Registry
	Dispatch *dispatch.Dispatcher
	Info     Info

	httpServer *http.Server
}

type healthOutput struct {
	Body struct {
		Status string `json:"status" example:"ok"`
	}
}

// Router builds the chi mux: root path branches on Upgrade/Accept
// headers per the standard Nostr relay convention, /healthz is described
// through huma for operational tooling that consumes an OpenAPI document.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	api := humachi.New(r, huma.DefaultConfig(s.Info.Name, version.V))
	huma.Register(
		api, huma.Operation{
			OperationID: "health",
			Method:      http.MethodGet,
			Path:        "/healthz",
			Summary:     "Liveness probe",
		}, func(ctx context.Context, _ *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		},
	)
	r.Get("/health", s.handlePlainHealth)
	r.HandleFunc("/", s.handleRoot)
	return r
}

func (s *Server) handlePlainHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		wsconn.Serve(s.Ctx, w, r, s.Registry, s.Dispatch)
		return
	}
	if r.Header.Get("Accept") == "application/nostr+json" {
		s.handleRelayInfo(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("please use a Nostr client to connect"))
}

func (s *Server) handleRelayInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/nostr+json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	nips := relayinfo.GetList(
		relayinfo.BasicProtocol,
		relayinfo.RelayInformationDocument,
		relayinfo.EndOfStoredEvents,
	)
	sort.Sort(nips)
	info := &relayinfo.T{
		Name:        s.Info.Name,
		Description: s.Info.Description,
		Nips:        nips,
		Software:    version.URL,
		Version:     version.V,
		Icon:        s.Info.Icon,
		Limitation:  relayinfo.DefaultLimits(),
	}
	if err := json.NewEncoder(w).Encode(info); chk.E(err) {
	}
}

// Start listens on addr and serves until ctx is done or the listener
// fails. Cleartext HTTP/2 is enabled via h2c so a reverse proxy can speak
// h2 to the relay without TLS termination at this hop.
func (s *Server) Start(host string, port int) (err error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	handler := cors.Default().Handler(s.Router())
	h2s := &http2.Server{}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           h2c.NewHandler(handler, h2s),
		ReadHeaderTimeout: 7 * time.Second,
		IdleTimeout:       28 * time.Second,
	}
	log.I.F("starting relay listener at %s", addr)
	var ln net.Listener
	if ln, err = net.Listen("tcp", addr); err != nil {
		return err
	}
	go func() {
		<-s.Ctx.Done()
		s.Shutdown()
	}()
	if err = s.httpServer.Serve(ln); errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown closes every live connection and stops accepting new ones.
func (s *Server) Shutdown() {
	log.I.Ln("shutting down relay listener")
	s.Registry.CloseAll()
	if s.httpServer != nil {
		chk.E(s.httpServer.Shutdown(context.Background()))
	}
}
