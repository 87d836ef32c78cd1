// Command relayd runs the relay: it loads configuration from the
// environment (and an optional .env file), opens the event store, and
// serves the Nostr websocket/NIP-11 surface until interrupted.
package main

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"

	"github.com/alexflint/go-arg"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"
	"relaymere.dev/pkg/app/config"
	"relaymere.dev/pkg/broadcast"
	"relaymere.dev/pkg/dispatch"
	"relaymere.dev/pkg/httpsrv"
	"relaymere.dev/pkg/mirror"
	"relaymere.dev/pkg/registry"
	"relaymere.dev/pkg/store/badger"
	"relaymere.dev/pkg/utils/chk"
	"relaymere.dev/pkg/utils/context"
	"relaymere.dev/pkg/utils/log"
	"relaymere.dev/pkg/version"
)

// flags overrides config.C fields from the command line; any flag left at
// its zero value leaves the corresponding environment-derived value alone.
type flags struct {
	Listen string `arg:"--listen" help:"network listen address, overrides RELAYMERE_LISTEN"`
	Port   int    `arg:"--port" help:"port to listen on, overrides RELAYMERE_PORT"`
	Pprof  string `arg:"--pprof" help:"cpu, mem, block, or goroutine; overrides RELAYMERE_PPROF"`
}

func main() {
	var cfg *config.C
	var err error
	if cfg, err = config.New(); chk.T(err) {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n\n", err)
		config.PrintHelp(cfg, os.Stderr)
		os.Exit(1)
	}
	if config.GetEnv() {
		config.PrintEnv(cfg, os.Stdout)
		return
	}
	if config.HelpRequested() {
		config.PrintHelp(cfg, os.Stderr)
		return
	}

	var fl flags
	arg.MustParse(&fl)
	if fl.Listen != "" {
		cfg.Listen = fl.Listen
	}
	if fl.Port != 0 {
		cfg.Port = fl.Port
	}
	if fl.Pprof != "" {
		cfg.Pprof = fl.Pprof
	}

	log.SetLogLevel(cfg.LogLevel)
	log.I.F("starting %s %s", cfg.AppName, version.V)
	log.D.F("cpu features: %s, %d physical cores", cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores)

	if cfg.Pprof != "" {
		defer profile.Start(profileOption(cfg.Pprof)).Stop()
		go func() {
			chk.E(http.ListenAndServe("127.0.0.1:6060", nil))
		}()
	}

	ctx, stop := signal.NotifyContext(context.Bg(), os.Interrupt)
	defer stop()

	st, err := badger.New(ctx, stop, cfg.DataDir)
	if chk.E(err) {
		log.F.F("failed to open event store: %v", err)
		os.Exit(1)
	}

	bc := broadcast.New(ctx)
	reg := registry.New()
	d := dispatch.New(st, bc)

	srv := &httpsrv.Server{
		Ctx:      ctx,
		Registry: reg,
		Dispatch: d,
		Info: httpsrv.Info{
			Name:        cfg.AppName,
			Description: version.Description,
			Icon:        "https://cdn.satellite.earth/ac9778868fbf23b63c47c769a74e163377e6ea94d3f0f31711931663d035c4f6.png",
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(cfg.Listen, cfg.Port)
	})
	if cfg.UpstreamURL != "" {
		m, merr := mirror.New(mirror.Config{
			URL:    cfg.UpstreamURL,
			Pubkey: cfg.UpstreamPubkey,
			Poll:   cfg.UpstreamPoll,
			Store:  st,
			Dispatch: d,
		})
		if chk.E(merr) {
			log.F.F("failed to configure upstream mirror: %v", merr)
			os.Exit(1)
		}
		g.Go(func() error {
			return m.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		log.F.F("relay terminated: %v", err)
		os.Exit(1)
	}
}

func profileOption(p string) func(*profile.Profile) {
	switch p {
	case "cpu":
		return profile.CPUProfile
	case "mem":
		return profile.MemProfile
	case "block":
		return profile.BlockProfile
	case "goroutine":
		return profile.GoroutineProfile
	default:
		return profile.CPUProfile
	}
}
