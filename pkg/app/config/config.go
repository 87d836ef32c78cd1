// Package config provides a go-simpler.org/env configuration table and helpers
// for working with the list of key/value lists stored in .env files.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"time"

	"relaymere.dev/pkg/utils/chk"
	"relaymere.dev/pkg/utils/log"
	"relaymere.dev/pkg/version"

	"github.com/adrg/xdg"
	"go-simpler.org/env"
)

// C holds application configuration settings loaded from environment
// variables and default values: app identity, storage locations, network
// binding, logging, and the optional upstream mirror to follow.
type C struct {
	AppName        string        `env:"RELAYMERE_APP_NAME" default:"relaymere"`
	Config         string        `env:"RELAYMERE_CONFIG_DIR" usage:"location for configuration file, which has the name '.env', a standard KEY=value<newline>... file" default:"~/.config/relaymere"`
	DataDir        string        `env:"RELAYMERE_DATA_DIR" usage:"storage location for the event store" default:"~/.local/share/relaymere"`
	Listen         string        `env:"RELAYMERE_LISTEN" default:"127.0.0.1" usage:"network listen address (0.0.0.0 for a production/release deployment)"`
	Port           int           `env:"RELAYMERE_PORT" default:"8080" usage:"port to listen on (80 for a production/release deployment)"`
	LogLevel       string        `env:"RELAYMERE_LOG_LEVEL" default:"info" usage:"log level: off fatal error warn info debug trace"`
	Pprof          string        `env:"RELAYMERE_PPROF" usage:"enable pprof on 127.0.0.1:6060" enum:"cpu,mem,block,goroutine"`
	UpstreamURL    string        `env:"RELAYMERE_UPSTREAM_URL" usage:"websocket URL of an upstream relay to mirror events from"`
	UpstreamPubkey string        `env:"RELAYMERE_UPSTREAM_PUBKEY" usage:"hex pubkey whose kind-3 contact list gates which authors are mirrored"`
	UpstreamPoll   time.Duration `env:"RELAYMERE_UPSTREAM_POLL" default:"10m" usage:"how often to refresh the upstream contact list"`
}

// New creates and initializes a new configuration object for the relay
// application.
//
// It loads environment variables, derives XDG-relative defaults for any
// path still carrying its "~" placeholder, and then layers a .env file
// found in Config on top, if one exists.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); chk.T(err) {
		return
	}
	if cfg.Config == "" || strings.Contains(cfg.Config, "~") {
		cfg.Config = filepath.Join(xdg.ConfigHome, cfg.AppName)
	}
	if cfg.DataDir == "" || strings.Contains(cfg.DataDir, "~") {
		cfg.DataDir = filepath.Join(xdg.DataHome, cfg.AppName)
	}
	envPath := filepath.Join(cfg.Config, ".env")
	if fileExists(envPath) {
		var kv map[string]string
		if kv, err = readDotEnv(envPath); chk.T(err) {
			return
		}
		if err = env.Load(
			cfg, &env.Options{SliceSep: ",", Source: kv},
		); chk.E(err) {
			return
		}
		log.SetLogLevel(cfg.LogLevel)
		log.I.F("loaded configuration from %s", envPath)
	}
	return
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readDotEnv parses a KEY=value, one-per-line .env file, ignoring blank
// lines and '#' comments.
func readDotEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	out := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, sc.Err()
}

// HelpRequested determines if the command line arguments indicate a request
// for help.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv checks if the first command line argument is "env", meaning the
// environment configuration should be printed rather than the relay started.
func GetEnv() (requested bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "env":
			requested = true
		}
	}
	return
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// KVSlice is a sortable slice of key/value pairs.
type KVSlice []KV

func (kv KVSlice) Len() int           { return len(kv) }
func (kv KVSlice) Less(i, j int) bool { return kv[i].Key < kv[j].Key }
func (kv KVSlice) Swap(i, j int)      { kv[i], kv[j] = kv[j], kv[i] }

// EnvKV generates key/value pairs from a configuration object's env tags.
func EnvKV(cfg any) (m KVSlice) {
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		if k == "" {
			continue
		}
		v := reflect.ValueOf(cfg).Field(i).Interface()
		var val string
		switch x := v.(type) {
		case string:
			val = x
		case int, bool, time.Duration:
			val = fmt.Sprint(x)
		case []string:
			if len(x) > 0 {
				val = strings.Join(x, ",")
			}
		}
		m = append(m, KV{k, val})
	}
	return
}

// PrintEnv outputs sorted environment key/value pairs to printer.
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Sort(kvs)
	for _, v := range kvs {
		_, _ = fmt.Fprintf(printer, "%s=%s\n", v.Key, v.Value)
	}
}

// PrintHelp prints the app's banner, environment variable usage, the .env
// convention, and the current configuration to printer.
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer, "%s %s\n\n", cfg.AppName, version.V)
	_, _ = fmt.Fprintf(
		printer, "Environment variables that configure %s:\n\n", cfg.AppName,
	)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	_, _ = fmt.Fprintf(
		printer,
		"\nCLI parameter 'help' also prints this information\n"+
			"\n.env file found at the path %s will be automatically "+
			"loaded for configuration.\nits values override the environment and "+
			"you can also edit the file to set configuration options\n\n"+
			"use the parameter 'env' to print out the current configuration to the terminal\n\n"+
			"set the environment using\n\n\t%s env > %s/.env\n",
		cfg.Config, os.Args[0], cfg.Config,
	)
	_, _ = fmt.Fprintf(printer, "\ncurrent configuration:\n\n")
	PrintEnv(cfg, printer)
	_, _ = fmt.Fprintln(printer)
}
