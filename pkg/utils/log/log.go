// Package log provides leveled logging handles used throughout the relay.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
)

// Level identifies a logging severity.
type Level int32

const (
	Off Level = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

var names = map[Level]string{
	Fatal: "FTL", Error: "ERR", Warn: "WRN",
	Info: "INF", Debug: "DBG", Trace: "TRC",
}

var colors = map[Level]*color.Color{
	Fatal: color.New(color.FgHiWhite, color.BgRed, color.Bold),
	Error: color.New(color.FgRed, color.Bold),
	Warn:  color.New(color.FgYellow),
	Info:  color.New(color.FgGreen),
	Debug: color.New(color.FgCyan),
	Trace: color.New(color.FgHiBlack),
}

var currentLevel atomic.Int32

func init() { currentLevel.Store(int32(Info)) }

// SetLogLevel changes the global minimum level that will be emitted.
// Accepts one of: off, fatal, error, warn, info, debug, trace (case-insensitive).
func SetLogLevel(s string) {
	lvl := Info
	switch strings.ToLower(s) {
	case "off":
		lvl = Off
	case "fatal":
		lvl = Fatal
	case "error":
		lvl = Error
	case "warn", "warning":
		lvl = Warn
	case "info":
		lvl = Info
	case "debug":
		lvl = Debug
	case "trace":
		lvl = Trace
	}
	currentLevel.Store(int32(lvl))
}

func GetLogLevel() Level { return Level(currentLevel.Load()) }

// Out is the writer log lines are emitted to; tests may redirect it.
var Out io.Writer = os.Stderr

// Logger is a handle bound to a single severity level.
type Logger struct {
	level Level
}

var (
	F = &Logger{Fatal}
	E = &Logger{Error}
	W = &Logger{Warn}
	I = &Logger{Info}
	D = &Logger{Debug}
	T = &Logger{Trace}
)

func (l *Logger) enabled() bool { return l.level <= GetLogLevel() }

func (l *Logger) emit(s string) {
	if !l.enabled() {
		return
	}
	c := colors[l.level]
	ts := time.Now().Format("15:04:05.000")
	_, _ = fmt.Fprintf(Out, "%s %s %s\n", ts, c.Sprint(names[l.level]), s)
	if l.level == Fatal {
		os.Exit(1)
	}
}

// Ln joins args like fmt.Sprintln (minus the trailing newline) and logs them.
func (l *Logger) Ln(a ...any) {
	if !l.enabled() {
		return
	}
	l.emit(strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
}

// F formats like fmt.Sprintf and logs the result.
func (l *Logger) F(format string, a ...any) {
	if !l.enabled() {
		return
	}
	l.emit(fmt.Sprintf(format, a...))
}

// C logs the result of a closure, only evaluating it if the level is
// enabled. Use this for expensive-to-construct diagnostic strings
// (struct dumps, hex encodes of large buffers).
func (l *Logger) C(fn func() string) {
	if !l.enabled() {
		return
	}
	l.emit(fn())
}
