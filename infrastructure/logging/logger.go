// Package logging holds the bolt logger shared by the solver's components.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/felixgeelhaar/bolt/v3"
)

var shared atomic.Pointer[bolt.Logger]

var levels = map[string]bolt.Level{
	"trace": bolt.TRACE,
	"debug": bolt.DEBUG,
	"info":  bolt.INFO,
	"warn":  bolt.WARN,
	"error": bolt.ERROR,
}

// Config selects level, format (json or console) and destination.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// DefaultConfig logs info and above to stderr in console form, leaving stdout
// to command output.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: os.Stderr}
}

func parseLevel(name string) bolt.Level {
	if l, ok := levels[strings.ToLower(name)]; ok {
		return l
	}
	return bolt.INFO
}

// New builds a standalone logger.
func New(config Config) *bolt.Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	handler := bolt.Handler(bolt.NewConsoleHandler(out))
	if config.Format == "json" {
		handler = bolt.NewJSONHandler(out)
	}
	return bolt.New(handler).SetLevel(parseLevel(config.Level))
}

// Init installs the shared logger. It has no effect once a logger is in place,
// including one created lazily by an earlier log call.
func Init(config Config) {
	shared.CompareAndSwap(nil, New(config))
}

func current() *bolt.Logger {
	if l := shared.Load(); l != nil {
		return l
	}
	shared.CompareAndSwap(nil, New(DefaultConfig()))
	return shared.Load()
}

// Event is a pending log entry.
type Event struct {
	e *bolt.Event
}

// NewEvent wraps e so Fields can be chained onto it.
func NewEvent(e *bolt.Event) *Event {
	return &Event{e: e}
}

// Add applies f.
func (ev *Event) Add(f Field) *Event {
	ev.e = f(ev.e)
	return ev
}

// With applies several fields in order.
func (ev *Event) With(fields ...Field) *Event {
	for _, f := range fields {
		ev.e = f(ev.e)
	}
	return ev
}

// Msg writes the entry.
func (ev *Event) Msg(msg string) {
	ev.e.Msg(msg)
}

func Debug() *Event { return NewEvent(current().Debug()) }
func Info() *Event  { return NewEvent(current().Info()) }
func Warn() *Event  { return NewEvent(current().Warn()) }
func Error() *Event { return NewEvent(current().Error()) }
