package logging

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
)

// Field decorates a bolt event with one or more keys.
type Field func(*bolt.Event) *bolt.Event

// Str and Int attach arbitrary keys.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Str(key, value) }
}

func Int(key string, value int) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Int(key, value) }
}

func RunID(id string) Field { return Str("run_id", id) }
func Provider(name string) Field { return Str("provider", name) }
func Model(name string) Field { return Str("model", name) }
func Reason(why string) Field { return Str("reason", why) }

// Step is zero-based; Attempt and Round count from one.
func Step(i int) Field { return Int("step", i) }
func Attempt(n int) Field { return Int("attempt", n) }
func Round(n int) Field { return Int("round", n) }
func Disks(n int) Field { return Int("disks", n) }
func Margin(k int) Field { return Int("k", k) }

// Action renders a move as [disk, from, to].
func Action(a hanoi.Action) Field { return Str("action", a.String()) }

func Configuration(c hanoi.Configuration) Field { return Str("configuration", c.String()) }

// Temperature keeps the shortest decimal form, so 0.1 logs as "0.1".
func Temperature(t float64) Field {
	return Str("temperature", strconv.FormatFloat(t, 'g', -1, 64))
}

func Votes(winner, total int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("votes", winner).Int("total_votes", total)
	}
}

// Duration logs whole milliseconds under duration_ms.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Int64("duration_ms", d.Milliseconds()) }
}

func Cached(hit bool) Field {
	return func(e *bolt.Event) *bolt.Event { return e.Bool("cached", hit) }
}

// ErrorField is a no-op for a nil error.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}
