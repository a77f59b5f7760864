// Package obslog wires this module's structured logging onto
// github.com/joeycumines/logiface. Available logiface backends (stumpy,
// slog) carry inconsistent historical import paths across retrieved
// snapshots (one imports
// "github.com/joeycumines/go-utilpkg/logiface", another the standalone
// "github.com/joeycumines/logiface"), so rather than depend on either
// ambiguously this package implements a minimal
// logiface.Event/Writer/EventFactory directly, writing
// line-oriented key=value records. The public surface (Level, Builder
// chaining via logiface.Logger) is the real dependency's API, not a
// reimplementation of it.
package obslog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Fields is an ordered-by-iteration set of extra key/value pairs attached
// to a single log call. String values only: this module's log volume is
// dominated by identifiers (socket ids, fd numbers, byte counts) that are
// cheap to format as strings, matching eventloop's own LogEntry.Context
// map usage without taking on an allocation-heavy generic value type.
type Fields map[string]string

// Logger is a thin, nil-safe wrapper around a logiface.Logger[*Event]
// exposing the category-oriented calls this module's components use.
// The zero value discards everything (see [NoOp]).
type Logger struct {
	inner *logiface.Logger[*Event]
}

// New builds a Logger that writes to w at or above minLevel, one line per
// event, in the form:
//
//	time level msg category=<category> key=val key=val ...
func New(w io.Writer, minLevel logiface.Level) *Logger {
	l := logiface.New[*Event](
		WithWriter(w),
		logiface.WithLevel[*Event](minLevel),
	)
	return &Logger{inner: l}
}

// NoOp returns a Logger that discards everything. Safe as a default.
func NoOp() *Logger {
	return &Logger{inner: logiface.New[*Event](logiface.WithLevel[*Event](logiface.LevelDisabled))}
}

func (l *Logger) with(level logiface.Level, category, msg string, fields Fields) {
	if l == nil || l.inner == nil {
		return
	}
	b := l.inner.Build(level)
	if b == nil {
		return
	}
	b.Str("category", category)
	for k, v := range fields {
		b.Str(k, v)
	}
	b.Log(msg)
}

// Debug logs a debug-level event tagged with category "debug".
func (l *Logger) Debug(msg string, fields Fields) { l.with(logiface.LevelDebug, "debug", msg, fields) }

// Info logs an informational event.
func (l *Logger) Info(msg string, fields Fields) {
	l.with(logiface.LevelInformational, "info", msg, fields)
}

// Warn logs a warning event, used for data-loss conditions that should
// stay loud rather than fail silently (non-empty sink queue at drop,
// buffered receives left undelivered when a socket is dropped).
func (l *Logger) Warn(msg string, fields Fields) {
	l.with(logiface.LevelWarning, "warn", msg, fields)
}

// Error logs an error-level event.
func (l *Logger) Error(msg string, err error, fields Fields) {
	if l == nil || l.inner == nil {
		return
	}
	b := l.inner.Build(logiface.LevelError)
	if b == nil {
		return
	}
	b.Str("category", "error")
	for k, v := range fields {
		b.Str(k, v)
	}
	if err != nil {
		b.Err(err)
	}
	b.Log(msg)
}

// Event is this module's minimal logiface.Event implementation: it
// accumulates fields as a single pre-rendered line.
type Event struct {
	logiface.UnimplementedEvent

	level   logiface.Level
	sb      strings.Builder
	message string
	err     error
}

var _ logiface.Event = (*Event)(nil)

// Level implements logiface.Event.
func (e *Event) Level() logiface.Level { return e.level }

// AddField implements logiface.Event.
func (e *Event) AddField(key string, val any) {
	fmt.Fprintf(&e.sb, " %s=%v", key, val)
}

// AddString is an optional optimization per logiface.Event.
func (e *Event) AddString(key string, val string) bool {
	fmt.Fprintf(&e.sb, " %s=%s", key, val)
	return true
}

// AddMessage implements the optional logiface.Event message hook.
func (e *Event) AddMessage(msg string) bool {
	e.message = msg
	return true
}

// AddError implements the optional logiface.Event error hook.
func (e *Event) AddError(err error) bool {
	e.err = err
	return true
}

func (e *Event) render(now time.Time) string {
	var b strings.Builder
	b.WriteString(now.UTC().Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(e.level.String())
	b.WriteByte(' ')
	b.WriteString(e.message)
	b.WriteString(e.sb.String())
	if e.err != nil {
		fmt.Fprintf(&b, " err=%q", e.err.Error())
	}
	b.WriteByte('\n')
	return b.String()
}

// writerAdapter implements logiface.Writer and logiface.EventFactory for
// [Event].
type writerAdapter struct {
	w  io.Writer
	mu sync.Mutex
}

// WithWriter configures a logiface logger backed by w.
func WithWriter(w io.Writer) logiface.Option[*Event] {
	if w == nil {
		w = os.Stderr
	}
	a := &writerAdapter{w: w}
	return logiface.WithOptions[*Event](
		logiface.WithEventFactory[*Event](a),
		logiface.WithWriter[*Event](a),
	)
}

func (a *writerAdapter) NewEvent(level logiface.Level) *Event {
	return &Event{level: level}
}

func (a *writerAdapter) Write(e *Event) error {
	line := e.render(time.Now())
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := io.WriteString(a.w, line)
	return err
}
