// Package log provides leveled, structured logging for the transaction
// handling core, a thin wrapper over log/slog. Every component logs through
// a Logger obtained from New or Root rather than the standard library
// logger directly, matching go-ethereum's log15-style API surface.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level mirrors slog's levels plus a Crit level for fatal, ISS-triggering
// programming errors.
type Level int

const (
	LevelTrace Level = -8
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
	LevelCrit  Level = 12
)

func (l Level) slogLevel() slog.Level {
	switch {
	case l <= LevelDebug:
		return slog.LevelDebug
	case l <= LevelInfo:
		return slog.LevelInfo
	case l <= LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Logger is the interface every core component depends on. It is
// intentionally narrow: the round executor, handle context, and savepoint
// stack each keep one in an unexported field, and SetDefault lets tests
// install a recording implementation without pulling in slog.
type Logger interface {
	With(ctx ...any) Logger
	New(ctx ...any) Logger

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)

	Enabled(ctx context.Context, level Level) bool
}

type logger struct {
	inner *slog.Logger
}

// NewLogger wraps an *slog.Logger as a Logger.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) New(ctx ...any) Logger { return l.With(ctx...) }

func (l *logger) write(level Level, msg string, ctx []any) {
	l.inner.Log(context.Background(), level.slogLevel(), msg, ctx...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.write(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.write(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.write(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.write(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.write(LevelError, msg, ctx) }

// Crit logs at the highest level, with the call stack attached so an ISS
// can be traced back to the code path that raised it without attaching a
// debugger. The core never calls os.Exit here: a StateError is fatal to
// the round, not the process, so callers are expected to escalate via the
// ISS notification path after logging.
func (l *logger) Crit(msg string, ctx ...any) {
	l.write(LevelCrit, msg, append(ctx, "stack", callStack()))
}

// callStack renders the current goroutine's call stack above this
// package, skipping the logging frames themselves.
func callStack() string {
	const skip = 4
	trace := stack.Trace().TrimRuntime()
	if len(trace) > skip {
		trace = trace[skip:]
	}
	return fmt.Sprintf("%+v", trace)
}

func (l *logger) Enabled(ctx context.Context, level Level) bool {
	return l.inner.Enabled(ctx, level.slogLevel())
}

// JSONHandler returns a slog.Handler emitting one JSON object per line.
func JSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// JSONHandlerWithLevel is JSONHandler with an explicit minimum level.
func JSONHandlerWithLevel(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// LogfmtHandler returns a slog.Handler emitting logfmt ("key=value") lines.
func LogfmtHandler(w io.Writer) slog.Handler {
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// TerminalHandler returns a logfmt slog.Handler wrapped so ANSI colour codes
// render correctly on Windows consoles, matching go-ethereum's StreamHandler
// for os.Stderr. Non-terminal destinations (files, pipes) fall back to a
// plain LogfmtHandler.
func TerminalHandler(f *os.File) slog.Handler {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return LogfmtHandler(colorable.NewColorable(f))
	}
	return LogfmtHandler(f)
}

var root atomic.Value

func init() {
	root.Store(NewLogger(TerminalHandler(os.Stderr)))
}

// Root returns the default logger.
func Root() Logger { return root.Load().(Logger) }

// SetDefault replaces the default logger returned by Root and used by the
// package-level Trace/Debug/Info/Warn/Error/Crit functions.
func SetDefault(l Logger) { root.Store(l) }

// New returns a child of Root with the given structured context attached,
// e.g. log.New("module", "round").
func New(ctx ...any) Logger { return Root().New(ctx...) }

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }
