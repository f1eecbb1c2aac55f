package nv2a

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/nv2a/host/halhost"
	"github.com/gogpu/nv2a/internal/decl"
	"github.com/gogpu/nv2a/internal/ffstate"
	"github.com/gogpu/nv2a/internal/renderstate"
	"github.com/gogpu/nv2a/internal/shadercache"
	"github.com/gogpu/nv2a/internal/shadergen"
	"github.com/gogpu/nv2a/internal/stream"
	"github.com/gogpu/nv2a/internal/vsh"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// subLoggers lists the SetLogger functions of every package the translator
// drives.
var subLoggers = []func(*slog.Logger){
	vsh.SetLogger,
	shadergen.SetLogger,
	shadercache.SetLogger,
	decl.SetLogger,
	stream.SetLogger,
	renderstate.SetLogger,
	ffstate.SetLogger,
	halhost.SetLogger,
}

// SetLogger configures the logger for nv2a and all its sub-packages.
// By default, nv2a produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by nv2a:
//   - [slog.LevelDebug]: per-state apply traces, decoded programs, cache hits
//   - [slog.LevelInfo]: render-state table construction, declaration creation
//   - [slog.LevelWarn]: unsupported legacy values and ignored host failures
//   - [slog.LevelError]: shader compiles that failed
//
// Example:
//
//	// Enable info-level logging to stderr:
//	nv2a.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	nv2a.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	for _, set := range subLoggers {
		set(l)
	}
}

// Logger returns the current logger used by nv2a.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
