// Package logging provides the structured logger shared by the
// process package and the procx CLI: a toggleable diagnostic sink so
// that debug events don't spam production output by default, rendered
// through github.com/rs/zerolog, with the on/off toggle selecting the
// Debug or Info level.
package logging

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var verbose atomic.Bool

// SetVerbose toggles whether debug-level events (spawn wiring,
// communicate worker errors) are emitted. Disabled by default.
func SetVerbose(v bool) { verbose.Store(v) }

// Verbose reports the current verbosity toggle.
func Verbose() bool { return verbose.Load() }

var base = zerolog.New(io.Discard).With().Timestamp().Logger()

func init() {
	base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// For returns a component-scoped logger, e.g. logging.For("spawn").
func For(component string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	if Verbose() {
		lvl = zerolog.DebugLevel
	}
	return base.Level(lvl).With().Str("component", component).Logger()
}

// Abbrev truncates x for log lines so long stdout/stderr chunks don't
// flood the log.
func Abbrev(x string) string {
	const maxLen = 65
	if len(x) > maxLen {
		return x[:maxLen-3] + "..."
	}
	return x
}
