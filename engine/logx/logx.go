// package logx is the sink that the scheduler and render pipeline warn and
// error through. It wraps the standard library's log package behind a small
// interface so an application can redirect core diagnostics (queue drops,
// pass mismatches, command failures, scheduler overflows — spec §6's
// "Logger" external collaborator) without the core depending on a specific
// structured logging library.
package logx

import (
	"log"
	"os"
)

// Logger is the minimal sink the core writes diagnostics through.
type Logger interface {
	// Warnf logs a non-fatal diagnostic: a dropped command, an overflowed
	// queue, a pass begun while another was active.
	Warnf(format string, args ...any)

	// Errorf logs a failure that was caught and handled inline: a command's
	// execute returning an error, a resume failing.
	Errorf(format string, args ...any)
}

// stdLogger adapts the standard library's *log.Logger to Logger, matching
// the plain log.Printf("[Component] ...") texture used throughout the
// engine (profiler.Tick, engine.handleRender).
type stdLogger struct {
	prefix string
	l      *log.Logger
}

// New returns a Logger that writes to stderr with the given component
// prefix, e.g. New("Scheduler") logs as "[Scheduler] ...".
func New(component string) Logger {
	return &stdLogger{
		prefix: "[" + component + "] ",
		l:      log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (s *stdLogger) Warnf(format string, args ...any) {
	s.l.Printf(s.prefix+"WARN "+format, args...)
}

func (s *stdLogger) Errorf(format string, args ...any) {
	s.l.Printf(s.prefix+"ERROR "+format, args...)
}

// Nop is a Logger that discards everything. Useful in tests that assert on
// behavior rather than log output.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
