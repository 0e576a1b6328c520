// Package logging wraps the standard library's log.Logger, matching the
// teacher's exclusive use of stdlib log (Api/ApiImpl.go, Web/server.go)
// rather than pulling in a structured logging library the retrieved pack
// never reaches for in this kind of component. Every package that logs
// takes a *Logger via constructor injection; none use a package-level
// global, so embedding this module in a larger application never
// clobbers that application's own log output.
package logging

import (
	"io"
	"log"
)

// Logger is the minimal logging surface the controller and transport
// need. A nil *Logger is valid and discards everything.
type Logger struct {
	l *log.Logger
}

// New wraps an existing *log.Logger.
func New(l *log.Logger) *Logger {
	return &Logger{l: l}
}

// Discard returns a Logger that drops everything written to it.
func Discard() *Logger {
	return &Logger{l: log.New(io.Discard, "", 0)}
}

// Printf forwards to the underlying logger, or does nothing if l is nil.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.l == nil {
		return
	}
	l.l.Printf(format, args...)
}
