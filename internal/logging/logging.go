// Package logging builds the structured loggers shared by the CLI and server.
package logging

import (
	"io"
	"strings"

	"github.com/phuslu/log"
)

// Format selects the log line encoding.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// New returns a logger writing to w at the given level. Unknown levels fall
// back to info; unknown formats fall back to JSON.
func New(level string, format Format, w io.Writer) *log.Logger {
	var writer log.Writer
	switch format {
	case FormatConsole:
		writer = &log.ConsoleWriter{Writer: w, EndWithMessage: true}
	default:
		writer = &log.IOWriter{Writer: w}
	}
	return &log.Logger{
		Level:  ParseLevel(level),
		Writer: writer,
	}
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Nop discards everything.
func Nop() *log.Logger {
	return &log.Logger{Level: log.PanicLevel, Writer: &log.IOWriter{Writer: io.Discard}}
}

// OrNop returns l, or a discarding logger if l is nil.
func OrNop(l *log.Logger) *log.Logger {
	if l == nil {
		return Nop()
	}
	return l
}
