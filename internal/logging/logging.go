// Package logging builds the leveled loggers handed to environment components.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const EnvLevel = "REACHSIM_LOG_LEVEL"

// New returns a logger writing to w at the named level ("debug", "info", ...).
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl := log.InfoLevel
	if strings.TrimSpace(level) != "" {
		parsed, err := log.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "reachsim",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

// FromEnv uses REACHSIM_LOG_LEVEL, falling back to fallback when unset.
func FromEnv(w io.Writer, fallback string) (*log.Logger, error) {
	if lvl, ok := os.LookupEnv(EnvLevel); ok && lvl != "" {
		return New(w, lvl)
	}
	return New(w, fallback)
}

// Discard drops everything. Components default to it.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
