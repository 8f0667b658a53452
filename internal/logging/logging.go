// Package logging configures the process-wide logrus logger. Diagnostics go
// to stderr so they never interleave with command output on stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Formats accepted by Setup.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DebugEnv, when set to a true value, forces debug level.
const DebugEnv = "LANEBOARD_DEBUG"

// Options selects the logger's level, format, and sink.
type Options struct {
	Level  string
	Format string
	Out    io.Writer
}

// Setup applies opts to the standard logrus logger. An empty level means warn.
func Setup(opts Options) error {
	return Configure(log.StandardLogger(), opts)
}

// Configure applies opts to logger.
func Configure(logger *log.Logger, opts Options) error {
	level := log.WarnLevel
	if opts.Level != "" {
		l, err := log.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}
	if dbg, err := strconv.ParseBool(os.Getenv(DebugEnv)); err == nil && dbg {
		level = log.DebugLevel
	}
	logger.SetLevel(level)

	switch opts.Format {
	case "", FormatText:
		logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	case FormatJSON:
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q (want %s or %s)", opts.Format, FormatText, FormatJSON)
	}

	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	return nil
}
