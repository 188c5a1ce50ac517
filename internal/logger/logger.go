// Package logger provides a zerolog wrapper with opinionated defaults for
// the batch pipeline.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger.
type Options struct {
	// Level is a zerolog level name ("debug", "info", "warn", "error").
	Level string

	// Format is "console" for human-readable output or "json" for machines.
	// Batch runs under a scheduler default to json.
	Format string

	// Job names the pipeline run and is attached to every event.
	Job string

	// Writer overrides the output; nil means os.Stdout.
	Writer io.Writer
}

// New builds a logger from opts. The zero Options value yields a json
// info-level logger on stdout.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var w io.Writer = os.Stdout
	if opts.Writer != nil {
		w = opts.Writer
	}
	if strings.EqualFold(opts.Format, "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(w).Level(parseLevel(opts.Level)).With().Timestamp()
	if opts.Job != "" {
		ctx = ctx.Str("job", opts.Job)
	}
	return ctx.Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
