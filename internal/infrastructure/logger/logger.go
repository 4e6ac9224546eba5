package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config holds logger configuration.
type Config struct {
	Level   string // trace, debug, info, warn, error; empty means info
	Format  string // json, console; empty means json
	Service string // stamped on every line when set
}

// Validate rejects a level or format the logger does not know.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}

	switch c.Format {
	case "", FormatJSON, FormatConsole:
		return nil
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
}

// New creates a logger writing to stdout.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter creates a logger writing to w. An unknown level falls back
// to info. Caller locations are only recorded at debug and below, where the
// retry loop logs per attempt.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	lc := zerolog.New(output(cfg.Format, w)).Level(level).With().Timestamp()
	if cfg.Service != "" {
		lc = lc.Str("service", cfg.Service)
	}
	if level <= zerolog.DebugLevel {
		lc = lc.Caller()
	}

	return lc.Logger()
}

// Component returns a child logger tagged with the subsystem name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func output(format string, w io.Writer) io.Writer {
	if format != FormatConsole {
		return w
	}

	return zerolog.ConsoleWriter{
		Out:          w,
		TimeFormat:   time.RFC3339,
		PartsExclude: []string{zerolog.CallerFieldName},
	}
}

func parseLevel(level string) (zerolog.Level, error) {
	switch l := strings.ToLower(strings.TrimSpace(level)); l {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "trace", "debug", "info", "warn", "error":
		return zerolog.ParseLevel(l)
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}
