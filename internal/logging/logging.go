// Package logging builds the zerolog loggers used by the skemalink command.
package logging

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

const (
	EnvLogLevel   = "SKEMALINK_LOG_LEVEL"
	EnvLogConsole = "SKEMALINK_LOG_CONSOLE"
)

// Config selects level and output format.
type Config struct {
	Level   zerolog.Level
	Console bool // human readable output instead of JSON lines
}

// Default is warn-level JSON.
func Default() Config { return Config{Level: zerolog.WarnLevel} }

// New returns a logger writing to w. Environment overrides win over cfg.
func New(w io.Writer, cfg Config) zerolog.Logger {
	applyEnvOverrides(&cfg)
	if cfg.Console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(cfg.Level).With().Timestamp().Logger()
}

// Stderr is New(os.Stderr, cfg).
func Stderr(cfg Config) zerolog.Logger { return New(os.Stderr, cfg) }

func applyEnvOverrides(cfg *Config) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogConsole)); ok {
		cfg.Console = v
	}
}

// ParseLevel accepts zerolog level names plus a few aliases. ok is false for
// empty or unknown input.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.WarnLevel, false
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	}
	return zerolog.WarnLevel, false
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
