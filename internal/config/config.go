// Package config loads the skemalink command configuration from a TOML file.
// Keys that are absent from the file keep their defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	sk "github.com/reoring/skemalink"
	"github.com/reoring/skemalink/internal/logging"
)

// Config is the resolved command configuration.
type Config struct {
	Policy   sk.Policy
	Parallel bool
	Language string // i18n language of report messages ("en" or "ja")
	Target   string // default target dialect
	Log      logging.Config
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Policy:   sk.BestEffort,
		Language: "en",
		Target:   "jsonschema",
		Log:      logging.Default(),
	}
}

type fileConfig struct {
	Policy     string `toml:"policy"`
	Parallel   bool   `toml:"parallel"`
	Language   string `toml:"language"`
	Target     string `toml:"target"`
	LogLevel   string `toml:"log_level"`
	LogConsole bool   `toml:"log_console"`
}

// Load reads path over the defaults. An empty path yields Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("policy") {
		p, ok := sk.ParsePolicy(strings.TrimSpace(raw.Policy))
		if !ok {
			return Config{}, fmt.Errorf("parse policy: unknown value %q", raw.Policy)
		}
		cfg.Policy = p
	}
	if meta.IsDefined("parallel") {
		cfg.Parallel = raw.Parallel
	}
	if meta.IsDefined("language") {
		cfg.Language = strings.TrimSpace(raw.Language)
	}
	if meta.IsDefined("target") {
		cfg.Target = strings.TrimSpace(raw.Target)
	}
	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return Config{}, fmt.Errorf("parse log_level: unknown value %q", raw.LogLevel)
		}
		cfg.Log.Level = lvl
	}
	if meta.IsDefined("log_console") {
		cfg.Log.Console = raw.LogConsole
	}
	return cfg, nil
}

// Logger is shorthand for logging.Stderr(c.Log).
func (c Config) Logger() zerolog.Logger { return logging.Stderr(c.Log) }
