package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	sk "github.com/reoring/skemalink"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "skemalink.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_OverridesOnlyDefinedKeys(t *testing.T) {
	p := writeFile(t, `
policy = "strict"
log_level = "debug"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Policy != sk.Strict || cfg.Log.Level != zerolog.DebugLevel {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Language != "en" || cfg.Target != "jsonschema" || cfg.Parallel {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	for _, body := range []string{
		`policy = "sometimes"`,
		`log_level = "loud"`,
		`colour = "blue"`,
		`policy = `,
	} {
		if _, err := Load(writeFile(t, body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}
