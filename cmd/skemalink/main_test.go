package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const personSchema = `{
  "$id": "Person",
  "type": "object",
  "x-order": ["name", "age", "home"],
  "required": ["name"],
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer", "minimum": 0, "maximum": 150},
    "home": {"$ref": "#/$defs/Address"}
  },
  "$defs": {
    "Address": {"type": "object", "properties": {"city": {"type": "string"}}}
  }
}`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestRun_Dialects(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run([]string{"dialects"}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	if got := out.String(); got != "dsl\njsonschema\nstructtag\n" {
		t.Fatalf("unexpected dialects: %q", got)
	}
}

func TestRun_Usage(t *testing.T) {
	var out, errb bytes.Buffer
	if code := run(nil, &out, &errb); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if code := run([]string{"bogus"}, &out, &errb); code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(errb.String(), "Usage:") {
		t.Fatalf("usage not printed: %s", errb.String())
	}
}

func TestRun_Annotate(t *testing.T) {
	in := writeTemp(t, "person.json", personSchema)
	var out, errb bytes.Buffer
	if code := run([]string{"annotate", "-in", in}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out.String())
	}
	for i, name := range []string{"name", "age", "home"} {
		if !strings.HasPrefix(lines[i], `{"name":"`+name+`"`) {
			t.Fatalf("line %d: %s", i, lines[i])
		}
	}
}

func TestRun_ConvertStructtag(t *testing.T) {
	in := writeTemp(t, "person.json", personSchema)
	var out, errb bytes.Buffer
	code := run([]string{"convert", "-in", in, "-to", "structtag", "-pkg", "people"}, &out, &errb)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	src := out.String()
	for _, want := range []string{"package people", "type Person struct", "type Address struct", "name=age"} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in:\n%s", want, src)
		}
	}
	if !strings.Contains(errb.String(), "unsupported_constraint\tage\t") {
		t.Fatalf("dropped range not reported: %s", errb.String())
	}
}

func TestRun_ConvertJSONSchemaToFile(t *testing.T) {
	in := writeTemp(t, "person.json", personSchema)
	outPath := filepath.Join(t.TempDir(), "out", "person.json")
	var out, errb bytes.Buffer
	if code := run([]string{"convert", "-in", in, "-to", "jsonschema", "-o", outPath}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	if errb.Len() != 0 {
		t.Fatalf("expected lossless conversion, got: %s", errb.String())
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(b), `"$defs"`) || !strings.Contains(string(b), `"Address"`) {
		t.Fatalf("related schema not bundled:\n%s", b)
	}
}

func TestRun_ConvertStrictFails(t *testing.T) {
	in := writeTemp(t, "person.json", personSchema)
	var out, errb bytes.Buffer
	if code := run([]string{"convert", "-in", in, "-to", "structtag", "-policy", "strict"}, &out, &errb); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errb.String(), "convert:") {
		t.Fatalf("missing error: %s", errb.String())
	}
}

func TestRun_ConvertBadArgs(t *testing.T) {
	in := writeTemp(t, "person.json", personSchema)
	cases := [][]string{
		{"convert"},
		{"convert", "-in", in, "-to", "protobuf"},
		{"convert", "-in", in, "-policy", "lenient"},
		{"convert", "-in", filepath.Join(t.TempDir(), "missing.json")},
	}
	for _, args := range cases {
		var out, errb bytes.Buffer
		if code := run(args, &out, &errb); code != 1 {
			t.Fatalf("%v: expected exit 1, got %d (%s)", args, code, errb.String())
		}
	}
}

func TestRun_ConvertWithConfig(t *testing.T) {
	in := writeTemp(t, "person.json", personSchema)
	cfg := writeTemp(t, "skemalink.toml", "target = \"dsl\"\nlanguage = \"en\"\n")
	var out, errb bytes.Buffer
	if code := run([]string{"convert", "-in", in, "-config", cfg}, &out, &errb); code != 0 {
		t.Fatalf("exit %d: %s", code, errb.String())
	}
	if !strings.HasPrefix(out.String(), `{"name":"name"`) {
		t.Fatalf("expected annotation lines for dsl target:\n%s", out.String())
	}
}
