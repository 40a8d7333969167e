package main

import (
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	json "github.com/goccy/go-json"

	sk "github.com/reoring/skemalink"
	"github.com/reoring/skemalink/dsl"
	"github.com/reoring/skemalink/i18n"
	"github.com/reoring/skemalink/internal/config"
	"github.com/reoring/skemalink/internal/gen"
	"github.com/reoring/skemalink/jsonschema"
	"github.com/reoring/skemalink/structtag"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "convert":
		return convertCmd(args[1:], stdout, stderr)
	case "annotate":
		return annotateCmd(args[1:], stdout, stderr)
	case "dialects":
		for _, name := range slices.Sorted(maps.Keys(factories)) {
			fmt.Fprintln(stdout, name)
		}
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "skemalink CLI\n\nUsage:\n  skemalink convert -in schema.json|.yaml [-crd Kind] [-to jsonschema|structtag|dsl] [-policy strict|best_effort] [-config skemalink.toml] [-o out]\n  skemalink annotate -in schema.json|.yaml [-crd Kind]\n  skemalink dialects")
}

var factories = map[string]sk.Factory{
	dsl.DialectName:        dsl.Factory{},
	structtag.DialectName:  structtag.Factory{},
	jsonschema.DialectName: jsonschema.Factory{},
}

type sourceFlags struct {
	in  string
	crd string
}

func (s *sourceFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.in, "in", "", "source JSON Schema file (.json, .yaml or .yml)")
	fs.StringVar(&s.crd, "crd", "", "CustomResourceDefinition kind to import from a YAML bundle")
}

// load reads the source document and registers its $defs so relations
// resolve during conversion.
func (s *sourceFlags) load(reg *sk.Registry) (*jsonschema.Document, error) {
	if s.in == "" {
		return nil, fmt.Errorf("missing -in")
	}
	data, err := os.ReadFile(s.in)
	if err != nil {
		return nil, err
	}
	var doc *jsonschema.Document
	switch {
	case s.crd != "":
		doc, err = jsonschema.ImportCRD(data, s.crd)
	case strings.HasSuffix(s.in, ".yaml"), strings.HasSuffix(s.in, ".yml"):
		doc, err = jsonschema.ParseYAML(data)
	default:
		doc, err = jsonschema.Parse(data)
	}
	if err != nil {
		return nil, err
	}
	for name, def := range doc.Defs() {
		if err := reg.AssociateName(name, def); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func convertCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var src sourceFlags
	src.register(fs)
	var target, policy, cfgPath, out, pkg string
	var parallel bool
	fs.StringVar(&target, "to", "", "target dialect (default from config)")
	fs.StringVar(&policy, "policy", "", "strict or best_effort (default from config)")
	fs.StringVar(&cfgPath, "config", "", "TOML configuration file")
	fs.StringVar(&out, "o", "", "output file (default stdout)")
	fs.StringVar(&pkg, "pkg", "model", "package name for structtag output")
	fs.BoolVar(&parallel, "parallel", false, "convert elements concurrently")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fail(stderr, "%v", err)
	}
	if target != "" {
		cfg.Target = target
	}
	if policy != "" {
		p, ok := sk.ParsePolicy(policy)
		if !ok {
			return fail(stderr, "unknown policy %q", policy)
		}
		cfg.Policy = p
	}
	cfg.Parallel = cfg.Parallel || parallel
	i18n.SetLanguage(cfg.Language)

	f, ok := factories[cfg.Target]
	if !ok {
		return fail(stderr, "unknown target dialect %q", cfg.Target)
	}
	reg := sk.NewRegistry()
	doc, err := src.load(reg)
	if err != nil {
		return fail(stderr, "load source: %v", err)
	}

	conv := sk.NewConverter(
		sk.WithPolicy(cfg.Policy),
		sk.WithRegistry(reg),
		sk.WithParallel(cfg.Parallel),
		sk.WithLogger(cfg.Logger()),
	)
	res, rep, err := conv.Convert(doc, f)
	printReport(stderr, rep)
	if err != nil {
		return fail(stderr, "convert: %v", err)
	}

	body, err := render(res, rep, pkg)
	if err != nil {
		return fail(stderr, "render: %v", err)
	}
	if out == "" {
		_, _ = stdout.Write(body)
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fail(stderr, "creating output dir: %v", err)
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fail(stderr, "writing output: %v", err)
	}
	return 0
}

// render serializes a converted schema in its dialect's native form.
func render(s sk.Schema, rep *sk.Report, pkg string) ([]byte, error) {
	switch x := s.(type) {
	case *jsonschema.Document:
		b, err := jsonschema.Bundle(x, rep.Related).JSONIndent()
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case *structtag.Schema:
		defs := []gen.TypeDef{{Name: nameOr(x.ID(), "Root"), Schema: x}}
		for _, id := range slices.Sorted(maps.Keys(rep.Related)) {
			if rs, ok := rep.Related[id].(*structtag.Schema); ok {
				defs = append(defs, gen.TypeDef{Name: id, Schema: rs})
			}
		}
		return gen.RenderFile(pkg, defs)
	}
	return annotations(s)
}

func nameOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

type namedAnnotation struct {
	Name       string        `json:"name"`
	Annotation sk.Annotation `json:"annotation"`
}

// annotations renders the canonical view of s as JSON lines.
func annotations(s sk.Schema) ([]byte, error) {
	var b strings.Builder
	for _, na := range sk.AsAnnotations(s) {
		line, err := json.Marshal(namedAnnotation{Name: na.Name, Annotation: na.Annotation})
		if err != nil {
			return nil, err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

func annotateCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var src sourceFlags
	src.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	doc, err := src.load(sk.NewRegistry())
	if err != nil {
		return fail(stderr, "load source: %v", err)
	}
	body, err := annotations(doc)
	if err != nil {
		return fail(stderr, "annotate: %v", err)
	}
	_, _ = stdout.Write(body)
	return 0
}

func printReport(w io.Writer, rep *sk.Report) {
	if rep == nil {
		return
	}
	for _, e := range rep.Entries {
		loc := e.Element + e.Path
		if e.Schema != "" {
			loc = e.Schema + "." + loc
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.Code, loc, e.Message)
	}
}

func fail(w io.Writer, format string, a ...any) int {
	fmt.Fprintf(w, format+"\n", a...)
	return 1
}
