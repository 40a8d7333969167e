package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// DuplicateKeyError reports a key that occurs twice in the same object. YAML
// sources carry both positions; JSON sources carry the JSON Pointer of the
// enclosing object instead.
type DuplicateKeyError struct {
	Key       string
	Path      string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("duplicate JSON key %q in object at %s", e.Key, orRoot(e.Path))
	}
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// ParseYAML decodes a JSON Schema written in YAML. Duplicate keys are an
// error, and the source order of "properties" becomes x-order unless the
// document already sets one.
func ParseYAML(data []byte) (*Document, error) {
	docs, err := readYAML(data)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, errors.New("jsonschema: empty YAML document")
	}
	return fromValue(docs[0])
}

// ImportCRD scans a multi-document YAML bundle for the
// CustomResourceDefinition whose spec.names.kind equals kind and returns its
// openAPIV3Schema. The document id is the kind.
func ImportCRD(data []byte, kind string) (*Document, error) {
	docs, err := readYAML(data)
	if err != nil {
		return nil, err
	}
	for _, v := range docs {
		m, _ := v.(map[string]any)
		if m == nil {
			continue
		}
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" {
			continue
		}
		spec, _ := m["spec"].(map[string]any)
		names, _ := spec["names"].(map[string]any)
		if k2, _ := names["kind"].(string); k2 != kind {
			continue
		}
		oas := unwrapCRDSchema(m)
		if oas == nil {
			return nil, fmt.Errorf("jsonschema: CRD %s has no openAPIV3Schema", kind)
		}
		d, err := fromValue(oas)
		if err != nil {
			return nil, err
		}
		d.id = kind
		return d, nil
	}
	return nil, fmt.Errorf("jsonschema: CRD kind %q not found in YAML bundle", kind)
}

func fromValue(v any) (*Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: %w", err)
	}
	return Parse(b)
}

// unwrapCRDSchema extracts openAPIV3Schema from a CRD document, preferring a
// served version and falling back to the legacy spec.validation location.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, _ := root["spec"].(map[string]any)
	if spec == nil {
		return nil
	}
	var first map[string]any
	vers, _ := spec["versions"].([]any)
	for _, v := range vers {
		vm, _ := v.(map[string]any)
		sch, _ := vm["schema"].(map[string]any)
		oas, _ := sch["openAPIV3Schema"].(map[string]any)
		if oas == nil {
			continue
		}
		if served, ok := vm["served"].(bool); !ok || served {
			return oas
		}
		if first == nil {
			first = oas
		}
	}
	if first != nil {
		return first
	}
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

func readYAML(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []any
	for {
		var root yaml.Node
		if err := dec.Decode(&root); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("jsonschema: invalid YAML: %w", err)
		}
		if len(root.Content) == 0 {
			continue
		}
		v, err := nodeValue(root.Content[0])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return nodeValue(n.Content[0])
	case yaml.AliasNode:
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		var order []any
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if pos, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
			val, err := nodeValue(v)
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
			if k.Value == "properties" && v.Kind == yaml.MappingNode {
				for j := 0; j+1 < len(v.Content); j += 2 {
					order = append(order, v.Content[j].Value)
				}
			}
		}
		if _, set := m["x-order"]; !set && len(order) > 0 {
			m["x-order"] = order
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil, nil
		case "!!bool":
			if b, err := strconv.ParseBool(n.Value); err == nil {
				return b, nil
			}
		case "!!int":
			if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
				return i, nil
			}
		case "!!float":
			if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
				return f, nil
			}
		}
		return n.Value, nil
	}
	return nil, nil
}
