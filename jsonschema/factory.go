package jsonschema

import (
	"fmt"
	"maps"

	sk "github.com/reoring/skemalink"
)

// DialectName identifies this dialect in reports and errors.
const DialectName = "jsonschema"

// Factory writes canonical annotations as JSON Schema properties. Predicates
// have no keyword and are always unsupported.
type Factory struct{}

var _ sk.Factory = Factory{}

func (Factory) Dialect() string { return DialectName }

func (Factory) NewElement(name string, a sk.Annotation) (sk.Element, error) {
	if name == "" {
		return nil, fmt.Errorf("jsonschema: element with empty name")
	}
	n, err := Node(name, "", a)
	if err != nil {
		return nil, err
	}
	return &Element{name: name, node: n, required: a.Required}, nil
}

// NewSchema assembles an object schema; the element order is kept in x-order
// and meta in the root x-metadata keyword.
func (f Factory) NewSchema(id string, elems []sk.Element, meta map[string]any) (sk.Schema, error) {
	root := &Schema{ID: id, Type: Types{"object"}, Properties: map[string]*Schema{}}
	out := make([]*Element, len(elems))
	for i, el := range elems {
		if el == nil {
			return nil, fmt.Errorf("jsonschema: nil element at %d", i)
		}
		je, ok := el.(*Element)
		if !ok || je.owner != nil {
			conv, err := f.NewElement(el.Name(), el.Canonical())
			if err != nil {
				return nil, err
			}
			je = conv.(*Element)
		}
		out[i] = je
		root.Properties[je.name] = je.node
		root.Order = append(root.Order, je.name)
		if je.required {
			root.Required = append(root.Required, je.name)
		}
	}
	if len(meta) > 0 {
		root.Extensions = map[string]any{ExtSchemaMetadata: maps.Clone(meta)}
	}
	d, err := newDocument(id, root, out)
	if err != nil {
		return nil, err
	}
	return d, nil
}
