package jsonschema

import (
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"

	sk "github.com/reoring/skemalink"
)

// ExtSchemaMetadata is the root-level keyword holding schema metadata.
const ExtSchemaMetadata = sk.ExtMetadata

// Document is an object-typed JSON Schema viewed as a skemalink.Schema: each
// property is an Element.
type Document struct {
	id   string
	root *Schema
	ix   sk.Index[*Element]
	side sk.SideData
}

var (
	_ sk.Schema      = (*Document)(nil)
	_ sk.SideCarrier = (*Document)(nil)
	_ sk.Element     = (*Element)(nil)
	_ sk.SideCarrier = (*Element)(nil)
)

// Parse decodes a JSON Schema document. The root must describe an object and
// no object may repeat a key.
func Parse(data []byte) (*Document, error) {
	if err := checkDuplicateKeys(data); err != nil {
		return nil, err
	}
	var root Schema
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("jsonschema: invalid JSON: %w", err)
	}
	return FromNode(&root)
}

// FromNode wraps an already decoded root node. The node is copied.
func FromNode(root *Schema) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("jsonschema: nil schema")
	}
	if p := root.Type.Primary(); p != "" && p != "object" {
		return nil, fmt.Errorf("jsonschema: root type %q is not an object", p)
	}
	root = root.Clone()
	required := map[string]bool{}
	for _, r := range root.Required {
		required[r] = true
	}
	order := root.PropertyOrder()
	elems := make([]*Element, len(order))
	for i, name := range order {
		elems[i] = &Element{name: name, node: root.Properties[name], required: required[name]}
	}
	return newDocument(root.ID, root, elems)
}

func newDocument(id string, root *Schema, elems []*Element) (*Document, error) {
	ix, err := sk.NewIndex(elems)
	if err != nil {
		return nil, err
	}
	d := &Document{id: id, root: root, ix: ix}
	for _, e := range elems {
		e.owner = d
	}
	return d, nil
}

func (d *Document) ID() string             { return d.id }
func (d *Document) Elements() []sk.Element { return d.ix.All() }
func (d *Document) Side() *sk.SideData     { return &d.side }

// Properties returns the elements with their concrete type.
func (d *Document) Properties() []*Element { return d.ix.Typed() }

func (d *Document) Get(name string) (sk.Element, error) {
	e, err := d.ix.Lookup(d.id, name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Metadata returns the root-level x-metadata object.
func (d *Document) Metadata() map[string]any {
	m, _ := d.root.Extensions[ExtSchemaMetadata].(map[string]any)
	return maps.Clone(m)
}

// Root returns a copy of the root node.
func (d *Document) Root() *Schema { return d.root.Clone() }

// JSON renders the document.
func (d *Document) JSON() ([]byte, error) { return json.Marshal(d.root) }

// JSONIndent renders the document for humans.
func (d *Document) JSONIndent() ([]byte, error) { return json.MarshalIndent(d.root, "", "  ") }

// Defs returns every $defs entry that describes an object as a Document whose
// id is the definition name.
func (d *Document) Defs() map[string]*Document {
	out := map[string]*Document{}
	for name, n := range d.root.Defs {
		if n == nil {
			continue
		}
		c := n.Clone()
		c.ID = name
		doc, err := FromNode(c)
		if err != nil {
			continue
		}
		doc.id = name
		out[name] = doc
	}
	return out
}

// Bundle returns a copy of d with every jsonschema Document in related
// embedded under $defs, so that its local $refs resolve. Related schemas of
// other dialects are skipped.
func Bundle(d *Document, related map[string]sk.Schema) *Document {
	root := d.root.Clone()
	for _, id := range slices.Sorted(maps.Keys(related)) {
		rd, ok := related[id].(*Document)
		if !ok {
			continue
		}
		if root.Defs == nil {
			root.Defs = map[string]*Schema{}
		}
		def := rd.root.Clone()
		def.ID = ""
		root.Defs[id] = def
	}
	out, err := FromNode(root)
	if err != nil {
		return d
	}
	out.id = d.id
	return out
}

// Element is one property of a Document.
type Element struct {
	name     string
	node     *Schema
	required bool
	owner    *Document
	side     sk.SideData
}

func (e *Element) Name() string       { return e.name }
func (e *Element) Side() *sk.SideData { return &e.side }

func (e *Element) Schema() sk.Schema {
	if e.owner == nil {
		return nil
	}
	return e.owner
}

func (e *Element) Canonical() sk.Annotation      { return Annotation(e.node, e.required) }
func (e *Element) NativeType() sk.TypeDescriptor { return e.Canonical().TypeDescriptor() }

// Native returns a copy of the property node.
func (e *Element) Native() any { return e.node.Clone() }

// Required reports whether the parent lists the property as required.
func (e *Element) Required() bool { return e.required }
