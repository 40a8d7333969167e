package dsl

import (
	"maps"

	sk "github.com/reoring/skemalink"
)

// Schema is an ordered set of dsl fields. It implements skemalink.Schema and
// owns a side channel.
type Schema struct {
	id   string
	ix   sk.Index[*Element]
	meta map[string]any
	side sk.SideData
}

var (
	_ sk.Schema      = (*Schema)(nil)
	_ sk.SideCarrier = (*Schema)(nil)
	_ sk.Element     = (*Element)(nil)
	_ sk.SideCarrier = (*Element)(nil)
)

func newSchema(id string, elems []*Element, meta map[string]any) (*Schema, error) {
	ix, err := sk.NewIndex(elems)
	if err != nil {
		return nil, err
	}
	s := &Schema{id: id, ix: ix, meta: meta}
	for _, e := range elems {
		e.owner = s
	}
	return s, nil
}

func (s *Schema) ID() string              { return s.id }
func (s *Schema) Elements() []sk.Element  { return s.ix.All() }
func (s *Schema) Fields() []*Element      { return s.ix.Typed() }
func (s *Schema) Side() *sk.SideData      { return &s.side }
func (s *Schema) Metadata() map[string]any { return maps.Clone(s.meta) }

func (s *Schema) Get(name string) (sk.Element, error) {
	e, err := s.ix.Lookup(s.id, name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Field returns the named field with its concrete type.
func (s *Schema) Field(name string) (*Element, bool) {
	e, err := s.ix.Lookup(s.id, name)
	return e, err == nil
}

// Element is a single dsl field.
type Element struct {
	name     string
	ad       Adapter
	required bool
	def      any
	hasDef   bool
	owner    *Schema
	side     sk.SideData
}

func (e *Element) Name() string       { return e.name }
func (e *Element) Side() *sk.SideData { return &e.side }

// Schema returns the owning schema, or nil for a detached element.
func (e *Element) Schema() sk.Schema {
	if e.owner == nil {
		return nil
	}
	return e.owner
}

func (e *Element) NativeType() sk.TypeDescriptor { return e.Canonical().TypeDescriptor() }

// Native returns the field's Adapter.
func (e *Element) Native() any { return e.ad.clone() }

// Adapter returns the field's Adapter.
func (e *Element) Adapter() Adapter { return e.ad.clone() }

func (e *Element) Required() bool { return e.required }

// Default returns the default value and whether one is set.
func (e *Element) Default() (any, bool) { return e.def, e.hasDef }

func (e *Element) Canonical() sk.Annotation {
	a := e.ad.annotation()
	a.Required = e.required
	if e.hasDef {
		a.Default, a.HasDefault = e.def, true
	}
	return a
}
