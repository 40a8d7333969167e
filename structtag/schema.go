package structtag

import (
	"maps"
	"reflect"

	sk "github.com/reoring/skemalink"
)

// Schema describes a Go struct type. Schemas produced by Of and For wrap an
// existing type; schemas assembled by Factory carry a struct type built with
// reflect.StructOf.
type Schema struct {
	id   string
	typ  reflect.Type
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

func newSchema(id string, typ reflect.Type, elems []*Element, meta map[string]any) (*Schema, error) {
	ix, err := sk.NewIndex(elems)
	if err != nil {
		return nil, err
	}
	s := &Schema{id: id, typ: typ, ix: ix, meta: maps.Clone(meta)}
	for _, e := range elems {
		e.owner = s
	}
	return s, nil
}

func (s *Schema) ID() string               { return s.id }
func (s *Schema) Elements() []sk.Element   { return s.ix.All() }
func (s *Schema) Fields() []*Element       { return s.ix.Typed() }
func (s *Schema) Metadata() map[string]any { return maps.Clone(s.meta) }
func (s *Schema) Side() *sk.SideData       { return &s.side }

// Type returns the described struct type.
func (s *Schema) Type() reflect.Type { return s.typ }

// New returns a pointer to a zero value of the struct type.
func (s *Schema) New() any { return reflect.New(s.typ).Interface() }

func (s *Schema) Get(name string) (sk.Element, error) {
	e, err := s.ix.Lookup(s.id, name)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Element is one struct field.
type Element struct {
	name   string
	index  []int
	goType reflect.Type
	a      sk.Annotation
	owner  *Schema
	side   sk.SideData
}

func (e *Element) Name() string       { return e.name }
func (e *Element) Side() *sk.SideData { return &e.side }

func (e *Element) Schema() sk.Schema {
	if e.owner == nil {
		return nil
	}
	return e.owner
}

func (e *Element) NativeType() sk.TypeDescriptor { return e.a.TypeDescriptor() }
func (e *Element) Canonical() sk.Annotation      { return e.a.Clone() }

// Native returns the reflect.StructField of the element. Fields of a detached
// element have no index yet.
func (e *Element) Native() any { return e.StructField() }

// StructField returns the Go field backing the element.
func (e *Element) StructField() reflect.StructField {
	if e.owner != nil && e.owner.typ != nil && len(e.index) > 0 {
		return e.owner.typ.FieldByIndex(e.index)
	}
	return reflect.StructField{Name: GoName(e.name), Type: e.goType, Tag: buildTag(e.name, e.a)}
}

// GoType returns the Go type of the field.
func (e *Element) GoType() reflect.Type { return e.goType }
