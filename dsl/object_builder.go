package dsl

import (
	"fmt"
	"maps"

	sk "github.com/reoring/skemalink"
)

type fieldDef struct {
	name     string
	ad       Adapter
	required bool
	def      any
	hasDef   bool
}

type objectBuilder struct {
	id     string
	fields []fieldDef
	index  map[string]int
	meta   map[string]any
	errs   []error
}

type fieldStep struct {
	b    *objectBuilder
	name string
}

// Object creates a new object builder. Fields are optional unless marked
// otherwise and keep their declaration order.
func Object() *objectBuilder {
	return &objectBuilder{index: map[string]int{}}
}

// ID sets the schema identity used by Ref and the registry.
func (b *objectBuilder) ID(id string) *objectBuilder {
	b.id = id
	return b
}

// Meta sets a schema-level metadata entry.
func (b *objectBuilder) Meta(key string, v any) *objectBuilder {
	if b.meta == nil {
		b.meta = map[string]any{}
	}
	b.meta[key] = v
	return b
}

// Field registers a field with its adapter. Declaring the same name twice is
// reported by Build.
func (b *objectBuilder) Field(name string, ad Adapter) *fieldStep {
	if name == "" {
		b.errs = append(b.errs, fmt.Errorf("dsl: field with empty name"))
		return &fieldStep{b: b, name: name}
	}
	if _, dup := b.index[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", sk.ErrDuplicateElement, name))
		return &fieldStep{b: b, name: name}
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, fieldDef{name: name, ad: ad.clone()})
	return &fieldStep{b: b, name: name}
}

func (f *fieldStep) def() *fieldDef {
	i, ok := f.b.index[f.name]
	if !ok {
		return nil
	}
	return &f.b.fields[i]
}

// Required marks the field as required and returns the builder.
func (f *fieldStep) Required() *objectBuilder {
	if d := f.def(); d != nil {
		d.required = true
	}
	return f.b
}

// Optional marks the field as optional (default) and returns the builder.
func (f *fieldStep) Optional() *objectBuilder {
	if d := f.def(); d != nil {
		d.required = false
	}
	return f.b
}

// Default sets the value used when the field is absent.
func (f *fieldStep) Default(v any) *objectBuilder {
	if d := f.def(); d != nil {
		d.def, d.hasDef = v, true
	}
	return f.b
}

func (f *fieldStep) Field(name string, ad Adapter) *fieldStep { return f.b.Field(name, ad) }
func (f *fieldStep) Require(names ...string) *objectBuilder   { return f.b.Require(names...) }
func (f *fieldStep) Meta(key string, v any) *objectBuilder    { return f.b.Meta(key, v) }
func (f *fieldStep) Build() (*Schema, error)                  { return f.b.Build() }
func (f *fieldStep) MustBuild() *Schema                       { return f.b.MustBuild() }

// Require marks one or more fields as required.
func (b *objectBuilder) Require(names ...string) *objectBuilder {
	for _, n := range names {
		i, ok := b.index[n]
		if !ok {
			b.errs = append(b.errs, fmt.Errorf("dsl: require of undeclared field %q", n))
			continue
		}
		b.fields[i].required = true
	}
	return b
}

// Build finalizes the object schema.
func (b *objectBuilder) Build() (*Schema, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	elems := make([]*Element, len(b.fields))
	for i, d := range b.fields {
		elems[i] = &Element{name: d.name, ad: d.ad.clone(), required: d.required, def: d.def, hasDef: d.hasDef}
	}
	return newSchema(b.id, elems, maps.Clone(b.meta))
}

// MustBuild is like Build but panics on error.
func (b *objectBuilder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
