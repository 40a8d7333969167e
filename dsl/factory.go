package dsl

import (
	"fmt"

	sk "github.com/reoring/skemalink"
)

// DialectName identifies this dialect in reports and errors.
const DialectName = "dsl"

// Factory rebuilds dsl fields from canonical annotations. The zero value is
// ready to use.
type Factory struct{}

var _ sk.Factory = Factory{}

func (Factory) Dialect() string { return DialectName }

// NewElement returns a detached *Element. Constraints are rejected only when
// they do not apply to the base type they are attached to, e.g. a range on a
// string or a pattern on a list.
func (Factory) NewElement(name string, a sk.Annotation) (sk.Element, error) {
	if name == "" {
		return nil, fmt.Errorf("dsl: element with empty name")
	}
	ad, err := adapterFrom(name, "", a)
	if err != nil {
		return nil, err
	}
	e := &Element{name: name, ad: ad, required: a.Required}
	if a.HasDefault {
		e.def, e.hasDef = a.Default, true
	}
	return e, nil
}

// NewSchema assembles elements produced by NewElement. Elements of another
// dialect are rebuilt from their canonical annotation.
func (f Factory) NewSchema(id string, elems []sk.Element, meta map[string]any) (sk.Schema, error) {
	out := make([]*Element, len(elems))
	for i, el := range elems {
		if el == nil {
			return nil, fmt.Errorf("dsl: nil element at %d", i)
		}
		de, ok := el.(*Element)
		if !ok || de.owner != nil {
			conv, err := f.NewElement(el.Name(), el.Canonical())
			if err != nil {
				return nil, err
			}
			de = conv.(*Element)
		}
		out[i] = de
	}
	s, err := newSchema(id, out, meta)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func adapterFrom(name, path string, a sk.Annotation) (Adapter, error) {
	base := a.BaseType
	if base == "" {
		base = sk.TypeAny
	}
	ad := Adapter{base: base, nullable: a.Nullable, ext: cloneExt(a.Extensions)}
	for _, c := range a.Constraints {
		if !applies(base, c) {
			return Adapter{}, sk.Unsupported(DialectName, name, path, c)
		}
		ad.checks = append(ad.checks, c)
	}
	if a.Container != nil {
		elem, err := adapterFrom(name, path+"/items", a.Container.Elem)
		if err != nil {
			return Adapter{}, err
		}
		ad.kind = a.Container.Kind
		ad.base = a.Container.Kind.BaseType()
		ad.elem = &elem
		if a.Container.Key != nil {
			key, err := adapterFrom(name, path+"/keys", *a.Container.Key)
			if err != nil {
				return Adapter{}, err
			}
			ad.key = &key
		}
	}
	if a.Relation != nil {
		ad.ref = a.Relation.SchemaID
		ad.dangling = a.Relation.Unresolved
	}
	return ad, nil
}

// applies reports whether c can be attached to a value of base type b.
func applies(b sk.BaseType, c sk.Constraint) bool {
	if b == sk.TypeAny || b == sk.TypeUnknown {
		return true
	}
	switch c.(type) {
	case sk.Range:
		return b.Numeric()
	case sk.Length:
		switch b {
		case sk.TypeString, sk.TypeBytes, sk.TypeList, sk.TypeSet, sk.TypeMapping:
			return true
		}
		return false
	case sk.Pattern:
		return b == sk.TypeString
	case sk.Format:
		// "int64", "double" and similar formats qualify non-string types
		return true
	case sk.Enum, sk.Predicate:
		return true
	}
	// Type, Default and Required live in dedicated annotation fields
	return false
}
