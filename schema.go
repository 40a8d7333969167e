package skemalink

import "fmt"

// Schema is an ordered collection of name-unique Elements plus optional
// schema-level metadata. A Schema owns its Elements. From the Converter's
// viewpoint it is read-only: new Schemas are always assembled fresh.
type Schema interface {
	// ID is the optional identity used by relation references ("" if none).
	ID() string
	// Elements returns the elements in declaration order.
	Elements() []Element
	// Get returns the named element or an *UnknownElementError.
	Get(name string) (Element, error)
	// Metadata returns a copy of the schema-level metadata.
	Metadata() map[string]any
}

// NamedAnnotation pairs an element name with its canonical annotation.
type NamedAnnotation struct {
	Name       string
	Annotation Annotation
}

// Names returns the element names of s in order.
func Names(s Schema) []string {
	els := s.Elements()
	out := make([]string, len(els))
	for i, e := range els {
		out[i] = e.Name()
	}
	return out
}

// AsAnnotations returns the canonical annotation of every element, in order.
func AsAnnotations(s Schema) []NamedAnnotation {
	els := s.Elements()
	out := make([]NamedAnnotation, len(els))
	for i, e := range els {
		out[i] = NamedAnnotation{Name: e.Name(), Annotation: e.Canonical()}
	}
	return out
}

// AsTypes returns the native type of every element keyed by name.
func AsTypes(s Schema) map[string]TypeDescriptor {
	out := map[string]TypeDescriptor{}
	for _, e := range s.Elements() {
		out[e.Name()] = e.NativeType()
	}
	return out
}

// CheckNames verifies that element names are non-empty and unique.
func CheckNames(elems []Element) error {
	seen := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		if e == nil {
			return fmt.Errorf("skemalink: nil element")
		}
		n := e.Name()
		if n == "" {
			return fmt.Errorf("skemalink: element with empty name")
		}
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateElement, n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

// Index is a small helper dialects embed to implement Elements/Get.
type Index[E Element] struct {
	order  []E
	byName map[string]int
}

// NewIndex builds an Index after checking name uniqueness.
func NewIndex[E Element](elems []E) (Index[E], error) {
	ix := Index[E]{order: append([]E(nil), elems...), byName: make(map[string]int, len(elems))}
	for i, e := range elems {
		n := e.Name()
		if n == "" {
			return Index[E]{}, fmt.Errorf("skemalink: element with empty name")
		}
		if _, dup := ix.byName[n]; dup {
			return Index[E]{}, fmt.Errorf("%w: %q", ErrDuplicateElement, n)
		}
		ix.byName[n] = i
	}
	return ix, nil
}

// All returns the elements in order as the protocol interface.
func (ix Index[E]) All() []Element {
	out := make([]Element, len(ix.order))
	for i, e := range ix.order {
		out[i] = e
	}
	return out
}

// Typed returns the elements in order with their concrete type.
func (ix Index[E]) Typed() []E { return append([]E(nil), ix.order...) }

// Lookup returns the named element.
func (ix Index[E]) Lookup(schemaID, name string) (E, error) {
	i, ok := ix.byName[name]
	if !ok {
		var zero E
		return zero, &UnknownElementError{Schema: schemaID, Name: name}
	}
	return ix.order[i], nil
}

// Len returns the number of elements.
func (ix Index[E]) Len() int { return len(ix.order) }
