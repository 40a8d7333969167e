package skemalink

// Element is a single-field constraint descriptor owned by a Schema. It wraps
// a dialect-native handle and exposes the type and canonical views that other
// dialects consume.
type Element interface {
	// Name is unique within the owning Schema.
	Name() string
	// Schema returns the owning Schema (a back-reference, not ownership). It is
	// nil for elements that were not yet assembled into a Schema.
	Schema() Schema
	// NativeType returns the most specific host type representable without
	// constraint loss. It never fails: opaque native types degrade to
	// TypeUnknown.
	NativeType() TypeDescriptor
	// Canonical is a pure, idempotent function of the element's constraints.
	Canonical() Annotation
	// Native returns the dialect-owned handle. Other dialects must not inspect
	// it; cross-dialect information flows only through Canonical.
	Native() any
}

// Factory constructs native Elements and Schemas for one target dialect.
type Factory interface {
	// Dialect names the target representation (e.g. "dsl", "structtag").
	Dialect() string
	// NewElement reconstructs an element from its canonical annotation. When a
	// constraint has no representable equivalent it returns an
	// *UnsupportedConstraintError naming exactly that constraint.
	NewElement(name string, a Annotation) (Element, error)
	// NewSchema assembles already-converted elements, in order, into a fresh
	// Schema and binds their back-references.
	NewSchema(id string, elems []Element, meta map[string]any) (Schema, error)
}

// NameFolder is implemented by factories whose target representation folds
// element names (for example case-insensitively) so that distinct source
// names can collide.
type NameFolder interface {
	FoldName(name string) string
}

// FromCanonical is shorthand for f.NewElement(name, a).
func FromCanonical(f Factory, name string, a Annotation) (Element, error) {
	return f.NewElement(name, a)
}

// Metadata returns the per-element metadata payload carried as the
// ExtMetadata extension, or nil.
func Metadata(e Element) map[string]any {
	v, ok := e.Canonical().Extension(ExtMetadata)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]any)
	return m
}
