package skemalink

import (
	"maps"
	"strings"
)

// ExtMetadata is the extension key dialects use to carry per-element metadata
// payloads through an Annotation.
const ExtMetadata = "x-metadata"

// Annotation is the canonical, dialect-neutral descriptor of a single field.
// It is a value object: every transformation returns a new Annotation and the
// receiver is never modified.
type Annotation struct {
	BaseType    BaseType
	Nullable    bool
	Default     any
	HasDefault  bool // false means "no default"; a nil Default with HasDefault=true is an explicit null default
	Required    bool
	Constraints []Constraint
	Container   *Container
	Relation    *Relation
	// Extensions holds opaque dialect-specific fields. They are carried along
	// but never interpreted by the protocol and never take part in Equal.
	Extensions map[string]any
}

// Container describes list, set and mapping elements.
type Container struct {
	Kind ContainerKind
	Elem Annotation
	Key  *Annotation // mappings only
}

// Relation references another Schema by identity.
type Relation struct {
	SchemaID   string
	Unresolved bool
}

// NewAnnotation builds an annotation for base, lifting Type, Default and
// Required constraints into their dedicated fields. The remaining constraints
// keep their order.
func NewAnnotation(base BaseType, cs ...Constraint) Annotation {
	a := Annotation{BaseType: base}
	for _, c := range cs {
		switch x := c.(type) {
		case Type:
			a.BaseType = x.Base
		case Default:
			a.Default, a.HasDefault = x.Value, true
		case Required:
			a.Required = x.Value
		case nil:
		default:
			a.Constraints = append(a.Constraints, c)
		}
	}
	return a
}

// ListOf returns a list annotation around elem.
func ListOf(elem Annotation) Annotation {
	return Annotation{BaseType: TypeList, Container: &Container{Kind: ContainerList, Elem: elem.Clone()}}
}

// SetOf returns a set annotation around elem.
func SetOf(elem Annotation) Annotation {
	return Annotation{BaseType: TypeSet, Container: &Container{Kind: ContainerSet, Elem: elem.Clone()}}
}

// MapOf returns a mapping annotation from key to val.
func MapOf(key, val Annotation) Annotation {
	k := key.Clone()
	return Annotation{BaseType: TypeMapping, Container: &Container{Kind: ContainerMapping, Elem: val.Clone(), Key: &k}}
}

// RefTo returns an object annotation referencing the schema with the given id.
func RefTo(schemaID string) Annotation {
	return Annotation{BaseType: TypeObject, Relation: &Relation{SchemaID: schemaID}}
}

// Clone returns a deep copy. Opaque values (defaults, enum members, extension
// values) are copied by reference.
func (a Annotation) Clone() Annotation {
	out := a
	if a.Constraints != nil {
		out.Constraints = append([]Constraint(nil), a.Constraints...)
	}
	if a.Container != nil {
		c := Container{Kind: a.Container.Kind, Elem: a.Container.Elem.Clone()}
		if a.Container.Key != nil {
			k := a.Container.Key.Clone()
			c.Key = &k
		}
		out.Container = &c
	}
	if a.Relation != nil {
		r := *a.Relation
		out.Relation = &r
	}
	if a.Extensions != nil {
		out.Extensions = maps.Clone(a.Extensions)
	}
	return out
}

// WithConstraint returns a copy with c appended (or lifted, see NewAnnotation).
func (a Annotation) WithConstraint(c Constraint) Annotation {
	out := a.Clone()
	switch x := c.(type) {
	case Type:
		out.BaseType = x.Base
	case Default:
		out.Default, out.HasDefault = x.Value, true
	case Required:
		out.Required = x.Value
	case nil:
	default:
		out.Constraints = append(out.Constraints, c)
	}
	return out
}

// WithoutConstraint returns a copy with the first constraint equal to c
// removed. Defaults and required flags are reset when c is a Default or
// Required constraint.
func (a Annotation) WithoutConstraint(c Constraint) Annotation {
	out := a.Clone()
	switch c.(type) {
	case Default:
		out.Default, out.HasDefault = nil, false
		return out
	case Required:
		out.Required = false
		return out
	}
	for i, x := range out.Constraints {
		if ConstraintEqual(x, c) {
			out.Constraints = append(out.Constraints[:i:i], out.Constraints[i+1:]...)
			break
		}
	}
	return out
}

// WithRelationUnresolved returns a copy whose relation is marked dangling.
func (a Annotation) WithRelationUnresolved() Annotation {
	out := a.Clone()
	if out.Relation != nil {
		out.Relation.Unresolved = true
	}
	return out
}

// WithContainer returns a copy carrying c.
func (a Annotation) WithContainer(c Container) Annotation {
	out := a.Clone()
	cc := Container{Kind: c.Kind, Elem: c.Elem.Clone()}
	if c.Key != nil {
		k := c.Key.Clone()
		cc.Key = &k
	}
	out.Container = &cc
	out.BaseType = c.Kind.BaseType()
	return out
}

// WithExtension returns a copy with an extension field set.
func (a Annotation) WithExtension(key string, v any) Annotation {
	out := a.Clone()
	if out.Extensions == nil {
		out.Extensions = map[string]any{}
	}
	out.Extensions[key] = v
	return out
}

// Extension returns an extension field.
func (a Annotation) Extension(key string) (any, bool) {
	v, ok := a.Extensions[key]
	return v, ok
}

// Find returns the first constraint of the given kind.
func (a Annotation) Find(kind ConstraintKind) (Constraint, bool) {
	for _, c := range a.Constraints {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// At returns the nested annotation addressed by path ("" for a itself,
// "/items" for container elements, "/keys" for mapping keys).
func (a Annotation) At(path string) (Annotation, bool) {
	cur := a
	for _, seg := range splitPath(path) {
		if cur.Container == nil {
			return Annotation{}, false
		}
		switch seg {
		case "items":
			cur = cur.Container.Elem
		case "keys":
			if cur.Container.Key == nil {
				return Annotation{}, false
			}
			cur = *cur.Container.Key
		default:
			return Annotation{}, false
		}
	}
	return cur, true
}

// Replace returns a copy with the nested annotation at path swapped for sub.
func (a Annotation) Replace(path string, sub Annotation) (Annotation, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return sub.Clone(), true
	}
	if a.Container == nil {
		return a, false
	}
	out := a.Clone()
	rest := strings.Join(segs[1:], "/")
	if rest != "" {
		rest = "/" + rest
	}
	switch segs[0] {
	case "items":
		inner, ok := out.Container.Elem.Replace(rest, sub)
		if !ok {
			return a, false
		}
		out.Container.Elem = inner
	case "keys":
		if out.Container.Key == nil {
			return a, false
		}
		inner, ok := out.Container.Key.Replace(rest, sub)
		if !ok {
			return a, false
		}
		out.Container.Key = &inner
	default:
		return a, false
	}
	return out, true
}

// TypeDescriptor derives the host-type view of the annotation.
func (a Annotation) TypeDescriptor() TypeDescriptor {
	base := a.BaseType
	if base == "" {
		base = TypeUnknown
	}
	td := TypeDescriptor{Base: base, Nullable: a.Nullable}
	if a.Container != nil {
		td.Base = a.Container.Kind.BaseType()
		e := a.Container.Elem.TypeDescriptor()
		td.Elem = &e
		if a.Container.Key != nil {
			k := a.Container.Key.TypeDescriptor()
			td.Key = &k
		}
	}
	if a.Relation != nil {
		td.Base = TypeObject
		td.Relation = a.Relation.SchemaID
	}
	return td
}

// Equal reports structural equality. Extensions are ignored.
func (a Annotation) Equal(b Annotation) bool {
	if a.BaseType != b.BaseType || a.Nullable != b.Nullable || a.Required != b.Required || a.HasDefault != b.HasDefault {
		return false
	}
	if a.HasDefault && !ValueEqual(a.Default, b.Default) {
		return false
	}
	if len(a.Constraints) != len(b.Constraints) {
		return false
	}
	for i := range a.Constraints {
		if !ConstraintEqual(a.Constraints[i], b.Constraints[i]) {
			return false
		}
	}
	if (a.Container == nil) != (b.Container == nil) || (a.Relation == nil) != (b.Relation == nil) {
		return false
	}
	if a.Container != nil {
		if a.Container.Kind != b.Container.Kind || !a.Container.Elem.Equal(b.Container.Elem) {
			return false
		}
		if (a.Container.Key == nil) != (b.Container.Key == nil) {
			return false
		}
		if a.Container.Key != nil && !a.Container.Key.Equal(*b.Container.Key) {
			return false
		}
	}
	if a.Relation != nil && *a.Relation != *b.Relation {
		return false
	}
	return true
}

// String renders a compact human readable form, e.g.
// "?int required default(3) range[0,150]".
func (a Annotation) String() string {
	parts := []string{a.TypeDescriptor().String()}
	if a.Required {
		parts = append(parts, "required")
	}
	if a.HasDefault {
		parts = append(parts, Default{Value: a.Default}.String())
	}
	for _, c := range a.Constraints {
		parts = append(parts, c.String())
	}
	if a.Relation != nil && a.Relation.Unresolved {
		parts = append(parts, "relation_unresolved")
	}
	return strings.Join(parts, " ")
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func joinPath(base, seg string) string { return base + "/" + seg }
