package dsl

import (
	"maps"

	sk "github.com/reoring/skemalink"
)

// Adapter is the dsl-native field descriptor. It is a value type: every
// modifier returns a new Adapter and leaves the receiver untouched, so one
// Adapter can be reused across fields.
type Adapter struct {
	base     sk.BaseType
	nullable bool
	checks   []sk.Constraint
	kind     sk.ContainerKind
	elem     *Adapter
	key      *Adapter
	ref      string
	dangling bool
	ext      map[string]any
}

func primitive(b sk.BaseType) Adapter { return Adapter{base: b} }

// String returns a string field.
func String() Adapter { return primitive(sk.TypeString) }

// Int returns an integer field.
func Int() Adapter { return primitive(sk.TypeInt) }

// Float returns a floating point field.
func Float() Adapter { return primitive(sk.TypeFloat) }

// Decimal returns an arbitrary precision decimal field.
func Decimal() Adapter { return primitive(sk.TypeDecimal) }

// Bool returns a boolean field.
func Bool() Adapter { return primitive(sk.TypeBool) }

// Bytes returns a binary field.
func Bytes() Adapter { return primitive(sk.TypeBytes) }

// Date returns a calendar date field (YYYY-MM-DD on the wire).
func Date() Adapter { return primitive(sk.TypeDate) }

// DateTime returns a timestamp field (RFC 3339 on the wire).
func DateTime() Adapter { return primitive(sk.TypeDateTime) }

// Time returns a time-of-day field.
func Time() Adapter { return primitive(sk.TypeTime) }

// Duration returns a duration field.
func Duration() Adapter { return primitive(sk.TypeDuration) }

// Any returns an unconstrained field.
func Any() Adapter { return primitive(sk.TypeAny) }

// List returns an ordered collection of elem.
func List(elem Adapter) Adapter { return container(sk.ContainerList, elem, nil) }

// Set returns an unordered collection of unique elem values.
func Set(elem Adapter) Adapter { return container(sk.ContainerSet, elem, nil) }

// Map returns a mapping from key to val.
func Map(key, val Adapter) Adapter { return container(sk.ContainerMapping, val, &key) }

// Ref returns a field holding a nested object described by the schema with
// the given id.
func Ref(schemaID string) Adapter { return Adapter{base: sk.TypeObject, ref: schemaID} }

func container(kind sk.ContainerKind, elem Adapter, key *Adapter) Adapter {
	e := elem.clone()
	ad := Adapter{base: kind.BaseType(), kind: kind, elem: &e}
	if key != nil {
		k := key.clone()
		ad.key = &k
	}
	return ad
}

func (ad Adapter) clone() Adapter {
	out := ad
	out.checks = append([]sk.Constraint(nil), ad.checks...)
	if ad.elem != nil {
		e := ad.elem.clone()
		out.elem = &e
	}
	if ad.key != nil {
		k := ad.key.clone()
		out.key = &k
	}
	out.ext = cloneExt(ad.ext)
	return out
}

func cloneExt(ext map[string]any) map[string]any {
	if ext == nil {
		return nil
	}
	out := maps.Clone(ext)
	if m, ok := out[sk.ExtMetadata].(map[string]any); ok {
		out[sk.ExtMetadata] = maps.Clone(m)
	}
	return out
}

func (ad Adapter) with(c sk.Constraint) Adapter {
	out := ad.clone()
	out.checks = append(out.checks, c)
	return out
}

// Nullable accepts null in addition to the base type.
func (ad Adapter) Nullable() Adapter {
	out := ad.clone()
	out.nullable = true
	return out
}

// Min sets an inclusive numeric minimum.
func (ad Adapter) Min(n float64) Adapter { return ad.with(sk.AtLeast(n)) }

// Max sets an inclusive numeric maximum.
func (ad Adapter) Max(n float64) Adapter { return ad.with(sk.AtMost(n)) }

// Range sets inclusive numeric bounds.
func (ad Adapter) Range(min, max float64) Adapter { return ad.with(sk.Between(min, max)) }

// OneOf restricts values to the given set.
func (ad Adapter) OneOf(vals ...any) Adapter { return ad.with(sk.OneOf(vals...)) }

// Length bounds string, bytes or container length (inclusive).
func (ad Adapter) Length(min, max int) Adapter { return ad.with(sk.LengthBetween(min, max)) }

// MinLength sets only a lower length bound.
func (ad Adapter) MinLength(n int) Adapter { return ad.with(sk.Length{Min: &n}) }

// MaxLength sets only an upper length bound.
func (ad Adapter) MaxLength(n int) Adapter { return ad.with(sk.Length{Max: &n}) }

// Pattern restricts strings to a regular expression (RE2 syntax).
func (ad Adapter) Pattern(re string) Adapter { return ad.with(sk.Pattern{Regex: re}) }

// Format names a well-known format ("email", "uuid", "int64", ...).
func (ad Adapter) Format(name string) Adapter { return ad.with(sk.Format{Name: name}) }

// Check attaches a custom validator. id identifies it across dialects.
func (ad Adapter) Check(id, desc string, fn func(any) error) Adapter {
	return ad.with(sk.Check(id, desc, fn))
}

// Meta attaches a metadata payload entry to the field.
func (ad Adapter) Meta(key string, v any) Adapter {
	out := ad.clone()
	if out.ext == nil {
		out.ext = map[string]any{}
	}
	m, _ := out.ext[sk.ExtMetadata].(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	m[key] = v
	out.ext[sk.ExtMetadata] = m
	return out
}

// annotation renders the adapter (without presence information) canonically.
func (ad Adapter) annotation() sk.Annotation {
	a := sk.Annotation{
		BaseType:    ad.base,
		Nullable:    ad.nullable,
		Constraints: append([]sk.Constraint(nil), ad.checks...),
	}
	if ad.kind != "" && ad.elem != nil {
		c := &sk.Container{Kind: ad.kind, Elem: ad.elem.annotation()}
		if ad.key != nil {
			k := ad.key.annotation()
			c.Key = &k
		}
		a.Container = c
	}
	if ad.ref != "" {
		a.Relation = &sk.Relation{SchemaID: ad.ref, Unresolved: ad.dangling}
	}
	if len(ad.ext) > 0 {
		a.Extensions = cloneExt(ad.ext)
	}
	return a
}

// Base returns the base type.
func (ad Adapter) Base() sk.BaseType { return ad.base }

// Constraints returns a copy of the value-level rules.
func (ad Adapter) Constraints() []sk.Constraint { return append([]sk.Constraint(nil), ad.checks...) }
