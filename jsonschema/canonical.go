package jsonschema

import (
	"maps"
	"strings"

	sk "github.com/reoring/skemalink"
)

// DefsPrefix is the local reference prefix relations are written with.
const DefsPrefix = "#/$defs/"

// string formats that encode a base type rather than a Format constraint
var baseFormats = map[string]sk.BaseType{
	"date":      sk.TypeDate,
	"date-time": sk.TypeDateTime,
	"time":      sk.TypeTime,
	"duration":  sk.TypeDuration,
	"byte":      sk.TypeBytes,
	"decimal":   sk.TypeDecimal,
}

func formatFor(b sk.BaseType) string {
	for f, bt := range baseFormats {
		if bt == b {
			return f
		}
	}
	return ""
}

// RefID maps a $ref to the schema id it names: "#/$defs/Person" -> "Person".
// Other references are used verbatim.
func RefID(ref string) string { return strings.TrimPrefix(ref, DefsPrefix) }

// Annotation reads a property node canonically. required comes from the
// parent's "required" list. Constraints are listed in a fixed order: range,
// length, pattern, format, enum.
func Annotation(n *Schema, required bool) sk.Annotation {
	if n == nil {
		return sk.Annotation{BaseType: sk.TypeAny, Required: required}
	}
	a := sk.Annotation{
		Nullable: n.Nullable || n.Type.Has("null"),
		Required: required,
	}
	if n.HasDefault || n.Default != nil {
		a.Default, a.HasDefault = n.Default, true
	}
	if len(n.Extensions) > 0 {
		a.Extensions = maps.Clone(n.Extensions)
	}

	userFormat := n.Format
	switch n.Type.Primary() {
	case "string":
		a.BaseType = sk.TypeString
		if b, ok := baseFormats[n.Format]; ok {
			a.BaseType, userFormat = b, ""
		}
	case "integer":
		a.BaseType = sk.TypeInt
	case "number":
		a.BaseType = sk.TypeFloat
	case "boolean":
		a.BaseType = sk.TypeBool
	case "array":
		kind := sk.ContainerList
		if n.UniqueItems {
			kind = sk.ContainerSet
		}
		a = a.WithContainer(sk.Container{Kind: kind, Elem: Annotation(n.Items, false)})
	case "object":
		if n.AdditionalProperties != nil && len(n.Properties) == 0 {
			c := sk.Container{Kind: sk.ContainerMapping, Elem: Annotation(n.AdditionalProperties, false)}
			key := sk.Annotation{BaseType: sk.TypeString}
			if n.PropertyNames != nil {
				key = Annotation(n.PropertyNames, false)
			}
			c.Key = &key
			a = a.WithContainer(c)
		} else {
			a.BaseType = sk.TypeObject
		}
	default:
		a.BaseType = sk.TypeAny
		if n.XType != "" {
			a.BaseType = sk.NormalizeBaseType(n.XType)
		}
	}
	if n.Ref != "" {
		a.BaseType = sk.TypeObject
		a.Relation = &sk.Relation{SchemaID: RefID(n.Ref), Unresolved: n.Unresolved}
	}

	if n.Minimum != nil || n.Maximum != nil {
		a.Constraints = append(a.Constraints, sk.Range{Min: n.Minimum, Max: n.Maximum})
	}
	if lo, hi := lengthBounds(n); lo != nil || hi != nil {
		a.Constraints = append(a.Constraints, sk.Length{Min: lo, Max: hi})
	}
	if n.Pattern != "" {
		a.Constraints = append(a.Constraints, sk.Pattern{Regex: n.Pattern})
	}
	if userFormat != "" {
		a.Constraints = append(a.Constraints, sk.Format{Name: userFormat})
	}
	if len(n.Enum) > 0 {
		a.Constraints = append(a.Constraints, sk.OneOf(n.Enum...))
	}
	return a
}

func lengthBounds(n *Schema) (*int, *int) {
	switch {
	case n.MinItems != nil || n.MaxItems != nil:
		return n.MinItems, n.MaxItems
	case n.MinProperties != nil || n.MaxProperties != nil:
		return n.MinProperties, n.MaxProperties
	}
	return n.MinLength, n.MaxLength
}

// Node renders a canonical annotation as a property node. It fails with an
// *skemalink.UnsupportedConstraintError for predicates, for a second
// constraint of a kind already written, and for constraints that do not apply
// to the base type.
func Node(name, path string, a sk.Annotation) (*Schema, error) {
	n := &Schema{Nullable: false}
	base := a.BaseType
	switch {
	case a.Relation != nil:
		n.Ref = DefsPrefix + a.Relation.SchemaID
		n.Unresolved = a.Relation.Unresolved
		n.Nullable = a.Nullable
	case a.Container != nil:
		elem, err := Node(name, path+"/items", a.Container.Elem)
		if err != nil {
			return nil, err
		}
		switch a.Container.Kind {
		case sk.ContainerMapping:
			n.Type = Types{"object"}
			n.AdditionalProperties = elem
			if a.Container.Key != nil {
				key, err := Node(name, path+"/keys", *a.Container.Key)
				if err != nil {
					return nil, err
				}
				if !isPlainString(key) {
					n.PropertyNames = key
				}
			}
		case sk.ContainerSet:
			n.Type, n.Items, n.UniqueItems = Types{"array"}, elem, true
		default:
			n.Type, n.Items = Types{"array"}, elem
		}
		base = a.Container.Kind.BaseType()
	default:
		switch base {
		case sk.TypeString:
			n.Type = Types{"string"}
		case sk.TypeInt:
			n.Type = Types{"integer"}
		case sk.TypeFloat:
			n.Type = Types{"number"}
		case sk.TypeBool:
			n.Type = Types{"boolean"}
		case sk.TypeObject:
			n.Type = Types{"object"}
		case sk.TypeAny, "":
		case sk.TypeUnknown:
			n.XType = string(sk.TypeUnknown)
		default:
			if f := formatFor(base); f != "" {
				n.Type, n.Format = Types{"string"}, f
			} else {
				n.XType = string(base)
			}
		}
	}
	if a.Nullable && len(n.Type) > 0 {
		n.Type = append(n.Type, "null")
	} else if a.Nullable {
		n.Nullable = true
	}
	if a.HasDefault {
		n.Default, n.HasDefault = a.Default, true
	}
	if len(a.Extensions) > 0 {
		n.Extensions = maps.Clone(a.Extensions)
	}

	// range and length bounds merge into one keyword set; the other kinds
	// have a single keyword each
	seen := map[sk.ConstraintKind]bool{}
	for _, c := range a.Constraints {
		k := c.Kind()
		single := k != sk.KindRange && k != sk.KindLength
		if (single && seen[k]) || !setConstraint(n, base, c) {
			return nil, sk.Unsupported(DialectName, name, path, c)
		}
		seen[k] = true
	}
	return n, nil
}

func isPlainString(n *Schema) bool {
	return len(n.Type) == 1 && n.Type[0] == "string" && n.Format == "" && n.Pattern == "" &&
		n.MinLength == nil && n.MaxLength == nil && len(n.Enum) == 0 && len(n.Extensions) == 0 && !n.HasDefault
}

func setConstraint(n *Schema, base sk.BaseType, c sk.Constraint) bool {
	switch x := c.(type) {
	case sk.Range:
		if !base.Numeric() && base != sk.TypeAny {
			return false
		}
		return mergeBound(&n.Minimum, x.Min) && mergeBound(&n.Maximum, x.Max)
	case sk.Length:
		switch base {
		case sk.TypeString, sk.TypeBytes:
			return mergeBound(&n.MinLength, x.Min) && mergeBound(&n.MaxLength, x.Max)
		case sk.TypeList, sk.TypeSet:
			return mergeBound(&n.MinItems, x.Min) && mergeBound(&n.MaxItems, x.Max)
		case sk.TypeMapping:
			return mergeBound(&n.MinProperties, x.Min) && mergeBound(&n.MaxProperties, x.Max)
		default:
			return false
		}
	case sk.Pattern:
		if base != sk.TypeString && base != sk.TypeAny {
			return false
		}
		n.Pattern = x.Regex
	case sk.Format:
		if n.Format != "" {
			return false
		}
		// on strings, base-type formats would be read back as a different base type
		if _, reserved := baseFormats[x.Name]; reserved && base == sk.TypeString {
			return false
		}
		n.Format = x.Name
	case sk.Enum:
		n.Enum = append([]any(nil), x.Allowed...)
	default:
		// predicates have no JSON Schema keyword
		return false
	}
	return true
}

// mergeBound sets *dst to v when unset. A different existing bound is a
// conflict.
func mergeBound[T comparable](dst **T, v *T) bool {
	if v == nil {
		return true
	}
	if *dst != nil {
		return **dst == *v
	}
	cp := *v
	*dst = &cp
	return true
}
