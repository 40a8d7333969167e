package skemalink

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Wire field names of the interchange payload. Any other top-level key is an
// extension and is preserved in Annotation.Extensions.
const (
	wireBaseType    = "base_type"
	wireNullable    = "nullable"
	wireDefault     = "default"
	wireRequired    = "required"
	wireConstraints = "constraints"
	wireContainer   = "container"
	wireRelation    = "relation"
)

// ExtUnknownConstraints is the extension key under which constraints of an
// unrecognized kind are kept, verbatim, when an annotation is decoded.
const ExtUnknownConstraints = "x-unknown-constraints"

var errUnknownConstraintKind = errors.New("unknown constraint kind")

type containerWire struct {
	Kind ContainerKind `json:"kind"`
	Elem *Annotation   `json:"element_annotation"`
	Key  *Annotation   `json:"key_annotation,omitempty"`
}

type relationWire struct {
	SchemaID   string `json:"schema_id"`
	Unresolved bool   `json:"unresolved,omitempty"`
}

type constraintWire struct {
	Kind        ConstraintKind `json:"kind"`
	Base        BaseType       `json:"base,omitempty"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	Allowed     []any          `json:"allowed,omitempty"`
	ID          string         `json:"id,omitempty"`
	Description string         `json:"description,omitempty"`
	Value       any            `json:"value,omitempty"`
	Regex       string         `json:"regex,omitempty"`
	Name        string         `json:"name,omitempty"`
}

// MarshalJSON encodes the annotation in its interchange form.
func (a Annotation) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 8+len(a.Extensions))
	for k, v := range a.Extensions {
		m[k] = v
	}
	base := a.BaseType
	if base == "" {
		base = TypeUnknown
	}
	m[wireBaseType] = base
	m[wireNullable] = a.Nullable
	m[wireRequired] = a.Required
	if a.HasDefault {
		m[wireDefault] = a.Default
	}
	cs := make([]constraintWire, 0, len(a.Constraints))
	for _, c := range a.Constraints {
		cs = append(cs, encodeConstraint(c))
	}
	m[wireConstraints] = cs
	if a.Container != nil {
		cw := containerWire{Kind: a.Container.Kind}
		elem := a.Container.Elem
		cw.Elem = &elem
		cw.Key = a.Container.Key
		m[wireContainer] = cw
	}
	if a.Relation != nil {
		m[wireRelation] = relationWire{SchemaID: a.Relation.SchemaID, Unresolved: a.Relation.Unresolved}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the interchange form. Unknown keys are kept as
// extensions rather than rejected.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skemalink: annotation: %w", err)
	}
	out := Annotation{BaseType: TypeUnknown}
	var unknown []any
	for k, v := range raw {
		var err error
		switch k {
		case wireBaseType:
			var s string
			err = json.Unmarshal(v, &s)
			out.BaseType = NormalizeBaseType(s)
		case wireNullable:
			err = json.Unmarshal(v, &out.Nullable)
		case wireRequired:
			err = json.Unmarshal(v, &out.Required)
		case wireDefault:
			out.HasDefault = true
			err = json.Unmarshal(v, &out.Default)
		case wireConstraints:
			var items []json.RawMessage
			if err = json.Unmarshal(v, &items); err != nil {
				break
			}
			for _, item := range items {
				var cw constraintWire
				if err = json.Unmarshal(item, &cw); err != nil {
					break
				}
				c, cerr := decodeConstraint(cw)
				if errors.Is(cerr, errUnknownConstraintKind) {
					var keep any
					if err = json.Unmarshal(item, &keep); err != nil {
						break
					}
					unknown = append(unknown, keep)
					continue
				}
				out.Constraints = append(out.Constraints, c)
			}
		case wireContainer:
			var cw containerWire
			if err = json.Unmarshal(v, &cw); err == nil {
				c := Container{Kind: cw.Kind, Key: cw.Key}
				if cw.Elem != nil {
					c.Elem = *cw.Elem
				} else {
					c.Elem = Annotation{BaseType: TypeAny}
				}
				out.Container = &c
			}
		case wireRelation:
			var rw relationWire
			if err = json.Unmarshal(v, &rw); err == nil {
				out.Relation = &Relation{SchemaID: rw.SchemaID, Unresolved: rw.Unresolved}
			}
		default:
			var ext any
			if err = json.Unmarshal(v, &ext); err == nil {
				if out.Extensions == nil {
					out.Extensions = map[string]any{}
				}
				out.Extensions[k] = ext
			}
		}
		if err != nil {
			return fmt.Errorf("skemalink: annotation field %q: %w", k, err)
		}
	}
	if len(unknown) > 0 {
		if out.Extensions == nil {
			out.Extensions = map[string]any{}
		}
		if prev, ok := out.Extensions[ExtUnknownConstraints].([]any); ok {
			unknown = append(prev, unknown...)
		}
		out.Extensions[ExtUnknownConstraints] = unknown
	}
	*a = out
	return nil
}

func encodeConstraint(c Constraint) constraintWire {
	w := constraintWire{Kind: c.Kind()}
	switch x := c.(type) {
	case Type:
		w.Base = x.Base
	case Range:
		w.Min, w.Max = x.Min, x.Max
	case Enum:
		w.Allowed = x.Allowed
	case Predicate:
		w.ID, w.Description = x.Ref.ID, x.Ref.Description
	case Default:
		w.Value = x.Value
	case Required:
		w.Value = x.Value
	case Length:
		w.Min, w.Max = intToFloatPtr(x.Min), intToFloatPtr(x.Max)
	case Pattern:
		w.Regex = x.Regex
	case Format:
		w.Name = x.Name
	}
	return w
}

func decodeConstraint(w constraintWire) (Constraint, error) {
	switch ConstraintKind(strings.ToLower(string(w.Kind))) {
	case KindType:
		return Type{Base: NormalizeBaseType(string(w.Base))}, nil
	case KindRange:
		return Range{Min: w.Min, Max: w.Max}, nil
	case KindEnum:
		return Enum{Allowed: w.Allowed}, nil
	case KindPredicate:
		// the callable itself never crosses the wire
		return Predicate{Ref: PredicateRef{ID: w.ID, Description: w.Description}}, nil
	case KindDefault:
		return Default{Value: w.Value}, nil
	case KindRequired:
		b, _ := w.Value.(bool)
		return Required{Value: b}, nil
	case KindLength:
		return Length{Min: floatToIntPtr(w.Min), Max: floatToIntPtr(w.Max)}, nil
	case KindPattern:
		return Pattern{Regex: w.Regex}, nil
	case KindFormat:
		return Format{Name: w.Name}, nil
	}
	return nil, fmt.Errorf("skemalink: %w %q", errUnknownConstraintKind, w.Kind)
}

func intToFloatPtr(p *int) *float64 {
	if p == nil {
		return nil
	}
	f := float64(*p)
	return &f
}

func floatToIntPtr(p *float64) *int {
	if p == nil {
		return nil
	}
	i := int(*p)
	return &i
}
