package skemalink

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ConstraintKind tags a Constraint variant.
type ConstraintKind string

const (
	KindType      ConstraintKind = "type"
	KindRange     ConstraintKind = "range"
	KindEnum      ConstraintKind = "enum"
	KindPredicate ConstraintKind = "predicate"
	KindDefault   ConstraintKind = "default"
	KindRequired  ConstraintKind = "required"
	KindLength    ConstraintKind = "length"
	KindPattern   ConstraintKind = "pattern"
	KindFormat    ConstraintKind = "format"
)

// Constraint is a value-level rule attached to an Element. The set of variants
// is closed; constraints are immutable once attached.
type Constraint interface {
	Kind() ConstraintKind
	String() string
	constraint()
}

// Type restricts the base type of a value.
type Type struct{ Base BaseType }

// Range bounds a numeric value (inclusive). Either bound may be nil.
type Range struct{ Min, Max *float64 }

// Enum restricts a value to an allowed set.
type Enum struct{ Allowed []any }

// Predicate carries an opaque validator.
type Predicate struct{ Ref PredicateRef }

// Default supplies the value used when the field is absent.
type Default struct{ Value any }

// Required marks presence as mandatory.
type Required struct{ Value bool }

// Length bounds the length of strings, bytes and containers (inclusive).
type Length struct{ Min, Max *int }

// Pattern restricts strings to a regular expression.
type Pattern struct{ Regex string }

// Format names a well-known string format such as "email" or "uuid".
type Format struct{ Name string }

// PredicateRef identifies a custom validator. Only ID and Description are
// transported across process boundaries; Fn is optional and may be nil.
type PredicateRef struct {
	ID          string
	Description string
	Fn          func(v any) error `json:"-"`
}

func (Type) Kind() ConstraintKind      { return KindType }
func (Range) Kind() ConstraintKind     { return KindRange }
func (Enum) Kind() ConstraintKind      { return KindEnum }
func (Predicate) Kind() ConstraintKind { return KindPredicate }
func (Default) Kind() ConstraintKind   { return KindDefault }
func (Required) Kind() ConstraintKind  { return KindRequired }
func (Length) Kind() ConstraintKind    { return KindLength }
func (Pattern) Kind() ConstraintKind   { return KindPattern }
func (Format) Kind() ConstraintKind    { return KindFormat }

func (Type) constraint()      {}
func (Range) constraint()     {}
func (Enum) constraint()      {}
func (Predicate) constraint() {}
func (Default) constraint()   {}
func (Required) constraint()  {}
func (Length) constraint()    {}
func (Pattern) constraint()   {}
func (Format) constraint()    {}

func (c Type) String() string { return "type(" + string(c.Base) + ")" }

func (c Range) String() string {
	return "range[" + fmtFloatPtr(c.Min) + "," + fmtFloatPtr(c.Max) + "]"
}

func (c Enum) String() string {
	parts := make([]string, len(c.Allowed))
	for i, v := range c.Allowed {
		parts[i] = fmt.Sprint(v)
	}
	return "enum[" + strings.Join(parts, ",") + "]"
}

func (c Predicate) String() string { return "predicate(" + c.Ref.ID + ")" }
func (c Default) String() string   { return fmt.Sprintf("default(%v)", c.Value) }
func (c Required) String() string  { return "required(" + strconv.FormatBool(c.Value) + ")" }

func (c Length) String() string {
	return "length[" + fmtIntPtr(c.Min) + "," + fmtIntPtr(c.Max) + "]"
}

func (c Pattern) String() string { return "pattern(" + c.Regex + ")" }
func (c Format) String() string  { return "format(" + c.Name + ")" }

// Between is a convenience constructor for a closed numeric range.
func Between(min, max float64) Range { return Range{Min: &min, Max: &max} }

// AtLeast returns a range with only a lower bound.
func AtLeast(min float64) Range { return Range{Min: &min} }

// AtMost returns a range with only an upper bound.
func AtMost(max float64) Range { return Range{Max: &max} }

// LengthBetween returns a closed length constraint.
func LengthBetween(min, max int) Length { return Length{Min: &min, Max: &max} }

// OneOf returns an Enum over the given values.
func OneOf(vals ...any) Enum { return Enum{Allowed: append([]any(nil), vals...)} }

// Check wraps fn as an opaque predicate.
func Check(id, desc string, fn func(any) error) Predicate {
	return Predicate{Ref: PredicateRef{ID: id, Description: desc, Fn: fn}}
}

// ConstraintEqual compares two constraints structurally. Predicates compare
// by ID only; functions are not comparable.
func ConstraintEqual(a, b Constraint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case Type:
		return x.Base == b.(Type).Base
	case Range:
		y := b.(Range)
		return floatPtrEqual(x.Min, y.Min) && floatPtrEqual(x.Max, y.Max)
	case Enum:
		y := b.(Enum)
		if len(x.Allowed) != len(y.Allowed) {
			return false
		}
		for i := range x.Allowed {
			if !ValueEqual(x.Allowed[i], y.Allowed[i]) {
				return false
			}
		}
		return true
	case Predicate:
		return x.Ref.ID == b.(Predicate).Ref.ID
	case Default:
		return ValueEqual(x.Value, b.(Default).Value)
	case Required:
		return x.Value == b.(Required).Value
	case Length:
		y := b.(Length)
		return intPtrEqual(x.Min, y.Min) && intPtrEqual(x.Max, y.Max)
	case Pattern:
		return x.Regex == b.(Pattern).Regex
	case Format:
		return x.Name == b.(Format).Name
	}
	return false
}

// ValueEqual compares opaque values, treating all Go numeric kinds as numbers
// so that 3, int64(3) and 3.0 compare equal after a JSON round trip.
func ValueEqual(a, b any) bool {
	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

// AsFloat converts any Go numeric value (or a numeric string type such as
// json.Number) to float64.
func AsFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		if rv.Type().Name() == "Number" {
			f, err := strconv.ParseFloat(rv.String(), 64)
			return f, err == nil
		}
	}
	return 0, false
}

func fmtFloatPtr(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func fmtIntPtr(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
