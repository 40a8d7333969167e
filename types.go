package skemalink

import "strings"

// BaseType names a host-neutral value type.
type BaseType string

const (
	TypeString   BaseType = "string"
	TypeInt      BaseType = "int"
	TypeFloat    BaseType = "float"
	TypeDecimal  BaseType = "decimal"
	TypeBool     BaseType = "bool"
	TypeBytes    BaseType = "bytes"
	TypeDate     BaseType = "date"
	TypeDateTime BaseType = "datetime"
	TypeTime     BaseType = "time"
	TypeDuration BaseType = "duration"
	TypeList     BaseType = "list"
	TypeSet      BaseType = "set"
	TypeMapping  BaseType = "mapping"
	TypeObject   BaseType = "object" // a nested schema, see Relation
	TypeAny      BaseType = "any"
	TypeUnknown  BaseType = "unknown" // opaque or unrepresentable native type
)

var knownBaseTypes = map[BaseType]struct{}{
	TypeString: {}, TypeInt: {}, TypeFloat: {}, TypeDecimal: {}, TypeBool: {}, TypeBytes: {},
	TypeDate: {}, TypeDateTime: {}, TypeTime: {}, TypeDuration: {}, TypeList: {}, TypeSet: {},
	TypeMapping: {}, TypeObject: {}, TypeAny: {}, TypeUnknown: {},
}

// Known reports whether b is part of the protocol vocabulary.
func (b BaseType) Known() bool {
	_, ok := knownBaseTypes[b]
	return ok
}

// Numeric reports whether range constraints apply to b.
func (b BaseType) Numeric() bool {
	return b == TypeInt || b == TypeFloat || b == TypeDecimal
}

// NormalizeBaseType maps unknown or empty names to TypeUnknown.
func NormalizeBaseType(s string) BaseType {
	b := BaseType(strings.ToLower(strings.TrimSpace(s)))
	if b.Known() {
		return b
	}
	return TypeUnknown
}

// ContainerKind identifies the shape of a container element.
type ContainerKind string

const (
	ContainerList    ContainerKind = "list"
	ContainerSet     ContainerKind = "set"
	ContainerMapping ContainerKind = "mapping"
)

// BaseType returns the base type a container of this kind carries.
func (k ContainerKind) BaseType() BaseType {
	switch k {
	case ContainerList:
		return TypeList
	case ContainerSet:
		return TypeSet
	case ContainerMapping:
		return TypeMapping
	}
	return TypeUnknown
}

// TypeDescriptor is the host-type view of an Element: the most specific type
// a dialect can report without losing constraint information.
type TypeDescriptor struct {
	Base     BaseType
	Nullable bool
	Elem     *TypeDescriptor // list/set items, mapping values
	Key      *TypeDescriptor // mapping keys
	Relation string          // referenced schema id when Base is TypeObject
}

// Unknown is the descriptor returned for opaque native types.
func Unknown() TypeDescriptor { return TypeDescriptor{Base: TypeUnknown} }

// String renders descriptors as e.g. "list<string>", "mapping<string,date>",
// "ref<Person>" or "?int" for nullable ones.
func (t TypeDescriptor) String() string {
	b := &strings.Builder{}
	if t.Nullable {
		b.WriteByte('?')
	}
	switch {
	case t.Base == TypeObject && t.Relation != "":
		b.WriteString("ref<" + t.Relation + ">")
	case t.Base == TypeMapping:
		b.WriteString("mapping<")
		b.WriteString(descString(t.Key))
		b.WriteByte(',')
		b.WriteString(descString(t.Elem))
		b.WriteByte('>')
	case t.Base == TypeList || t.Base == TypeSet:
		b.WriteString(string(t.Base) + "<" + descString(t.Elem) + ">")
	case t.Base == "":
		b.WriteString(string(TypeUnknown))
	default:
		b.WriteString(string(t.Base))
	}
	return b.String()
}

// Equal compares descriptors structurally.
func (t TypeDescriptor) Equal(o TypeDescriptor) bool {
	if t.Base != o.Base || t.Nullable != o.Nullable || t.Relation != o.Relation {
		return false
	}
	return descEqual(t.Elem, o.Elem) && descEqual(t.Key, o.Key)
}

func descString(d *TypeDescriptor) string {
	if d == nil {
		return string(TypeAny)
	}
	return d.String()
}

func descEqual(a, b *TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Policy selects how the Converter reacts to unsupported constraints.
type Policy int

const (
	BestEffort Policy = iota // Drop the offending constraint and record the loss.
	Strict                   // Abort the whole conversion.
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "best_effort"
}

// ParsePolicy accepts "strict" and "best_effort" (also "best-effort").
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return Strict, true
	case "best_effort", "best-effort", "":
		return BestEffort, true
	}
	return BestEffort, false
}
