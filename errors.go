package skemalink

import (
	"errors"
	"fmt"
	"strings"
)

// Report and issue codes (exported consts for IDE completion and type safety by convention)
const (
	// Protocol
	CodeUnknownElement        = "unknown_element"
	CodeNoSchema              = "no_schema"
	CodeUnsupportedConstraint = "unsupported_constraint"
	CodeRelationUnresolved    = "relation_unresolved"
	CodeDuplicateElement      = "duplicate_element"
	CodeNameCollision         = "name_collision"
	// Value validation performed by dialects
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodePattern       = "pattern"
	CodeInvalidFormat = "invalid_format"
	CodeInvalidEnum   = "invalid_enum"
	CodeUniqueness    = "uniqueness"
	CodePredicate     = "predicate"
)

var (
	ErrUnknownElement        = errors.New("skemalink: unknown element")
	ErrNoSchema              = errors.New("skemalink: no schema")
	ErrUnsupportedConstraint = errors.New("skemalink: unsupported constraint")
	ErrRelationUnresolved    = errors.New("skemalink: relation unresolved")
	ErrDuplicateElement      = errors.New("skemalink: duplicate element")
	ErrNameCollision         = errors.New("skemalink: element name collision")
	ErrNoSideChannel         = errors.New("skemalink: owner has no side channel")
)

// UnknownElementError is returned by Schema.Get for absent names.
type UnknownElementError struct {
	Schema string
	Name   string
}

func (e *UnknownElementError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("%v %q", ErrUnknownElement, e.Name)
	}
	return fmt.Sprintf("%v %q in schema %q", ErrUnknownElement, e.Name, e.Schema)
}

func (e *UnknownElementError) Unwrap() error { return ErrUnknownElement }

// NoSchemaError reports a subject without a discoverable Schema. It signals
// "not a schema-bearing subject", not malformed input.
type NoSchemaError struct {
	Subject string
}

func (e *NoSchemaError) Error() string { return fmt.Sprintf("%v for %s", ErrNoSchema, e.Subject) }
func (e *NoSchemaError) Unwrap() error { return ErrNoSchema }

// UnsupportedConstraintError identifies the single constraint a target dialect
// cannot represent. Path addresses the nested annotation holding it ("" for
// the element itself, "/items", "/keys", ...).
type UnsupportedConstraintError struct {
	Dialect    string
	Element    string
	Path       string
	Constraint Constraint
}

func (e *UnsupportedConstraintError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%v %s", ErrUnsupportedConstraint, e.Constraint)
	if e.Dialect != "" {
		fmt.Fprintf(b, " for dialect %s", e.Dialect)
	}
	if e.Element != "" {
		fmt.Fprintf(b, " at %s%s", e.Element, e.Path)
	}
	return b.String()
}

func (e *UnsupportedConstraintError) Unwrap() error { return ErrUnsupportedConstraint }

// Unsupported is a helper for dialect factories.
func Unsupported(dialect, element, path string, c Constraint) error {
	return &UnsupportedConstraintError{Dialect: dialect, Element: element, Path: path, Constraint: c}
}

// NameCollisionError is returned under Strict when a target dialect folds two
// element names onto the same identifier.
type NameCollisionError struct {
	First, Second string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("%v: %q and %q", ErrNameCollision, e.First, e.Second)
}

func (e *NameCollisionError) Unwrap() error { return ErrNameCollision }

// Issue represents a single value-validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, constraint rendering, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":1, "max":10, "got":42})
	// for i18n and observability.
	Params map[string]any
	// Rule optionally records the predicate id that produced this issue.
	Rule string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
