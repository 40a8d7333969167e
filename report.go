package skemalink

import (
	"fmt"
	"strings"

	"github.com/reoring/skemalink/i18n"
)

// Entry records one loss or dangling reference observed during a conversion.
type Entry struct {
	Schema     string // id of the related schema holding the element, "" for the converted root
	Element    string
	Path       string // nested annotation path, "" for the element itself
	Code       string // CodeUnsupportedConstraint, CodeRelationUnresolved or CodeNameCollision
	Constraint string // rendered constraint, e.g. "range[0,150]"
	Message    string
}

// Report enumerates every dropped constraint and every unresolved relation of
// one Convert call. It is the observable proof that a conversion was lossy but
// bounded.
type Report struct {
	ID      string // per-call correlation id
	Target  string // target dialect
	Policy  Policy
	Entries []Entry
	// Related holds the converted form of every resolved relation target,
	// keyed by schema id.
	Related map[string]Schema
}

// Lossless reports whether the conversion neither dropped anything nor left a
// relation dangling.
func (r *Report) Lossless() bool { return r == nil || len(r.Entries) == 0 }

// For returns the entries recorded for the named element of the root schema.
func (r *Report) For(element string) []Entry {
	return r.ForSchema("", element)
}

// ForSchema returns the entries recorded for an element of a related schema
// ("" selects the root schema).
func (r *Report) ForSchema(schemaID, element string) []Entry {
	if r == nil {
		return nil
	}
	var out []Entry
	for _, e := range r.Entries {
		if e.Schema == schemaID && e.Element == element {
			out = append(out, e)
		}
	}
	return out
}

// Dropped lists the rendered constraints dropped from element.
func (r *Report) Dropped(element string) []string {
	var out []string
	for _, e := range r.For(element) {
		if e.Code == CodeUnsupportedConstraint {
			out = append(out, e.Constraint)
		}
	}
	return out
}

// Unresolved returns the relation_unresolved entries.
func (r *Report) Unresolved() []Entry {
	if r == nil {
		return nil
	}
	var out []Entry
	for _, e := range r.Entries {
		if e.Code == CodeRelationUnresolved {
			out = append(out, e)
		}
	}
	return out
}

func (r *Report) String() string {
	if r.Lossless() {
		return "lossless"
	}
	b := &strings.Builder{}
	for i, e := range r.Entries {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", e.Code, e.location())
		if e.Constraint != "" {
			b.WriteString(" " + e.Constraint)
		}
	}
	return b.String()
}

func (e Entry) location() string {
	loc := e.Element + e.Path
	if e.Schema != "" {
		loc = e.Schema + "." + loc
	}
	return loc
}

func newEntry(schemaID, element, path, code, constraint string) Entry {
	data := map[string]string{"element": element + path}
	if constraint != "" {
		data["constraint"] = constraint
	}
	return Entry{
		Schema:     schemaID,
		Element:    element,
		Path:       path,
		Code:       code,
		Constraint: constraint,
		Message:    i18n.T(code, data),
	}
}
