// Package skemalink lets independently written schema libraries ("dialects")
// exchange field-level type and constraint information without adopting each
// other's internal representations.
//
// The protocol consists of:
//
// - Constraint: closed set of value-level rules (Type, Range, Enum, Predicate,
// Default, Required, Length, Pattern, Format)
// - Annotation: the canonical, dialect-neutral field descriptor and its JSON interchange form
// - Element / Schema: capability interfaces every dialect implements
// - Factory: reconstructs Elements and Schemas in a target dialect
// - Registry / Provider: association between types, names or objects and their Schema
// - Converter / Report: best-effort or strict Schema-to-Schema conversion with an explicit loss report
// - SideData: metadata attached to a Schema or Element, never consulted by the Converter
//
// Design policy:
// - Keep only the protocol in the root package; dialects live in dsl/, structtag/ and jsonschema/.
// - Cross-dialect information flows only through Annotation; Element.Native is never inspected by other dialects.
// - All failures are returned values; nothing in the protocol is a process-level error.
//
// Typical usage:
//
//	src := personSchema() // any dialect
//	dst, rep, err := skemalink.Convert(src, structtag.Factory{})
//	for _, e := range rep.Entries {
//		log.Printf("%s %s: %s", e.Code, e.Element, e.Constraint)
//	}
package skemalink
