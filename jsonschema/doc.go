// Package jsonschema is the JSON Schema dialect of skemalink. An object
// schema is a Document; each property is an Element.
//
// Mapping notes:
//   - date, date-time, time, duration, byte and decimal formats on strings encode base types, not Format constraints.
//   - list is "array", set is "array" with uniqueItems, mapping is "object" with additionalProperties (and propertyNames for non-string keys).
//   - relations are local references "#/$defs/<id>"; Bundle embeds converted related schemas under $defs.
//   - property order travels in x-order, element metadata in x-metadata; other unknown keywords are kept verbatim.
//   - predicates have no keyword and are reported as unsupported.
//
// Documents can be read from JSON (Parse), YAML (ParseYAML) or a Kubernetes
// CRD bundle (ImportCRD). Keys repeated within one object are rejected.
package jsonschema
