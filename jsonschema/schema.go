package jsonschema

import (
	"maps"
	"slices"
	"strings"

	json "github.com/goccy/go-json"
)

// Schema is the JSON Schema subset this dialect reads and writes. Keywords it
// does not model are kept in Extensions and written back verbatim.
type Schema struct {
	ID          string `json:"$id,omitempty"`
	Ref         string `json:"$ref,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Core
	Type     Types `json:"type,omitempty"`
	Nullable bool  `json:"nullable,omitempty"` // OpenAPI 3.0 spelling of "null" in type
	Format   string `json:"format,omitempty"`
	Default  any    `json:"default,omitempty"`
	// HasDefault distinguishes an explicit null default from no default.
	HasDefault bool  `json:"-"`
	Enum       []any `json:"enum,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`
	PropertyNames        *Schema            `json:"propertyNames,omitempty"`
	MinProperties        *int               `json:"minProperties,omitempty"`
	MaxProperties        *int               `json:"maxProperties,omitempty"`

	// Array
	Items       *Schema `json:"items,omitempty"`
	MinItems    *int    `json:"minItems,omitempty"`
	MaxItems    *int    `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`

	// Order lists property names in declaration order.
	Order []string `json:"x-order,omitempty"`
	// XType carries base types JSON Schema has no keyword for.
	XType string `json:"x-type,omitempty"`
	// Unresolved marks a $ref whose target was not found at conversion time.
	Unresolved bool `json:"x-unresolved,omitempty"`

	// Extensions holds unmodelled keywords (x-metadata, x-kubernetes-*, ...).
	Extensions map[string]any `json:"-"`
}

// Types is the "type" keyword, which is either a string or an array.
type Types []string

func (t Types) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *Types) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*t = Types{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

// Has reports whether name is one of the types.
func (t Types) Has(name string) bool { return slices.Contains(t, name) }

// Primary returns the first non-null type, or "".
func (t Types) Primary() string {
	for _, s := range t {
		if s != "null" {
			return s
		}
	}
	return ""
}

var knownKeywords = map[string]struct{}{
	"$id": {}, "$ref": {}, "title": {}, "description": {}, "type": {}, "nullable": {}, "format": {},
	"default": {}, "enum": {}, "minimum": {}, "maximum": {}, "minLength": {}, "maxLength": {},
	"pattern": {}, "properties": {}, "required": {}, "additionalProperties": {}, "propertyNames": {},
	"minProperties": {}, "maxProperties": {}, "items": {}, "minItems": {}, "maxItems": {},
	"uniqueItems": {}, "$defs": {}, "x-order": {}, "x-type": {}, "x-unresolved": {},
}

type schemaAlias Schema

func (s *Schema) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	// additionalProperties may be a boolean; only the schema form is modelled
	if ap, ok := raw["additionalProperties"]; ok && !isObject(ap) {
		delete(raw, "additionalProperties")
		b, _ = json.Marshal(raw)
		var v any
		_ = json.Unmarshal(ap, &v)
		defer func() {
			if s.Extensions == nil {
				s.Extensions = map[string]any{}
			}
			s.Extensions["additionalProperties"] = v
		}()
	}
	var a schemaAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = Schema(a)
	_, s.HasDefault = raw["default"]
	for k, v := range raw {
		if _, known := knownKeywords[k]; known {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if s.Extensions == nil {
			s.Extensions = map[string]any{}
		}
		s.Extensions[k] = val
	}
	return nil
}

func isObject(b json.RawMessage) bool {
	return strings.HasPrefix(strings.TrimSpace(string(b)), "{")
}

func (s Schema) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(schemaAlias(s))
	if err != nil {
		return nil, err
	}
	if len(s.Extensions) == 0 && !(s.HasDefault && s.Default == nil) {
		return b, nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	for k, v := range s.Extensions {
		if _, known := knownKeywords[k]; !known || k == "additionalProperties" {
			m[k] = v
		}
	}
	if s.HasDefault {
		m["default"] = s.Default
	}
	return json.Marshal(m)
}

// Clone returns a deep copy of the node tree. Opaque values are shared.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Type = slices.Clone(s.Type)
	out.Enum = slices.Clone(s.Enum)
	out.Required = slices.Clone(s.Required)
	out.Order = slices.Clone(s.Order)
	out.Extensions = maps.Clone(s.Extensions)
	out.Items = s.Items.Clone()
	out.AdditionalProperties = s.AdditionalProperties.Clone()
	out.PropertyNames = s.PropertyNames.Clone()
	out.Properties = cloneNodes(s.Properties)
	out.Defs = cloneNodes(s.Defs)
	return &out
}

func cloneNodes(m map[string]*Schema) map[string]*Schema {
	if m == nil {
		return nil
	}
	out := make(map[string]*Schema, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// PropertyOrder returns the property names in declaration order: x-order
// first, then any remaining properties sorted by name.
func (s *Schema) PropertyOrder() []string {
	out := make([]string, 0, len(s.Properties))
	seen := map[string]bool{}
	for _, n := range s.Order {
		if _, ok := s.Properties[n]; ok && !seen[n] {
			out = append(out, n)
			seen[n] = true
		}
	}
	rest := make([]string, 0)
	for n := range s.Properties {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
