// Package dsl is the builder dialect of skemalink: schemas are declared in Go
// code with a fluent API and can validate map-shaped values directly.
//
// Overview
//   - Builder API: Object()/Field()/Required()/Default()/Meta()/Build() declare an ordered set of fields.
//   - Adapters: String()/Int()/Float()/... and List(elem)/Set(elem)/Map(key, val)/Ref(id) describe a field's type;
//     Range/Min/Max/OneOf/Length/Pattern/Format/Check/Nullable refine it. Adapters are values and can be reused.
//   - Protocol: *Schema and *Element implement skemalink.Schema/Element; Factory implements skemalink.Factory.
//   - Validation: Schema.Parse/Validate check map[string]any input and return skemalink.Issues.
//
// Representable constraints
//
// The dialect keeps every constraint whose kind applies to the field's base
// type. Range applies to numeric types, Length to strings, bytes and
// containers, Pattern to strings. Format, Enum and Check apply to every
// type; formats are only checked against string values. Fields of type Any accept all of them. Anything else is rejected by
// Factory.NewElement with a *skemalink.UnsupportedConstraintError.
//
// Example
//
//	person := g.Object().ID("Person").
//	    Field("name", g.String().Length(1, 64)).Required().
//	    Field("age", g.Int().Range(0, 150)).
//	    Field("tags", g.List(g.String())).Default([]any{}).
//	    MustBuild()
//
//	out, err := person.Parse(ctx, map[string]any{"name": "alice", "age": 30})
//	if iss, ok := skemalink.AsIssues(err); ok {
//	    for _, it := range iss {
//	        fmt.Println(it.Path, it.Code)
//	    }
//	}
//	_ = out // {"name":"alice","age":30,"tags":[]}
package dsl
