// Package structtag is the reflection dialect of skemalink: a Go struct type
// is a schema, its exported fields are elements and `skema` struct tags add
// presence, defaults, type hints and relations.
//
//	type Person struct {
//	    Name string    `skema:"name=name,required"`
//	    Age  int       `skema:"name=age,default=18"`
//	    Home *Address  `skema:"name=home"` // relation to "Address", nullable
//	    Tags []string  `json:"tags"`
//	}
//
//	s, err := structtag.For[Person]()
//
// Tags cannot express value-level rules, so Factory reports every range,
// enum, length, pattern, format and predicate constraint as unsupported; a
// best-effort conversion drops them and lists them in the report. Element
// names fold onto exported Go identifiers, so "user_id" and "userId" collide
// in this dialect.
package structtag
