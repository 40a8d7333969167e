package structtag

import (
	"fmt"
	"reflect"
	"time"

	sk "github.com/reoring/skemalink"
)

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
	bytesType    = reflect.TypeFor[[]byte]()
	emptyType    = reflect.TypeFor[struct{}]()
	anyType      = reflect.TypeFor[any]()
)

// Option configures Of and For.
type Option func(*options)

type options struct {
	id   string
	meta map[string]any
}

// WithID overrides the schema id (the struct type name by default).
func WithID(id string) Option { return func(o *options) { o.id = id } }

// WithMeta sets a schema-level metadata entry.
func WithMeta(key string, v any) Option {
	return func(o *options) {
		if o.meta == nil {
			o.meta = map[string]any{}
		}
		o.meta[key] = v
	}
}

// For describes struct type T (or the struct T points to).
func For[T any](opts ...Option) (*Schema, error) {
	return Of(reflect.TypeFor[T](), opts...)
}

// MustFor is like For but panics on error.
func MustFor[T any](opts ...Option) *Schema {
	s, err := For[T](opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Of describes the struct type t. Exported fields become elements in
// declaration order; anonymous embedded structs without a tag are flattened.
func Of(t reflect.Type, opts ...Option) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("structtag: nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("structtag: %s is not a struct", t)
	}
	o := options{id: t.Name()}
	for _, fn := range opts {
		fn(&o)
	}
	var elems []*Element
	collectFields(t, nil, &elems)
	return newSchema(o.id, t, elems, o.meta)
}

func collectFields(t reflect.Type, prefix []int, out *[]*Element) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && sf.Tag.Get(TagKey) == "" && sf.Tag.Get("json") == "" {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct && ft != timeType {
				collectFields(ft, index, out)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		tag := parseFieldTag(sf)
		if tag.skip || tag.name == "" {
			continue
		}
		*out = append(*out, &Element{
			name:   tag.name,
			index:  index,
			goType: sf.Type,
			a:      annotateField(sf.Type, tag),
		})
	}
}

func annotateField(t reflect.Type, tag fieldTag) sk.Annotation {
	a := annotateType(t)
	if tag.base != "" && a.Container == nil {
		a.BaseType = tag.base
	}
	if tag.ref != "" {
		a.BaseType = sk.TypeObject
		a.Relation = &sk.Relation{SchemaID: tag.ref}
	}
	a.Required = tag.required
	if tag.hasDef {
		a.Default, a.HasDefault = parseDefault(a.BaseType, tag.def), true
	}
	return a
}

// annotateType maps a Go type onto the canonical vocabulary. Types without a
// counterpart (channels, functions, complex numbers) map to TypeUnknown.
func annotateType(t reflect.Type) sk.Annotation {
	if t.Kind() == reflect.Pointer {
		a := annotateType(t.Elem())
		a.Nullable = true
		return a
	}
	switch t {
	case timeType:
		return sk.Annotation{BaseType: sk.TypeDateTime}
	case durationType:
		return sk.Annotation{BaseType: sk.TypeDuration}
	}
	switch t.Kind() {
	case reflect.String:
		return sk.Annotation{BaseType: sk.TypeString}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return sk.Annotation{BaseType: sk.TypeInt}
	case reflect.Float32, reflect.Float64:
		return sk.Annotation{BaseType: sk.TypeFloat}
	case reflect.Bool:
		return sk.Annotation{BaseType: sk.TypeBool}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return sk.Annotation{BaseType: sk.TypeBytes}
		}
		return sk.ListOf(annotateType(t.Elem()))
	case reflect.Map:
		if t.Elem() == emptyType {
			return sk.SetOf(annotateType(t.Key()))
		}
		return sk.MapOf(annotateType(t.Key()), annotateType(t.Elem()))
	case reflect.Struct:
		if t.Name() == "" {
			return sk.Annotation{BaseType: sk.TypeObject}
		}
		return sk.RefTo(t.Name())
	case reflect.Interface:
		return sk.Annotation{BaseType: sk.TypeAny}
	}
	return sk.Annotation{BaseType: sk.TypeUnknown}
}

// goType renders an annotation as the Go type of a generated struct field.
func goType(a sk.Annotation) reflect.Type {
	var t reflect.Type
	switch {
	case a.Relation != nil:
		t = reflect.TypeFor[map[string]any]()
	case a.Container != nil:
		elem := goType(a.Container.Elem)
		switch a.Container.Kind {
		case sk.ContainerSet:
			if elem.Comparable() {
				t = reflect.MapOf(elem, emptyType)
			} else {
				t = reflect.SliceOf(elem)
			}
		case sk.ContainerMapping:
			key := reflect.TypeFor[string]()
			if a.Container.Key != nil {
				if k := goType(*a.Container.Key); k.Comparable() {
					key = k
				}
			}
			t = reflect.MapOf(key, elem)
		default:
			t = reflect.SliceOf(elem)
		}
	default:
		t = scalarType(a.BaseType)
	}
	if a.Nullable && t.Kind() != reflect.Interface {
		t = reflect.PointerTo(t)
	}
	return t
}

func scalarType(b sk.BaseType) reflect.Type {
	switch b {
	case sk.TypeString, sk.TypeDecimal:
		return reflect.TypeFor[string]()
	case sk.TypeInt:
		return reflect.TypeFor[int64]()
	case sk.TypeFloat:
		return reflect.TypeFor[float64]()
	case sk.TypeBool:
		return reflect.TypeFor[bool]()
	case sk.TypeBytes:
		return bytesType
	case sk.TypeDate, sk.TypeDateTime, sk.TypeTime:
		return timeType
	case sk.TypeDuration:
		return durationType
	case sk.TypeObject:
		return reflect.TypeFor[map[string]any]()
	}
	return anyType
}
