package structtag

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	sk "github.com/reoring/skemalink"
)

// DialectName identifies this dialect in reports and errors.
const DialectName = "structtag"

// Factory builds struct-tag elements from canonical annotations. Struct tags
// carry presence, type, default and relation information only, so every
// value-level constraint (range, enum, length, pattern, format, predicate) is
// unsupported.
type Factory struct{}

var (
	_ sk.Factory    = Factory{}
	_ sk.NameFolder = Factory{}
)

func (Factory) Dialect() string { return DialectName }

// FoldName returns the exported Go field name the element is stored under.
// Names such as "user_id" and "UserId" fold onto the same field.
func (Factory) FoldName(name string) string { return GoName(name) }

func (Factory) NewElement(name string, a sk.Annotation) (sk.Element, error) {
	if name == "" {
		return nil, fmt.Errorf("structtag: element with empty name")
	}
	if err := representable(name, "", a); err != nil {
		return nil, err
	}
	return &Element{name: name, goType: goType(a), a: a.Clone()}, nil
}

func representable(name, path string, a sk.Annotation) error {
	if len(a.Constraints) > 0 {
		return sk.Unsupported(DialectName, name, path, a.Constraints[0])
	}
	if a.Container != nil {
		if err := representable(name, path+"/items", a.Container.Elem); err != nil {
			return err
		}
		if a.Container.Key != nil {
			return representable(name, path+"/keys", *a.Container.Key)
		}
	}
	return nil
}

// NewSchema generates a struct type whose fields follow elems in order.
func (f Factory) NewSchema(id string, elems []sk.Element, meta map[string]any) (sk.Schema, error) {
	out := make([]*Element, len(elems))
	fields := make([]reflect.StructField, len(elems))
	byGoName := map[string]string{}
	for i, el := range elems {
		if el == nil {
			return nil, fmt.Errorf("structtag: nil element at %d", i)
		}
		te, ok := el.(*Element)
		if !ok || te.owner != nil {
			conv, err := f.NewElement(el.Name(), el.Canonical())
			if err != nil {
				return nil, err
			}
			te = conv.(*Element)
		}
		gn := GoName(te.name)
		if prev, dup := byGoName[gn]; dup {
			if prev == te.name {
				return nil, fmt.Errorf("%w: %q", sk.ErrDuplicateElement, prev)
			}
			return nil, &sk.NameCollisionError{First: prev, Second: te.name}
		}
		byGoName[gn] = te.name
		te.index = []int{i}
		out[i] = te
		fields[i] = reflect.StructField{Name: gn, Type: te.goType, Tag: buildTag(te.name, te.a)}
	}
	s, err := newSchema(id, reflect.StructOf(fields), out, meta)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GoName converts an element name into an exported Go identifier:
// "user_id" -> "UserId", "2fa" -> "F2fa". Names without a cased first
// letter are prefixed so the field stays exported.
func GoName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && !unicode.IsUpper(unicode.ToUpper(r)) {
			b.WriteByte('F')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "F"
	}
	return b.String()
}
