package structtag

import (
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	sk "github.com/reoring/skemalink"
	"github.com/reoring/skemalink/codec"
)

// TagKey is the struct tag consulted by this dialect.
const TagKey = "skema"

// fieldTag is the parsed form of a `skema:"..."` tag.
//
// Grammar: comma separated options, where default= must come last because its
// value may contain commas.
//
//	skema:"name=user_id,required,type=decimal,ref=Person,default=42"
type fieldTag struct {
	name     string
	skip     bool
	required bool
	base     sk.BaseType
	ref      string
	def      string
	hasDef   bool
}

// parseFieldTag resolves the element name with the rule skema:"name=..." >
// json tag name > field name; "-" disables the field.
func parseFieldTag(sf reflect.StructField) fieldTag {
	var ft fieldTag
	raw, hasSkema := sf.Tag.Lookup(TagKey)
	if hasSkema && raw == "-" {
		ft.skip = true
		return ft
	}
	if hasSkema {
		rest := raw
		for rest != "" {
			if strings.HasPrefix(rest, "default=") {
				ft.def, ft.hasDef = strings.TrimPrefix(rest, "default="), true
				break
			}
			opt := rest
			if i := strings.IndexByte(rest, ','); i >= 0 {
				opt, rest = rest[:i], rest[i+1:]
			} else {
				rest = ""
			}
			opt = strings.TrimSpace(opt)
			switch {
			case opt == "required":
				ft.required = true
			case strings.HasPrefix(opt, "name="):
				ft.name = strings.TrimPrefix(opt, "name=")
			case strings.HasPrefix(opt, "type="):
				ft.base = sk.NormalizeBaseType(strings.TrimPrefix(opt, "type="))
			case strings.HasPrefix(opt, "ref="):
				ft.ref = strings.TrimPrefix(opt, "ref=")
			}
		}
	}
	if ft.name == "" {
		if jt := sf.Tag.Get("json"); jt != "" {
			if jt == "-" {
				ft.skip = true
				return ft
			}
			ft.name, _, _ = strings.Cut(jt, ",")
		}
	}
	if ft.name == "" {
		ft.name = sf.Name
	}
	return ft
}

// buildTag renders the tag a generated struct field carries.
func buildTag(name string, a sk.Annotation) reflect.StructTag {
	opts := []string{"name=" + name}
	if a.Required {
		opts = append(opts, "required")
	}
	if a.Container == nil && a.Relation == nil && a.BaseType != "" {
		opts = append(opts, "type="+string(a.BaseType))
	}
	if a.Relation != nil {
		opts = append(opts, "ref="+a.Relation.SchemaID)
	}
	if a.HasDefault {
		opts = append(opts, "default="+formatDefault(a.BaseType, a.Default))
	}
	js := name
	if !a.Required {
		js += ",omitempty"
	}
	return reflect.StructTag(TagKey + ":" + strconv.Quote(strings.Join(opts, ",")) + " json:" + strconv.Quote(js))
}

func formatDefault(base sk.BaseType, v any) string {
	if codec.Temporal(base) {
		if s, err := codec.Encode(base, v); err == nil {
			return s
		}
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// parseDefault converts a tag default into a value of the given base type.
func parseDefault(base sk.BaseType, raw string) any {
	switch base {
	case sk.TypeString, sk.TypeDate, sk.TypeDateTime, sk.TypeTime, sk.TypeDuration, sk.TypeDecimal:
		return raw
	case sk.TypeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case sk.TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case sk.TypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
