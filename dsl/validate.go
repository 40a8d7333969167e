package dsl

import (
	"context"
	"net/mail"
	"net/netip"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	sk "github.com/reoring/skemalink"
	"github.com/reoring/skemalink/codec"
	"github.com/reoring/skemalink/i18n"
)

// ParseOption configures Parse and Validate.
type ParseOption func(*parseConfig)

type parseConfig struct {
	reg      *sk.Registry
	maxDepth int
}

// WithRegistry sets the registry used to resolve Ref fields. Without it
// skemalink.DefaultRegistry is consulted.
func WithRegistry(r *sk.Registry) ParseOption { return func(c *parseConfig) { c.reg = r } }

// WithMaxDepth bounds relation nesting (default 32).
func WithMaxDepth(n int) ParseOption { return func(c *parseConfig) { c.maxDepth = n } }

// Validate reports every violation in v as skemalink.Issues.
func (s *Schema) Validate(ctx context.Context, v any, opts ...ParseOption) error {
	_, err := s.Parse(ctx, v, opts...)
	return err
}

// Parse checks v against the schema and returns a copy with defaults applied.
// Violations are collected (not short-circuited) and returned as
// skemalink.Issues with JSON Pointer paths.
func (s *Schema) Parse(ctx context.Context, v any, opts ...ParseOption) (map[string]any, error) {
	cfg := parseConfig{reg: sk.DefaultRegistry, maxDepth: 32}
	for _, o := range opts {
		o(&cfg)
	}
	p := &parser{cfg: cfg}
	out, iss := p.object(ctx, "", s, v, 0)
	if len(iss) > 0 {
		return nil, iss
	}
	return out, nil
}

type parser struct {
	cfg parseConfig
}

func issue(path, code string, params map[string]any) sk.Issue {
	if path == "" {
		path = "/"
	}
	return sk.Issue{Path: path, Code: code, Message: i18n.T(code, nil), Params: params}
}

func (p *parser) object(ctx context.Context, path string, s *Schema, v any, depth int) (map[string]any, sk.Issues) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, sk.Issues{issue(path, sk.CodeInvalidType, map[string]any{"expected": "object"})}
	}
	if err := ctx.Err(); err != nil {
		return nil, sk.Issues{sk.Issue{Path: orRoot(path), Code: sk.CodeInvalidType, Message: err.Error(), Cause: err}}
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	var iss sk.Issues
	for _, e := range s.Fields() {
		fp := path + "/" + escapePointer(e.name)
		val, present := m[e.name]
		if !present {
			switch {
			case e.hasDef:
				out[e.name] = e.def
			case e.required:
				iss = sk.AppendIssues(iss, issue(fp, sk.CodeRequired, nil))
			}
			continue
		}
		nv, sub := p.valueAt(ctx, fp, e.ad, val, depth)
		iss = append(iss, sub...)
		if len(sub) == 0 {
			out[e.name] = nv
		}
	}
	return out, iss
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// escapePointer escapes a key for use as a JSON Pointer token.
func escapePointer(s string) string { return pointerEscaper.Replace(s) }

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

func (p *parser) valueAt(ctx context.Context, path string, ad Adapter, v any, depth int) (any, sk.Issues) {
	if v == nil {
		if ad.nullable || ad.base == sk.TypeAny || ad.base == sk.TypeUnknown {
			return nil, nil
		}
		return nil, sk.Issues{issue(path, sk.CodeInvalidType, map[string]any{"expected": string(ad.base), "got": "null"})}
	}
	out, iss := p.typed(ctx, path, ad, v, depth)
	if len(iss) > 0 {
		return nil, iss
	}
	for _, c := range ad.checks {
		if is, ok := check(path, c, out); !ok {
			iss = append(iss, is)
		}
	}
	return out, iss
}

func (p *parser) typed(ctx context.Context, path string, ad Adapter, v any, depth int) (any, sk.Issues) {
	bad := func() (any, sk.Issues) {
		return nil, sk.Issues{issue(path, sk.CodeInvalidType, map[string]any{"expected": string(ad.base)})}
	}
	switch ad.base {
	case sk.TypeString:
		if _, ok := v.(string); !ok {
			return bad()
		}
	case sk.TypeInt:
		f, ok := sk.AsFloat(v)
		if !ok || f != float64(int64(f)) {
			return bad()
		}
	case sk.TypeFloat, sk.TypeDecimal:
		if _, ok := sk.AsFloat(v); !ok {
			return bad()
		}
	case sk.TypeBool:
		if _, ok := v.(bool); !ok {
			return bad()
		}
	case sk.TypeBytes:
		switch v.(type) {
		case []byte, string:
		default:
			return bad()
		}
	case sk.TypeDate, sk.TypeDateTime, sk.TypeTime, sk.TypeDuration:
		if !temporal(ad.base, v) {
			return bad()
		}
	case sk.TypeList, sk.TypeSet:
		items, ok := asSlice(v)
		if !ok {
			return bad()
		}
		if ad.elem == nil {
			return v, nil
		}
		out := make([]any, len(items))
		var iss sk.Issues
		for i, it := range items {
			nv, sub := p.valueAt(ctx, path+"/"+strconv.Itoa(i), *ad.elem, it, depth)
			iss = append(iss, sub...)
			out[i] = nv
			if ad.base == sk.TypeSet && len(sub) == 0 {
				for j := 0; j < i; j++ {
					if sk.ValueEqual(items[j], it) {
						iss = append(iss, issue(path+"/"+strconv.Itoa(i), sk.CodeUniqueness, map[string]any{"duplicate_of": j}))
						break
					}
				}
			}
		}
		return out, iss
	case sk.TypeMapping:
		m, ok := v.(map[string]any)
		if !ok {
			return bad()
		}
		out := make(map[string]any, len(m))
		var iss sk.Issues
		for k, val := range m {
			kp := path + "/" + escapePointer(k)
			if ad.key != nil {
				if _, sub := p.valueAt(ctx, kp, *ad.key, k, depth); len(sub) > 0 {
					iss = append(iss, sub...)
					continue
				}
			}
			if ad.elem == nil {
				out[k] = val
				continue
			}
			nv, sub := p.valueAt(ctx, kp, *ad.elem, val, depth)
			iss = append(iss, sub...)
			out[k] = nv
		}
		return out, iss
	case sk.TypeObject:
		if _, ok := v.(map[string]any); !ok {
			return bad()
		}
		if ad.ref == "" || depth >= p.cfg.maxDepth {
			return v, nil
		}
		target, ok := p.cfg.reg.Resolve(ad.ref)
		if !ok {
			return v, nil
		}
		if ds, ok := target.(*Schema); ok {
			out, iss := p.object(ctx, path, ds, v, depth+1)
			return out, iss
		}
	}
	return v, nil
}

func temporal(b sk.BaseType, v any) bool {
	switch x := v.(type) {
	case time.Time:
		return b != sk.TypeDuration
	case time.Duration:
		return b == sk.TypeDuration
	case string:
		_, err := codec.Decode(b, x)
		return err == nil
	}
	return false
}

func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func length(v any) (int, bool) {
	switch x := v.(type) {
	case string:
		return utf8.RuneCountInString(x), true
	case []byte:
		return len(x), true
	case []any:
		return len(x), true
	case map[string]any:
		return len(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

// check evaluates one constraint against an already type-checked value.
func check(path string, c sk.Constraint, v any) (sk.Issue, bool) {
	switch x := c.(type) {
	case sk.Range:
		f, ok := sk.AsFloat(v)
		if !ok {
			return sk.Issue{}, true
		}
		if x.Min != nil && f < *x.Min {
			return issue(path, sk.CodeTooSmall, map[string]any{"min": *x.Min, "got": f}), false
		}
		if x.Max != nil && f > *x.Max {
			return issue(path, sk.CodeTooBig, map[string]any{"max": *x.Max, "got": f}), false
		}
	case sk.Length:
		n, ok := length(v)
		if !ok {
			return sk.Issue{}, true
		}
		if x.Min != nil && n < *x.Min {
			return issue(path, sk.CodeTooShort, map[string]any{"min": *x.Min, "got": n}), false
		}
		if x.Max != nil && n > *x.Max {
			return issue(path, sk.CodeTooLong, map[string]any{"max": *x.Max, "got": n}), false
		}
	case sk.Pattern:
		s, ok := v.(string)
		if !ok {
			return sk.Issue{}, true
		}
		re, err := compile(x.Regex)
		if err != nil {
			is := issue(path, sk.CodePattern, map[string]any{"pattern": x.Regex})
			is.Cause = err
			return is, false
		}
		if !re.MatchString(s) {
			return issue(path, sk.CodePattern, map[string]any{"pattern": x.Regex}), false
		}
	case sk.Format:
		s, ok := v.(string)
		if ok && !formatOK(x.Name, s) {
			is := issue(path, sk.CodeInvalidFormat, map[string]any{"format": x.Name})
			is.Hint = x.String()
			return is, false
		}
	case sk.Enum:
		for _, a := range x.Allowed {
			if sk.ValueEqual(a, v) {
				return sk.Issue{}, true
			}
		}
		return issue(path, sk.CodeInvalidEnum, map[string]any{"allowed": x.Allowed}), false
	case sk.Predicate:
		if x.Ref.Fn == nil {
			return sk.Issue{}, true
		}
		if err := x.Ref.Fn(v); err != nil {
			is := issue(path, sk.CodePredicate, nil)
			is.Cause = err
			is.Rule = x.Ref.ID
			is.Hint = x.Ref.Description
			return is, false
		}
	}
	return sk.Issue{}, true
}

var patternCache sync.Map // string -> *regexp.Regexp

func compile(expr string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	patternCache.Store(expr, re)
	return re, nil
}

// formatOK checks the well-known formats. Unknown format names pass.
func formatOK(name, s string) bool {
	switch name {
	case "email":
		a, err := mail.ParseAddress(s)
		return err == nil && a.Address == s
	case "uuid":
		_, err := uuid.Parse(s)
		return err == nil
	case "uri", "url":
		u, err := url.Parse(s)
		return err == nil && u.Scheme != ""
	case "ipv4":
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is4()
	case "ipv6":
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is6()
	case "date":
		_, err := codec.Decode(sk.TypeDate, s)
		return err == nil
	case "date-time":
		_, err := codec.Decode(sk.TypeDateTime, s)
		return err == nil
	}
	return true
}
