// Package gen renders Go source for struct-tag schemas.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"

	"github.com/reoring/skemalink/structtag"
)

// TypeDef names a struct type to render.
type TypeDef struct {
	Name   string
	Schema *structtag.Schema
}

// RenderFile renders one gofmt'ed file declaring every type in defs, in order.
func RenderFile(pkg string, defs []TypeDef) ([]byte, error) {
	if pkg == "" {
		return nil, fmt.Errorf("gen: empty package name")
	}
	var body bytes.Buffer
	needTime := false
	for _, d := range defs {
		if d.Schema == nil {
			return nil, fmt.Errorf("gen: type %s has no schema", d.Name)
		}
		name := structtag.GoName(d.Name)
		fmt.Fprintf(&body, "\n// %s is generated from schema %q.\ntype %s struct {\n", name, d.Schema.ID(), name)
		for _, e := range d.Schema.Fields() {
			sf := e.StructField()
			ts := sf.Type.String()
			if strings.Contains(ts, "time.") {
				needTime = true
			}
			fmt.Fprintf(&body, "\t%s %s `%s`\n", sf.Name, ts, sf.Tag)
		}
		body.WriteString("}\n")
	}

	var out bytes.Buffer
	out.WriteString("// Code generated by skemalink gen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n", pkg)
	if needTime {
		out.WriteString("\nimport \"time\"\n")
	}
	out.Write(body.Bytes())
	code, err := format.Source(out.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: format: %w", err)
	}
	return code, nil
}
