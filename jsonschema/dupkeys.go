package jsonschema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

type dupFrame struct {
	object    bool
	keys      map[string]struct{}
	expectKey bool
	path      string
	key       string // last key read in an object
	index     int    // next element index in an array
}

// checkDuplicateKeys walks the token stream of data and returns a
// *DuplicateKeyError for the first object key seen twice in the same object.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var stack []dupFrame
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("jsonschema: invalid JSON: %w", err)
		}
		var top *dupFrame
		if len(stack) > 0 {
			top = &stack[len(stack)-1]
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				path := ""
				if top != nil {
					path = top.childPath()
				}
				f := dupFrame{object: v == '{', path: path}
				if f.object {
					f.keys = map[string]struct{}{}
					f.expectKey = true
				}
				stack = append(stack, f)
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
		case string:
			if top != nil && top.object && top.expectKey {
				if _, dup := top.keys[v]; dup {
					return &DuplicateKeyError{Key: v, Path: top.path}
				}
				top.keys[v] = struct{}{}
				top.key = v
				top.expectKey = false
				continue
			}
			if top != nil {
				top.childPath()
			}
		default:
			if top != nil {
				top.childPath()
			}
		}
	}
}

// childPath returns the pointer of the value being read in f and advances f
// past it.
func (f *dupFrame) childPath() string {
	if f.object {
		f.expectKey = true
		return f.path + "/" + escapePointer(f.key)
	}
	p := f.path + "/" + strconv.Itoa(f.index)
	f.index++
	return p
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

func orRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
