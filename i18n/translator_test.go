package i18n

import (
	"strings"
	"testing"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("unsupported_constraint", nil); msg == "unsupported_constraint" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("relation_unresolved", nil); msg == "referenced schema not found" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_DataIsAppendedSorted(t *testing.T) {
	msg := T("unsupported_constraint", map[string]string{"element": "age", "constraint": "range[0,150]"})
	if !strings.HasSuffix(msg, "(constraint=range[0,150], element=age)") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return strings.ToUpper(code) }

func TestTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upper{})
	if got := T("no_schema", nil); got != "NO_SCHEMA" {
		t.Fatalf("custom translator not used: %q", got)
	}
	SetTranslator(nil)
	if got := T("no_schema", nil); got != "no schema for subject" {
		t.Fatalf("reset failed: %q", got)
	}
	if got := T("something_else", nil); got != "something_else" {
		t.Fatalf("unknown codes should echo, got %q", got)
	}
}
