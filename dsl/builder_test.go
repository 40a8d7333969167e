package dsl_test

import (
	"errors"
	"testing"

	sk "github.com/reoring/skemalink"
	g "github.com/reoring/skemalink/dsl"
)

func TestObject_OrderAndCanonical(t *testing.T) {
	s, err := g.Object().ID("Person").
		Field("name", g.String().Length(1, 64)).Required().
		Field("age", g.Int().Range(0, 150)).
		Field("tags", g.List(g.String())).Default([]any{}).
		Meta("table", "people").
		Build()
	if err != nil {
		t.Fatalf("build err: %v", err)
	}
	if got := sk.Names(s); len(got) != 3 || got[0] != "name" || got[1] != "age" || got[2] != "tags" {
		t.Fatalf("unexpected order: %v", got)
	}
	if s.ID() != "Person" || s.Metadata()["table"] != "people" {
		t.Fatalf("unexpected id/meta: %q %v", s.ID(), s.Metadata())
	}

	name, err := s.Get("name")
	if err != nil {
		t.Fatalf("get name: %v", err)
	}
	a := name.Canonical()
	if a.BaseType != sk.TypeString || !a.Required {
		t.Fatalf("unexpected name annotation: %s", a)
	}
	if _, ok := a.Find(sk.KindLength); !ok {
		t.Fatalf("length constraint missing: %s", a)
	}
	if name.Schema() != sk.Schema(s) {
		t.Fatalf("back-reference not bound")
	}

	age, _ := s.Get("age")
	want := sk.NewAnnotation(sk.TypeInt, sk.Between(0, 150))
	if !age.Canonical().Equal(want) {
		t.Fatalf("age: got %s want %s", age.Canonical(), want)
	}

	tags, _ := s.Get("tags")
	if td := tags.NativeType(); td.String() != "list<string>" {
		t.Fatalf("unexpected tags type: %s", td)
	}
	if !tags.Canonical().HasDefault {
		t.Fatalf("default missing on tags")
	}
}

func TestObject_CanonicalIsIdempotent(t *testing.T) {
	s := g.Object().Field("age", g.Int().Min(0).Meta("unit", "years")).MustBuild()
	e, _ := s.Get("age")
	a, b := e.Canonical(), e.Canonical()
	if !a.Equal(b) {
		t.Fatalf("canonical not stable: %s vs %s", a, b)
	}
	if m := sk.Metadata(e); m["unit"] != "years" {
		t.Fatalf("metadata not carried: %v", m)
	}
}

func TestObject_DuplicateField(t *testing.T) {
	_, err := g.Object().
		Field("a", g.String()).
		Field("a", g.Int()).
		Build()
	if !errors.Is(err, sk.ErrDuplicateElement) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestObject_RequireUndeclared(t *testing.T) {
	if _, err := g.Object().Field("a", g.String()).Require("b").Build(); err == nil {
		t.Fatalf("expected error for undeclared field")
	}
}

func TestSchema_GetUnknown(t *testing.T) {
	s := g.Object().ID("X").Field("a", g.String()).MustBuild()
	_, err := s.Get("missing")
	var ue *sk.UnknownElementError
	if !errors.As(err, &ue) || ue.Name != "missing" || ue.Schema != "X" {
		t.Fatalf("expected UnknownElementError, got %v", err)
	}
}

func TestAdapter_IsAValue(t *testing.T) {
	base := g.Int()
	bounded := base.Range(0, 10)
	if len(base.Constraints()) != 0 {
		t.Fatalf("modifier changed the receiver")
	}
	if len(bounded.Constraints()) != 1 {
		t.Fatalf("unexpected constraints: %v", bounded.Constraints())
	}
}

func TestSideData_OnSchemaAndElement(t *testing.T) {
	s := g.Object().Field("a", g.String()).MustBuild()
	if err := sk.SetSide(s, "sql.table", "t_a"); err != nil {
		t.Fatalf("set side: %v", err)
	}
	e, _ := s.Get("a")
	if err := sk.SetSide(e, "sql.column", "col_a"); err != nil {
		t.Fatalf("set side: %v", err)
	}
	if v, ok, _ := sk.GetSide(s, "sql.table"); !ok || v != "t_a" {
		t.Fatalf("schema side lost: %v", v)
	}
	if v, ok, _ := sk.GetSide(e, "sql.column"); !ok || v != "col_a" {
		t.Fatalf("element side lost: %v", v)
	}
	// side data never leaks into the canonical form
	if _, ok := e.Canonical().Extension("sql.column"); ok {
		t.Fatalf("side data visible in annotation")
	}
}

func TestObject_MetaAfterField(t *testing.T) {
	s := g.Object().ID("Person").
		Field("name", g.String()).Required().
		Field("age", g.Int()).
		Meta("table", "people").
		MustBuild()
	if s.Metadata()["table"] != "people" {
		t.Fatalf("metadata lost: %v", s.Metadata())
	}
	if names := sk.Names(s); len(names) != 2 || names[1] != "age" {
		t.Fatalf("unexpected fields: %v", names)
	}
}
