package skemalink_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sk "github.com/reoring/skemalink"
	g "github.com/reoring/skemalink/dsl"
	"github.com/reoring/skemalink/jsonschema"
	"github.com/reoring/skemalink/structtag"
)

func person(t *testing.T) *g.Schema {
	t.Helper()
	s, err := g.Object().ID("Person").
		Field("name", g.String().Length(1, 64)).Required().
		Field("age", g.Int().Range(0, 150)).
		Field("tags", g.List(g.String())).
		Meta("table", "people").
		Build()
	require.NoError(t, err)
	return s
}

func TestConvert_BestEffortDropsAndReports(t *testing.T) {
	out, rep, err := sk.Convert(person(t), structtag.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age", "tags"}, sk.Names(out))
	assert.Equal(t, "people", out.Metadata()["table"])
	assert.Equal(t, []string{"range[0,150]"}, rep.Dropped("age"))
	assert.Equal(t, []string{"length[1,64]"}, rep.Dropped("name"))
	assert.Empty(t, rep.For("tags"))
	assert.False(t, rep.Lossless())

	age, err := out.Get("age")
	require.NoError(t, err)
	assert.True(t, age.Canonical().Equal(sk.NewAnnotation(sk.TypeInt)))

	tags, err := out.Get("tags")
	require.NoError(t, err)
	assert.Equal(t, "list<string>", tags.NativeType().String())

	name, _ := out.Get("name")
	assert.True(t, name.Canonical().Required)
	assert.Equal(t, structtag.DialectName, rep.Target)
	assert.NotEmpty(t, rep.ID)
	assert.Contains(t, rep.String(), "unsupported_constraint at age range[0,150]")
}

func TestConvert_StrictAborts(t *testing.T) {
	out, rep, err := sk.Convert(person(t), structtag.Factory{}, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
	require.Error(t, err)
	assert.Nil(t, out)
	assert.NotNil(t, rep)

	var uc *sk.UnsupportedConstraintError
	require.True(t, errors.As(err, &uc))
	assert.Equal(t, "name", uc.Element)
	assert.Equal(t, sk.KindLength, uc.Constraint.Kind())
	assert.ErrorIs(t, err, sk.ErrUnsupportedConstraint)
}

func TestConvert_SplitBoundsToJSONSchema(t *testing.T) {
	src := g.Object().
		Field("age", g.Int().Min(0).Max(150)).
		Field("name", g.String().MinLength(1).MaxLength(5)).
		MustBuild()
	for _, p := range []sk.Policy{sk.BestEffort, sk.Strict} {
		out, rep, err := sk.Convert(src, jsonschema.Factory{}, sk.WithPolicy(p), sk.WithRegistry(sk.NewRegistry()))
		require.NoError(t, err, p)
		assert.True(t, rep.Lossless(), "%s: %s", p, rep)
		age, err := out.Get("age")
		require.NoError(t, err)
		assert.True(t, age.Canonical().Equal(sk.NewAnnotation(sk.TypeInt, sk.Between(0, 150))), "got %s", age.Canonical())
		name, err := out.Get("name")
		require.NoError(t, err)
		assert.True(t, name.Canonical().Equal(sk.NewAnnotation(sk.TypeString, sk.LengthBetween(1, 5))), "got %s", name.Canonical())
	}
}

func TestConvert_NonStringFormatsSurvive(t *testing.T) {
	src, err := jsonschema.Parse([]byte(`{"$id":"Counter","type":"object","properties":{
		"n": {"type":"integer","format":"int64"},
		"ratio": {"type":"number","format":"double"}
	}}`))
	require.NoError(t, err)
	for _, f := range []sk.Factory{jsonschema.Factory{}, g.Factory{}} {
		out, rep, err := sk.Convert(src, f, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
		require.NoError(t, err, f.Dialect())
		assert.True(t, rep.Lossless(), "%s: %s", f.Dialect(), rep)
		n, err := out.Get("n")
		require.NoError(t, err)
		assert.Equal(t, []sk.Constraint{sk.Format{Name: "int64"}}, n.Canonical().Constraints)
	}
}

func TestConvert_NestedConstraintPath(t *testing.T) {
	src := g.Object().
		Field("codes", g.List(g.String().MaxLength(3))).
		Field("scores", g.Map(g.String().Pattern("^[a-z]+$"), g.Float().Min(0))).
		MustBuild()
	out, rep, err := sk.Convert(src, structtag.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)

	codes := rep.For("codes")
	require.Len(t, codes, 1)
	assert.Equal(t, "/items", codes[0].Path)
	assert.Equal(t, "length[,3]", codes[0].Constraint)

	scores := rep.For("scores")
	require.Len(t, scores, 2)
	paths := []string{scores[0].Path, scores[1].Path}
	assert.ElementsMatch(t, []string{"/items", "/keys"}, paths)

	e, _ := out.Get("scores")
	assert.Equal(t, "mapping<string,float>", e.NativeType().String())
}

func TestConvert_LosslessCoreRoundTrip(t *testing.T) {
	src := g.Object().ID("Account").
		Field("name", g.String()).Required().
		Field("count", g.Int()).Default(3).
		Field("active", g.Bool()).
		Field("born", g.Date().Nullable()).
		Field("tags", g.List(g.String())).
		Field("labels", g.Map(g.String(), g.String())).
		MustBuild()
	want := sk.AsAnnotations(src)

	var cur sk.Schema = src
	for _, f := range []sk.Factory{structtag.Factory{}, jsonschema.Factory{}, g.Factory{}, jsonschema.Factory{}, structtag.Factory{}} {
		out, rep, err := sk.Convert(cur, f, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
		require.NoError(t, err, f.Dialect())
		assert.True(t, rep.Lossless(), "%s: %s", f.Dialect(), rep)
		assert.Equal(t, "Account", out.ID())
		got := sk.AsAnnotations(out)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].Name, got[i].Name, f.Dialect())
			assert.True(t, want[i].Annotation.Equal(got[i].Annotation), "%s %s: got %s want %s",
				f.Dialect(), want[i].Name, got[i].Annotation, want[i].Annotation)
		}
		cur = out
	}
}

func TestConvert_Idempotent(t *testing.T) {
	reg := sk.NewRegistry()
	once, _, err := sk.Convert(person(t), jsonschema.Factory{}, sk.WithRegistry(reg))
	require.NoError(t, err)
	twice, rep, err := sk.Convert(once, jsonschema.Factory{}, sk.WithRegistry(reg))
	require.NoError(t, err)
	assert.True(t, rep.Lossless())

	a, b := sk.AsAnnotations(once), sk.AsAnnotations(twice)
	require.Len(t, b, len(a))
	for i := range a {
		assert.True(t, a[i].Annotation.Equal(b[i].Annotation), a[i].Name)
	}
}

func TestConvert_SourceUntouched(t *testing.T) {
	src := person(t)
	before := sk.AsAnnotations(src)
	_, _, err := sk.Convert(src, structtag.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	after := sk.AsAnnotations(src)
	for i := range before {
		assert.True(t, before[i].Annotation.Equal(after[i].Annotation))
	}
	for _, e := range src.Elements() {
		assert.Same(t, src, e.Schema().(*g.Schema), "source back-references must survive")
	}
}

func TestConvert_DanglingRelation(t *testing.T) {
	src := g.Object().ID("Order").
		Field("customer", g.Ref("Customer")).
		Field("lines", g.List(g.Ref("Line"))).
		MustBuild()
	out, rep, err := sk.Convert(src, g.Factory{}, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err, "dangling relations never abort")

	unresolved := rep.Unresolved()
	require.Len(t, unresolved, 2)
	assert.Equal(t, "customer", unresolved[0].Element)
	assert.Equal(t, "lines", unresolved[1].Element)
	assert.Equal(t, "/items", unresolved[1].Path)

	c, _ := out.Get("customer")
	require.NotNil(t, c.Canonical().Relation)
	assert.True(t, c.Canonical().Relation.Unresolved)
	assert.Equal(t, "Customer", c.Canonical().Relation.SchemaID)

	l, _ := out.Get("lines")
	inner, ok := l.Canonical().At("/items")
	require.True(t, ok)
	assert.True(t, inner.Relation.Unresolved)
	assert.Empty(t, rep.Related)
}

func TestConvert_RelatedSchemas(t *testing.T) {
	reg := sk.NewRegistry()
	address := g.Object().ID("Address").
		Field("city", g.String()).Required().
		Field("zip", g.String().Pattern(`^\d{5}$`)).
		Field("resident", g.Ref("Person")).
		MustBuild()
	require.NoError(t, reg.AssociateName("Address", address))
	root := g.Object().ID("Person").
		Field("name", g.String()).
		Field("home", g.Ref("Address")).
		Field("work", g.Ref("Address")).
		MustBuild()
	require.NoError(t, reg.AssociateName("Person", root))

	out, rep, err := sk.Convert(root, structtag.Factory{}, sk.WithRegistry(reg))
	require.NoError(t, err)
	assert.Empty(t, rep.Unresolved())

	require.Len(t, rep.Related, 1, "the root and repeated targets are converted once")
	rel, ok := rep.Related["Address"].(*structtag.Schema)
	require.True(t, ok)
	assert.Equal(t, []string{"city", "zip", "resident"}, sk.Names(rel))
	assert.Equal(t, []string{"pattern(^\\d{5}$)"}, func() []string {
		var out []string
		for _, e := range rep.ForSchema("Address", "zip") {
			out = append(out, e.Constraint)
		}
		return out
	}())
	assert.Empty(t, rep.Dropped("zip"), "related entries are keyed by their schema")

	home, _ := out.Get("home")
	assert.Equal(t, "ref<Address>", home.NativeType().String())
	assert.False(t, home.Canonical().Relation.Unresolved)
}

func TestConvert_NameCollision(t *testing.T) {
	src := g.Object().
		Field("user_id", g.String()).
		Field("userId", g.Int()).
		Field("email", g.String()).
		MustBuild()

	out, rep, err := sk.Convert(src, structtag.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "email"}, sk.Names(out))
	entries := rep.For("userId")
	require.Len(t, entries, 1)
	assert.Equal(t, sk.CodeNameCollision, entries[0].Code)

	_, _, err = sk.Convert(src, structtag.Factory{}, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
	assert.ErrorIs(t, err, sk.ErrNameCollision)

	// dialects that keep names verbatim see no collision
	out, rep, err = sk.Convert(src, jsonschema.Factory{}, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	assert.Len(t, out.Elements(), 3)
	assert.True(t, rep.Lossless())
}

func TestConvert_ParallelMatchesSequential(t *testing.T) {
	b := g.Object().ID("Wide")
	for i := range 40 {
		name := fmt.Sprintf("f%02d", i)
		switch i % 4 {
		case 0:
			b.Field(name, g.Int().Range(0, float64(i)))
		case 1:
			b.Field(name, g.String().Pattern("^x"))
		case 2:
			b.Field(name, g.List(g.String().MaxLength(i)))
		default:
			b.Field(name, g.Bool()).Required()
		}
	}
	src, err := b.Build()
	require.NoError(t, err)

	seqOut, seqRep, err := sk.Convert(src, structtag.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	for range 5 {
		parOut, parRep, err := sk.Convert(src, structtag.Factory{}, sk.WithParallel(true), sk.WithRegistry(sk.NewRegistry()))
		require.NoError(t, err)
		assert.Equal(t, sk.Names(seqOut), sk.Names(parOut))
		assert.Equal(t, seqRep.Entries, parRep.Entries)
		assert.Equal(t, seqOut.(*structtag.Schema).Type(), parOut.(*structtag.Schema).Type())
	}
}

func TestConvert_ConcurrentCalls(t *testing.T) {
	src := person(t)
	conv := sk.NewConverter(sk.WithRegistry(sk.NewRegistry()), sk.WithParallel(true))
	errs := make(chan error, 8)
	for range 8 {
		go func() {
			out, rep, err := conv.Convert(src, jsonschema.Factory{})
			if err == nil && (len(out.Elements()) != 3 || !rep.Lossless()) {
				err = fmt.Errorf("unexpected result: %v %s", sk.Names(out), rep)
			}
			errs <- err
		}()
	}
	for range 8 {
		assert.NoError(t, <-errs)
	}
}

func TestConvert_RejectsNilInputs(t *testing.T) {
	_, _, err := sk.Convert(nil, structtag.Factory{})
	assert.Error(t, err)
	_, _, err = sk.Convert(person(t), nil)
	assert.Error(t, err)
}

type legacyUser struct {
	ID    string   `json:"id"`
	Email *string  `json:"email"`
	Roles []string `json:"roles"`
}

func TestConvert_FromStructTags(t *testing.T) {
	src, err := structtag.For[legacyUser](structtag.WithID("User"))
	require.NoError(t, err)
	out, rep, err := sk.Convert(src, g.Factory{}, sk.WithPolicy(sk.Strict), sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	assert.True(t, rep.Lossless())
	assert.Equal(t, []string{"id", "email", "roles"}, sk.Names(out))
	email, _ := out.Get("email")
	assert.Equal(t, "?string", email.NativeType().String())
	assert.Equal(t, reflect.TypeFor[legacyUser](), src.Type())
}
