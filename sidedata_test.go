package skemalink_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sk "github.com/reoring/skemalink"
	g "github.com/reoring/skemalink/dsl"
	"github.com/reoring/skemalink/jsonschema"
	"github.com/reoring/skemalink/structtag"
)

func TestSideData_Basic(t *testing.T) {
	var d sk.SideData
	_, ok := d.Get("sql.index")
	assert.False(t, ok)
	d.Set("sql.index", "idx_name")
	d.Set("ui.widget", "text")
	v, ok := d.Get("sql.index")
	assert.True(t, ok)
	assert.Equal(t, "idx_name", v)
	assert.Equal(t, []string{"sql.index", "ui.widget"}, d.Keys())
	d.Delete("sql.index")
	assert.Equal(t, []string{"ui.widget"}, d.Keys())
}

func TestSideData_EveryDialectCarriesIt(t *testing.T) {
	src := g.Object().ID("T").Field("a", g.String()).MustBuild()
	for _, f := range []sk.Factory{g.Factory{}, structtag.Factory{}, jsonschema.Factory{}} {
		s, _, err := sk.Convert(src, f, sk.WithRegistry(sk.NewRegistry()))
		require.NoError(t, err, f.Dialect())
		el, err := s.Get("a")
		require.NoError(t, err)

		for _, owner := range []any{s, el} {
			require.NoError(t, sk.SetSide(owner, "audit.owner", f.Dialect()), f.Dialect())
			v, ok, err := sk.GetSide(owner, "audit.owner")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, f.Dialect(), v)
		}
	}
}

func TestSideData_NotCopiedByConversion(t *testing.T) {
	src := g.Object().Field("a", g.String()).MustBuild()
	require.NoError(t, sk.SetSide(src, "k", 1))
	out, _, err := sk.Convert(src, g.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	_, ok, err := sk.GetSide(out, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSideData_NoCarrier(t *testing.T) {
	assert.ErrorIs(t, sk.SetSide(struct{}{}, "k", 1), sk.ErrNoSideChannel)
	_, _, err := sk.GetSide(42, "k")
	assert.ErrorIs(t, err, sk.ErrNoSideChannel)
}

func TestReport_Helpers(t *testing.T) {
	var nilRep *sk.Report
	assert.True(t, nilRep.Lossless())
	assert.Nil(t, nilRep.For("x"))
	assert.Nil(t, nilRep.Unresolved())

	src := g.Object().
		Field("age", g.Int().Range(0, 150).OneOf(1, 2)).
		Field("owner", g.Ref("Nobody")).
		MustBuild()
	_, rep, err := sk.Convert(src, structtag.Factory{}, sk.WithRegistry(sk.NewRegistry()))
	require.NoError(t, err)
	assert.Equal(t, []string{"range[0,150]", "enum[1,2]"}, rep.Dropped("age"))
	require.Len(t, rep.Unresolved(), 1)
	assert.Equal(t, "owner", rep.Unresolved()[0].Element)
	assert.Equal(t, "unsupported_constraint at age range[0,150]; unsupported_constraint at age enum[1,2]; relation_unresolved at owner ref(Nobody)", rep.String())
	assert.Contains(t, rep.For("age")[0].Message, "constraint=range[0,150]")
}
