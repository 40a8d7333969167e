package skemalink_test

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sk "github.com/reoring/skemalink"
	g "github.com/reoring/skemalink/dsl"
)

type order struct {
	ID    string
	Lines []string
	pad   [64]byte
}

type invoice struct{}

var invoiceSchema = g.Object().ID("Invoice").Field("number", g.String()).Required().MustBuild()

// SkemaSchema works on the zero value.
func (invoice) SkemaSchema() sk.Schema { return invoiceSchema }

func TestRegistry_TypeAndName(t *testing.T) {
	r := sk.NewRegistry()
	s := g.Object().ID("Order").Field("id", g.String()).MustBuild()

	_, err := sk.SchemaOf[order](r)
	assert.ErrorIs(t, err, sk.ErrNoSchema)

	require.NoError(t, r.AssociateType(reflect.TypeFor[order](), s))
	got, err := sk.SchemaOf[order](r)
	require.NoError(t, err)
	assert.Same(t, s, got.(*g.Schema))

	require.NoError(t, r.AssociateName("orders.v1", s))
	got, err = r.LookupName("orders.v1")
	require.NoError(t, err)
	assert.Equal(t, "Order", got.ID())

	r.DissociateType(reflect.TypeFor[order]())
	r.DissociateName("orders.v1")
	_, err = r.LookupType(reflect.TypeFor[order]())
	var ns *sk.NoSchemaError
	assert.True(t, errors.As(err, &ns))
	_, err = r.LookupName("orders.v1")
	assert.ErrorIs(t, err, sk.ErrNoSchema)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_RejectsNil(t *testing.T) {
	r := sk.NewRegistry()
	assert.Error(t, r.AssociateType(nil, invoiceSchema))
	assert.Error(t, r.AssociateName("x", nil))
	assert.Error(t, r.AssociateName("", invoiceSchema))
	assert.Error(t, sk.AssociateObject[order](r, nil, invoiceSchema))
}

func TestRegistry_ProviderWinsWithoutRegistration(t *testing.T) {
	r := sk.NewRegistry()
	s, err := sk.SchemaOf[invoice](r)
	require.NoError(t, err)
	assert.Equal(t, "Invoice", s.ID())

	s, err = sk.SchemaOf[*invoice](r)
	require.NoError(t, err)
	assert.Equal(t, "Invoice", s.ID())

	s, err = sk.LookupObject(r, &invoice{})
	require.NoError(t, err)
	assert.Equal(t, "Invoice", s.ID())
	assert.Equal(t, 0, r.Len(), "provider lookups never register anything")
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := sk.NewRegistry()
	a := g.Object().ID("A").MustBuild()
	b := g.Object().ID("B").MustBuild()
	require.NoError(t, r.AssociateType(reflect.TypeFor[order](), a))
	require.NoError(t, r.AssociateType(reflect.TypeFor[order](), b))
	got, err := r.LookupType(reflect.TypeFor[order]())
	require.NoError(t, err)
	assert.Equal(t, "B", got.ID())
}

func TestRegistry_ObjectAssociation(t *testing.T) {
	r := sk.NewRegistry()
	o := &order{ID: "o-1"}
	s := g.Object().ID("Order").MustBuild()
	require.NoError(t, sk.AssociateObject(r, o, s))

	got, err := sk.LookupObject(r, o)
	require.NoError(t, err)
	assert.Equal(t, "Order", got.ID())

	other := &order{ID: "o-1"}
	_, err = sk.LookupObject(r, other)
	assert.ErrorIs(t, err, sk.ErrNoSchema, "objects are matched by identity, not value")

	sk.DissociateObject(r, o)
	_, err = sk.LookupObject(r, o)
	assert.ErrorIs(t, err, sk.ErrNoSchema)
	runtime.KeepAlive(o)
}

func TestRegistry_ObjectDoesNotOutliveSubject(t *testing.T) {
	r := sk.NewRegistry()
	s := g.Object().ID("Order").MustBuild()
	func() {
		o := &order{ID: "temp"}
		require.NoError(t, sk.AssociateObject(r, o, s))
		require.Equal(t, 1, r.Len())
	}()

	require.Eventually(t, func() bool {
		runtime.GC()
		r.Prune()
		return r.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)

	_, ok := r.Resolve("Order")
	assert.False(t, ok, "a collected subject must not resolve")
}

func TestRegistry_Resolve(t *testing.T) {
	r := sk.NewRegistry()
	_, ok := r.Resolve("Address")
	assert.False(t, ok)

	older := g.Object().ID("Address").Field("city", g.String()).MustBuild()
	newer := g.Object().ID("Address").Field("street", g.String()).MustBuild()
	require.NoError(t, r.AssociateType(reflect.TypeFor[order](), older))
	require.NoError(t, r.AssociateName("addr", newer))

	got, ok := r.Resolve("Address")
	require.True(t, ok)
	assert.Equal(t, []string{"street"}, sk.Names(got), "most recent association wins")

	named := g.Object().ID("Other").MustBuild()
	require.NoError(t, r.AssociateName("Address", named))
	got, ok = r.Resolve("Address")
	require.True(t, ok)
	assert.Equal(t, "Other", got.ID(), "a name association equal to the id takes precedence")
}

func TestRegistry_Concurrent(t *testing.T) {
	r := sk.NewRegistry()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("s%d", i)
			s := g.Object().ID(name).MustBuild()
			for range 50 {
				_ = r.AssociateName(name, s)
				got, err := r.LookupName(name)
				if err != nil || got.ID() != name {
					t.Errorf("lookup %s: %v", name, err)
					return
				}
				r.Resolve(name)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, r.Len())
}
