package skemalink

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync"
	"weak"
)

// Provider is the class-level query capability: a type that knows its own
// Schema answers SkemaSchema without any registration. The method must work
// on the zero value of the type.
type Provider interface {
	SkemaSchema() Schema
}

// ProviderFor returns the Provider implemented by t or *t, invoked on a fresh
// zero value, if any.
func ProviderFor(t reflect.Type) (Provider, bool) {
	if t == nil {
		return nil, false
	}
	pt := reflect.TypeFor[Provider]()
	switch {
	case t.Kind() == reflect.Pointer && t.Implements(pt):
		p, ok := reflect.New(t.Elem()).Interface().(Provider)
		return p, ok
	case t.Kind() != reflect.Pointer && t.Implements(pt):
		p, ok := reflect.Zero(t).Interface().(Provider)
		return p, ok
	case t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(pt):
		p, ok := reflect.New(t).Interface().(Provider)
		return p, ok
	}
	return nil, false
}

// entry is published atomically under the registry lock and never mutated
// afterwards, so readers never observe a half-written association.
type entry struct {
	schema  Schema
	seq     uint64
	alive   func() bool // nil for subjects that cannot die (types, names)
	cleanup runtime.Cleanup
	weak    bool
}

func (e *entry) live() bool { return e.alive == nil || e.alive() }

// Registry associates subjects with Schemas. Types and names are held
// strongly; object subjects are held weakly and their associations are
// invalidated once the object is garbage collected. All methods are safe for
// concurrent use. Re-association of the same subject is last-write-wins.
type Registry struct {
	mu      sync.RWMutex
	seq     uint64
	types   map[reflect.Type]*entry
	names   map[string]*entry
	objects map[any]*entry // keyed by weak.Pointer[T]
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   map[reflect.Type]*entry{},
		names:   map[string]*entry{},
		objects: map[any]*entry{},
	}
}

// DefaultRegistry is the process-wide registry used when nil is passed to the
// package-level helpers.
var DefaultRegistry = NewRegistry()

func orDefault(r *Registry) *Registry {
	if r == nil {
		return DefaultRegistry
	}
	return r
}

var errNilSchema = errors.New("skemalink: nil schema")

// AssociateType links type t to s.
func (r *Registry) AssociateType(t reflect.Type, s Schema) error {
	if t == nil {
		return errors.New("skemalink: nil type")
	}
	if s == nil {
		return errNilSchema
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.types[t] = &entry{schema: s, seq: r.seq}
	return nil
}

// LookupType returns the Schema associated with t. It does not consult the
// Provider capability; see SchemaFor.
func (r *Registry) LookupType(t reflect.Type) (Schema, error) {
	r.mu.RLock()
	e := r.types[t]
	r.mu.RUnlock()
	if e == nil {
		return nil, &NoSchemaError{Subject: typeLabel(t)}
	}
	return e.schema, nil
}

// DissociateType removes the association of t.
func (r *Registry) DissociateType(t reflect.Type) {
	r.mu.Lock()
	delete(r.types, t)
	r.mu.Unlock()
}

// AssociateName links an external name (a document, a message type, ...) to s.
func (r *Registry) AssociateName(name string, s Schema) error {
	if name == "" {
		return errors.New("skemalink: empty subject name")
	}
	if s == nil {
		return errNilSchema
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.names[name] = &entry{schema: s, seq: r.seq}
	return nil
}

// LookupName returns the Schema associated with name.
func (r *Registry) LookupName(name string) (Schema, error) {
	r.mu.RLock()
	e := r.names[name]
	r.mu.RUnlock()
	if e == nil {
		return nil, &NoSchemaError{Subject: fmt.Sprintf("name %q", name)}
	}
	return e.schema, nil
}

// DissociateName removes the association of name.
func (r *Registry) DissociateName(name string) {
	r.mu.Lock()
	delete(r.names, name)
	r.mu.Unlock()
}

type objectKey struct {
	key any
	e   *entry
}

// AssociateObject links the object pointed to by subject to s without
// keeping subject alive.
func AssociateObject[T any](r *Registry, subject *T, s Schema) error {
	r = orDefault(r)
	if subject == nil {
		return errors.New("skemalink: nil subject")
	}
	if s == nil {
		return errNilSchema
	}
	wp := weak.Make(subject)
	e := &entry{schema: s, weak: true, alive: func() bool { return wp.Value() != nil }}
	e.cleanup = runtime.AddCleanup(subject, r.invalidate, objectKey{key: wp, e: e})

	r.mu.Lock()
	defer r.mu.Unlock()
	if old := r.objects[wp]; old != nil {
		old.cleanup.Stop()
	}
	r.seq++
	e.seq = r.seq
	r.objects[wp] = e
	return nil
}

// LookupObject returns the Schema of subject: the Provider capability of its
// type first, then an explicit association.
func LookupObject[T any](r *Registry, subject *T) (Schema, error) {
	r = orDefault(r)
	if subject == nil {
		return nil, &NoSchemaError{Subject: "nil"}
	}
	if p, ok := any(subject).(Provider); ok {
		if s := p.SkemaSchema(); s != nil {
			return s, nil
		}
	}
	r.mu.RLock()
	e := r.objects[weak.Make(subject)]
	r.mu.RUnlock()
	if e == nil || !e.live() {
		return nil, &NoSchemaError{Subject: fmt.Sprintf("object %T", subject)}
	}
	return e.schema, nil
}

// DissociateObject removes the association of subject.
func DissociateObject[T any](r *Registry, subject *T) {
	r = orDefault(r)
	if subject == nil {
		return
	}
	key := any(weak.Make(subject))
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.objects[key]; e != nil {
		e.cleanup.Stop()
		delete(r.objects, key)
	}
}

// invalidate is the cleanup hook run after an object subject is collected.
func (r *Registry) invalidate(k objectKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.objects[k.key] == k.e {
		delete(r.objects, k.key)
	}
}

// SchemaFor returns the Schema of type t: the Provider capability first, the
// registry as fallback. It never forces resolution of an unassociated type;
// such types yield a *NoSchemaError.
func SchemaFor(r *Registry, t reflect.Type) (Schema, error) {
	r = orDefault(r)
	if p, ok := ProviderFor(t); ok {
		if s := p.SkemaSchema(); s != nil {
			return s, nil
		}
	}
	return r.LookupType(t)
}

// SchemaOf is the generic form of SchemaFor.
func SchemaOf[T any](r *Registry) (Schema, error) {
	return SchemaFor(r, reflect.TypeFor[T]())
}

// Resolve finds the Schema a relation reference points to: a name association
// equal to id, otherwise the most recently associated live Schema whose ID
// equals id.
func (r *Registry) Resolve(id string) (Schema, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e := r.names[id]; e != nil {
		return e.schema, true
	}
	var best *entry
	consider := func(e *entry) {
		if e.schema.ID() != id || !e.live() {
			return
		}
		if best == nil || e.seq > best.seq {
			best = e
		}
	}
	for _, e := range r.names {
		consider(e)
	}
	for _, e := range r.types {
		consider(e)
	}
	for _, e := range r.objects {
		consider(e)
	}
	if best == nil {
		return nil, false
	}
	return best.schema, true
}

// Prune eagerly drops associations whose object subject has been collected.
// It returns the number of removed entries.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, e := range r.objects {
		if !e.live() {
			delete(r.objects, k)
			n++
		}
	}
	return n
}

// Len returns the number of live associations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.types) + len(r.names)
	for _, e := range r.objects {
		if e.live() {
			n++
		}
	}
	return n
}

func typeLabel(t reflect.Type) string {
	if t == nil {
		return "type <nil>"
	}
	return "type " + t.String()
}
