package skemalink

import (
	"slices"
	"sync"
)

// SideData is an arbitrary key/value store attached to a Schema or Element.
// Keys are caller-defined; namespacing them (e.g. "sql.index") is a
// convention between cooperating libraries. The Converter never reads it.
// The zero value is ready to use.
type SideData struct {
	mu sync.RWMutex
	m  map[string]any
}

// Get returns the value stored under key.
func (d *SideData) Get(key string) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.m[key]
	return v, ok
}

// Set stores v under key.
func (d *SideData) Set(key string, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.m == nil {
		d.m = map[string]any{}
	}
	d.m[key] = v
}

// Delete removes key.
func (d *SideData) Delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, key)
}

// Keys returns the stored keys in sorted order.
func (d *SideData) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.m))
	for k := range d.m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// SideCarrier is implemented by Schemas and Elements that own a side channel.
// The store lives and dies with its owner.
type SideCarrier interface {
	Side() *SideData
}

// SetSide stores v under key on owner's side channel.
func SetSide(owner any, key string, v any) error {
	sc, ok := owner.(SideCarrier)
	if !ok || sc.Side() == nil {
		return ErrNoSideChannel
	}
	sc.Side().Set(key, v)
	return nil
}

// GetSide reads key from owner's side channel.
func GetSide(owner any, key string) (any, bool, error) {
	sc, ok := owner.(SideCarrier)
	if !ok || sc.Side() == nil {
		return nil, false, ErrNoSideChannel
	}
	v, found := sc.Side().Get(key)
	return v, found, nil
}
