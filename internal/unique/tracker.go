// Package unique tracks the values accepted into set-like containers during
// one generation pass.
package unique

import (
	"reflect"

	"github.com/davecgh/go-spew/spew"
)

var digestConfig = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// digest is the key of values that cannot be compared with ==.
type digest string

// Tracker records accepted values per container path. It is scoped to one
// pass and not safe for concurrent use.
type Tracker struct {
	accepted map[string]map[any]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{accepted: make(map[string]map[any]struct{})}
}

// Accept records v under path and reports true, or reports false if an
// equal value was already accepted there.
func (t *Tracker) Accept(path string, v reflect.Value) bool {
	seen, ok := t.accepted[path]
	if !ok {
		seen = make(map[any]struct{})
		t.accepted[path] = seen
	}

	k := Key(v)
	if _, dup := seen[k]; dup {
		return false
	}

	seen[k] = struct{}{}

	return true
}

// Contains reports whether a value equal to v was accepted under path.
func (t *Tracker) Contains(path string, v reflect.Value) bool {
	_, ok := t.accepted[path][Key(v)]
	return ok
}

// Len returns the number of values accepted under path.
func (t *Tracker) Len(path string) int {
	return len(t.accepted[path])
}

// Evict forgets everything accepted under path.
func (t *Tracker) Evict(path string) {
	delete(t.accepted, path)
}

// Key returns a map key identifying v by value. Values that cannot be
// compared with == are identified by a go-spew dump.
func Key(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	if v.Comparable() {
		return v.Interface()
	}

	return digest(v.Type().String() + ":" + digestConfig.Sdump(v.Interface()))
}
