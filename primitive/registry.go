package primitive

import (
	"reflect"
	"sync"
	"time"
)

// Defaults used by NewRegistry for kinds wider than 16 bits.
const (
	DefaultIntRange     = 1_000_000
	DefaultMaxStringLen = 12
	DefaultMaxDuration  = 24 * time.Hour
)

// Registry maps leaf types to the Arbitrary that draws them. Concrete type
// registrations take precedence over kind defaults. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Arbitrary
	byKind map[KindEnum]func(reflect.Type) Arbitrary
}

// NewRegistry creates a Registry with defaults for every KindEnum.
func NewRegistry() *Registry {
	reg := &Registry{
		byType: make(map[reflect.Type]Arbitrary),
		byKind: make(map[KindEnum]func(reflect.Type) Arbitrary),
	}

	for _, kind := range []KindEnum{KindInt, KindInt8, KindInt16, KindInt32, KindInt64} {
		reg.byKind[kind] = signedDefault(kind)
	}

	for _, kind := range []KindEnum{KindUint, KindUint8, KindUint16, KindUint32, KindUint64} {
		reg.byKind[kind] = unsignedDefault(kind)
	}

	reg.byKind[KindFloat32] = func(t reflect.Type) Arbitrary { return Floats(t, -DefaultIntRange, DefaultIntRange) }
	reg.byKind[KindFloat64] = reg.byKind[KindFloat32]
	reg.byKind[KindBool] = Bools
	reg.byKind[KindString] = func(t reflect.Type) Arbitrary { return Strings(t, 0, DefaultMaxStringLen, "") }
	reg.byKind[KindDuration] = func(t reflect.Type) Arbitrary { return Durations(t, DefaultMaxDuration) }
	reg.byKind[KindTime] = func(reflect.Type) Arbitrary {
		return Times(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC))
	}

	return reg
}

// Register binds a to values of type t, replacing any earlier binding.
func (r *Registry) Register(t reflect.Type, a Arbitrary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byType[t] = a
}

// RegisterKind replaces the default factory for a kind.
func (r *Registry) RegisterKind(kind KindEnum, factory func(reflect.Type) Arbitrary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byKind[kind] = factory
}

// Has reports whether For would find an Arbitrary for t.
func (r *Registry) Has(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.byType[t]; ok {
		return true
	}

	_, ok := r.byKind[Underlying(t)]

	return ok
}

// For returns the Arbitrary drawing values of type t.
func (r *Registry) For(t reflect.Type) (Arbitrary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if a, ok := r.byType[t]; ok {
		return a, true
	}

	factory, ok := r.byKind[Underlying(t)]
	if !ok {
		return nil, false
	}

	return factory(t), true
}

func signedDefault(kind KindEnum) func(reflect.Type) Arbitrary {
	return func(t reflect.Type) Arbitrary {
		bits := kind.Bits()
		if bits <= 16 {
			return Ints(t, -(1 << (bits - 1)), 1<<(bits-1)-1)
		}

		return Ints(t, -DefaultIntRange, DefaultIntRange)
	}
}

func unsignedDefault(kind KindEnum) func(reflect.Type) Arbitrary {
	return func(t reflect.Type) Arbitrary {
		bits := kind.Bits()
		if bits <= 16 {
			return Uints(t, 0, 1<<bits-1)
		}

		return Uints(t, 0, DefaultIntRange)
	}
}
