package schema

import (
	"fmt"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"shape-synth/internal/diagnostic"
	"shape-synth/primitive"
)

// DefaultCacheSize bounds the number of shapes a Resolver keeps.
const DefaultCacheSize = 1024

// Resolver maps types to shapes. Implementations must be safe for
// concurrent use: one resolver is shared by every generation request of an
// engine.
type Resolver interface {
	// Shape returns the full description of t.
	Shape(t reflect.Type) (*Shape, error)
	// Resolve returns the ordered properties of the first decomposition of t.
	Resolve(t reflect.Type) ([]Property, error)
	// IsContainer reports whether t is a slice, array, map or set.
	IsContainer(t reflect.Type) bool
	// ContainerElementShapes returns the element shapes of a container, the
	// key and value shapes for maps.
	ContainerElementShapes(t reflect.Type) ([]*Shape, error)
	// EntryShape returns the synthetic key/value shape of a map type.
	EntryShape(t reflect.Type) (*Shape, error)
}

// Option configures a ReflectResolver.
type Option func(*ReflectResolver)

// WithLeafPredicate decides which types are leaves. The default is
// primitive.IsLeaf.
func WithLeafPredicate(isLeaf func(reflect.Type) bool) Option {
	return func(r *ReflectResolver) {
		r.isLeaf = isLeaf
	}
}

// WithCacheSize bounds the shape cache.
func WithCacheSize(size int) Option {
	return func(r *ReflectResolver) {
		r.cacheSize = size
	}
}

type entryKey struct{ mapType reflect.Type }

// ReflectResolver builds shapes with reflect and keeps them in an LRU cache.
type ReflectResolver struct {
	isLeaf    func(reflect.Type) bool
	cacheSize int

	mu        sync.RWMutex
	factories map[reflect.Type][]*Factory

	shapes  *lru.Cache[reflect.Type, *Shape]
	entries *lru.Cache[entryKey, *Shape]
}

var _ Resolver = (*ReflectResolver)(nil)

// NewReflectResolver creates a ReflectResolver.
func NewReflectResolver(opts ...Option) (*ReflectResolver, error) {
	r := &ReflectResolver{
		isLeaf:    primitive.IsLeaf,
		cacheSize: DefaultCacheSize,
		factories: make(map[reflect.Type][]*Factory),
	}

	for _, opt := range opts {
		opt(r)
	}

	var err error

	r.shapes, err = lru.New[reflect.Type, *Shape](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create shape cache: %w", err)
	}

	r.entries, err = lru.New[entryKey, *Shape](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry cache: %w", err)
	}

	return r, nil
}

// RegisterFactory adds fn as an alternative decomposition of its result type.
func (r *ReflectResolver) RegisterFactory(fn any) error {
	factory, err := ParseFactory(fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.factories[factory.Out] = append(r.factories[factory.Out], factory)
	r.mu.Unlock()

	r.shapes.Remove(factory.Out)

	return nil
}

// Purge drops every cached shape.
func (r *ReflectResolver) Purge() {
	r.shapes.Purge()
	r.entries.Purge()
}

// Shape returns the cached shape of t, analyzing it on a miss.
func (r *ReflectResolver) Shape(t reflect.Type) (*Shape, error) {
	if t == nil {
		return nil, &diagnostic.ConfigurationError{Reason: "nil type"}
	}

	if cached, ok := r.shapes.Get(t); ok {
		return cached, nil
	}

	shape := r.analyzeType(t)
	r.shapes.Add(t, shape)

	return shape, nil
}

// Resolve returns the properties of the first decomposition of t.
func (r *ReflectResolver) Resolve(t reflect.Type) ([]Property, error) {
	shape, err := r.Shape(t)
	if err != nil {
		return nil, err
	}

	if len(shape.Decompositions) == 0 {
		return nil, NoDecomposition(shape)
	}

	return shape.Decompositions[0].Properties, nil
}

// IsContainer reports whether t is a slice, array, map or set.
func (r *ReflectResolver) IsContainer(t reflect.Type) bool {
	shape, err := r.Shape(t)
	return err == nil && shape.IsContainer()
}

// ContainerElementShapes returns the element shapes of a container type.
func (r *ReflectResolver) ContainerElementShapes(t reflect.Type) ([]*Shape, error) {
	shape, err := r.Shape(t)
	if err != nil {
		return nil, err
	}

	if !shape.IsContainer() {
		return nil, &diagnostic.ConfigurationError{Shape: shape.String(), Reason: "not a container"}
	}

	elems := make([]*Shape, 0, len(shape.ElemTypes))
	for _, et := range shape.ElemTypes {
		es, err := r.Shape(et)
		if err != nil {
			return nil, err
		}

		elems = append(elems, es)
	}

	return elems, nil
}

// EntryShape returns the synthetic key/value shape of map type t.
func (r *ReflectResolver) EntryShape(t reflect.Type) (*Shape, error) {
	key := entryKey{mapType: t}
	if cached, ok := r.entries.Get(key); ok {
		return cached, nil
	}

	if t.Kind() != reflect.Map {
		return nil, &diagnostic.ConfigurationError{Shape: IDOf(t).Short(), Reason: "entries exist only for maps"}
	}

	shape := &Shape{
		ID:        IDOf(t),
		Type:      t,
		Kind:      ShapeEntry,
		ElemTypes: []reflect.Type{t.Key(), t.Elem()},
		Decompositions: []Decomposition{{
			Kind: DecomposeEntry,
			Name: "entry",
			Properties: []Property{
				{Name: KeyProperty, Index: 0, Type: t.Key()},
				{Name: ValueProperty, Index: 1, Type: t.Elem()},
			},
		}},
	}
	r.entries.Add(key, shape)

	return shape, nil
}

// analyzeType describes t. It never recurses into element or field types:
// those are resolved on demand, which keeps recursive types finite.
func (r *ReflectResolver) analyzeType(t reflect.Type) *Shape {
	shape := &Shape{
		ID:   IDOf(t),
		Type: t,
	}

	switch {
	case r.isLeaf(t):
		shape.Kind = ShapeLeaf
		shape.Decompositions = append(shape.Decompositions, Decomposition{Kind: DecomposeLeaf, Name: "leaf"})

	case t.Kind() == reflect.Struct:
		shape.Kind = ShapeStruct
		shape.Decompositions = append(shape.Decompositions, Decomposition{
			Kind:       DecomposeFields,
			Name:       "fields",
			Properties: structProperties(t),
		})

	case t.Kind() == reflect.Pointer:
		shape.Kind = ShapePointer
		shape.ElemTypes = []reflect.Type{t.Elem()}
		shape.Decompositions = append(shape.Decompositions, Decomposition{
			Kind:       DecomposeWrapper,
			Name:       "wrapper",
			Properties: []Property{{Name: PointerProperty, Type: t.Elem()}},
		})

	case t.Kind() == reflect.Slice:
		shape.Kind = ShapeSlice
		shape.ElemTypes = []reflect.Type{t.Elem()}
		shape.Decompositions = append(shape.Decompositions, Decomposition{Kind: DecomposeElements, Name: "elements"})

	case t.Kind() == reflect.Array:
		shape.Kind = ShapeArray
		shape.Len = t.Len()
		shape.ElemTypes = []reflect.Type{t.Elem()}
		shape.Decompositions = append(shape.Decompositions, Decomposition{Kind: DecomposeElements, Name: "elements"})

	case t.Kind() == reflect.Map && isEmptyStruct(t.Elem()):
		shape.Kind = ShapeSet
		shape.ElemTypes = []reflect.Type{t.Key()}
		shape.Decompositions = append(shape.Decompositions, Decomposition{Kind: DecomposeElements, Name: "elements"})

	case t.Kind() == reflect.Map:
		shape.Kind = ShapeMap
		shape.ElemTypes = []reflect.Type{t.Key(), t.Elem()}
		shape.Decompositions = append(shape.Decompositions, Decomposition{Kind: DecomposeElements, Name: "elements"})

	default:
		// Interfaces, channels, funcs, complex numbers: only factories can build them
		shape.Kind = ShapeUnknown
	}

	r.mu.RLock()
	factories := r.factories[t]
	r.mu.RUnlock()

	for _, f := range factories {
		shape.Decompositions = append(shape.Decompositions, Decomposition{
			Kind:       DecomposeFactory,
			Name:       f.String(),
			Properties: f.Properties(),
			Factory:    f,
		})
	}

	return shape
}

// structProperties lists the settable fields of a struct type.
func structProperties(t reflect.Type) []Property {
	var props []Property

	for i := range t.NumField() {
		field := t.Field(i)

		// Unexported fields cannot be set through reflect
		if !field.IsExported() {
			continue
		}

		props = append(props, Property{
			Name:     field.Name,
			Index:    i,
			Type:     field.Type,
			Tag:      field.Tag,
			Embedded: field.Anonymous,
		})
	}

	return props
}

func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

// NoDecomposition returns the ConfigurationError reported for shapes that
// cannot be built.
func NoDecomposition(shape *Shape) error {
	return &diagnostic.ConfigurationError{
		Shape:  shape.String(),
		Reason: fmt.Sprintf("%s offers no decomposition; register a factory for it", shape.Kind),
	}
}
