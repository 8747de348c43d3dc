package schema

import (
	"reflect"
	"strings"

	"shape-synth/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "shape-synth/store"
	Name    string // e.g., "Order", or "[]store.OrderItem" for unnamed types
}

// IDOf returns the TypeID of t.
func IDOf(t reflect.Type) TypeID {
	if t.Name() != "" {
		return TypeID{PkgPath: t.PkgPath(), Name: t.Name()}
	}

	return TypeID{Name: t.String()}
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short returns the TypeID qualified by package alias only (e.g., "store.Order").
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

//go:generate go tool stringer -type=ShapeKind -output=shapekind_string.go

// ShapeKind represents the structural kind of a shape.
type ShapeKind int

const (
	ShapeUnknown ShapeKind = iota // interfaces, channels, funcs: only factories can build them
	ShapeLeaf                     // drawn from a primitive.Arbitrary
	ShapeStruct                   // assembled from properties
	ShapePointer                  // single-element wrapper
	ShapeSlice                    // container of variable length
	ShapeArray                    // container of fixed length
	ShapeMap                      // container of key/value entries
	ShapeSet                      // map[K]struct{}: container of distinct keys
	ShapeEntry                    // synthetic key/value pair of a map
)

// IsContainer reports whether shapes of this kind hold a bounded number of
// elements.
func (k ShapeKind) IsContainer() bool {
	switch k {
	case ShapeSlice, ShapeArray, ShapeMap, ShapeSet:
		return true
	default:
		return false
	}
}

// IsUnique reports whether container elements (set members, map keys) must
// be pairwise distinct.
func (k ShapeKind) IsUnique() bool {
	return k == ShapeMap || k == ShapeSet
}

// IsNillable reports whether the zero value of shapes of this kind is nil.
func (k ShapeKind) IsNillable() bool {
	switch k {
	case ShapePointer, ShapeSlice, ShapeMap, ShapeSet, ShapeUnknown:
		return true
	default:
		return false
	}
}

// DecompositionKind describes how a value is assembled from its properties.
type DecompositionKind int

const (
	DecomposeLeaf     DecompositionKind = iota // no properties; sampled directly
	DecomposeFields                            // exported struct fields
	DecomposeFactory                           // parameters of a registered factory
	DecomposeWrapper                           // pointer target
	DecomposeElements                          // container elements (sized by the tree)
	DecomposeEntry                             // map key and value
)

// String returns a human-readable decomposition name.
func (k DecompositionKind) String() string {
	switch k {
	case DecomposeLeaf:
		return "leaf"
	case DecomposeFields:
		return "fields"
	case DecomposeFactory:
		return "factory"
	case DecomposeWrapper:
		return "wrapper"
	case DecomposeElements:
		return "elements"
	case DecomposeEntry:
		return "entry"
	default:
		return common.UnknownStr
	}
}

// Decomposition is one way of building a value out of properties.
type Decomposition struct {
	Kind       DecompositionKind
	Name       string     // e.g., "fields" or "store.NewOrder"
	Properties []Property // ordered by declaration
	Factory    *Factory   // set for DecomposeFactory
}

// Property describes one named/indexed part of a decomposition.
type Property struct {
	Name     string            // field name, factory parameter name, "key", "value" or "*"
	Index    int               // field index in the struct, or parameter position
	Type     reflect.Type      // property type
	Tag      reflect.StructTag // raw struct tag (fields only)
	Embedded bool              // whether the field is embedded (anonymous)
}

// JSONName returns the JSON tag name if present, otherwise the property name.
func (p Property) JSONName() string {
	tag := p.Tag.Get("json")
	if tag == "" || tag == "-" {
		return p.Name
	}

	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}

	return p.Name
}

// Names of the synthetic properties.
const (
	PointerProperty = "*"
	KeyProperty     = "key"
	ValueProperty   = "value"
)

// Shape describes a Go type for the tree builder.
type Shape struct {
	ID             TypeID
	Type           reflect.Type
	Kind           ShapeKind
	ElemTypes      []reflect.Type // slice/array/set: [elem]; map: [key, value]; pointer: [elem]
	Len            int            // array length
	Decompositions []Decomposition
}

// IsContainer reports whether the shape holds a bounded number of elements.
func (s *Shape) IsContainer() bool {
	return s.Kind.IsContainer()
}

// IsWrapper reports whether the shape is a single-element wrapper.
func (s *Shape) IsWrapper() bool {
	return s.Kind == ShapePointer
}

// String returns the short type identity of the shape.
func (s *Shape) String() string {
	if s.Kind == ShapeEntry {
		return "entry(" + s.ID.Short() + ")"
	}

	return s.ID.Short()
}
