package manipulate

import (
	"fmt"
	"math"
	"reflect"

	"gopkg.in/yaml.v3"

	"shape-synth/internal/common"
	"shape-synth/internal/diagnostic"
	"shape-synth/internal/schema"
	"shape-synth/internal/tree"
)

// Kind tags a Mutation.
type Kind int

const (
	FixValue Kind = iota
	SetBounds
	InjectNullAlways
	InjectNullNever
	AddFilter
	AddCustomizer
)

// String returns the mutation kind name.
func (k Kind) String() string {
	switch k {
	case FixValue:
		return "fix-value"
	case SetBounds:
		return "set-container-bounds"
	case InjectNullAlways:
		return "inject-null-always"
	case InjectNullNever:
		return "inject-null-never"
	case AddFilter:
		return "add-filter"
	case AddCustomizer:
		return "add-customizer"
	default:
		return common.UnknownStr
	}
}

// Mutation changes how a node's value is produced.
type Mutation struct {
	Kind       Kind
	Value      any         // FixValue
	Bounds     tree.Bounds // SetBounds
	Filter     tree.Filter
	Customizer tree.Customizer

	// raw is a plan value, decoded into the node type when applied.
	raw *yaml.Node
}

// Fix returns a mutation fixing the node value. nil fixes the zero value of
// nillable kinds.
func Fix(v any) Mutation {
	return Mutation{Kind: FixValue, Value: v}
}

// FixYAML returns a mutation fixing the node value to node decoded into the
// node type.
func FixYAML(node *yaml.Node) Mutation {
	return Mutation{Kind: FixValue, raw: node}
}

// Size returns a mutation bounding a container. It fails when min > max
// or min < 0.
func Size(minSize, maxSize int) (Mutation, error) {
	if err := diagnostic.CheckBounds("", minSize, maxSize); err != nil {
		return Mutation{}, err
	}

	return Mutation{Kind: SetBounds, Bounds: tree.Bounds{Min: minSize, Max: maxSize}}, nil
}

// NullAlways returns a mutation making the node always null.
func NullAlways() Mutation {
	return Mutation{Kind: InjectNullAlways}
}

// NullNever returns a mutation making the node never null.
func NullNever() Mutation {
	return Mutation{Kind: InjectNullNever}
}

// Filter returns a mutation rejecting values for which f returns false.
func Filter(f tree.Filter) Mutation {
	return Mutation{Kind: AddFilter, Filter: f}
}

// Customize returns a mutation transforming generated values with c.
func Customize(c tree.Customizer) Mutation {
	return Mutation{Kind: AddCustomizer, Customizer: c}
}

// String describes the mutation.
func (m Mutation) String() string {
	switch m.Kind {
	case FixValue:
		if m.raw != nil {
			return fmt.Sprintf("%s %s", m.Kind, m.raw.Value)
		}

		return fmt.Sprintf("%s %v", m.Kind, m.Value)
	case SetBounds:
		return fmt.Sprintf("%s %s", m.Kind, m.Bounds)
	default:
		return m.Kind.String()
	}
}

// validate checks the parts of a mutation that do not depend on the tree.
func (m Mutation) validate() error {
	switch m.Kind {
	case SetBounds:
		return diagnostic.CheckBounds("", m.Bounds.Min, m.Bounds.Max)
	case AddFilter:
		if m.Filter == nil {
			return fmt.Errorf("%s without a filter", m.Kind)
		}
	case AddCustomizer:
		if m.Customizer == nil {
			return fmt.Errorf("%s without a customizer", m.Kind)
		}
	case FixValue, InjectNullAlways, InjectNullNever:
	default:
		return fmt.Errorf("unknown mutation kind %d", m.Kind)
	}

	return nil
}

// apply mutates node id of t.
func (m Mutation) apply(t *tree.Tree, id tree.NodeID) error {
	n := t.Node(id)

	switch m.Kind {
	case FixValue:
		v, err := m.valueFor(t, n)
		if err != nil {
			return err
		}

		n.Fixed = &v
		n.NullInject = 0

	case SetBounds:
		if err := t.SetBounds(id, m.Bounds); err != nil {
			return err
		}

	case InjectNullAlways:
		if n.Shape.Kind == schema.ShapeEntry {
			return &diagnostic.ConfigurationError{Shape: n.Shape.String(), Path: t.Path(id),
				Reason: "map entries cannot be null; address the key or the value"}
		}

		n.NullInject = 1

	case InjectNullNever:
		n.NullInject = 0

	case AddFilter:
		n.Filters = append(n.Filters, m.Filter)

	case AddCustomizer:
		n.Customizers = append(n.Customizers, m.Customizer)
	}

	n.Applied = append(n.Applied, m)
	t.MarkManipulated(id)

	return nil
}

// valueFor converts the fixed value to the node type.
func (m Mutation) valueFor(t *tree.Tree, n *tree.Node) (reflect.Value, error) {
	typ := n.Type()
	fail := func(reason string) error {
		return &diagnostic.ConfigurationError{Shape: n.Shape.String(), Path: t.Path(n.ID), Reason: reason}
	}

	if n.Shape.Kind == schema.ShapeEntry {
		return reflect.Value{}, fail("map entries cannot be fixed; address the key or the value")
	}

	value := m.Value

	if m.raw != nil && m.raw.ShortTag() != "!!null" {
		ptr := reflect.New(typ)
		if err := m.raw.Decode(ptr.Interface()); err != nil {
			return reflect.Value{}, fail(fmt.Sprintf("cannot decode %q: %v", m.raw.Value, err))
		}

		return ptr.Elem(), nil
	}

	if value == nil {
		if !n.Shape.Kind.IsNillable() {
			return reflect.Value{}, fail("nil is not a valid " + typ.String())
		}

		return reflect.Zero(typ), nil
	}

	out, err := convert(reflect.ValueOf(value), typ)
	if err != nil {
		return reflect.Value{}, fail(err.Error())
	}

	return out, nil
}

// convert returns rv as a value of typ. Values of a pointer's target type
// are boxed into a fresh pointer. Numbers must be representable in typ.
func convert(rv reflect.Value, typ reflect.Type) (reflect.Value, error) {
	switch {
	case rv.Type() == typ:
		return rv, nil
	case rv.Type().AssignableTo(typ):
		out := reflect.New(typ).Elem()
		out.Set(rv)

		return out, nil
	case rv.Type().ConvertibleTo(typ) && sameFamily(rv.Kind(), typ.Kind()):
		if !representable(rv, typ) {
			return reflect.Value{}, fmt.Errorf("%v overflows or truncates as %s", rv, typ)
		}

		return rv.Convert(typ), nil
	case typ.Kind() == reflect.Pointer:
		inner, err := convert(rv, typ.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(typ.Elem())
		ptr.Elem().Set(inner)

		return ptr, nil
	default:
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", rv.Type(), typ)
	}
}

// representable reports whether the number rv converts to typ without
// wrapping or dropping a fractional part.
func representable(rv reflect.Value, typ reflect.Type) bool {
	target := reflect.New(typ).Elem()

	switch {
	case isInt(typ.Kind()):
		switch {
		case isInt(rv.Kind()):
			return !target.OverflowInt(rv.Int())
		case isUint(rv.Kind()):
			return rv.Uint() <= math.MaxInt64 && !target.OverflowInt(int64(rv.Uint()))
		default:
			f := rv.Float()
			return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 && !target.OverflowInt(int64(f))
		}

	case isUint(typ.Kind()):
		switch {
		case isInt(rv.Kind()):
			return rv.Int() >= 0 && !target.OverflowUint(uint64(rv.Int()))
		case isUint(rv.Kind()):
			return !target.OverflowUint(rv.Uint())
		default:
			f := rv.Float()
			return f == math.Trunc(f) && f >= 0 && f < math.MaxUint64 && !target.OverflowUint(uint64(f))
		}

	case typ.Kind() == reflect.Float32 || typ.Kind() == reflect.Float64:
		switch {
		case isInt(rv.Kind()):
			return !target.OverflowFloat(float64(rv.Int()))
		case isUint(rv.Kind()):
			return !target.OverflowFloat(float64(rv.Uint()))
		default:
			return !target.OverflowFloat(rv.Float())
		}

	default:
		return true
	}
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

// sameFamily reports whether converting between kinds a and b preserves
// meaning: numbers to numbers, strings to strings, bools to bools.
func sameFamily(a, b reflect.Kind) bool {
	family := func(k reflect.Kind) int {
		switch k {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			return 1
		case reflect.String:
			return 2
		case reflect.Bool:
			return 3
		default:
			return int(k) + 100
		}
	}

	return family(a) == family(b)
}
