package strategy

import (
	"fmt"
	"reflect"

	"shape-synth/internal/common"
	"shape-synth/internal/schema"
	"shape-synth/internal/tree"
)

// Pair is the value of a map entry node.
type Pair struct {
	Key   reflect.Value
	Value reflect.Value
}

var pairType = reflect.TypeFor[Pair]()

// Fields sets exported struct fields.
type Fields struct{}

func (Fields) Applicable(n *tree.Node) bool {
	return n.Decomposition().Kind == schema.DecomposeFields
}

func (Fields) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	v := reflect.New(n.Type()).Elem()

	for i, p := range n.Decomposition().Properties {
		if err := assign(v.Field(p.Index), children[i]); err != nil {
			return reflect.Value{}, fmt.Errorf("field %s: %w", p.Name, err)
		}
	}

	return v, nil
}

// Factory calls a registered factory function. An error returned by the
// factory is reported as a skip.
type Factory struct{}

func (Factory) Applicable(n *tree.Node) bool {
	return n.Decomposition().Kind == schema.DecomposeFactory
}

func (Factory) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	f := n.Decomposition().Factory

	v, err := f.Call(children)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %s: %w", ErrSkip, f, err)
	}

	return v, nil
}

// Wrapper allocates a pointer to its single child.
type Wrapper struct{}

func (Wrapper) Applicable(n *tree.Node) bool {
	return n.Decomposition().Kind == schema.DecomposeWrapper
}

func (Wrapper) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	target, ok := common.First(children)
	if !ok || !common.IsSingle(children) {
		return reflect.Value{}, fmt.Errorf("%s wraps exactly one value, got %d", n.Shape, len(children))
	}

	p := reflect.New(n.Type().Elem())
	if err := assign(p.Elem(), target); err != nil {
		return reflect.Value{}, err
	}

	return p, nil
}

// Containers builds slices, arrays, maps and sets.
type Containers struct{}

func (Containers) Applicable(n *tree.Node) bool {
	return n.IsContainer()
}

func (Containers) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	t := n.Type()

	switch n.Shape.Kind {
	case schema.ShapeSlice:
		v := reflect.MakeSlice(t, len(children), len(children))
		for i, c := range children {
			if err := assign(v.Index(i), c); err != nil {
				return reflect.Value{}, err
			}
		}

		return v, nil

	case schema.ShapeArray:
		v := reflect.New(t).Elem()
		for i, c := range children {
			if err := assign(v.Index(i), c); err != nil {
				return reflect.Value{}, err
			}
		}

		return v, nil

	case schema.ShapeSet:
		v := reflect.MakeMapWithSize(t, len(children))
		member := reflect.Zero(t.Elem())

		for _, c := range children {
			v.SetMapIndex(c, member)
		}

		return v, nil

	case schema.ShapeMap:
		v := reflect.MakeMapWithSize(t, len(children))

		for _, c := range children {
			pair, ok := c.Interface().(Pair)
			if !ok {
				return reflect.Value{}, fmt.Errorf("map element of type %s is not an entry", c.Type())
			}

			v.SetMapIndex(pair.Key, pair.Value)
		}

		return v, nil

	default:
		return reflect.Value{}, fmt.Errorf("%s is not a container", n.Shape)
	}
}

// Entry pairs the key and value of a map entry.
type Entry struct{}

func (Entry) Applicable(n *tree.Node) bool {
	return n.Decomposition().Kind == schema.DecomposeEntry
}

func (Entry) Construct(_ *tree.Node, children []reflect.Value) (reflect.Value, error) {
	return reflect.ValueOf(Pair{Key: children[0], Value: children[1]}), nil
}

// PairType returns the type of entry values.
func PairType() reflect.Type {
	return pairType
}

// assign stores src into dst, converting when the types differ.
func assign(dst, src reflect.Value) error {
	switch {
	case !src.IsValid():
		dst.SetZero()
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("cannot assign %s to %s", src.Type(), dst.Type())
	}

	return nil
}
