package tree

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"slices"

	"shape-synth/internal/common"
	"shape-synth/internal/diagnostic"
	"shape-synth/internal/path"
	"shape-synth/internal/schema"
)

// Tree is an arena of nodes built over one root shape.
type Tree struct {
	builder *Builder
	rng     *rand.Rand
	nodes   []*Node
	root    NodeID
}

// Root returns the id of the root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node with the given id.
func (t *Tree) Node(id NodeID) *Node {
	return t.nodes[id]
}

// Len returns the number of nodes created so far, including nodes cut off
// by shrinking containers.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Rand returns the random source driving structural choices.
func (t *Tree) Rand() *rand.Rand {
	return t.rng
}

// Children expands id if needed and returns its children in order. The
// returned slice must not be modified.
func (t *Tree) Children(id NodeID) ([]NodeID, error) {
	n := t.nodes[id]
	if err := t.expand(n); err != nil {
		return nil, err
	}

	return n.children, nil
}

// ExpandAll expands every reachable node.
func (t *Tree) ExpandAll() error {
	stack := []NodeID{t.root}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids, err := t.Children(id)
		if err != nil {
			return err
		}

		stack = append(stack, kids...)
	}

	return nil
}

// MarkManipulated flags id and all its ancestors as manipulated.
func (t *Tree) MarkManipulated(id NodeID) {
	for cur := id; cur != NoNode; cur = t.nodes[cur].Parent {
		t.nodes[cur].Manipulated = true
	}
}

// SetBounds changes the size range of a container. An expanded container
// draws a new size: shrinking truncates, growing appends, children at
// unchanged positions are kept.
func (t *Tree) SetBounds(id NodeID, b Bounds) error {
	n := t.nodes[id]
	p := t.Path(id)

	if !n.IsContainer() {
		return &diagnostic.ConstraintError{Path: p, Min: b.Min, Max: b.Max,
			Reason: fmt.Sprintf("%s is not a container", n.Shape)}
	}

	if err := diagnostic.CheckBounds(p, b.Min, b.Max); err != nil {
		return err
	}

	if n.Shape.Kind == schema.ShapeArray && !b.Contains(n.Shape.Len) {
		return &diagnostic.ConstraintError{Path: p, Min: b.Min, Max: b.Max,
			Reason: fmt.Sprintf("array length %d is outside %s", n.Shape.Len, b)}
	}

	if n.Bounds != nil && *n.Bounds == b {
		return nil
	}

	n.Bounds = &b

	if !n.expanded {
		return nil
	}

	size := t.drawSize(b)
	if size < len(n.children) {
		n.children = slices.Clip(n.children[:size])
	} else if err := t.grow(n, size); err != nil {
		return err
	}

	n.Size = size

	return nil
}

// Path renders the location of id, e.g. "$.items[1].name". Pointer
// wrappers do not appear in paths.
func (t *Tree) Path(id NodeID) string {
	var rev []path.Selector

	for n := t.nodes[id]; !n.IsRoot(); n = t.nodes[n.Parent] {
		parent := t.nodes[n.Parent]

		switch {
		case isWrapper(parent):
			continue
		case parent.IsContainer():
			rev = append(rev, path.ByIndex(n.Position))
		default:
			rev = append(rev, path.ByName(n.Name))
		}
	}

	expr := make(path.Expression, 0, len(rev)+1)
	expr = append(expr, path.StartOfTree())

	for i := len(rev) - 1; i >= 0; i-- {
		expr = append(expr, rev[i])
	}

	return expr.String()
}

func (t *Tree) newNode(parent *Node, name string, pos int, prop schema.Property, shape *schema.Shape) (*Node, error) {
	if shape == nil {
		var err error

		shape, err = t.builder.resolver.Shape(prop.Type)
		if err != nil {
			return nil, err
		}
	}

	n := &Node{
		ID:       NodeID(len(t.nodes)),
		Parent:   NoNode,
		Name:     name,
		Position: pos,
		Property: prop,
		Shape:    shape,
	}

	if parent != nil {
		n.Parent = parent.ID
		n.Depth = parent.Depth + 1
		n.Truncated = shape.Kind != schema.ShapeEntry && t.recursive(parent, prop.Type)

		if shape.Kind.IsNillable() {
			n.NullInject = t.builder.nullInject
		}
	}

	t.nodes = append(t.nodes, n)

	if n.Truncated {
		return n, nil
	}

	if err := t.builder.validate(shape); err != nil {
		var cfgErr *diagnostic.ConfigurationError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = t.Path(n.ID)
		}

		return nil, err
	}

	return n, nil
}

// recursive reports whether a child of type typ under parent must be cut.
// A type may repeat once directly below a pointer wrapper.
func (t *Tree) recursive(parent *Node, typ reflect.Type) bool {
	count := 0

	for a := parent; ; a = t.nodes[a.Parent] {
		if a.Shape.Kind != schema.ShapeEntry && a.Property.Type == typ {
			count++
		}

		if a.IsRoot() {
			break
		}
	}

	if count == 0 {
		return false
	}

	return !(isWrapper(parent) && count == 1)
}

func (t *Tree) expand(n *Node) error {
	if n.expanded || n.Truncated {
		return nil
	}

	shape := n.Shape

	switch {
	case shape.IsContainer():
		if n.Bounds == nil {
			b := t.builder.boundsFor(shape)
			n.Bounds = &b
		}

		size := t.drawSize(*n.Bounds)
		if err := t.grow(n, size); err != nil {
			n.children = nil
			return err
		}

		n.Size = size

	default:
		if common.IsMultiple(shape.Decompositions) {
			n.decomposition = t.rng.Intn(len(shape.Decompositions))
		}

		for i, p := range n.Decomposition().Properties {
			c, err := t.newNode(n, p.Name, i, p, nil)
			if err != nil {
				n.children = nil
				return err
			}

			n.children = append(n.children, c.ID)
		}
	}

	n.expanded = true

	return nil
}

// grow appends element nodes to container n until it holds size children.
func (t *Tree) grow(n *Node, size int) error {
	for i := len(n.children); i < size; i++ {
		var (
			c   *Node
			err error
		)

		if n.Shape.Kind == schema.ShapeMap {
			var entry *schema.Shape

			entry, err = t.builder.resolver.EntryShape(n.Type())
			if err != nil {
				return err
			}

			c, err = t.newNode(n, "", i, schema.Property{Index: i, Type: n.Type()}, entry)
		} else {
			c, err = t.newNode(n, "", i, schema.Property{Index: i, Type: n.Shape.ElemTypes[0]}, nil)
		}

		if err != nil {
			return err
		}

		n.children = append(n.children, c.ID)
	}

	return nil
}

func (t *Tree) drawSize(b Bounds) int {
	if b.Max <= b.Min {
		return b.Min
	}

	return b.Min + t.rng.Intn(b.Max-b.Min+1)
}

// isWrapper reports whether n is a pointer built from its single target.
func isWrapper(n *Node) bool {
	return n.Shape.IsWrapper() && n.Decomposition().Kind == schema.DecomposeWrapper
}
