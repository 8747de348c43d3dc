package tree

import (
	"fmt"
	"reflect"

	"shape-synth/internal/schema"
	"shape-synth/utils"
)

// NodeID addresses a node in its Tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Bounds is an inclusive container size range.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d, %d]", b.Min, b.Max)
}

// Contains reports whether n lies within b.
func (b Bounds) Contains(n int) bool {
	return utils.IsInRange(b.Min, n, b.Max)
}

// Filter accepts or rejects a generated value.
type Filter func(reflect.Value) bool

// Customizer transforms a generated value.
type Customizer func(reflect.Value) reflect.Value

// Node is one cell of the generation tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Name     string // property name; empty for container elements and the root
	Position int    // position among the parent's children
	Property schema.Property
	Shape    *schema.Shape
	Depth    int

	// Truncated nodes were cut by the cycle guard. They are never expanded
	// and generate the zero value.
	Truncated bool

	// NullInject is the probability that a generated value is replaced by
	// the zero value of the node's type.
	NullInject float64

	// Manipulated is set on mutated nodes and all their ancestors.
	Manipulated bool
	// Addressed is set on every node visited by path resolution.
	Addressed bool
	// Applied lists the mutations applied to this node, in order.
	Applied []fmt.Stringer

	Bounds *Bounds // containers only; set on expansion or by a mutation
	Size   int     // drawn container size

	Fixed       *reflect.Value
	Filters     []Filter
	Customizers []Customizer

	decomposition int
	children      []NodeID
	expanded      bool
}

// Type returns the Go type of the node.
func (n *Node) Type() reflect.Type {
	return n.Property.Type
}

// IsRoot reports whether n is the root.
func (n *Node) IsRoot() bool {
	return n.Parent == NoNode
}

// IsContainer reports whether n holds a bounded number of elements.
func (n *Node) IsContainer() bool {
	return n.Shape.IsContainer()
}

// Expanded reports whether the children of n have been created.
func (n *Node) Expanded() bool {
	return n.expanded
}

// Decomposition returns the decomposition chosen for n. It is only
// meaningful once n is expanded.
func (n *Node) Decomposition() schema.Decomposition {
	if len(n.Shape.Decompositions) == 0 {
		return schema.Decomposition{Kind: schema.DecomposeLeaf}
	}

	return n.Shape.Decompositions[n.decomposition]
}

// matchesName reports whether name addresses n: the property name or its json
// tag name.
func (n *Node) matchesName(name string) bool {
	if n.Name == "" {
		return false
	}

	return n.Name == name || n.Property.JSONName() == name
}

// Detach returns a copy of n that belongs to no tree: no ids, no children,
// no mutations. The chosen decomposition is kept.
func (n *Node) Detach() *Node {
	return &Node{
		ID:            NoNode,
		Parent:        NoNode,
		Name:          n.Name,
		Position:      n.Position,
		Property:      n.Property,
		Shape:         n.Shape,
		Truncated:     n.Truncated,
		NullInject:    n.NullInject,
		decomposition: n.decomposition,
	}
}
