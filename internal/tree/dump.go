package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var dumpConfig = spew.ConfigState{
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes the expanded part of the tree, one node per line.
func (t *Tree) Dump(w io.Writer) error {
	return t.dump(w, t.root)
}

func (t *Tree) dump(w io.Writer, id NodeID) error {
	n := t.nodes[id]

	label := n.Name
	switch {
	case n.IsRoot():
		label = "$"
	case label == "":
		label = fmt.Sprintf("[%d]", n.Position)
	}

	var flags []string

	if n.Truncated {
		flags = append(flags, "truncated")
	}

	if n.Manipulated {
		flags = append(flags, "manipulated")
	}

	if n.Bounds != nil {
		flags = append(flags, "size="+n.Bounds.String())
	}

	if n.NullInject > 0 {
		flags = append(flags, fmt.Sprintf("null=%.2f", n.NullInject))
	}

	if n.Fixed != nil {
		flags = append(flags, "fixed="+dumpConfig.Sprintf("%v", n.Fixed.Interface()))
	}

	line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", n.Depth), label, n.Shape)
	if len(flags) > 0 {
		line += " (" + strings.Join(flags, ", ") + ")"
	}

	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	for _, c := range n.children {
		if err := t.dump(w, c); err != nil {
			return err
		}
	}

	return nil
}
