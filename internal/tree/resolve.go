package tree

import (
	"shape-synth/internal/diagnostic"
	"shape-synth/internal/match"
	"shape-synth/internal/path"
)

// Mode selects how Resolve treats an empty intermediate result.
type Mode int

const (
	// Strict fails with a ResolutionError.
	Strict Mode = iota
	// Lenient returns no nodes and no error.
	Lenient
)

func (m Mode) String() string {
	if m == Lenient {
		return "lenient"
	}

	return "strict"
}

// Resolve matches expr against the tree, starting from start. Each selector
// narrows the whole candidate set by one level before the next selector
// runs. Pointer wrappers are looked through.
//
// Every visited node gets a null probability of zero and is marked
// Addressed.
func (t *Tree) Resolve(start NodeID, expr path.Expression, mode Mode) ([]NodeID, error) {
	current := []NodeID{start}
	t.visit(start)

	for step, sel := range expr {
		next, err := t.step(current, sel)
		if err != nil {
			return nil, err
		}

		if len(next) == 0 {
			if mode == Lenient {
				return nil, nil
			}

			return nil, t.resolutionError(expr, step, sel, current)
		}

		for _, id := range next {
			t.visit(id)
		}

		current = next
	}

	return current, nil
}

func (t *Tree) step(current []NodeID, sel path.Selector) ([]NodeID, error) {
	if sel.Kind == path.StartOfTreeKind {
		return []NodeID{t.root}, nil
	}

	var next []NodeID

	seen := make(map[NodeID]struct{})

	for _, id := range current {
		kids, err := t.selectable(id)
		if err != nil {
			return nil, err
		}

		for _, c := range kids {
			if _, dup := seen[c]; dup || !selects(sel, t.nodes[c]) {
				continue
			}

			seen[c] = struct{}{}
			next = append(next, c)
		}
	}

	return next, nil
}

// selectable returns the children selectors match against: the children of
// id, or of the innermost target when id is a chain of pointer wrappers.
func (t *Tree) selectable(id NodeID) ([]NodeID, error) {
	n := t.nodes[id]

	for {
		if err := t.expand(n); err != nil {
			return nil, err
		}

		if !isWrapper(n) || len(n.children) == 0 {
			return n.children, nil
		}

		n = t.nodes[n.children[0]]
		t.visit(n.ID)
	}
}

func (t *Tree) visit(id NodeID) {
	n := t.nodes[id]
	n.NullInject = 0
	n.Addressed = true
}

func selects(sel path.Selector, n *Node) bool {
	if sel.Kind == path.ByNameKind {
		return n.matchesName(sel.Name)
	}

	return sel.Matches(n.Name, n.Position)
}

func (t *Tree) resolutionError(expr path.Expression, step int, sel path.Selector, current []NodeID) error {
	err := &diagnostic.ResolutionError{
		Expression: expr.String(),
		Step:       step,
		Selector:   sel.String(),
	}

	if sel.Kind != path.ByNameKind {
		return err
	}

	var names []string

	for _, id := range current {
		// current was expanded by step
		kids, _ := t.selectable(id)
		for _, c := range kids {
			if n := t.nodes[c]; n.Name != "" {
				names = append(names, n.Name)
			}
		}
	}

	err.Suggestions = match.Suggest(sel.Name, names, match.DefaultMaxSuggestions)

	return err
}
