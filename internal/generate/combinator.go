package generate

import (
	"reflect"

	"shape-synth/internal/strategy"
	"shape-synth/internal/tree"
	"shape-synth/primitive"
)

// Combinator produces a fresh value on every call. Cached combinators are
// shared between requests and must not refer to any tree.
type Combinator interface {
	Generate(p *Pass) (reflect.Value, error)
}

// leafComb samples a primitive arbitrary.
type leafComb struct {
	arb primitive.Arbitrary
}

func (l leafComb) Generate(p *Pass) (reflect.Value, error) {
	return l.arb.Sample(p.rng).Value, nil
}

// zeroComb yields the zero value of a truncated node.
type zeroComb struct {
	typ reflect.Type
}

func (z zeroComb) Generate(*Pass) (reflect.Value, error) {
	return reflect.Zero(z.typ), nil
}

// nullComb replaces the inner value by the zero value with probability p.
type nullComb struct {
	inner Combinator
	typ   reflect.Type
	p     float64
}

func (n nullComb) Generate(p *Pass) (reflect.Value, error) {
	v, err := n.inner.Generate(p)
	if err != nil {
		return reflect.Value{}, err
	}

	if p.rng.Float64() < n.p {
		return reflect.Zero(n.typ), nil
	}

	return v, nil
}

// detachedComb assembles a composite from its children with the strategy
// chain. node is a detached copy.
type detachedComb struct {
	node     *tree.Node
	chain    strategy.Chain
	children []Combinator
}

func (d *detachedComb) Generate(p *Pass) (reflect.Value, error) {
	vals := make([]reflect.Value, len(d.children))

	for i, c := range d.children {
		v, err := c.Generate(p)
		if err != nil {
			return reflect.Value{}, err
		}

		vals[i] = v
	}

	return d.chain.Construct(d.node, vals)
}

// compile turns the pure subtree of h into a detached combinator, reusing
// the combinators already attached to descendants.
func (c *Context) compile(h *Handle) Combinator {
	n := h.node

	switch {
	case n.Truncated:
		return zeroComb{typ: n.Type()}
	case h.comb != nil:
		return h.comb
	case h.leaf != nil:
		return leafComb{arb: h.leaf}
	}

	d := &detachedComb{node: n.Detach(), chain: c.strategies}

	for _, ch := range h.children {
		comb := c.compile(ch)
		if ch.node.NullInject > 0 {
			comb = nullComb{inner: comb, typ: ch.node.Type(), p: ch.node.NullInject}
		}

		d.children = append(d.children, comb)
	}

	return d
}
