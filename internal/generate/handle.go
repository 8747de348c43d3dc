package generate

import (
	"errors"
	"reflect"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/schema"
	"shape-synth/internal/strategy"
	"shape-synth/internal/tree"
	"shape-synth/primitive"
)

// Handle is the lazy generation cell of one node.
type Handle struct {
	ctx      *Context
	node     *tree.Node
	path     string
	children []*Handle

	leaf primitive.Arbitrary
	comb Combinator // detached combinator of a cached subtree

	pure bool   // no manipulation, address or container in the subtree
	sig  string // structural signature of the subtree
}

// Node returns the node of h.
func (h *Handle) Node() *tree.Node { return h.node }

// Path returns the path of the node of h.
func (h *Handle) Path() string { return h.path }

// Cached reports whether h generates through a shared combinator.
func (h *Handle) Cached() bool { return h.comb != nil }

// Force returns the value of h in pass p, producing it on first use.
func (h *Handle) Force(p *Pass) (reflect.Value, error) {
	if v, ok := p.memo[h.node.ID]; ok {
		return v, nil
	}

	v, err := h.produce(p)
	if err != nil {
		return reflect.Value{}, err
	}

	p.memo[h.node.ID] = v

	return v, nil
}

func (h *Handle) produce(p *Pass) (reflect.Value, error) {
	n := h.node

	// Always-null nodes need no value to discard.
	if n.NullInject >= 1 {
		return reflect.Zero(n.Type()), nil
	}

	for range h.ctx.filterRetries {
		v, err := h.raw(p)
		if errors.Is(err, strategy.ErrSkip) {
			h.reject(p, "skip")
			continue
		}

		if err != nil {
			return reflect.Value{}, err
		}

		if !h.accepts(v) {
			h.reject(p, "filter")
			continue
		}

		for _, customize := range n.Customizers {
			v = customize(v)
		}

		if n.NullInject > 0 && p.rng.Float64() < n.NullInject {
			v = reflect.Zero(n.Type())
		}

		return v, nil
	}

	return reflect.Value{}, &diagnostic.GenerationExhaustedError{Path: h.path, Attempts: h.ctx.filterRetries}
}

func (h *Handle) accepts(v reflect.Value) bool {
	for _, f := range h.node.Filters {
		if !f(v) {
			return false
		}
	}

	return true
}

func (h *Handle) reject(p *Pass, reason string) {
	rejections.WithLabelValues(reason).Inc()
	p.invalidate(h)
}

// raw produces a value before filters, customizers and null injection.
func (h *Handle) raw(p *Pass) (reflect.Value, error) {
	n := h.node

	switch {
	case n.Fixed != nil:
		return *n.Fixed, nil
	case n.Truncated:
		return reflect.Zero(n.Type()), nil
	case h.comb != nil:
		return h.comb.Generate(p)
	case h.leaf != nil:
		return h.leaf.Sample(p.rng).Value, nil
	}

	var (
		vals []reflect.Value
		err  error
	)

	if n.Shape.Kind.IsUnique() {
		vals, err = h.forceDistinct(p)
	} else {
		vals, err = h.forceChildren(p)
	}

	if err != nil {
		return reflect.Value{}, err
	}

	return h.ctx.strategies.Construct(n, vals)
}

func (h *Handle) forceChildren(p *Pass) ([]reflect.Value, error) {
	vals := make([]reflect.Value, len(h.children))

	for i, ch := range h.children {
		v, err := ch.Force(p)
		if err != nil {
			return nil, err
		}

		vals[i] = v
	}

	return vals, nil
}

// forceDistinct forces the elements of a set or the entries of a map,
// regenerating an element while its key collides with an earlier one.
func (h *Handle) forceDistinct(p *Pass) ([]reflect.Value, error) {
	defer p.tracker.Evict(h.path)

	vals := make([]reflect.Value, len(h.children))

	for i, ch := range h.children {
		accepted := false

		for range h.ctx.uniqueRetries {
			v, err := ch.Force(p)
			if err != nil {
				return nil, err
			}

			if p.tracker.Accept(h.path, h.uniqueKey(v)) {
				vals[i] = v
				accepted = true

				break
			}

			uniquenessCollisions.Inc()
			p.invalidate(ch)
		}

		if !accepted {
			return nil, &diagnostic.UniquenessExhaustedError{Path: h.path, Index: i, Attempts: h.ctx.uniqueRetries}
		}
	}

	return vals, nil
}

// uniqueKey returns the part of an element that must be distinct: the
// element itself for sets, the key for maps.
func (h *Handle) uniqueKey(v reflect.Value) reflect.Value {
	if h.node.Shape.Kind == schema.ShapeMap {
		if pair, ok := v.Interface().(strategy.Pair); ok {
			return pair.Key
		}
	}

	return v
}
