// Package strategy assembles values from the values of their children.
//
// A Strategy is consulted only when it is Applicable to a node; a Chain
// tries applicable strategies in order and falls back to the next one when
// a strategy returns ErrSkip.
package strategy

import (
	"errors"
	"fmt"
	"reflect"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/tree"
)

// ErrSkip signals that a strategy declines to build a value. The chain
// moves on to the next applicable strategy.
var ErrSkip = errors.New("strategy skipped")

// Strategy builds the value of a node from its child values. Construct must
// be deterministic given the children.
type Strategy interface {
	Applicable(n *tree.Node) bool
	Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error)
}

// Func adapts a pair of functions to Strategy.
type Func struct {
	Match func(n *tree.Node) bool
	Build func(n *tree.Node, children []reflect.Value) (reflect.Value, error)
}

func (f Func) Applicable(n *tree.Node) bool { return f.Match == nil || f.Match(n) }

func (f Func) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	return f.Build(n, children)
}

// ForType returns a strategy applicable to nodes of type t only.
func ForType(t reflect.Type, build func(n *tree.Node, children []reflect.Value) (reflect.Value, error)) Strategy {
	return Func{
		Match: func(n *tree.Node) bool { return n.Type() == t },
		Build: build,
	}
}

// Guard narrows s to nodes accepted by both pred and s.
func Guard(pred func(n *tree.Node) bool, s Strategy) Strategy {
	return Func{
		Match: func(n *tree.Node) bool { return pred(n) && s.Applicable(n) },
		Build: s.Construct,
	}
}

// Chain is an ordered fallback list of strategies.
type Chain []Strategy

// Defaults returns the built-in strategies.
func Defaults() Chain {
	return Chain{Fields{}, Factory{}, Wrapper{}, Containers{}, Entry{}}
}

// Prepend returns a chain consulting s before c.
func (c Chain) Prepend(s ...Strategy) Chain {
	out := make(Chain, 0, len(s)+len(c))
	out = append(out, s...)

	return append(out, c...)
}

// Applicable reports whether any strategy of c applies to n.
func (c Chain) Applicable(n *tree.Node) bool {
	for _, s := range c {
		if s.Applicable(n) {
			return true
		}
	}

	return false
}

// Construct runs the applicable strategies in order until one does not skip.
// When all of them skip the last skip error is returned.
func (c Chain) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	var skipped error

	for _, s := range c {
		if !s.Applicable(n) {
			continue
		}

		v, err := s.Construct(n, children)
		if errors.Is(err, ErrSkip) {
			skipped = err
			continue
		}

		if err != nil {
			return reflect.Value{}, err
		}

		return v, nil
	}

	if skipped != nil {
		return reflect.Value{}, skipped
	}

	return reflect.Value{}, &diagnostic.ConfigurationError{
		Shape:  n.Shape.String(),
		Reason: fmt.Sprintf("no strategy builds %s decomposition", n.Decomposition().Kind),
	}
}

var _ Strategy = Chain(nil)
