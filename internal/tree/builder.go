package tree

import (
	"fmt"
	"math/rand"
	"reflect"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/logging"
	"shape-synth/internal/schema"
	"shape-synth/utils"
)

// DefaultBounds is the container size range used when nothing else applies.
var DefaultBounds = Bounds{Min: 0, Max: 5}

// SizeOverride fixes the bounds of every container of Type.
type SizeOverride struct {
	Type   reflect.Type
	Bounds Bounds
}

// Option configures a Builder.
type Option func(*Builder)

// WithDefaultBounds sets the bounds of containers no override matches.
func WithDefaultBounds(b Bounds) Option {
	return func(bld *Builder) {
		bld.defaults = b
	}
}

// WithSizeOverride registers bounds for containers of type t. The first
// registered override for a type wins.
func WithSizeOverride(t reflect.Type, b Bounds) Option {
	return func(bld *Builder) {
		bld.overrides = append(bld.overrides, SizeOverride{Type: t, Bounds: b})
	}
}

// WithNullInjection sets the null probability of nillable non-root nodes.
func WithNullInjection(p float64) Option {
	return func(bld *Builder) {
		bld.nullInject = p
	}
}

// WithLeafCheck makes the builder reject leaves for which has returns false.
func WithLeafCheck(has func(reflect.Type) bool) Option {
	return func(bld *Builder) {
		bld.hasLeaf = has
	}
}

// WithLogger sets the builder logger.
func WithLogger(l logging.Logger) Option {
	return func(bld *Builder) {
		bld.logger = logging.OrNop(l)
	}
}

// Builder creates trees. A Builder is immutable after construction and may
// be shared between requests.
type Builder struct {
	resolver   schema.Resolver
	defaults   Bounds
	overrides  []SizeOverride
	nullInject float64
	hasLeaf    func(reflect.Type) bool
	logger     logging.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(resolver schema.Resolver, opts ...Option) (*Builder, error) {
	b := &Builder{
		resolver: resolver,
		defaults: DefaultBounds,
		logger:   logging.Nop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if err := diagnostic.CheckBounds("default size", b.defaults.Min, b.defaults.Max); err != nil {
		return nil, err
	}

	for _, o := range b.overrides {
		if err := diagnostic.CheckBounds(o.Type.String(), o.Bounds.Min, o.Bounds.Max); err != nil {
			return nil, err
		}
	}

	if !utils.IsProbability(b.nullInject) {
		return nil, &diagnostic.ConstraintError{Reason: fmt.Sprintf("null injection probability %v outside [0, 1]", b.nullInject)}
	}

	return b, nil
}

// Build creates the tree of root and expands the root node. rng drives size
// and decomposition choices; it must not be shared with another goroutine.
func (b *Builder) Build(root reflect.Type, rng *rand.Rand) (*Tree, error) {
	t := &Tree{builder: b, rng: rng}

	node, err := t.newNode(nil, "", 0, schema.Property{Type: root}, nil)
	if err != nil {
		return nil, err
	}

	t.root = node.ID

	if err := t.expand(node); err != nil {
		return nil, err
	}

	b.logger.Debug("tree built", "root", node.Shape.String(), "children", len(node.children))

	return t, nil
}

// boundsFor returns the initial bounds of a container shape.
func (b *Builder) boundsFor(shape *schema.Shape) Bounds {
	if shape.Kind == schema.ShapeArray {
		return Bounds{Min: shape.Len, Max: shape.Len}
	}

	for _, o := range b.overrides {
		if o.Type == shape.Type {
			return o.Bounds
		}
	}

	return b.defaults
}

// validate reports shapes that cannot be built.
func (b *Builder) validate(shape *schema.Shape) error {
	if shape.Kind == schema.ShapeLeaf {
		if b.hasLeaf != nil && !b.hasLeaf(shape.Type) {
			return &diagnostic.ConfigurationError{Shape: shape.String(), Reason: "no arbitrary registered for leaf"}
		}

		return nil
	}

	if len(shape.Decompositions) == 0 {
		return schema.NoDecomposition(shape)
	}

	return nil
}
