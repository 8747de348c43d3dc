package generate

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/logging"
	"shape-synth/internal/schema"
	"shape-synth/internal/strategy"
	"shape-synth/internal/tree"
	"shape-synth/internal/unique"
	"shape-synth/primitive"
)

// Default retry budgets.
const (
	DefaultFilterRetries = 100
	DefaultUniqueRetries = 1000
)

// Config configures a Context. Zero fields get defaults.
type Config struct {
	Profile       uuid.UUID
	Strategies    strategy.Chain
	Primitives    *primitive.Registry
	Cache         *Cache // nil disables structural caching
	FilterRetries int
	UniqueRetries int
	Logger        logging.Logger
}

// Context generates values of one manipulated tree. It must be created
// after all manipulations were applied and is not safe for concurrent use.
type Context struct {
	tree          *tree.Tree
	strategies    strategy.Chain
	primitives    *primitive.Registry
	cache         *Cache
	profile       uuid.UUID
	filterRetries int
	uniqueRetries int
	logger        logging.Logger

	handles map[tree.NodeID]*Handle
	root    *Handle
	cached  int
}

// NewContext creates a handle for every node reachable from the root.
func NewContext(t *tree.Tree, cfg Config) (*Context, error) {
	c := &Context{
		tree:          t,
		strategies:    cfg.Strategies,
		primitives:    cfg.Primitives,
		cache:         cfg.Cache,
		profile:       cfg.Profile,
		filterRetries: cfg.FilterRetries,
		uniqueRetries: cfg.UniqueRetries,
		logger:        logging.OrNop(cfg.Logger),
		handles:       make(map[tree.NodeID]*Handle),
	}

	if c.strategies == nil {
		c.strategies = strategy.Defaults()
	}

	if c.primitives == nil {
		c.primitives = primitive.NewRegistry()
	}

	if c.filterRetries == 0 {
		c.filterRetries = DefaultFilterRetries
	}

	if c.uniqueRetries == 0 {
		c.uniqueRetries = DefaultUniqueRetries
	}

	if err := errors.Join(
		diagnostic.CheckRetries("filter", c.filterRetries),
		diagnostic.CheckRetries("unique", c.uniqueRetries),
	); err != nil {
		return nil, err
	}

	root, err := c.ensure(t.Root())
	if err != nil {
		return nil, err
	}

	c.root = root

	c.logger.Debug("generation context ready", "handles", len(c.handles), "cached_subtrees", c.cached)

	return c, nil
}

// Handle returns the handle of id, or nil if id is not reachable.
func (c *Context) Handle(id tree.NodeID) *Handle {
	return c.handles[id]
}

// NewPass starts a generation pass.
func (c *Context) NewPass(rng *rand.Rand) *Pass {
	return &Pass{
		rng:     rng,
		memo:    make(map[tree.NodeID]reflect.Value),
		tracker: unique.NewTracker(),
	}
}

// Sample runs one pass and returns the root value.
func (c *Context) Sample(rng *rand.Rand) (reflect.Value, error) {
	v, err := c.root.Force(c.NewPass(rng))
	if err != nil {
		samples.WithLabelValues("error").Inc()
		return reflect.Value{}, err
	}

	samples.WithLabelValues("ok").Inc()

	return v, nil
}

// ensure creates the handle of id and of all its descendants.
func (c *Context) ensure(id tree.NodeID) (*Handle, error) {
	n := c.tree.Node(id)
	h := &Handle{ctx: c, node: n, path: c.tree.Path(id)}
	c.handles[id] = h

	if n.Fixed != nil || n.Truncated {
		h.pure = !n.Manipulated && !n.Addressed && !n.IsContainer()
		h.sig = "!"

		return h, nil
	}

	kids, err := c.tree.Children(id)
	if err != nil {
		return nil, err
	}

	pureKids := true
	sigs := make([]string, 0, len(kids))

	for _, k := range kids {
		ch, err := c.ensure(k)
		if err != nil {
			return nil, err
		}

		h.children = append(h.children, ch)
		pureKids = pureKids && ch.pure
		sigs = append(sigs, ch.sig)
	}

	if n.Shape.Kind == schema.ShapeLeaf {
		arb, ok := c.primitives.For(n.Type())
		if !ok {
			return nil, &diagnostic.ConfigurationError{Shape: n.Shape.String(), Path: h.path, Reason: "no arbitrary registered for leaf"}
		}

		h.leaf = arb
		h.sig = "leaf"
	} else {
		if !c.strategies.Applicable(n) {
			return nil, &diagnostic.ConfigurationError{Shape: n.Shape.String(), Path: h.path,
				Reason: fmt.Sprintf("no strategy builds %s decomposition", n.Decomposition().Kind)}
		}

		h.sig = n.Decomposition().Name + "(" + strings.Join(sigs, ",") + ")"
	}

	cacheable := !n.Manipulated && !n.IsContainer() && pureKids
	h.pure = cacheable && !n.Addressed

	if cacheable && h.leaf == nil && c.cache != nil {
		c.attachCached(h)
	}

	return h, nil
}

func (c *Context) attachCached(h *Handle) {
	key := Key{Profile: c.profile, Type: h.node.Type(), Signature: h.sig}

	if comb, ok := c.cache.Get(key); ok {
		cacheRequests.WithLabelValues("hit").Inc()
		h.comb = comb
	} else {
		cacheRequests.WithLabelValues("miss").Inc()
		h.comb = c.compile(h)
		c.cache.Add(key, h.comb)
	}

	c.cached++
}

// Pass is the state of one generation pass: the random source, the values
// forced so far and the uniqueness tracker.
type Pass struct {
	rng     *rand.Rand
	memo    map[tree.NodeID]reflect.Value
	tracker *unique.Tracker
}

// Rand returns the random source of the pass.
func (p *Pass) Rand() *rand.Rand {
	return p.rng
}

// invalidate forgets the values of h and its descendants.
func (p *Pass) invalidate(h *Handle) {
	delete(p.memo, h.node.ID)

	for _, ch := range h.children {
		p.invalidate(ch)
	}
}
