// Package engine synthesizes values of arbitrary Go types.
//
// An Engine holds everything shared between requests: the shape resolver,
// the leaf arbitraries, the construction strategies and the structural
// cache. A Request holds one tree and its manipulators:
//
//	e, _ := engine.New()
//	r := e.For(reflect.TypeFor[store.Order]())
//	_ = r.Set("Customer.Name", "alice")
//	_ = r.Size("Items", 1, 3)
//	v, _ := r.Sample()
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"shape-synth/internal/config"
	"shape-synth/internal/generate"
	"shape-synth/internal/logging"
	"shape-synth/internal/schema"
	"shape-synth/internal/strategy"
	"shape-synth/internal/tree"
	"shape-synth/primitive"
)

// Engine creates requests. It is safe for concurrent use.
type Engine struct {
	profile    uuid.UUID
	cfg        *config.Config
	resolver   *schema.ReflectResolver
	primitives *primitive.Registry
	strategies strategy.Chain
	cache      *generate.Cache
	builder    *tree.Builder
	logger     logging.Logger

	pending pending
	seedMu  sync.Mutex
	seeds   *rand.Rand
}

// pending collects options until the engine parts exist.
type pending struct {
	factories  []any
	arbitrary  map[reflect.Type]primitive.Arbitrary
	strategies []strategy.Strategy
	overrides  []tree.SizeOverride
	cacheSet   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig replaces the default configuration.
func WithConfig(c *config.Config) Option {
	return func(e *Engine) {
		e.cfg = c
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithCache shares a structural cache between engines. Engines never see
// each other's entries: keys carry the engine profile.
func WithCache(c *generate.Cache) Option {
	return func(e *Engine) {
		e.cache = c
		e.pending.cacheSet = true
	}
}

// WithFactory registers fn as an alternative way of building its result
// type.
func WithFactory(fn any) Option {
	return func(e *Engine) {
		e.pending.factories = append(e.pending.factories, fn)
	}
}

// WithArbitrary draws leaves of type t from a.
func WithArbitrary(t reflect.Type, a primitive.Arbitrary) Option {
	return func(e *Engine) {
		if e.pending.arbitrary == nil {
			e.pending.arbitrary = make(map[reflect.Type]primitive.Arbitrary)
		}

		e.pending.arbitrary[t] = a
	}
}

// WithStrategy tries s before the default construction strategies.
func WithStrategy(s strategy.Strategy) Option {
	return func(e *Engine) {
		e.pending.strategies = append(e.pending.strategies, s)
	}
}

// WithSizeOverride bounds every container of type t.
func WithSizeOverride(t reflect.Type, minSize, maxSize int) Option {
	return func(e *Engine) {
		e.pending.overrides = append(e.pending.overrides, tree.SizeOverride{
			Type:   t,
			Bounds: tree.Bounds{Min: minSize, Max: maxSize},
		})
	}
}

// New creates an Engine with a fresh profile.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{profile: uuid.New()}

	for _, opt := range opts {
		opt(e)
	}

	if e.cfg == nil {
		e.cfg = config.Default()
	}

	// Defaults are written into a copy: the caller may share its config.
	cfg := *e.cfg
	cfg.ApplyDefaults()
	e.cfg = &cfg

	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	e.logger = logging.With(logging.OrNop(e.logger), "profile", e.profile.String())

	var err error

	e.resolver, err = schema.NewReflectResolver(schema.WithCacheSize(e.cfg.Schema.CacheSize))
	if err != nil {
		return nil, err
	}

	for _, fn := range e.pending.factories {
		if err := e.resolver.RegisterFactory(fn); err != nil {
			return nil, fmt.Errorf("failed to register factory: %w", err)
		}
	}

	e.primitives = primitive.NewRegistry()
	for t, a := range e.pending.arbitrary {
		e.primitives.Register(t, a)
	}

	e.strategies = strategy.Defaults().Prepend(e.pending.strategies...)

	if !e.pending.cacheSet && e.cfg.Cache.Size > 0 {
		e.cache, err = generate.NewCache(e.cfg.Cache.Size)
		if err != nil {
			return nil, err
		}
	}

	bopts := []tree.Option{
		tree.WithDefaultBounds(e.cfg.Bounds()),
		tree.WithNullInjection(*e.cfg.NullInjection),
		tree.WithLeafCheck(e.primitives.Has),
		tree.WithLogger(e.logger),
	}
	for _, o := range e.pending.overrides {
		bopts = append(bopts, tree.WithSizeOverride(o.Type, o.Bounds))
	}

	e.builder, err = tree.NewBuilder(e.resolver, bopts...)
	if err != nil {
		return nil, err
	}

	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e.seeds = rand.New(rand.NewSource(seed))
	e.pending = pending{}

	e.logger.Debug("engine ready", "seed", seed, "cache", e.cache != nil)

	return e, nil
}

// Profile returns the identity partitioning the structural cache.
func (e *Engine) Profile() uuid.UUID {
	return e.profile
}

// Cache returns the structural cache, nil when caching is disabled.
func (e *Engine) Cache() *generate.Cache {
	return e.cache
}

// Resolver returns the shape resolver.
func (e *Engine) Resolver() schema.Resolver {
	return e.resolver
}

// Purge drops the cached shapes and combinators.
func (e *Engine) Purge() {
	e.resolver.Purge()

	if e.cache != nil {
		e.cache.Purge()
	}

	e.logger.Info("caches purged")
}

// For starts a request generating values of type t.
func (e *Engine) For(t reflect.Type) *Request {
	return newRequest(e, t, e.nextSeed())
}

// SampleConcurrently generates n values of type t, each from its own
// request. configure, when set, adds manipulators to every request. The
// first error cancels the remaining work.
func (e *Engine) SampleConcurrently(ctx context.Context, t reflect.Type, n int, configure func(*Request) error) ([]reflect.Value, error) {
	out := make([]reflect.Value, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := range n {
		r := e.For(t)

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if configure != nil {
				if err := configure(r); err != nil {
					return err
				}
			}

			v, err := r.Sample()
			if err != nil {
				return fmt.Errorf("sample %d: %w", i, err)
			}

			out[i] = v

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// nextSeed draws the seed of a new request. Requests created in the same
// order get the same seeds for a fixed engine seed.
func (e *Engine) nextSeed() int64 {
	e.seedMu.Lock()
	defer e.seedMu.Unlock()

	return e.seeds.Int63()
}
