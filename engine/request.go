package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"

	"github.com/google/uuid"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/generate"
	"shape-synth/internal/logging"
	"shape-synth/internal/manipulate"
	"shape-synth/internal/path"
	"shape-synth/internal/tree"
)

// Request generates values of one type. Manipulators added to a request
// apply to every value it samples. A Request is not safe for concurrent
// use.
type Request struct {
	engine *Engine
	root   reflect.Type
	id     uuid.UUID
	rng    *rand.Rand
	log    *manipulate.Log
	mode   tree.Mode
	logger logging.Logger

	// built lazily, dropped when a manipulator is added
	tree  *tree.Tree
	gen   *generate.Context
	diags diagnostic.Diagnostics
}

func newRequest(e *Engine, root reflect.Type, seed int64) *Request {
	id := uuid.New()
	logger := logging.With(e.logger, "request_id", id.String(), "type", root.String())

	mode := tree.Strict
	if !e.cfg.IsStrict() {
		mode = tree.Lenient
	}

	return &Request{
		engine: e,
		root:   root,
		id:     id,
		rng:    rand.New(rand.NewSource(seed)),
		log:    manipulate.NewLog(logger),
		mode:   mode,
		logger: logger,
	}
}

// Of starts a request generating values of type T.
func Of[T any](e *Engine) *Request {
	return e.For(reflect.TypeFor[T]())
}

// ID returns the request id attached to its log entries.
func (r *Request) ID() uuid.UUID {
	return r.id
}

// Type returns the type the request generates.
func (r *Request) Type() reflect.Type {
	return r.root
}

// Seed restarts the random source of the request.
func (r *Request) Seed(seed int64) *Request {
	r.rng = rand.New(rand.NewSource(seed))
	r.reset()

	return r
}

// Strict makes the following manipulators fail when their path matches
// nothing. It is the default unless the configuration says otherwise.
func (r *Request) Strict() *Request {
	r.mode = tree.Strict
	return r
}

// Lenient makes the following manipulators silently do nothing when their
// path matches nothing.
func (r *Request) Lenient() *Request {
	r.mode = tree.Lenient
	return r
}

// Set fixes the value of every node matching expr.
func (r *Request) Set(expr string, v any) error {
	return r.add(expr, manipulate.Fix(v))
}

// Size bounds the length of every container matching expr. It fails
// immediately when minSize > maxSize.
func (r *Request) Size(expr string, minSize, maxSize int) error {
	m, err := manipulate.Size(minSize, maxSize)
	if err != nil {
		var cErr *diagnostic.ConstraintError
		if errors.As(err, &cErr) {
			cErr.Path = expr
		}

		return err
	}

	return r.add(expr, m)
}

// Null makes every node matching expr generate its zero value.
func (r *Request) Null(expr string) error {
	return r.add(expr, manipulate.NullAlways())
}

// NotNull keeps every node matching expr from being nil.
func (r *Request) NotNull(expr string) error {
	return r.add(expr, manipulate.NullNever())
}

// Filter discards values of the nodes matching expr until keep accepts
// one.
func (r *Request) Filter(expr string, keep func(reflect.Value) bool) error {
	return r.add(expr, manipulate.Filter(keep))
}

// Customize transforms the values of the nodes matching expr.
func (r *Request) Customize(expr string, fn func(reflect.Value) reflect.Value) error {
	return r.add(expr, manipulate.Customize(fn))
}

// FilterOf is Filter with a typed predicate.
func FilterOf[T any](r *Request, expr string, keep func(T) bool) error {
	return r.Filter(expr, func(v reflect.Value) bool {
		t, ok := v.Interface().(T)
		return ok && keep(t)
	})
}

// CustomizeOf is Customize with a typed transform.
func CustomizeOf[T any](r *Request, expr string, fn func(T) T) error {
	return r.Customize(expr, func(v reflect.Value) reflect.Value {
		t, ok := v.Interface().(T)
		if !ok {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(reflect.ValueOf(fn(t)))

		return out
	})
}

// Plan adds the manipulators of a YAML plan.
func (r *Request) Plan(p *manipulate.Plan) error {
	if err := p.AppendTo(r.log); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	r.reset()

	return nil
}

// Tree returns the manipulated tree the request samples from.
func (r *Request) Tree() (*tree.Tree, error) {
	if err := r.prepare(); err != nil {
		return nil, err
	}

	return r.tree, nil
}

// Diagnostics returns the warnings of the last manipulator application,
// such as lenient manipulators that matched nothing.
func (r *Request) Diagnostics() diagnostic.Diagnostics {
	return r.diags
}

// Sample generates one value.
func (r *Request) Sample() (reflect.Value, error) {
	if err := r.prepare(); err != nil {
		return reflect.Value{}, err
	}

	v, err := r.gen.Sample(r.rng)
	if err != nil {
		r.logger.Error("sample failed", "error", err)
		return reflect.Value{}, err
	}

	return v, nil
}

// Samples generates n values from the same tree.
func (r *Request) Samples(n int) ([]reflect.Value, error) {
	out := make([]reflect.Value, 0, n)

	for range n {
		v, err := r.Sample()
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}

// SampleOf generates one value of type T.
func SampleOf[T any](r *Request) (T, error) {
	var zero T

	v, err := r.Sample()
	if err != nil {
		return zero, err
	}

	t, ok := v.Interface().(T)
	if !ok {
		return zero, fmt.Errorf("request generates %s, not %s", r.root, reflect.TypeFor[T]())
	}

	return t, nil
}

func (r *Request) add(expr string, m manipulate.Mutation) error {
	p, err := path.Parse(expr)
	if err != nil {
		return err
	}

	if err := r.log.Append(p, m, r.mode); err != nil {
		return err
	}

	r.reset()

	return nil
}

func (r *Request) reset() {
	r.tree = nil
	r.gen = nil
	r.diags = diagnostic.Diagnostics{}
}

// prepare builds the tree, applies the manipulators and compiles the
// handles. It runs once until the next manipulator is added.
func (r *Request) prepare() error {
	if r.gen != nil {
		return nil
	}

	e := r.engine

	t, err := e.builder.Build(r.root, r.rng)
	if err != nil {
		return fmt.Errorf("failed to build tree of %s: %w", r.root, err)
	}

	diags, err := r.log.Apply(t)
	if err != nil {
		return err
	}

	gen, err := generate.NewContext(t, generate.Config{
		Profile:       e.profile,
		Strategies:    e.strategies,
		Primitives:    e.primitives,
		Cache:         e.cache,
		FilterRetries: e.cfg.Retries.Filter,
		UniqueRetries: e.cfg.Retries.Unique,
		Logger:        r.logger,
	})
	if err != nil {
		return err
	}

	r.tree, r.gen, r.diags = t, gen, diags

	r.logger.Debug("request prepared", "manipulators", r.log.Len(), "nodes", t.Len(), "warnings", len(diags.Warnings))

	return nil
}
