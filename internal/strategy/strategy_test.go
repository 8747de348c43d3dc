package strategy

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/path"
	"shape-synth/internal/schema"
	"shape-synth/internal/tree"
)

type MockStrategy struct{ mock.Mock }

func (m *MockStrategy) Applicable(n *tree.Node) bool {
	return m.Called(n).Bool(0)
}

func (m *MockStrategy) Construct(n *tree.Node, children []reflect.Value) (reflect.Value, error) {
	args := m.Called(n, children)
	return args.Get(0).(reflect.Value), args.Error(1)
}

type point struct {
	X, Y int
	note string
}

type celsius float64

func newPoint(x, y int) (point, error) {
	if x < 0 {
		return point{}, errors.New("negative x")
	}

	return point{X: x, Y: y}, nil
}

func buildTree(t *testing.T, root reflect.Type, factories ...any) *tree.Tree {
	t.Helper()

	resolver, err := schema.NewReflectResolver()
	require.NoError(t, err)

	for _, f := range factories {
		require.NoError(t, resolver.RegisterFactory(f))
	}

	b, err := tree.NewBuilder(resolver, tree.WithDefaultBounds(tree.Bounds{Min: 2, Max: 2}))
	require.NoError(t, err)

	tr, err := b.Build(root, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	return tr
}

func node(t *testing.T, tr *tree.Tree, expr string) *tree.Node {
	t.Helper()

	if expr == "$" {
		return tr.Node(tr.Root())
	}

	ids, err := tr.Resolve(tr.Root(), path.MustParse(expr), tree.Strict)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	_, err = tr.Children(ids[0])
	require.NoError(t, err)

	return tr.Node(ids[0])
}

func values(vs ...any) []reflect.Value {
	out := make([]reflect.Value, len(vs))
	for i, v := range vs {
		out[i] = reflect.ValueOf(v)
	}

	return out
}

func TestChainFallback(t *testing.T) {
	tr := buildTree(t, reflect.TypeFor[point]())
	n := tr.Node(tr.Root())

	skipping := &MockStrategy{}
	skipping.On("Applicable", n).Return(true)
	skipping.On("Construct", n, mock.Anything).Return(reflect.Value{}, ErrSkip)

	inapplicable := &MockStrategy{}
	inapplicable.On("Applicable", n).Return(false)

	chain := Defaults().Prepend(skipping, inapplicable)

	v, err := chain.Construct(n, values(1, 2))
	require.NoError(t, err)
	assert.Equal(t, point{X: 1, Y: 2}, v.Interface())

	skipping.AssertExpectations(t)
	inapplicable.AssertExpectations(t)
	inapplicable.AssertNotCalled(t, "Construct", mock.Anything, mock.Anything)
}

func TestChainAllSkip(t *testing.T) {
	tr := buildTree(t, reflect.TypeFor[point]())
	n := tr.Node(tr.Root())

	only := &MockStrategy{}
	only.On("Applicable", n).Return(true)
	only.On("Construct", n, mock.Anything).Return(reflect.Value{}, ErrSkip)

	_, err := Chain{only}.Construct(n, nil)
	require.ErrorIs(t, err, ErrSkip)

	_, err = Chain{}.Construct(n, nil)
	require.ErrorIs(t, err, diagnostic.ErrConfiguration)
	assert.False(t, Chain{}.Applicable(n))
}

func TestChainError(t *testing.T) {
	tr := buildTree(t, reflect.TypeFor[point]())
	n := tr.Node(tr.Root())
	boom := errors.New("boom")

	failing := &MockStrategy{}
	failing.On("Applicable", n).Return(true)
	failing.On("Construct", n, mock.Anything).Return(reflect.Value{}, boom)

	_, err := Defaults().Prepend(failing).Construct(n, values(1, 2))
	require.ErrorIs(t, err, boom)
}

func TestFactory(t *testing.T) {
	var n *tree.Node

	for seed := range int64(50) {
		resolver, err := schema.NewReflectResolver()
		require.NoError(t, err)
		require.NoError(t, resolver.RegisterFactory(newPoint))

		b, err := tree.NewBuilder(resolver)
		require.NoError(t, err)

		tr, err := b.Build(reflect.TypeFor[point](), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		if root := tr.Node(tr.Root()); root.Decomposition().Kind == schema.DecomposeFactory {
			n = root
			break
		}
	}

	require.NotNil(t, n, "factory decomposition never chosen")
	assert.True(t, Factory{}.Applicable(n))
	assert.False(t, Fields{}.Applicable(n))

	v, err := Defaults().Construct(n, values(3, 4))
	require.NoError(t, err)
	assert.Equal(t, point{X: 3, Y: 4}, v.Interface())

	_, err = Defaults().Construct(n, values(-1, 4))
	require.ErrorIs(t, err, ErrSkip)
	assert.Contains(t, err.Error(), "negative x")
}

func TestWrapper(t *testing.T) {
	tr := buildTree(t, reflect.TypeFor[*celsius]())
	n := tr.Node(tr.Root())

	v, err := Defaults().Construct(n, values(21.5))
	require.NoError(t, err)
	assert.Equal(t, celsius(21.5), *v.Interface().(*celsius))
}

func TestContainers(t *testing.T) {
	type shapes struct {
		List  []string
		Grid  [2]int
		Set   map[int]struct{}
		Index map[string]bool
	}

	tr := buildTree(t, reflect.TypeFor[shapes]())

	v, err := Defaults().Construct(node(t, tr, "List"), values("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, v.Interface())

	v, err = Defaults().Construct(node(t, tr, "Grid"), values(7, 8))
	require.NoError(t, err)
	assert.Equal(t, [2]int{7, 8}, v.Interface())

	v, err = Defaults().Construct(node(t, tr, "Set"), values(1, 2))
	require.NoError(t, err)
	assert.Equal(t, map[int]struct{}{1: {}, 2: {}}, v.Interface())

	entry := node(t, tr, "Index[0]")
	pair, err := Defaults().Construct(entry, values("x", true))
	require.NoError(t, err)
	assert.Equal(t, PairType(), pair.Type())

	v, err = Defaults().Construct(node(t, tr, "Index"), []reflect.Value{pair})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"x": true}, v.Interface())

	_, err = Defaults().Construct(node(t, tr, "Index"), values("x"))
	assert.Error(t, err)
}

func TestFieldsAssign(t *testing.T) {
	tr := buildTree(t, reflect.TypeFor[point]())
	n := tr.Node(tr.Root())

	v, err := Fields{}.Construct(n, values(int8(1), 2))
	require.NoError(t, err, "convertible values are converted")
	assert.Equal(t, point{X: 1, Y: 2}, v.Interface())

	_, err = Fields{}.Construct(n, values("one", 2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field X")

	v, err = Fields{}.Construct(n, []reflect.Value{{}, reflect.ValueOf(5)})
	require.NoError(t, err)
	assert.Equal(t, point{Y: 5}, v.Interface())
}

func TestGuardAndForType(t *testing.T) {
	tr := buildTree(t, reflect.TypeFor[point]())
	n := tr.Node(tr.Root())

	origin := ForType(reflect.TypeFor[point](), func(*tree.Node, []reflect.Value) (reflect.Value, error) {
		return reflect.ValueOf(point{}), nil
	})
	assert.True(t, origin.Applicable(n))

	never := Guard(func(*tree.Node) bool { return false }, origin)
	assert.False(t, never.Applicable(n))

	v, err := Defaults().Prepend(never, origin).Construct(n, values(5, 6))
	require.NoError(t, err)
	assert.Equal(t, point{}, v.Interface())
}
