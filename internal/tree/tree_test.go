package tree

import (
	"bytes"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/path"
	"shape-synth/internal/schema"
)

type item struct {
	SKU   string `json:"sku"`
	Qty   int
	Price *float64
}

type customer struct {
	Name  string
	Email string
}

type order struct {
	ID    int
	Items []item
	Tags  map[string]struct{}
	Meta  map[string]int
	Grid  [3]bool
	Owner *customer
}

type list struct {
	Val  int
	Next *list
}

type forest struct {
	Label string
	Kids  []forest
}

type bad struct {
	Name string
	Any  any
}

type money struct {
	Cents int
}

func newMoney(units, cents int) money {
	return money{Cents: units*100 + cents}
}

func newTestBuilder(t *testing.T, opts ...Option) *Builder {
	t.Helper()

	resolver, err := schema.NewReflectResolver()
	require.NoError(t, err)

	b, err := NewBuilder(resolver, opts...)
	require.NoError(t, err)

	return b
}

func build[T any](t *testing.T, b *Builder, seed int64) *Tree {
	t.Helper()

	tr, err := b.Build(reflect.TypeFor[T](), rand.New(rand.NewSource(seed)))
	require.NoError(t, err)

	return tr
}

func resolveOne(t *testing.T, tr *Tree, expr string) *Node {
	t.Helper()

	ids, err := tr.Resolve(tr.Root(), path.MustParse(expr), Strict)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	return tr.Node(ids[0])
}

func TestBuildStruct(t *testing.T) {
	tr := build[order](t, newTestBuilder(t), 1)

	root := tr.Node(tr.Root())
	assert.True(t, root.IsRoot())
	assert.Zero(t, root.NullInject)
	assert.Equal(t, schema.ShapeStruct, root.Shape.Kind)

	kids, err := tr.Children(tr.Root())
	require.NoError(t, err)

	var names []string
	for _, id := range kids {
		names = append(names, tr.Node(id).Name)
	}

	assert.Equal(t, []string{"ID", "Items", "Tags", "Meta", "Grid", "Owner"}, names)
	assert.False(t, tr.Node(kids[1]).Expanded(), "children are created lazily")
}

func TestContainerBounds(t *testing.T) {
	b := newTestBuilder(t,
		WithDefaultBounds(Bounds{Min: 2, Max: 4}),
		WithSizeOverride(reflect.TypeFor[map[string]int](), Bounds{Min: 1, Max: 1}),
	)

	for seed := range int64(20) {
		tr := build[order](t, b, seed)

		items := resolveOne(t, tr, "Items")
		kids, err := tr.Children(items.ID)
		require.NoError(t, err)
		assert.True(t, items.Bounds.Contains(len(kids)))
		assert.Equal(t, items.Size, len(kids))

		grid := resolveOne(t, tr, "Grid")
		kids, err = tr.Children(grid.ID)
		require.NoError(t, err)
		assert.Len(t, kids, 3)

		meta := resolveOne(t, tr, "Meta")
		kids, err = tr.Children(meta.ID)
		require.NoError(t, err)
		assert.Len(t, kids, 1)
	}
}

func TestMapEntries(t *testing.T) {
	b := newTestBuilder(t, WithDefaultBounds(Bounds{Min: 2, Max: 2}))
	tr := build[order](t, b, 3)

	keys, err := tr.Resolve(tr.Root(), path.MustParse("Meta[*].key"), Strict)
	require.NoError(t, err)
	require.Len(t, keys, 2)

	key := tr.Node(keys[1])
	assert.Equal(t, reflect.TypeFor[string](), key.Type())
	assert.Equal(t, "$.Meta[1].key", tr.Path(key.ID))

	entry := tr.Node(key.Parent)
	assert.Equal(t, schema.ShapeEntry, entry.Shape.Kind)
	assert.False(t, entry.Truncated)
}

func TestCycleGuard(t *testing.T) {
	tr := build[list](t, newTestBuilder(t), 1)

	next := resolveOne(t, tr, "Next")
	assert.False(t, next.Truncated)

	// one extra level is allowed below a pointer wrapper
	val := resolveOne(t, tr, "Next.Val")
	assert.False(t, val.Truncated)
	assert.Equal(t, "$.Next.Val", tr.Path(val.ID))

	cut := resolveOne(t, tr, "Next.Next")
	assert.True(t, cut.Truncated)

	_, err := tr.Resolve(tr.Root(), path.MustParse("Next.Next.Val"), Strict)
	require.ErrorIs(t, err, diagnostic.ErrResolution)

	require.NoError(t, tr.ExpandAll())
}

func TestCycleGuardContainers(t *testing.T) {
	b := newTestBuilder(t, WithDefaultBounds(Bounds{Min: 1, Max: 1}))
	tr := build[forest](t, b, 1)

	require.NoError(t, tr.ExpandAll())

	kid := resolveOne(t, tr, "Kids[0]")
	assert.True(t, kid.Truncated)
	assert.Equal(t, 4, tr.Len())
}

func TestDecompositionChoice(t *testing.T) {
	resolver, err := schema.NewReflectResolver()
	require.NoError(t, err)
	require.NoError(t, resolver.RegisterFactory(newMoney))

	b, err := NewBuilder(resolver)
	require.NoError(t, err)

	seen := map[schema.DecompositionKind]int{}

	for seed := range int64(50) {
		tr, err := b.Build(reflect.TypeFor[money](), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)

		root := tr.Node(tr.Root())
		seen[root.Decomposition().Kind]++

		kids, err := tr.Children(root.ID)
		require.NoError(t, err)
		assert.Len(t, kids, len(root.Decomposition().Properties))
	}

	assert.Positive(t, seen[schema.DecomposeFields])
	assert.Positive(t, seen[schema.DecomposeFactory])
}

func TestSetBoundsReexpansion(t *testing.T) {
	b := newTestBuilder(t, WithDefaultBounds(Bounds{Min: 2, Max: 2}))
	tr := build[order](t, b, 1)

	items := resolveOne(t, tr, "Items")
	before, err := tr.Children(items.ID)
	require.NoError(t, err)
	require.Len(t, before, 2)

	before = append([]NodeID(nil), before...)

	require.NoError(t, tr.SetBounds(items.ID, Bounds{Min: 4, Max: 4}))
	grown, err := tr.Children(items.ID)
	require.NoError(t, err)
	require.Len(t, grown, 4)
	assert.Equal(t, before, grown[:2])
	assert.Equal(t, 4, items.Size)

	require.NoError(t, tr.SetBounds(items.ID, Bounds{Min: 1, Max: 1}))
	shrunk, err := tr.Children(items.ID)
	require.NoError(t, err)
	assert.Equal(t, before[:1], shrunk)
}

func TestSetBoundsBeforeExpansion(t *testing.T) {
	tr := build[order](t, newTestBuilder(t), 1)

	items := resolveOne(t, tr, "Items")
	require.False(t, items.Expanded())
	require.NoError(t, tr.SetBounds(items.ID, Bounds{Min: 3, Max: 3}))

	kids, err := tr.Children(items.ID)
	require.NoError(t, err)
	assert.Len(t, kids, 3)
}

func TestSetBoundsErrors(t *testing.T) {
	tr := build[order](t, newTestBuilder(t), 1)

	items := resolveOne(t, tr, "Items")
	err := tr.SetBounds(items.ID, Bounds{Min: 3, Max: 1})
	require.ErrorIs(t, err, diagnostic.ErrConstraint)
	assert.Contains(t, err.Error(), "$.Items")

	grid := resolveOne(t, tr, "Grid")
	require.ErrorIs(t, tr.SetBounds(grid.ID, Bounds{Min: 0, Max: 2}), diagnostic.ErrConstraint)
	require.NoError(t, tr.SetBounds(grid.ID, Bounds{Min: 0, Max: 3}))

	id := resolveOne(t, tr, "ID")
	require.ErrorIs(t, tr.SetBounds(id.ID, Bounds{Min: 0, Max: 1}), diagnostic.ErrConstraint)
}

func TestResolveWildcard(t *testing.T) {
	b := newTestBuilder(t, WithDefaultBounds(Bounds{Min: 0, Max: 6}))

	for seed := range int64(10) {
		tr := build[order](t, b, seed)

		items := resolveOne(t, tr, "Items")
		kids, err := tr.Children(items.ID)
		require.NoError(t, err)

		for _, expr := range []string{"Items[*]", "Items[]", "$.Items.*"} {
			matched, err := tr.Resolve(tr.Root(), path.MustParse(expr), Lenient)
			require.NoError(t, err)
			assert.Len(t, matched, len(kids), expr)
		}
	}
}

func TestResolveBreadthFirst(t *testing.T) {
	b := newTestBuilder(t, WithDefaultBounds(Bounds{Min: 3, Max: 3}))
	tr := build[order](t, b, 1)

	skus, err := tr.Resolve(tr.Root(), path.MustParse("Items[*].sku"), Strict)
	require.NoError(t, err)
	require.Len(t, skus, 3)

	for i, id := range skus {
		assert.Equal(t, "$.Items["+string(rune('0'+i))+"].SKU", tr.Path(id))
	}

	again, err := tr.Resolve(skus[0], path.MustParse("$.ID"), Strict)
	require.NoError(t, err)
	assert.Equal(t, "$.ID", tr.Path(again[0]))
}

func TestResolveModes(t *testing.T) {
	tr := build[order](t, newTestBuilder(t), 1)

	_, err := tr.Resolve(tr.Root(), path.MustParse("Itemz[0]"), Strict)

	var resErr *diagnostic.ResolutionError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, 0, resErr.Step)
	assert.Equal(t, ".Itemz", resErr.Selector)
	assert.Contains(t, resErr.Suggestions, "Items")

	ids, err := tr.Resolve(tr.Root(), path.MustParse("Itemz[0]"), Lenient)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestResolveForcesNotNull(t *testing.T) {
	b := newTestBuilder(t, WithNullInjection(0.5))
	tr := build[order](t, b, 1)

	kids, err := tr.Children(tr.Root())
	require.NoError(t, err)

	owner := tr.Node(kids[5])
	require.Equal(t, "Owner", owner.Name)
	assert.InDelta(t, 0.5, owner.NullInject, 0)
	assert.Zero(t, tr.Node(kids[0]).NullInject, "ints are not nillable")

	name := resolveOne(t, tr, "Owner.Name")
	assert.Zero(t, owner.NullInject)
	assert.True(t, owner.Addressed)
	assert.True(t, name.Addressed)
	assert.Equal(t, "$.Owner.Name", tr.Path(name.ID))
}

func TestConfigurationError(t *testing.T) {
	b := newTestBuilder(t)

	_, err := b.Build(reflect.TypeFor[bad](), rand.New(rand.NewSource(1)))

	var cfgErr *diagnostic.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "$.Any", cfgErr.Path)

	_, err = b.Build(reflect.TypeFor[any](), rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, diagnostic.ErrConfiguration)

	// Bad is not expanded yet
	_, err = b.Build(reflect.TypeFor[struct{ Bad bad }](), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
}

func TestConfigurationErrorOnExpansion(t *testing.T) {
	tr := build[struct{ Inner bad }](t, newTestBuilder(t), 1)

	_, err := tr.Resolve(tr.Root(), path.MustParse("Inner.Name"), Strict)

	var cfgErr *diagnostic.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "$.Inner.Any", cfgErr.Path)
}

func TestLeafCheck(t *testing.T) {
	b := newTestBuilder(t, WithLeafCheck(func(t reflect.Type) bool {
		return t.Kind() != reflect.Bool
	}))

	tr := build[order](t, b, 1)
	grid := resolveOne(t, tr, "Grid")

	_, err := tr.Children(grid.ID)
	require.ErrorIs(t, err, diagnostic.ErrConfiguration)
}

func TestNewBuilderValidation(t *testing.T) {
	resolver, err := schema.NewReflectResolver()
	require.NoError(t, err)

	_, err = NewBuilder(resolver, WithDefaultBounds(Bounds{Min: 5, Max: 1}))
	require.ErrorIs(t, err, diagnostic.ErrConstraint)

	_, err = NewBuilder(resolver, WithSizeOverride(reflect.TypeFor[[]int](), Bounds{Min: -1, Max: 1}))
	require.ErrorIs(t, err, diagnostic.ErrConstraint)

	_, err = NewBuilder(resolver, WithNullInjection(1.5))
	require.ErrorIs(t, err, diagnostic.ErrConstraint)
}

func TestDump(t *testing.T) {
	b := newTestBuilder(t, WithDefaultBounds(Bounds{Min: 1, Max: 1}))
	tr := build[list](t, b, 1)
	require.NoError(t, tr.ExpandAll())

	v := reflect.ValueOf(7)
	val := resolveOne(t, tr, "Val")
	val.Fixed = &v

	var buf bytes.Buffer
	require.NoError(t, tr.Dump(&buf))

	out := buf.String()
	assert.Contains(t, out, "$ tree.list")
	assert.Contains(t, out, "  Val int (fixed=7)")
	assert.Contains(t, out, "truncated")
}
