package primitive_test

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shape-synth/primitive"
)

type Level int8

func TestIntsStayInRange(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	arb := primitive.Ints(reflect.TypeFor[int](), -3, 3)

	seen := map[int64]bool{}
	for range 500 {
		s := arb.Sample(r)
		n := s.Value.Int()
		assert.GreaterOrEqual(t, n, int64(-3))
		assert.LessOrEqual(t, n, int64(3))
		seen[n] = true
	}

	assert.Len(t, seen, 7, "all values of a small range are reachable")
}

func TestShrinkTowardsZero(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	arb := primitive.Ints(reflect.TypeFor[int64](), 10, 20)

	s := arb.Sample(r)
	shrinks := s.Shrink()
	require.NotEmpty(t, shrinks)
	assert.Equal(t, int64(0), shrinks[0].Value.Int())
	assert.Empty(t, shrinks[0].Shrink())
}

func TestStringsRespectLengthAndAlphabet(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	arb := primitive.Strings(reflect.TypeFor[string](), 2, 4, "xy")

	for range 100 {
		s := arb.Sample(r).Value.String()
		assert.GreaterOrEqual(t, len(s), 2)
		assert.LessOrEqual(t, len(s), 4)
		assert.NotContains(t, s, "z")
	}
}

func TestTimesWithinWindow(t *testing.T) {
	t.Parallel()

	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)
	r := rand.New(rand.NewSource(5))
	arb := primitive.Times(from, to)

	for range 50 {
		ts := arb.Sample(r).Value.Interface().(time.Time)
		assert.False(t, ts.Before(from))
		assert.False(t, ts.After(to))
	}
}

func TestRegistryDefaults(t *testing.T) {
	t.Parallel()

	reg := primitive.NewRegistry()
	r := rand.New(rand.NewSource(11))

	for _, typ := range []reflect.Type{
		reflect.TypeFor[int](), reflect.TypeFor[uint16](), reflect.TypeFor[float32](),
		reflect.TypeFor[bool](), reflect.TypeFor[string](), reflect.TypeFor[time.Time](),
		reflect.TypeFor[time.Duration](), reflect.TypeFor[Level](),
	} {
		arb, ok := reg.For(typ)
		require.True(t, ok, typ.String())
		assert.Equal(t, typ, arb.Sample(r).Value.Type(), typ.String())
	}

	_, ok := reg.For(reflect.TypeFor[struct{ A int }]())
	assert.False(t, ok)
	assert.False(t, reg.Has(reflect.TypeFor[complex64]()))
}

func TestRegistryOverride(t *testing.T) {
	t.Parallel()

	reg := primitive.NewRegistry()
	reg.Register(reflect.TypeFor[Level](), primitive.OneOf(Level(1), Level(2)))

	r := rand.New(rand.NewSource(2))
	arb, ok := reg.For(reflect.TypeFor[Level]())
	require.True(t, ok)

	for range 20 {
		lvl := arb.Sample(r).Value.Interface().(Level)
		assert.Contains(t, []Level{1, 2}, lvl)
	}
}
