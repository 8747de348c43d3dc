package primitive

import (
	"math"
	"math/rand"
	"reflect"
	"time"
)

// Shrinkable is one sampled leaf value together with simpler alternatives a
// shrinker may try. The engine only reads Value.
type Shrinkable struct {
	Value  reflect.Value
	shrink func() []Shrinkable
}

// Just wraps a value that has no simpler alternatives.
func Just(v reflect.Value) Shrinkable {
	return Shrinkable{Value: v}
}

// Shrink returns the simpler alternatives of s, nearest to zero first.
func (s Shrinkable) Shrink() []Shrinkable {
	if s.shrink == nil {
		return nil
	}

	return s.shrink()
}

// Arbitrary draws leaf values of a single type.
type Arbitrary interface {
	Sample(r *rand.Rand) Shrinkable
}

// ArbitraryFunc adapts a function to Arbitrary.
type ArbitraryFunc func(r *rand.Rand) Shrinkable

// Sample calls f(r).
func (f ArbitraryFunc) Sample(r *rand.Rand) Shrinkable { return f(r) }

// Ints draws signed integers of type t uniformly from [lo, hi].
func Ints(t reflect.Type, lo, hi int64) Arbitrary {
	if hi < lo {
		lo, hi = hi, lo
	}

	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		n := lo + int64(uniform(r, uint64(hi-lo)))
		return intShrinkable(t, n)
	})
}

// Uints draws unsigned integers of type t uniformly from [lo, hi].
func Uints(t reflect.Type, lo, hi uint64) Arbitrary {
	if hi < lo {
		lo, hi = hi, lo
	}

	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		n := lo + uniform(r, hi-lo)
		return uintShrinkable(t, n)
	})
}

// Floats draws floating point numbers of type t uniformly from [lo, hi).
func Floats(t reflect.Type, lo, hi float64) Arbitrary {
	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		v := reflect.New(t).Elem()
		v.SetFloat(lo + r.Float64()*(hi-lo))

		return Shrinkable{Value: v, shrink: func() []Shrinkable {
			if v.Float() == 0 {
				return nil
			}

			return []Shrinkable{Just(reflect.Zero(t))}
		}}
	})
}

// Bools draws true or false with equal probability.
func Bools(t reflect.Type) Arbitrary {
	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		v := reflect.New(t).Elem()
		v.SetBool(r.Intn(2) == 1)

		return Shrinkable{Value: v, shrink: func() []Shrinkable {
			if !v.Bool() {
				return nil
			}

			return []Shrinkable{Just(reflect.Zero(t))}
		}}
	})
}

// DefaultAlphabet is used by Strings when no alphabet is given.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Strings draws strings of type t with a length in [minLen, maxLen] made of
// runes from alphabet.
func Strings(t reflect.Type, minLen, maxLen int, alphabet string) Arbitrary {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}

	runes := []rune(alphabet)

	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		n := minLen
		if maxLen > minLen {
			n += r.Intn(maxLen - minLen + 1)
		}

		buf := make([]rune, n)
		for i := range buf {
			buf[i] = runes[r.Intn(len(runes))]
		}

		v := reflect.New(t).Elem()
		v.SetString(string(buf))

		return Shrinkable{Value: v, shrink: func() []Shrinkable {
			if len(buf) <= minLen {
				return nil
			}

			shorter := reflect.New(t).Elem()
			shorter.SetString(string(buf[:minLen]))

			return []Shrinkable{Just(shorter)}
		}}
	})
}

// Times draws instants uniformly between from and to, truncated to seconds.
func Times(from, to time.Time) Arbitrary {
	span := to.Unix() - from.Unix()
	if span < 0 {
		from, span = to, -span
	}

	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		sec := from.Unix() + int64(uniform(r, uint64(span)))
		return Just(reflect.ValueOf(time.Unix(sec, 0).UTC()))
	})
}

// Durations draws durations of type t between 0 and maxDuration.
func Durations(t reflect.Type, maxDuration time.Duration) Arbitrary {
	return Ints(t, 0, int64(maxDuration))
}

// OneOf draws one of the given values uniformly. All values must share a type.
func OneOf(values ...any) Arbitrary {
	return ArbitraryFunc(func(r *rand.Rand) Shrinkable {
		idx := r.Intn(len(values))
		v := reflect.ValueOf(values[idx])

		return Shrinkable{Value: v, shrink: func() []Shrinkable {
			if idx == 0 {
				return nil
			}

			return []Shrinkable{Just(reflect.ValueOf(values[0]))}
		}}
	})
}

// uniform returns a number in [0, span].
func uniform(r *rand.Rand, span uint64) uint64 {
	if span == math.MaxUint64 {
		return r.Uint64()
	}

	if span < math.MaxInt64 {
		return uint64(r.Int63n(int64(span) + 1))
	}

	for {
		if n := r.Uint64(); n <= span {
			return n
		}
	}
}

func intShrinkable(t reflect.Type, n int64) Shrinkable {
	v := reflect.New(t).Elem()
	v.SetInt(n)

	return Shrinkable{Value: v, shrink: func() []Shrinkable {
		if n == 0 {
			return nil
		}

		return []Shrinkable{intShrinkable(t, 0), intShrinkable(t, n/2)}
	}}
}

func uintShrinkable(t reflect.Type, n uint64) Shrinkable {
	v := reflect.New(t).Elem()
	v.SetUint(n)

	return Shrinkable{Value: v, shrink: func() []Shrinkable {
		if n == 0 {
			return nil
		}

		return []Shrinkable{uintShrinkable(t, 0), uintShrinkable(t, n/2)}
	}}
}
