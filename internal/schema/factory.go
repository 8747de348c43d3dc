package schema

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	"shape-synth/utils"
)

var (
	ErrNotAFactory         = errors.New("provided function is not a recognizable factory")
	ErrFactoryNotAFunction = errors.New("provided factory is not a function")
	ErrVariadicFactory     = errors.New("factory function must not be variadic")
)

// Factory is a registered function building values of Out from its
// parameters. Each factory is an alternative decomposition of Out.
type Factory struct {
	Fn           reflect.Value
	Out          reflect.Type
	Params       []reflect.Type
	PackageAlias string
	Name         string
	HasErr       bool
}

// ParseFactory inspects the provided function and returns a Factory if it is
// a valid factory function.
//
// Supports signatures:
//   - func(a A, b B, ...) T
//   - func(a A, b B, ...) (T, error)
func ParseFactory(fn any) (*Factory, error) {
	if fn == nil {
		return nil, ErrFactoryNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return nil, ErrFactoryNotAFunction
	}

	if fnType.IsVariadic() {
		return nil, ErrVariadicFactory
	}

	switch fnType.NumOut() {
	default:
		return nil, ErrNotAFactory
	case 1:
	case 2:
		if !isError(fnType.Out(1)) {
			return nil, ErrNotAFactory
		}
	}

	fnPC := runtime.FuncForPC(fnVal.Pointer())
	alias, name := utils.Unpack2(strings.SplitN(fnPC.Name(), ".", 2))

	factory := &Factory{
		Fn:           fnVal,
		Out:          fnType.Out(0),
		PackageAlias: utils.Second(path.Split(alias)),
		Name:         name,
		HasErr:       fnType.NumOut() == 2,
	}

	for i := range fnType.NumIn() {
		factory.Params = append(factory.Params, fnType.In(i))
	}

	return factory, nil
}

// String returns the qualified function name, e.g. "store.NewOrder".
func (f *Factory) String() string {
	if f.PackageAlias == "" {
		return f.Name
	}

	return f.PackageAlias + "." + f.Name
}

// Properties returns one property per parameter, named arg1, arg2, ...
func (f *Factory) Properties() []Property {
	names := nameStem{stem: "arg"}

	props := make([]Property, len(f.Params))
	for i, p := range f.Params {
		props[i] = Property{Name: names.next(), Index: i, Type: p}
	}

	return props
}

// nameStem hands out stem1, stem2, ...
type nameStem struct {
	stem string
	last int
}

func (s *nameStem) next() string {
	s.last++
	return s.stem + strconv.Itoa(s.last)
}

// Call invokes the factory. A non-nil error returned by the factory is
// passed through unchanged.
func (f *Factory) Call(args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(f.Params) {
		return reflect.Value{}, fmt.Errorf("factory %s expects %d arguments, got %d", f, len(f.Params), len(args))
	}

	out := f.Fn.Call(args)
	if f.HasErr && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	return out[0], nil
}

func isError(t reflect.Type) bool {
	if t == nil {
		return false
	}

	return t.Implements(reflect.TypeFor[error]())
}
