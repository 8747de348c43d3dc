package schema_test

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"shape-synth/internal/schema"
)

func variadic(...int) string     { panic("not implemented") }
func twoResults(int) (int, bool) { panic("not implemented") }

func checked(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty input")
	}

	return strconv.Atoi(s)
}

func ExampleParseFactory() {
	f, err := schema.ParseFactory(strconv.Itoa)
	fmt.Println(err, f, f.Out, len(f.Params), f.HasErr)

	f, err = schema.ParseFactory(checked)
	fmt.Println(err, f, f.Out, f.Properties()[0].Name, f.HasErr)

	v, err := f.Call([]reflect.Value{reflect.ValueOf("42")})
	fmt.Println(v.Int(), err)

	_, err = f.Call([]reflect.Value{reflect.ValueOf("")})
	fmt.Println(err)

	_, err = schema.ParseFactory(variadic)
	fmt.Println(err)

	_, err = schema.ParseFactory(twoResults)
	fmt.Println(err)

	_, err = schema.ParseFactory(42)
	fmt.Println(err)

	// Output:
	// <nil> strconv.Itoa string 1 false
	// <nil> schema_test.checked int arg1 true
	// 42 <nil>
	// empty input
	// factory function must not be variadic
	// provided function is not a recognizable factory
	// provided factory is not a function
}
