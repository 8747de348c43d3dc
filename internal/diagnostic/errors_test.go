package diagnostic

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"configuration", &ConfigurationError{Shape: "store.Order", Reason: "no decomposition"}, ErrConfiguration},
		{"resolution", &ResolutionError{Expression: "$.nope", Step: 1, Selector: ".nope"}, ErrResolution},
		{"generation", &GenerationExhaustedError{Path: "$.id", Attempts: 10}, ErrGenerationExhausted},
		{"uniqueness", &UniquenessExhaustedError{Path: "$.tags", Index: 3, Attempts: 5}, ErrUniquenessExhausted},
		{"constraint", &ConstraintError{Path: "$.items", Min: 3, Max: 1}, ErrConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.NotEmpty(t, tt.err.Error())

			for _, other := range []error{ErrConfiguration, ErrResolution, ErrGenerationExhausted, ErrUniquenessExhausted, ErrConstraint} {
				if other != tt.sentinel {
					assert.False(t, errors.Is(wrapped, other), "%v must not match %v", tt.err, other)
				}
			}
		})
	}
}

func TestResolutionErrorSuggestions(t *testing.T) {
	err := &ResolutionError{Expression: "$.itmes", Step: 1, Selector: ".itmes", Suggestions: []string{"items"}}
	assert.Contains(t, err.Error(), "did you mean items?")
}

func TestCheckBounds(t *testing.T) {
	require.NoError(t, CheckBounds("$.items", 0, 0))
	require.NoError(t, CheckBounds("$.items", 2, 5))

	err := CheckBounds("$.items", 4, 2)
	require.ErrorIs(t, err, ErrConstraint)

	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 4, ce.Min)
	assert.Equal(t, 2, ce.Max)
	assert.Contains(t, err.Error(), "$.items")

	assert.ErrorIs(t, CheckBounds("$.items", -1, 2), ErrConstraint)
}

func TestCheckRetries(t *testing.T) {
	assert.NoError(t, CheckRetries("filter", 1))
	assert.ErrorIs(t, CheckRetries("unique", 0), ErrConstraint)
}

func TestDiagnosticsString(t *testing.T) {
	var d Diagnostics
	d.AddSuggested("unmatched_path", "manipulator matched no node", "store.Order", "$.itmes", []string{"items"})
	d.AddInfo("reexpanded", "container resized", "", "$.items")

	assert.True(t, d.IsValid())
	assert.NoError(t, d.Error())
	require.Len(t, d.Warnings, 1)
	assert.Equal(t,
		"[store.Order] $.itmes: [unmatched_path] manipulator matched no node (did you mean items?)",
		d.Warnings[0].String())

	d.AddError("boom", "failed", "", "")
	assert.False(t, d.IsValid())
	assert.EqualError(t, d.Error(), "[boom] failed")
}
