package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched by the typed errors below.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrResolution          = errors.New("resolution error")
	ErrGenerationExhausted = errors.New("generation exhausted")
	ErrUniquenessExhausted = errors.New("uniqueness exhausted")
	ErrConstraint          = errors.New("constraint violated")
)

// ConfigurationError reports a shape that cannot be decomposed, or a value
// that does not fit the node it was assigned to.
type ConfigurationError struct {
	Shape  string
	Path   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return describe("configuration error", e.Shape, e.Path, e.Reason)
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ResolutionError reports a strict path expression whose selector at Step
// matched no node.
type ResolutionError struct {
	Expression  string
	Step        int
	Selector    string
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolution error: %q matched no node at selector %d (%s)",
		e.Expression, e.Step, e.Selector)
	if len(e.Suggestions) > 0 {
		msg += "; did you mean " + strings.Join(e.Suggestions, ", ") + "?"
	}

	return msg
}

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool { return target == ErrResolution }

// GenerationExhaustedError reports a node whose filters (or constructors)
// rejected every one of Attempts tries.
type GenerationExhaustedError struct {
	Path     string
	Attempts int
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("generation exhausted at %s after %d attempts", e.Path, e.Attempts)
}

// Is reports whether target is ErrGenerationExhausted.
func (e *GenerationExhaustedError) Is(target error) bool { return target == ErrGenerationExhausted }

// UniquenessExhaustedError reports a set-like container that kept drawing
// duplicates for element Index.
type UniquenessExhaustedError struct {
	Path     string
	Index    int
	Attempts int
}

func (e *UniquenessExhaustedError) Error() string {
	return fmt.Sprintf("uniqueness exhausted at %s: element %d still duplicated after %d attempts",
		e.Path, e.Index, e.Attempts)
}

// Is reports whether target is ErrUniquenessExhausted.
func (e *UniquenessExhaustedError) Is(target error) bool { return target == ErrUniquenessExhausted }

// ConstraintError reports inconsistent bounds, e.g. min > max.
type ConstraintError struct {
	Path   string
	Min    int
	Max    int
	Reason string
}

func (e *ConstraintError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = fmt.Sprintf("invalid bounds [%d, %d]", e.Min, e.Max)
	}

	return describe("constraint violated", "", e.Path, reason)
}

// Is reports whether target is ErrConstraint.
func (e *ConstraintError) Is(target error) bool { return target == ErrConstraint }

// CheckBounds validates a container size range.
func CheckBounds(path string, minSize, maxSize int) error {
	switch {
	case minSize < 0:
		return &ConstraintError{Path: path, Min: minSize, Max: maxSize, Reason: fmt.Sprintf("negative minimum %d", minSize)}
	case minSize > maxSize:
		return &ConstraintError{Path: path, Min: minSize, Max: maxSize,
			Reason: fmt.Sprintf("minimum %d exceeds maximum %d", minSize, maxSize)}
	}

	return nil
}

// CheckRetries validates a retry budget read from configuration.
func CheckRetries(resource string, n int) error {
	if n < 1 {
		return &ConstraintError{Reason: fmt.Sprintf("%s retries must be positive, got %d", resource, n)}
	}

	return nil
}

func describe(kind, shape, path, reason string) string {
	var b strings.Builder
	b.WriteString(kind)

	if shape != "" {
		b.WriteString(" [" + shape + "]")
	}

	if path != "" {
		b.WriteString(" at " + path)
	}

	if reason != "" {
		b.WriteString(": " + reason)
	}

	return b.String()
}
