// Package diagnostic provides the error taxonomy of the synthesis engine and
// structured, non-fatal findings collected while manipulating a tree.
//
// Fatal errors:
//   - ConfigurationError: a shape offers no usable decomposition or a value does not fit a node
//   - ResolutionError: a strict path matched zero nodes
//   - GenerationExhaustedError: a filter chain rejected every attempt
//   - UniquenessExhaustedError: a set or map could not collect distinct elements
//   - ConstraintError: declared bounds are inconsistent
//
// Every error type matches its sentinel with errors.Is, so callers can branch
// without type assertions.
//
// Non-fatal findings (lenient manipulators that matched nothing, re-expanded
// containers) are collected in Diagnostics.
package diagnostic
