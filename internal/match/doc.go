// Package match ranks property names by similarity to a misspelled selector.
//
// It backs the "did you mean" hints attached to unresolved path expressions:
// names are normalized (case-folded, separators stripped) and scored with a
// normalized Levenshtein similarity.
package match
