// Package tree builds the lazy generation tree over a schema.Shape.
//
// Nodes live in an arena owned by a Tree and refer to each other by NodeID,
// so recursive shapes never produce reference cycles. Children are created
// on first access: a container draws its size once, a composite picks one
// of its decompositions once, and a child whose type already appears among
// its ancestors is truncated (see Builder).
//
// Trees are per request and not safe for concurrent use.
package tree
