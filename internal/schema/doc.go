// Package schema resolves Go types into shapes: the structural description
// the tree builder expands into nodes.
//
// It uses reflect to build, and cache, a canonical description of each type:
//   - TypeID: package import path + type name (type string for unnamed types)
//   - Shape: kind (leaf/struct/pointer/slice/array/map/set/entry), element
//     types of containers, and the candidate decompositions
//   - Property: one named/indexed part of a decomposition (struct field,
//     factory parameter, pointer target, map key or value)
//
// A shape may offer several decompositions: the exported fields of a struct
// and any factory function registered for the type. The tree builder picks
// one per node.
package schema
