// Package manipulate records mutations against path expressions and applies
// them to a tree before generation.
//
// A Log keeps entries in the order they were added. Apply resolves each
// entry and mutates every matched node; for fixed values, bounds and null
// probabilities the last applied mutation wins, filters and customizers
// accumulate. Every mutated node and all its ancestors are marked
// manipulated, which excludes them from the structural cache.
//
// Plans are YAML files listing manipulators:
//
//	strict: true
//	manipulators:
//	  - path: $.items
//	    size: [1, 3]
//	  - path: $.items[*].sku
//	    set: ABC-1
//	  - path: $.owner
//	    null: always
//	    strict: false
package manipulate
