// Package path parses path expressions that address nodes of a generation
// tree.
//
// Grammar:
//
//	$               start of tree (root)
//	name, .name     child by property name (field, factory argument, key, value)
//	[3]             child by position
//	[*], .*, *      every child (wildcard)
//	[]              every child (the AllIndex sentinel)
//
// Example: "$.orders[*].items[0].sku".
package path
