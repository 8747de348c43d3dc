// Package generate turns a manipulated tree into values.
//
// A Context owns one Handle per reachable node. A Handle is a lazy cell: it
// is forced at most once per Pass and the result is memoized for the rest
// of that pass. Filters run first (with bounded retry), then customizers,
// then null injection.
//
// Subtrees that nobody manipulated or addressed and that contain no
// container are compiled into detached combinators and shared through a
// Cache across requests of the same engine profile.
package generate
