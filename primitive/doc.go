// Package primitive classifies leaf types and provides the arbitraries that
// draw their values.
//
// The synthesis engine never produces leaf values itself: every node whose
// type is a leaf (see FromReflectType) samples its value from the Arbitrary
// registered for that type in a Registry. Defaults cover every KindEnum;
// named types over basic kinds (enums) draw from the default of their
// underlying kind and keep their own type.
package primitive
