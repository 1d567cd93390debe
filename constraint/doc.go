// Package constraint models sizing intents and their top-down resolution.
//
// A DimensionValue is one of Fixed, Wrap (size to content within optional
// bounds) or Fill (take available space within optional bounds). Merge
// combines a child's declared intent with its parent's resolved intent,
// applied once per ancestor level during the measure pass. Merge is pure and
// deliberately not commutative: the child's intent always frames the result.
package constraint
