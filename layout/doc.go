// Package layout implements the constraint-keyed layout memoization cache.
//
// Every measurement first merges the node's declared sizing intent with the
// parent's resolved constraint, then classifies the lookup into exactly one
// typed hit/miss category. Hits return the cached size without recursing
// into children; misses remeasure and re-cache. Specs that read volatile
// external state are never cached and accounted for separately.
package layout
