// Package errors provides structured error types for the loom engine.
//
// Errors carry the frame phase in which they occurred, a machine-readable
// kind, and the node path from the tree root to the failing component, so a
// measurement failure deep in a tree can be attributed without a debugger.
package errors
