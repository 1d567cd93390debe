// Package arena holds the node registry: one entry per live component
// invocation, a scope stack mirroring the call nesting of the current build
// pass, and the control-flow fingerprint machinery.
//
// Entries are created when a component function is entered during a build
// pass, mutated in place by the measure, record and input passes of the same
// frame, and reclaimed lazily by Sweep once a later frame's structural
// fingerprint shows the call site was not revisited.
package arena
