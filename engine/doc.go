// Package engine hosts the frame loop: the Runtime owning the node arena
// and layout cache, the Build pass with its replay decisions, and the
// measure/record/input passes that run to completion, in order, on the
// frame-driving thread.
//
// The replay decision for each revisited component is three-tiered: a node
// whose call site survived fingerprint comparison and whose props compare
// equal is skipped outright; one whose props changed has its stored body
// re-run over the new value without touching any ancestor; anything else is
// rebuilt from that point down.
package engine
