// Package loom provides the incremental recomputation core of a
// retained-mode UI runtime.
//
// Once per frame the engine decides how much of a declarative component tree
// must be re-executed, re-measured and re-drawn, and how much can be reused
// verbatim from the previous frame.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	loom/            Root package with geometry primitives
//	├── engine/      High-level API: Runtime, Build, replay decision, frame loop
//	├── arena/       Node registry, scope stack, control-flow fingerprints
//	├── constraint/  Sizing intents and the top-down merge calculator
//	├── layout/      Constraint-keyed layout memoization cache
//	├── render/      Draw fragment emission (record pass)
//	├── input/       Event batches, redraw reasons, bottom-up dispatch
//	├── profile/     Per-frame diagnostics, background sink, metrics
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Drive a component tree through a frame:
//
//	rt := engine.New()
//	defer rt.Close()
//
//	res, err := rt.Frame(engine.FrameInput{
//	    Reasons: []input.RedrawReason{input.ReasonStartup},
//	}, app, appProps{Title: "hello"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	submit(res.Fragments) // hand off to the rendering backend
//
// A frame with no redraw reasons is skipped entirely: the previous tree,
// layout results and draw fragments are reused unconditionally.
//
// # Incremental Model
//
// Three independent signals decide how much work a frame performs:
//
//   - Node identity: (type id, instance key, logic id) matches a component
//     invocation to its previous-frame entry.
//   - Structural fingerprint: the ordered control-flow marker sequence
//     recorded during a body's execution; divergence means the tree shape
//     beneath that point changed.
//   - Prop equality: an unchanged prop value lets a node skip re-execution
//     and replay its previous output ("replay skip").
//
// Layout results are memoized per (node identity, merged constraint), with
// every lookup classified into a typed hit/miss category for diagnostics.
package loom
