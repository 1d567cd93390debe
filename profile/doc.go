// Package profile collects per-frame diagnostics: dirtiness counts, layout
// cache hit/miss accounting, per-node timing, and the structured frame
// records handed to a background sink.
//
// The sink is the only concurrent piece of the engine: records travel over
// a one-way channel to a worker goroutine, fire-and-forget. A full channel
// or a closed sink drops the record with a logged warning; the frame is
// never blocked or failed by diagnostics.
package profile
