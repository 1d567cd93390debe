// Package input defines the event batch consumed from the windowing
// backend, the redraw reason tags it reports, and the bottom-up dispatch of
// aggregated events to registered handlers.
package input
