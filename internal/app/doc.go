// Package app contains the application services that run the slot machine.
// This is the application layer - it coordinates domain logic and
// infrastructure through ports.
//
// Application Layer Responsibilities:
//   - Load the quote catalog once and remember a failed load
//   - Orchestrate spins: selection, reel shuffling, the spin sequencer
//   - Drive audio cues from the spin lifecycle and the mute toggle
//   - Fan out frame, completion and audio events to stream subscribers
//
// What does NOT belong here:
//   - HTTP and WebSocket specifics (that's adapters)
//   - Reading or fetching the quote configuration (that's the ACL adapters)
//   - Selection rules (that's the domain layer)
package app
