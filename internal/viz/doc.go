// Package viz renders closed-loop runs in the terminal.
//
// The package implements a live view on the Bubble Tea framework:
//
//   - [Live]: watches one run as it happens, with a phase-plane
//     portrait drawn on a Braille [Canvas], the applied-input chart
//     and a readout panel including the controller's predicted plan
//   - [RenderPhase]: standalone phase-portrait rendering
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset to the initial state
//	Q     - Quit
package viz
