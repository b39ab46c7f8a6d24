// Package tui renders a concentration model in the terminal.
//
// [Lab] is a Bubble Tea program that steps the model in real time and
// draws the beaker on a Braille [Canvas], tinted with the solution color.
//
// # Key Bindings
//
//	↑/↓    - Select solvent inflow, drain or evaporation
//	←/→    - Lower/raise the selected rate by a tenth of its maximum
//	0      - Turn the selected rate off
//	S      - Toggle the shaker (solid solute)
//	D      - Toggle the dropper (liquid solute)
//	F      - Switch between solid and liquid solute
//	Tab    - Next solute
//	X      - Remove all solute
//	R      - Reset the lab
//	Space  - Pause/Resume
//	+/-    - Change simulation speed
//	T      - Cycle color themes
package tui
