// Package control provides feedback controllers for the concentration lab.
//
//   - [PID]: Proportional-Integral-Derivative controller on a scalar
//   - [Regulator]: holds a target concentration by driving the solvent
//     faucet and the evaporator
//
// # Usage
//
//	reg := control.NewRegulator(control.NewPID(1.0, 0.1, 0, 2.5))
//	s.SetController(reg)
//	// Regulator.Control is called before each model step
//
// [PID] supports live tuning through GetParams and SetParam.
package control
