// Package concentration models the Concentration screen: a beaker of
// water into which a solute is shaken or dropped, with faucets that add
// and drain solvent and an evaporator that removes it.
//
// The central type is [Solution]. Its base properties (solute, solute
// amount, volume) are set by callers; concentration, saturation,
// precipitate amount and color are derived and recompute synchronously
// whenever a base property changes. [Precipitate] reconciles a list of
// particles against the precipitate amount, and [Model] ties everything
// together with a Step that advances the flows by a time increment.
//
// # Deferral
//
// Draining or adding stock solution changes volume and solute amount in
// one logical step. Between the two sets the precipitate amount would be
// computed from a mixed pair, so callers wrap compound mutations in a
// deferral window:
//
//	err := solution.Deferred(func() error {
//		if err := solution.SetVolume(v); err != nil {
//			return err
//		}
//		return solution.SetSoluteAmount(a)
//	})
//
// Windows do not nest. Misuse is reported as [ErrInconsistentDeferral].
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. A Model and its
// components belong to the goroutine that drives Step.
package concentration
