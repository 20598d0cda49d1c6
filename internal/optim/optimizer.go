// Package optim implements the optimization algorithms the training recipe
// configures.
//
// Gradient computation and the training loop itself are external: an
// optimizer here consumes whatever gradients have been attached to the
// parameters and applies the update rule.
package optim

// Optimizer is the base interface for optimization algorithms.
type Optimizer interface {
	// Step applies one update to all parameters that currently carry a
	// gradient. Parameters without a gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float32

	// SetLR updates the learning rate (used by LR schedulers).
	SetLR(lr float32)
}
