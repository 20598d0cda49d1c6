package nn

import (
	"fmt"
	"math/rand"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// Dropout randomly zeroes elements of the input with probability p during
// training, scaling the survivors by 1/(1-p) so the expected activation is
// unchanged (inverted dropout). In eval mode it is the identity.
type Dropout[B tensor.Backend] struct {
	p        float32
	training bool
}

// NewDropout creates a dropout module with drop probability p in [0, 1).
// The module starts in training mode.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("dropout: invalid probability %v (must be in [0, 1))", p))
	}
	return &Dropout[B]{p: p, training: true}
}

// Forward applies the dropout mask in training mode and passes the input
// through unchanged in eval mode.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}

	output := input.Clone()
	data := output.Data()
	scale := 1 / (1 - d.p)
	for i := range data {
		//nolint:gosec // math/rand is fine for dropout masks
		if rand.Float32() < d.p {
			data[i] = 0
		} else {
			data[i] *= scale
		}
	}
	return output
}

// Parameters returns an empty slice (dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}

// SetTraining switches between masking (training) and identity (eval).
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// P returns the drop probability.
func (d *Dropout[B]) P() float32 {
	return d.p
}
