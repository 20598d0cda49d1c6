package nn

import (
	"fmt"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// BatchNorm2d applies batch normalization over the channel dimension of a
// [N, C, H, W] tensor.
//
// Formula: Y = gamma * (X - mean) / sqrt(var + eps) + beta
//
// In training mode the statistics come from the current batch and the
// running buffers are updated with momentum; in eval mode the running
// buffers are used. Gamma starts at 1, beta at 0, running mean at 0 and
// running variance at 1.
type BatchNorm2d[B tensor.Backend] struct {
	Gamma *Parameter[B] // learnable scale [C]
	Beta  *Parameter[B] // learnable shift [C]

	runningMean *tensor.Tensor[float32, B] // buffer, not a parameter
	runningVar  *tensor.Tensor[float32, B]

	numFeatures int
	momentum    float32
	eps         float32
	training    bool

	backend B
}

// NewBatchNorm2d creates a batch normalization layer over numFeatures
// channels. The layer starts in training mode.
func NewBatchNorm2d[B tensor.Backend](numFeatures int, momentum, eps float32, backend B) *BatchNorm2d[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid feature count %d", numFeatures))
	}
	shape := tensor.Shape{numFeatures}

	return &BatchNorm2d[B]{
		Gamma:       NewParameter("batchnorm2d.gamma", Ones(shape, backend)),
		Beta:        NewParameter("batchnorm2d.beta", Zeros(shape, backend)),
		runningMean: tensor.Zeros[float32](shape, backend),
		runningVar:  tensor.Ones[float32](shape, backend),
		numFeatures: numFeatures,
		momentum:    momentum,
		eps:         eps,
		training:    true,
		backend:     backend,
	}
}

// Forward normalizes the input per channel.
//
// Input and output: [N, C, H, W] with C == numFeatures.
func (bn *BatchNorm2d[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", shape[1], bn.numFeatures))
	}

	raw := bn.backend.BatchNorm2D(
		input.Raw(),
		bn.Gamma.Tensor().Raw(),
		bn.Beta.Tensor().Raw(),
		bn.runningMean.Raw(),
		bn.runningVar.Raw(),
		bn.momentum,
		bn.eps,
		bn.training,
	)
	return tensor.New[float32, B](raw, bn.backend)
}

// Parameters returns gamma and beta. The running statistics are buffers and
// not trainable.
func (bn *BatchNorm2d[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.Gamma, bn.Beta}
}

// SetTraining switches between batch statistics (training) and running
// statistics (eval).
func (bn *BatchNorm2d[B]) SetTraining(training bool) {
	bn.training = training
}

// RunningMean returns the running mean buffer.
func (bn *BatchNorm2d[B]) RunningMean() *tensor.Tensor[float32, B] {
	return bn.runningMean
}

// RunningVar returns the running variance buffer.
func (bn *BatchNorm2d[B]) RunningVar() *tensor.Tensor[float32, B] {
	return bn.runningVar
}

// NumFeatures returns the channel count this layer normalizes.
func (bn *BatchNorm2d[B]) NumFeatures() int {
	return bn.numFeatures
}

// String returns a string representation of the layer.
func (bn *BatchNorm2d[B]) String() string {
	return fmt.Sprintf("BatchNorm2d(num_features=%d, momentum=%g, eps=%g)", bn.numFeatures, bn.momentum, bn.eps)
}
