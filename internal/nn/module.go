// Package nn implements the neural network modules MicroNet is assembled
// from: convolution, batch normalization, pooling, dropout, activations and
// the linear classifier head.
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/micronet-ml/micronet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential[Backend](
//	    nn.NewConv2D(3, 32, 3, 3, 2, 1, 1, false, backend),
//	    nn.NewReLU[Backend](),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable state
	// (activations, pooling) return an empty slice.
	Parameters() []*Parameter[B]
}

// Stateful is implemented by modules whose forward pass differs between
// training and inference (batch normalization, dropout).
type Stateful interface {
	// SetTraining switches the module between training and eval behavior.
	SetTraining(training bool)
}
