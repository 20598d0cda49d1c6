package nn

import (
	"github.com/micronet-ml/micronet/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	backend := input.Backend()
	return tensor.New[float32, B](backend.ReLU(input.Raw()), backend)
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// ReLU6 is the clipped rectifier: f(x) = min(max(0, x), 6).
type ReLU6[B tensor.Backend] struct{}

// NewReLU6 creates a new ReLU6 activation module.
func NewReLU6[B tensor.Backend]() *ReLU6[B] {
	return &ReLU6[B]{}
}

// Forward applies f(x) = min(max(0, x), 6).
func (r *ReLU6[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Clamp(0, 6)
}

// Parameters returns an empty slice (ReLU6 has no trainable parameters).
func (r *ReLU6[B]) Parameters() []*Parameter[B] {
	return nil
}

// HSwish is the hard-swish activation from "Searching for MobileNetV3"
// (https://arxiv.org/abs/1905.02244):
//
//	f(x) = x * min(max(x + 3, 0), 6) / 6
//
// It is identity-like for x >= 3 and zero for x <= -3, and is a cheap
// piecewise approximation of swish. No learnable state.
type HSwish[B tensor.Backend] struct{}

// NewHSwish creates a new HSwish activation module.
func NewHSwish[B tensor.Backend]() *HSwish[B] {
	return &HSwish[B]{}
}

// Forward applies f(x) = x * clamp(x+3, 0, 6) / 6.
func (h *HSwish[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	gate := input.AddScalar(3).Clamp(0, 6).DivScalar(6)
	return input.Mul(gate)
}

// Parameters returns an empty slice (HSwish has no trainable parameters).
func (h *HSwish[B]) Parameters() []*Parameter[B] {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
//
// Squashes values to (0, 1); used as the gate of the squeeze-excitation
// block.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Sigmoid()
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}
