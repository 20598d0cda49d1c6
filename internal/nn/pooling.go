package nn

import (
	"fmt"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// GlobalAvgPool2d averages each channel's spatial map to a single value:
// [N, C, H, W] -> [N, C, 1, 1].
//
// Used before the classifier head and as the squeeze step of the
// squeeze-excitation gate.
type GlobalAvgPool2d[B tensor.Backend] struct{}

// NewGlobalAvgPool2d creates a new global average pooling module.
func NewGlobalAvgPool2d[B tensor.Backend]() *GlobalAvgPool2d[B] {
	return &GlobalAvgPool2d[B]{}
}

// Forward reduces [N, C, H, W] to [N, C, 1, 1].
func (g *GlobalAvgPool2d[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("global_avg_pool2d: expected 4D input [N,C,H,W], got shape %v", input.Shape()))
	}
	backend := input.Backend()
	return tensor.New[float32, B](backend.GlobalAvgPool2D(input.Raw()), backend)
}

// Parameters returns an empty slice (pooling has no trainable parameters).
func (g *GlobalAvgPool2d[B]) Parameters() []*Parameter[B] {
	return nil
}
