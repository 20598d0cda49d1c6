package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// Weight initialization helpers.
//
// Convolution weights use fan-out scaled normal initialization: the variance
// is chosen relative to the number of output units per spatial position,
// which keeps signal variance stable across layers at initialization.

// ConvFanOut returns the fan-out of a 4D convolution weight
// [outC, inC/groups, kH, kW]: kH * kW * outC.
func ConvFanOut(shape tensor.Shape) int {
	if len(shape) != 4 {
		panic("conv fan-out requires a 4D weight shape")
	}
	return shape[0] * shape[2] * shape[3]
}

// FanOutStd returns sqrt(2 / fan_out) for a convolution weight shape.
func FanOutStd(shape tensor.Shape) float64 {
	return math.Sqrt(2.0 / float64(ConvFanOut(shape)))
}

// FillNormal overwrites t with draws from N(0, std), read from src.
// A nil src uses the process-global source; passing a seeded source makes
// the fill reproducible.
func FillNormal[B tensor.Backend](t *tensor.Tensor[float32, B], std float64, src rand.Source) {
	dist := distuv.Normal{Mu: 0, Sigma: std, Src: src}
	data := t.Data()
	for i := range data {
		data[i] = float32(dist.Rand())
	}
}

// FillConstant overwrites t with a constant value.
func FillConstant[B tensor.Backend](t *tensor.Tensor[float32, B], value float32) {
	data := t.Data()
	for i := range data {
		data[i] = value
	}
}

// FanOutNormal creates a convolution weight tensor initialized with
// N(0, sqrt(2/fan_out)).
func FanOutNormal[B tensor.Backend](shape tensor.Shape, backend B, src rand.Source) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)
	FillNormal(t, FanOutStd(shape), src)
	return t
}

// Zeros creates a tensor filled with zeros. Commonly used for biases.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones. Commonly used for norm scales.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
