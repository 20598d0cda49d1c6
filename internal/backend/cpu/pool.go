package cpu

import (
	"fmt"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// GlobalAvgPool2D averages each channel's spatial map to a single value:
// [N, C, H, W] -> [N, C, 1, 1].
func (c *CPUBackend) GlobalAvgPool2D(input *tensor.RawTensor) *tensor.RawTensor {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("global_avg_pool2d: input must be 4D [N,C,H,W], got %dD", len(shape)))
	}
	if input.DType() != tensor.Float32 {
		panic(fmt.Sprintf("global_avg_pool2d: unsupported dtype %s", input.DType()))
	}

	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]

	output, err := tensor.NewRaw(tensor.Shape{n, ch, 1, 1}, tensor.Float32, c.device)
	if err != nil {
		panic(fmt.Sprintf("global_avg_pool2d: %v", err))
	}

	inData := input.AsFloat32()
	outData := output.AsFloat32()
	spatial := h * w
	inv := float32(1) / float32(spatial)

	for i := 0; i < n*ch; i++ {
		plane := inData[i*spatial : (i+1)*spatial]
		sum := float32(0)
		for _, v := range plane {
			sum += v
		}
		outData[i] = sum * inv
	}

	return output
}
