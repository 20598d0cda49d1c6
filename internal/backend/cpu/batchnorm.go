package cpu

import (
	"fmt"
	"math"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// BatchNorm2D normalizes a [N, C, H, W] tensor per channel.
//
// Training mode computes mean and (biased) variance over the N, H and W
// dimensions of the current batch, normalizes with them, and updates the
// running buffers in place:
//
//	running = (1 - momentum) * running + momentum * batch
//
// Eval mode normalizes with the running buffers and leaves them untouched.
// gamma, beta, runningMean and runningVar are all [C].
func (c *CPUBackend) BatchNorm2D(x, gamma, beta, runningMean, runningVar *tensor.RawTensor,
	momentum, eps float32, training bool,
) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: input must be 4D [N,C,H,W], got %dD", len(shape)))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("batchnorm2d: unsupported dtype %s", x.DType()))
	}

	n, ch, h, w := shape[0], shape[1], shape[2], shape[3]
	for name, t := range map[string]*tensor.RawTensor{
		"gamma": gamma, "beta": beta, "running_mean": runningMean, "running_var": runningVar,
	} {
		if !t.Shape().Equal(tensor.Shape{ch}) {
			panic(fmt.Sprintf("batchnorm2d: %s shape %v does not match %d channels", name, t.Shape(), ch))
		}
	}

	output, err := tensor.NewRaw(shape, tensor.Float32, c.device)
	if err != nil {
		panic(fmt.Sprintf("batchnorm2d: %v", err))
	}

	xd := x.AsFloat32()
	out := output.AsFloat32()
	g := gamma.AsFloat32()
	b := beta.AsFloat32()
	rm := runningMean.AsFloat32()
	rv := runningVar.AsFloat32()

	spatial := h * w
	count := n * spatial

	for cIdx := 0; cIdx < ch; cIdx++ {
		var mean, variance float32

		if training {
			sum := float32(0)
			for s := 0; s < n; s++ {
				plane := xd[(s*ch+cIdx)*spatial:][:spatial]
				for _, v := range plane {
					sum += v
				}
			}
			mean = sum / float32(count)

			sqSum := float32(0)
			for s := 0; s < n; s++ {
				plane := xd[(s*ch+cIdx)*spatial:][:spatial]
				for _, v := range plane {
					d := v - mean
					sqSum += d * d
				}
			}
			variance = sqSum / float32(count)

			rm[cIdx] = (1-momentum)*rm[cIdx] + momentum*mean
			rv[cIdx] = (1-momentum)*rv[cIdx] + momentum*variance
		} else {
			mean = rm[cIdx]
			variance = rv[cIdx]
		}

		scale := g[cIdx] / float32(math.Sqrt(float64(variance+eps)))
		shift := b[cIdx] - mean*scale
		for s := 0; s < n; s++ {
			in := xd[(s*ch+cIdx)*spatial:][:spatial]
			dst := out[(s*ch+cIdx)*spatial:][:spatial]
			for i, v := range in {
				dst[i] = v*scale + shift
			}
		}
	}

	return output
}
