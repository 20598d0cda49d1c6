// Package cpu implements the CPU compute backend.
package cpu

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Convolution work is sharded across a small worker pool; everything else
// runs on the calling goroutine.
type CPUBackend struct {
	device  tensor.Device
	workers int
}

// New creates a new CPU backend.
//
// The convolution worker count is taken from the detected logical core count
// (falling back to GOMAXPROCS when CPUID detection is unavailable).
func New() *CPUBackend {
	workers := cpuid.CPU.LogicalCores
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &CPUBackend{
		device:  tensor.CPU,
		workers: workers,
	}
}

// Name returns the backend name.
func (c *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *CPUBackend) Device() tensor.Device {
	return c.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (c *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (c *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (c *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (c *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binaryOp applies f elementwise over a and b, broadcasting as needed.
func (c *CPUBackend) binaryOp(name string, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32, f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	if !needsBroadcast {
		// Fast path: identical shapes, straight element walk.
		switch a.DType() {
		case tensor.Float32:
			ad, bd, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
			for i := range out {
				out[i] = f32(ad[i], bd[i])
			}
		case tensor.Float64:
			ad, bd, out := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
			for i := range out {
				out[i] = f64(ad[i], bd[i])
			}
		}
		return result
	}

	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)
	outStrides := outShape.ComputeStrides()
	n := outShape.NumElements()

	switch a.DType() {
	case tensor.Float32:
		ad, bd, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
		for i := 0; i < n; i++ {
			ai, bi := broadcastIndices(i, outStrides, aStrides, bStrides)
			out[i] = f32(ad[ai], bd[bi])
		}
	case tensor.Float64:
		ad, bd, out := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
		for i := 0; i < n; i++ {
			ai, bi := broadcastIndices(i, outStrides, aStrides, bStrides)
			out[i] = f64(ad[ai], bd[bi])
		}
	}
	return result
}

// broadcastIndices maps a flat output index to the flat indices of the two
// operands, using their broadcast strides (0 on expanded dimensions).
func broadcastIndices(flat int, outStrides, aStrides, bStrides []int) (int, int) {
	ai, bi := 0, 0
	rem := flat
	for d := 0; d < len(outStrides); d++ {
		idx := rem / outStrides[d]
		rem %= outStrides[d]
		ai += idx * aStrides[d]
		bi += idx * bStrides[d]
	}
	return ai, bi
}
