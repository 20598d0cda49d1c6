package cpu

import (
	"fmt"
	"math"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// ReLU computes max(0, x) elementwise.
func (c *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("relu", x,
		func(v float32) float32 {
			if v < 0 {
				return 0
			}
			return v
		},
		func(v float64) float64 {
			if v < 0 {
				return 0
			}
			return v
		})
}

// Clamp limits each element to the range [lo, hi].
func (c *CPUBackend) Clamp(x *tensor.RawTensor, lo, hi float64) *tensor.RawTensor {
	if lo > hi {
		panic(fmt.Sprintf("clamp: lo %v > hi %v", lo, hi))
	}
	lo32, hi32 := float32(lo), float32(hi)
	return c.unaryOp("clamp", x,
		func(v float32) float32 {
			if v < lo32 {
				return lo32
			}
			if v > hi32 {
				return hi32
			}
			return v
		},
		func(v float64) float64 {
			if v < lo {
				return lo
			}
			if v > hi {
				return hi
			}
			return v
		})
}

// Sigmoid computes 1 / (1 + exp(-x)) elementwise.
func (c *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("sigmoid", x,
		func(v float32) float32 { return float32(1 / (1 + math.Exp(-float64(v)))) },
		func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
}

// MulScalar multiplies each element by a scalar.
func (c *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("mul_scalar", scalar)
	return c.unaryOp("mul_scalar", x,
		func(v float32) float32 { return v * float32(s) },
		func(v float64) float64 { return v * s })
}

// AddScalar adds a scalar to each element.
func (c *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("add_scalar", scalar)
	return c.unaryOp("add_scalar", x,
		func(v float32) float32 { return v + float32(s) },
		func(v float64) float64 { return v + s })
}

// SubScalar subtracts a scalar from each element.
func (c *CPUBackend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("sub_scalar", scalar)
	return c.unaryOp("sub_scalar", x,
		func(v float32) float32 { return v - float32(s) },
		func(v float64) float64 { return v - s })
}

// DivScalar divides each element by a scalar.
func (c *CPUBackend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	s := toFloat64("div_scalar", scalar)
	return c.unaryOp("div_scalar", x,
		func(v float32) float32 { return v / float32(s) },
		func(v float64) float64 { return v / s })
}

func (c *CPUBackend) unaryOp(name string, x *tensor.RawTensor,
	f32 func(float32) float32, f64 func(float64) float64,
) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), c.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	switch x.DType() {
	case tensor.Float32:
		in, out := x.AsFloat32(), result.AsFloat32()
		for i, v := range in {
			out[i] = f32(v)
		}
	case tensor.Float64:
		in, out := x.AsFloat64(), result.AsFloat64()
		for i, v := range in {
			out[i] = f64(v)
		}
	}
	return result
}

func toFloat64(op string, scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	case int:
		return float64(s)
	default:
		panic(fmt.Sprintf("%s: unsupported scalar type %T", op, scalar))
	}
}
