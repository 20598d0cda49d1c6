package cpu

import (
	"fmt"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// Reshape returns a tensor with the same data but a different shape.
// The buffer is shared; reshape is a view operation.
func (c *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	return t.WithShape(newShape)
}

// Transpose permutes the tensor's dimensions. With no axes it reverses all
// dimensions; otherwise axes give the permutation.
func (c *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: axes length %d != ndim %d", len(axes), ndim))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			panic(fmt.Sprintf("transpose: invalid axis %d for %dD tensor", ax, ndim))
		}
		if seen[ax] {
			panic(fmt.Sprintf("transpose: duplicate axis %d", ax))
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(newShape, t.DType(), t.Device())
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	srcStrides := shape.ComputeStrides()
	dstStrides := newShape.ComputeStrides()
	n := t.NumElements()

	copyElem := func(src, dst int) {
		switch t.DType() {
		case tensor.Float32:
			result.AsFloat32()[dst] = t.AsFloat32()[src]
		case tensor.Float64:
			result.AsFloat64()[dst] = t.AsFloat64()[src]
		}
	}

	idx := make([]int, ndim)
	for flat := 0; flat < n; flat++ {
		rem := flat
		for d := 0; d < ndim; d++ {
			idx[d] = rem / dstStrides[d]
			rem %= dstStrides[d]
		}
		src := 0
		for d := 0; d < ndim; d++ {
			src += idx[d] * srcStrides[axes[d]]
		}
		copyElem(src, flat)
	}

	return result
}
