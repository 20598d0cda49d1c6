// Copyright 2026 MicroNet ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/micronet-ml/micronet/internal/tensor"

// Backend defines the interface that compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - backend/cpu: Pure Go with a worker pool for convolutions
//
// The operation set covers exactly what a feed-forward convolutional
// classifier performs: broadcasting elementwise arithmetic, matrix
// multiplication, grouped 2D convolution, global average pooling, batch
// normalization and the clamp/sigmoid primitives activations are built from.
//
// Example:
//
//	import (
//	    "github.com/micronet-ml/micronet/tensor"
//	    "github.com/micronet-ml/micronet/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // Uses backend.Add under the hood
type Backend = tensor.Backend
