// Copyright 2026 MicroNet ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/micronet-ml/micronet/internal/backend/cpu"
	"github.com/micronet-ml/micronet/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want Float32", raw.DType())
	}
	if raw.Device() != tensor.CPU {
		t.Errorf("Device() = %v, want CPU", raw.Device())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}
	if raw.ByteSize() != 6*4 {
		t.Errorf("ByteSize() = %d, want 24", raw.ByteSize())
	}

	clone := raw.Clone()
	clone.AsFloat32()[0] = 1
	if raw.AsFloat32()[0] != 0 {
		t.Error("Clone() must copy the buffer")
	}
}

// TestCreationFunctions exercises the public creation helpers.
func TestCreationFunctions(t *testing.T) {
	backend := cpu.New()

	zeros := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)
	for i, v := range zeros.Data() {
		if v != 0 {
			t.Errorf("zeros[%d] = %v", i, v)
		}
	}

	ones := tensor.Ones[float32](tensor.Shape{2, 2}, backend)
	for i, v := range ones.Data() {
		if v != 1 {
			t.Errorf("ones[%d] = %v", i, v)
		}
	}

	full := tensor.Full[float32](tensor.Shape{3}, 2.5, backend)
	for i, v := range full.Data() {
		if v != 2.5 {
			t.Errorf("full[%d] = %v", i, v)
		}
	}

	fromSlice, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if fromSlice.At(1, 0) != 3 {
		t.Errorf("At(1,0) = %v, want 3", fromSlice.At(1, 0))
	}

	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}, backend); err == nil {
		t.Error("FromSlice must reject mismatched lengths")
	}
}

// TestTensorOps exercises the typed operation wrappers through the public
// aliases.
func TestTensorOps(t *testing.T) {
	backend := cpu.New()

	a, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}
	b := tensor.Ones[float32](tensor.Shape{2, 2}, backend)

	sum := a.Add(b)
	if sum.Data()[3] != 5 {
		t.Errorf("Add: got %v", sum.Data())
	}

	prod := a.MulScalar(2)
	if prod.Data()[0] != 2 || prod.Data()[3] != 8 {
		t.Errorf("MulScalar: got %v", prod.Data())
	}

	matmul := a.MatMul(b)
	// Each output element is a row sum of a.
	if matmul.Data()[0] != 3 || matmul.Data()[2] != 7 {
		t.Errorf("MatMul: got %v", matmul.Data())
	}

	reshaped := a.Reshape(4)
	if !reshaped.Shape().Equal(tensor.Shape{4}) {
		t.Errorf("Reshape: got %v", reshaped.Shape())
	}
}

// TestBroadcastShapes exercises the broadcasting rules through the alias.
func TestBroadcastShapes(t *testing.T) {
	shape, needs, err := tensor.BroadcastShapes(tensor.Shape{1, 4, 1, 1}, tensor.Shape{2, 4, 8, 8})
	if err != nil {
		t.Fatalf("BroadcastShapes: %v", err)
	}
	if !shape.Equal(tensor.Shape{2, 4, 8, 8}) {
		t.Errorf("broadcast shape: got %v", shape)
	}
	if !needs {
		t.Error("expected needsBroadcast = true")
	}

	if _, _, err := tensor.BroadcastShapes(tensor.Shape{3}, tensor.Shape{4}); err == nil {
		t.Error("incompatible shapes must error")
	}
}
