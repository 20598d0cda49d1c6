package nn

import (
	"testing"

	"github.com/micronet-ml/micronet/internal/backend/cpu"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// TestSequential_ForwardChains tests that modules run in order, each output
// feeding the next input.
func TestSequential_ForwardChains(t *testing.T) {
	backend := cpu.New()

	linear := NewLinear[*cpu.CPUBackend](2, 2, backend)
	copy(linear.Weight().Tensor().Data(), []float32{2, 0, 0, 2})
	copy(linear.Bias().Tensor().Data(), []float32{1, -1})

	seq := NewSequential[*cpu.CPUBackend](NewReLU[*cpu.CPUBackend](), linear)

	input, err := tensor.FromSlice([]float32{-1, 2}, tensor.Shape{1, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	// ReLU first: [-1,2] -> [0,2] -> [0*2+1, 2*2-1] = [1,3]. Running the
	// linear layer first would give [0,3] instead.
	output := seq.Forward(input)

	expected := []float32{1, 3}
	for i, want := range expected {
		if output.Data()[i] != want {
			t.Errorf("output[%d]: expected %v, got %v", i, want, output.Data()[i])
		}
	}
}

// TestSequential_EmptyIsIdentity tests that an empty sequence passes input
// through untouched.
func TestSequential_EmptyIsIdentity(t *testing.T) {
	backend := cpu.New()

	seq := NewSequential[*cpu.CPUBackend]()

	input := tensor.Ones[float32](tensor.Shape{3}, backend)
	if seq.Forward(input) != input {
		t.Error("empty sequence should return its input")
	}
}

// TestSequential_Parameters tests that parameters are collected from every
// module, in module order.
func TestSequential_Parameters(t *testing.T) {
	backend := cpu.New()

	linear := NewLinear[*cpu.CPUBackend](4, 2, backend)
	seq := NewSequential[*cpu.CPUBackend](NewHSwish[*cpu.CPUBackend](), linear)

	params := seq.Parameters()
	if len(params) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(params))
	}
	if params[0] != linear.Weight() || params[1] != linear.Bias() {
		t.Error("parameters not collected in module order")
	}
}

// TestSequential_SetTrainingPropagates tests that the training flag reaches
// stateful modules inside the sequence.
func TestSequential_SetTrainingPropagates(t *testing.T) {
	backend := cpu.New()

	dropout := NewDropout[*cpu.CPUBackend](0.5)
	seq := NewSequential[*cpu.CPUBackend](NewReLU[*cpu.CPUBackend](), dropout)
	seq.SetTraining(false)

	input := tensor.Ones[float32](tensor.Shape{100}, backend)
	output := seq.Forward(input)

	for i, v := range output.Data() {
		if v != 1 {
			t.Errorf("output[%d]: expected 1 in eval mode, got %v", i, v)
		}
	}
}

// TestSequential_AddAndIndex tests the mutation and access helpers.
func TestSequential_AddAndIndex(t *testing.T) {
	seq := NewSequential[*cpu.CPUBackend](NewReLU[*cpu.CPUBackend]())

	sigmoid := NewSigmoid[*cpu.CPUBackend]()
	seq.Add(sigmoid)

	if seq.Len() != 2 {
		t.Fatalf("expected 2 modules, got %d", seq.Len())
	}
	if seq.Module(1) != Module[*cpu.CPUBackend](sigmoid) {
		t.Error("Module(1) should return the appended module")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for out-of-bounds index")
		}
	}()
	seq.Module(2)
}
