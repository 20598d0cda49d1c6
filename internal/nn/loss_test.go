package nn

import (
	"math"
	"testing"

	"github.com/micronet-ml/micronet/internal/backend/cpu"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// TestCrossEntropy_UniformLogits tests that equal logits give log(classes).
func TestCrossEntropy_UniformLogits(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss[*cpu.CPUBackend]()

	logits := tensor.Zeros[float32](tensor.Shape{2, 4}, backend)
	loss := criterion.Forward(logits, []int{0, 3})

	expected := float32(math.Log(4))
	if !approxEqual(loss, expected, 1e-6) {
		t.Errorf("uniform loss: expected %v, got %v", expected, loss)
	}
}

// TestCrossEntropy_ConfidentCorrect tests that a large correct logit drives
// the loss toward zero.
func TestCrossEntropy_ConfidentCorrect(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss[*cpu.CPUBackend]()

	logits, err := tensor.FromSlice([]float32{20, 0, 0}, tensor.Shape{1, 3}, backend)
	if err != nil {
		t.Fatal(err)
	}

	loss := criterion.Forward(logits, []int{0})
	if loss > 1e-6 {
		t.Errorf("confident correct prediction: expected ~0 loss, got %v", loss)
	}

	// Same logits, wrong target: loss ~= 20.
	wrongLoss := criterion.Forward(logits, []int{1})
	if !approxEqual(wrongLoss, 20, 1e-3) {
		t.Errorf("confident wrong prediction: expected ~20, got %v", wrongLoss)
	}
}

// TestCrossEntropy_MeanOverBatch tests batch averaging.
func TestCrossEntropy_MeanOverBatch(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss[*cpu.CPUBackend]()

	// Sample 0 has uniform logits, sample 1 is perfectly confident.
	logits, err := tensor.FromSlice([]float32{0, 0, 50, 0}, tensor.Shape{2, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	loss := criterion.Forward(logits, []int{0, 0})

	expected := float32(math.Log(2) / 2)
	if !approxEqual(loss, expected, 1e-5) {
		t.Errorf("batch mean: expected %v, got %v", expected, loss)
	}
}

// TestCrossEntropy_LargeLogitsStable tests numerical stability with logits
// that would overflow a naive softmax.
func TestCrossEntropy_LargeLogitsStable(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss[*cpu.CPUBackend]()

	logits, err := tensor.FromSlice([]float32{1000, 1000}, tensor.Shape{1, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	loss := criterion.Forward(logits, []int{0})

	if math.IsNaN(float64(loss)) || math.IsInf(float64(loss), 0) {
		t.Fatalf("loss is not finite: %v", loss)
	}
	if !approxEqual(loss, float32(math.Log(2)), 1e-5) {
		t.Errorf("expected %v, got %v", math.Log(2), loss)
	}
}

// TestCrossEntropy_TargetOutOfRange tests the target range contract.
func TestCrossEntropy_TargetOutOfRange(t *testing.T) {
	backend := cpu.New()
	criterion := NewCrossEntropyLoss[*cpu.CPUBackend]()

	logits := tensor.Zeros[float32](tensor.Shape{1, 3}, backend)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for out-of-range target")
		}
	}()
	criterion.Forward(logits, []int{3})
}
