package nn

import (
	"math"
	"testing"

	"github.com/micronet-ml/micronet/internal/backend/cpu"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// TestBatchNorm2d_Creation tests initial parameter and buffer values.
func TestBatchNorm2d_Creation(t *testing.T) {
	backend := cpu.New()

	bn := NewBatchNorm2d(4, 0.01, 1e-5, backend)

	if bn.NumFeatures() != 4 {
		t.Errorf("expected 4 features, got %d", bn.NumFeatures())
	}

	for i := 0; i < 4; i++ {
		if bn.Gamma.Tensor().Data()[i] != 1 {
			t.Errorf("gamma[%d]: expected 1, got %v", i, bn.Gamma.Tensor().Data()[i])
		}
		if bn.Beta.Tensor().Data()[i] != 0 {
			t.Errorf("beta[%d]: expected 0, got %v", i, bn.Beta.Tensor().Data()[i])
		}
		if bn.RunningMean().Data()[i] != 0 {
			t.Errorf("running mean[%d]: expected 0, got %v", i, bn.RunningMean().Data()[i])
		}
		if bn.RunningVar().Data()[i] != 1 {
			t.Errorf("running var[%d]: expected 1, got %v", i, bn.RunningVar().Data()[i])
		}
	}

	if len(bn.Parameters()) != 2 {
		t.Errorf("expected 2 parameters (gamma, beta), got %d", len(bn.Parameters()))
	}
}

// TestBatchNorm2d_TrainingNormalizes tests that training mode produces
// zero-mean, unit-variance output per channel.
func TestBatchNorm2d_TrainingNormalizes(t *testing.T) {
	backend := cpu.New()

	bn := NewBatchNorm2d(1, 0.01, 1e-5, backend)

	input, err := tensor.FromSlice(
		[]float32{1, 2, 3, 4, 5, 6, 7, 8},
		tensor.Shape{2, 1, 2, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	output := bn.Forward(input)
	out := output.Data()

	var mean float64
	for _, v := range out {
		mean += float64(v)
	}
	mean /= float64(len(out))
	if math.Abs(mean) > 1e-5 {
		t.Errorf("output mean: expected ~0, got %v", mean)
	}

	var variance float64
	for _, v := range out {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(out))
	if math.Abs(variance-1) > 1e-3 {
		t.Errorf("output variance: expected ~1, got %v", variance)
	}
}

// TestBatchNorm2d_RunningStats tests the momentum update of the running
// buffers.
func TestBatchNorm2d_RunningStats(t *testing.T) {
	backend := cpu.New()

	bn := NewBatchNorm2d(1, 0.5, 1e-5, backend)

	// Batch of constant 4: mean 4, variance 0.
	input := tensor.Full[float32](tensor.Shape{1, 1, 2, 2}, 4, backend)
	bn.Forward(input)

	// running_mean = 0.5*0 + 0.5*4 = 2, running_var = 0.5*1 + 0.5*0 = 0.5.
	if bn.RunningMean().Data()[0] != 2 {
		t.Errorf("running mean: expected 2, got %v", bn.RunningMean().Data()[0])
	}
	if bn.RunningVar().Data()[0] != 0.5 {
		t.Errorf("running var: expected 0.5, got %v", bn.RunningVar().Data()[0])
	}
}

// TestBatchNorm2d_EvalUsesRunningStats tests that eval mode normalizes with
// the stored statistics instead of the batch.
func TestBatchNorm2d_EvalUsesRunningStats(t *testing.T) {
	backend := cpu.New()

	bn := NewBatchNorm2d(1, 0.01, 0, backend)
	bn.RunningMean().Data()[0] = 3
	bn.RunningVar().Data()[0] = 4
	bn.SetTraining(false)

	input, err := tensor.FromSlice([]float32{3, 5, 7, 1}, tensor.Shape{1, 1, 2, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	output := bn.Forward(input)

	// (x - 3) / 2 with gamma 1, beta 0.
	expected := []float32{0, 1, 2, -1}
	for i, exp := range expected {
		if !approxEqual(output.Data()[i], exp, 1e-5) {
			t.Errorf("output[%d]: expected %v, got %v", i, exp, output.Data()[i])
		}
	}

	// Buffers untouched in eval.
	if bn.RunningMean().Data()[0] != 3 || bn.RunningVar().Data()[0] != 4 {
		t.Error("eval mode must not update running statistics")
	}
}

// TestBatchNorm2d_GammaBeta tests the learned affine transform.
func TestBatchNorm2d_GammaBeta(t *testing.T) {
	backend := cpu.New()

	bn := NewBatchNorm2d(1, 0.01, 0, backend)
	bn.Gamma.Tensor().Data()[0] = 3
	bn.Beta.Tensor().Data()[0] = 7
	bn.SetTraining(false) // running stats: mean 0, var 1

	input, err := tensor.FromSlice([]float32{1, -1}, tensor.Shape{1, 1, 1, 2}, backend)
	if err != nil {
		t.Fatal(err)
	}

	output := bn.Forward(input)

	if !approxEqual(output.Data()[0], 10, 1e-5) || !approxEqual(output.Data()[1], 4, 1e-5) {
		t.Errorf("expected [10 4], got %v", output.Data())
	}
}
