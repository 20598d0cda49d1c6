package micronet

import (
	"testing"

	"github.com/micronet-ml/micronet/internal/backend/cpu"
	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/tensor"
)

func approxEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

// zeroBranch zeroes the expand/depthwise/project weights so the block's main
// branch contributes nothing (in eval mode), isolating shortcut behavior.
func zeroBranch[B tensor.Backend](b *MicroBlock[B]) {
	convs := b.ConvsByRole()
	for _, conv := range []*nn.Conv2D[B]{convs.Expand, convs.Depthwise, convs.Project} {
		data := conv.Weight().Tensor().Data()
		for i := range data {
			data[i] = 0
		}
	}
}

// TestMicroBlock_Stride1Shape tests that stride-1 blocks preserve spatial
// size.
func TestMicroBlock_Stride1Shape(t *testing.T) {
	backend := cpu.New()

	block := NewMicroBlock(8, 12, 3, 1, false, ActivationReLU, backend)
	block.SetTraining(false)

	input := tensor.Randn[float32](tensor.Shape{2, 8, 14, 14}, backend)
	output := block.Forward(input)

	if !output.Shape().Equal(tensor.Shape{2, 12, 14, 14}) {
		t.Errorf("output shape: expected [2,12,14,14], got %v", output.Shape())
	}
}

// TestMicroBlock_Stride2Shape tests that stride-2 blocks halve the spatial
// size.
func TestMicroBlock_Stride2Shape(t *testing.T) {
	backend := cpu.New()

	block := NewMicroBlock(8, 16, 3, 2, false, ActivationReLU, backend)
	block.SetTraining(false)

	input := tensor.Randn[float32](tensor.Shape{1, 8, 14, 14}, backend)
	output := block.Forward(input)

	if !output.Shape().Equal(tensor.Shape{1, 16, 7, 7}) {
		t.Errorf("output shape: expected [1,16,7,7], got %v", output.Shape())
	}
}

// TestMicroBlock_IdentityShortcut tests that a stride-1 block with matching
// channels and a zeroed branch is the identity.
func TestMicroBlock_IdentityShortcut(t *testing.T) {
	backend := cpu.New()

	block := NewMicroBlock(6, 6, 3, 1, false, ActivationReLU, backend)
	block.SetTraining(false)
	zeroBranch(block)

	input := tensor.Randn[float32](tensor.Shape{1, 6, 4, 4}, backend)
	output := block.Forward(input)

	for i, v := range input.Data() {
		if !approxEqual(output.Data()[i], v, 1e-6) {
			t.Fatalf("output[%d]: expected %v (identity), got %v", i, v, output.Data()[i])
		}
	}
}

// TestMicroBlock_ProjectionShortcut tests that a stride-1 block with a
// channel change uses a learned projection rather than the raw input.
func TestMicroBlock_ProjectionShortcut(t *testing.T) {
	backend := cpu.New()

	block := NewMicroBlock(4, 8, 3, 1, false, ActivationReLU, backend)
	block.SetTraining(false)
	zeroBranch(block)

	if block.shortcutConv == nil || block.shortcutNorm == nil {
		t.Fatal("channel-changing stride-1 block should have a projection shortcut")
	}

	// With a zeroed branch the output is exactly the projected input.
	input := tensor.Randn[float32](tensor.Shape{1, 4, 4, 4}, backend)
	output := block.Forward(input)
	expected := block.shortcutNorm.Forward(block.shortcutConv.Forward(input))

	for i, v := range expected.Data() {
		if !approxEqual(output.Data()[i], v, 1e-6) {
			t.Fatalf("output[%d]: expected %v, got %v", i, v, output.Data()[i])
		}
	}
}

// TestMicroBlock_Stride2NoShortcut tests that downsampling blocks skip the
// residual add entirely.
func TestMicroBlock_Stride2NoShortcut(t *testing.T) {
	backend := cpu.New()

	// Same channel count in and out still gets no shortcut at stride 2.
	block := NewMicroBlock(6, 6, 3, 2, false, ActivationReLU, backend)
	block.SetTraining(false)
	zeroBranch(block)

	if block.shortcutConv != nil {
		t.Error("stride-2 block must not allocate a shortcut projection")
	}

	input := tensor.Randn[float32](tensor.Shape{1, 6, 8, 8}, backend)
	output := block.Forward(input)

	// Zeroed branch, no shortcut: output is all zeros.
	for i, v := range output.Data() {
		if v != 0 {
			t.Fatalf("output[%d]: expected 0, got %v", i, v)
		}
	}
}

// TestMicroBlock_SEGateBeforeResidual tests the gate ordering: the SE gate
// scales only the branch, never the shortcut. With a zeroed branch the gate
// multiplies zero, so the output is exactly the identity shortcut; if the
// gate were applied after the add the output would be halved (sigmoid(0)).
func TestMicroBlock_SEGateBeforeResidual(t *testing.T) {
	backend := cpu.New()

	block := NewMicroBlock(6, 6, 3, 1, true, ActivationReLU, backend)
	block.SetTraining(false)
	zeroBranch(block)

	input := tensor.Randn[float32](tensor.Shape{1, 6, 4, 4}, backend)
	output := block.Forward(input)

	for i, v := range input.Data() {
		if !approxEqual(output.Data()[i], v, 1e-6) {
			t.Fatalf("output[%d]: expected %v, got %v (SE gate leaked onto the shortcut?)", i, v, output.Data()[i])
		}
	}
}

// TestMicroBlock_SEScalesChannels tests that the SE gate attenuates the
// branch per channel with values in (0, 1).
func TestMicroBlock_SEScalesChannels(t *testing.T) {
	backend := cpu.New()

	gated := NewMicroBlock(4, 8, 3, 2, true, ActivationReLU, backend)
	gated.SetTraining(false)

	// Zero the excite weights: the gate becomes sigmoid(0) = 0.5 for every
	// channel, so the gated output is exactly half the ungated branch.
	exciteData := gated.seExcite.Weight().Tensor().Data()
	for i := range exciteData {
		exciteData[i] = 0
	}

	input := tensor.Randn[float32](tensor.Shape{1, 4, 8, 8}, backend)
	output := gated.Forward(input)

	// Recompute the ungated branch with the same weights.
	ungated := gated.bn3.Forward(gated.project.Forward(
		gated.act2.Forward(gated.bn2.Forward(gated.depthwise.Forward(
			gated.act1.Forward(gated.bn1.Forward(gated.expand.Forward(input))))))))

	for i, v := range ungated.Data() {
		if !approxEqual(output.Data()[i], v*0.5, 1e-5) {
			t.Fatalf("output[%d]: expected %v, got %v", i, v*0.5, output.Data()[i])
		}
	}
}

// TestMicroBlock_ExpansionPlanes tests the hidden width computation.
func TestMicroBlock_ExpansionPlanes(t *testing.T) {
	backend := cpu.New()

	block := NewMicroBlock(16, 24, 3, 1, false, ActivationReLU, backend)

	convs := block.ConvsByRole()
	// planes = round(3 * 16) = 48.
	if convs.Expand.OutChannels() != 48 {
		t.Errorf("expand width: expected 48, got %d", convs.Expand.OutChannels())
	}
	// Depthwise keeps the expanded width, one input channel per group.
	if convs.Depthwise.OutChannels() != 48 {
		t.Errorf("depthwise width: expected 48, got %d", convs.Depthwise.OutChannels())
	}
	if !convs.Depthwise.Weight().Tensor().Shape().Equal(tensor.Shape{48, 1, 3, 3}) {
		t.Errorf("depthwise weight: expected [48,1,3,3], got %v", convs.Depthwise.Weight().Tensor().Shape())
	}
	if convs.Project.OutChannels() != 24 {
		t.Errorf("project width: expected 24, got %d", convs.Project.OutChannels())
	}
}

// TestMicroBlock_DepthwiseKernelByStride tests the stride-dependent kernel:
// 3x3 pad 1 at stride 1, 5x5 pad 2 at stride 2.
func TestMicroBlock_DepthwiseKernelByStride(t *testing.T) {
	backend := cpu.New()

	s1 := NewMicroBlock(8, 8, 3, 1, false, ActivationReLU, backend)
	if !s1.ConvsByRole().Depthwise.Weight().Tensor().Shape().Equal(tensor.Shape{24, 1, 3, 3}) {
		t.Errorf("stride 1 depthwise: expected 3x3 kernel, got %v",
			s1.ConvsByRole().Depthwise.Weight().Tensor().Shape())
	}

	s2 := NewMicroBlock(8, 8, 3, 2, false, ActivationReLU, backend)
	if !s2.ConvsByRole().Depthwise.Weight().Tensor().Shape().Equal(tensor.Shape{24, 1, 5, 5}) {
		t.Errorf("stride 2 depthwise: expected 5x5 kernel, got %v",
			s2.ConvsByRole().Depthwise.Weight().Tensor().Shape())
	}
}

// TestMicroBlock_InvalidStride tests the stride contract.
func TestMicroBlock_InvalidStride(t *testing.T) {
	backend := cpu.New()

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for stride 3")
		}
	}()
	NewMicroBlock(8, 8, 3, 3, false, ActivationReLU, backend)
}
