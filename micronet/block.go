package micronet

import (
	"fmt"

	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// MicroBlock is a residual inverted-bottleneck unit:
// expand (1x1) -> depthwise -> project (1x1), optionally gated by a
// squeeze-excitation block, optionally adding a shortcut.
//
// The depthwise kernel depends on the stride: stride 1 uses 3x3 with
// padding 1 (spatial size preserved), stride 2 uses 5x5 with padding 2
// (spatial size halved, with a larger receptive field to compensate for the
// downsampling). The projection is a linear bottleneck: normalization but no
// activation.
//
// The shortcut exists only at stride 1 — identity when channel counts match,
// a learned 1x1 projection otherwise. At stride 2 the output is the bare
// branch. When SE is enabled the gate is applied before the residual add;
// that ordering is part of the model's semantics.
type MicroBlock[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	expansion   float64
	stride      int
	useSE       bool

	expand    *nn.Conv2D[B]
	bn1       *nn.BatchNorm2d[B]
	act1      nn.Module[B]
	depthwise *nn.Conv2D[B]
	bn2       *nn.BatchNorm2d[B]
	act2      nn.Module[B]
	project   *nn.Conv2D[B]
	bn3       *nn.BatchNorm2d[B]

	// Squeeze-excitation gate (nil unless useSE).
	sePool    *nn.GlobalAvgPool2d[B]
	seSqueeze *nn.Conv2D[B]
	seAct     nn.Module[B]
	seExcite  *nn.Conv2D[B]
	seGate    *nn.Sigmoid[B]

	// Learned shortcut projection (nil for identity or stride 2).
	shortcutConv *nn.Conv2D[B]
	shortcutNorm *nn.BatchNorm2d[B]
}

// BlockConvs exposes a block's convolutions by role, giving initialization
// passes an explicit, typed handle instead of name-based module matching.
type BlockConvs[B tensor.Backend] struct {
	Expand    *nn.Conv2D[B]
	Depthwise *nn.Conv2D[B]
	Project   *nn.Conv2D[B]
}

// NewMicroBlock creates a block transforming inChannels feature maps into
// outChannels. stride must be 1 or 2.
func NewMicroBlock[B tensor.Backend](
	inChannels, outChannels int,
	expansion float64,
	stride int,
	useSE bool,
	activation ActivationKind,
	backend B,
) *MicroBlock[B] {
	if stride != 1 && stride != 2 {
		panic(fmt.Sprintf("microblock: invalid stride %d", stride))
	}
	planes := roundToInt(expansion * float64(inChannels))
	if planes < 1 {
		panic(fmt.Sprintf("microblock: expansion %g collapses %d channels", expansion, inChannels))
	}

	b := &MicroBlock[B]{
		inChannels:  inChannels,
		outChannels: outChannels,
		expansion:   expansion,
		stride:      stride,
		useSE:       useSE,

		expand: nn.NewConv2D(inChannels, planes, 1, 1, 1, 0, 1, false, backend),
		bn1:    nn.NewBatchNorm2d(planes, bnMomentum, bnEps, backend),
		act1:   newActivation[B](activation),
		bn2:    nn.NewBatchNorm2d(planes, bnMomentum, bnEps, backend),
		act2:   newActivation[B](activation),

		project: nn.NewConv2D(planes, outChannels, 1, 1, 1, 0, 1, false, backend),
		bn3:     nn.NewBatchNorm2d(outChannels, bnMomentum, bnEps, backend),
	}

	// Depthwise kernel widens with the stride.
	if stride == 1 {
		b.depthwise = nn.NewConv2D(planes, planes, 3, 3, 1, 1, planes, false, backend)
	} else {
		b.depthwise = nn.NewConv2D(planes, planes, 5, 5, 2, 2, planes, false, backend)
	}

	if useSE {
		squeezed := roundToInt(SEReduction * float64(outChannels))
		if squeezed < 1 {
			squeezed = 1
		}
		b.sePool = nn.NewGlobalAvgPool2d[B]()
		b.seSqueeze = nn.NewConv2D(outChannels, squeezed, 1, 1, 1, 0, 1, false, backend)
		b.seAct = newActivation[B](activation)
		b.seExcite = nn.NewConv2D(squeezed, outChannels, 1, 1, 1, 0, 1, false, backend)
		b.seGate = nn.NewSigmoid[B]()
	}

	if stride == 1 && inChannels != outChannels {
		b.shortcutConv = nn.NewConv2D(inChannels, outChannels, 1, 1, 1, 0, 1, false, backend)
		b.shortcutNorm = nn.NewBatchNorm2d(outChannels, bnMomentum, bnEps, backend)
	}

	return b
}

// Forward runs the block pipeline.
//
// Input: [N, inChannels, H, W]. Output: [N, outChannels, H, W] at stride 1,
// [N, outChannels, H/2, W/2] at stride 2.
func (b *MicroBlock[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := b.act1.Forward(b.bn1.Forward(b.expand.Forward(x)))
	out = b.act2.Forward(b.bn2.Forward(b.depthwise.Forward(out)))
	out = b.bn3.Forward(b.project.Forward(out))

	if b.useSE {
		w := b.sePool.Forward(out)
		w = b.seAct.Forward(b.seSqueeze.Forward(w))
		w = b.seGate.Forward(b.seExcite.Forward(w))
		// Per-channel gate [N, C, 1, 1] broadcasts over the spatial map.
		out = out.Mul(w)
	}

	// Spatial downsampling makes shortcut addition invalid at stride 2.
	if b.stride == 1 {
		out = out.Add(b.shortcut(x))
	}
	return out
}

// shortcut returns the residual path for a stride-1 block: the input itself
// when channel counts match, a learned 1x1 projection otherwise.
func (b *MicroBlock[B]) shortcut(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if b.shortcutConv == nil {
		return x
	}
	return b.shortcutNorm.Forward(b.shortcutConv.Forward(x))
}

// ConvsByRole returns typed handles to the expand/depthwise/project
// convolutions for the role-specific initialization pass.
func (b *MicroBlock[B]) ConvsByRole() BlockConvs[B] {
	return BlockConvs[B]{
		Expand:    b.expand,
		Depthwise: b.depthwise,
		Project:   b.project,
	}
}

// Parameters returns all trainable parameters of the block.
func (b *MicroBlock[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, b.expand.Parameters()...)
	params = append(params, b.bn1.Parameters()...)
	params = append(params, b.depthwise.Parameters()...)
	params = append(params, b.bn2.Parameters()...)
	params = append(params, b.project.Parameters()...)
	params = append(params, b.bn3.Parameters()...)
	if b.useSE {
		params = append(params, b.seSqueeze.Parameters()...)
		params = append(params, b.seExcite.Parameters()...)
	}
	if b.shortcutConv != nil {
		params = append(params, b.shortcutConv.Parameters()...)
		params = append(params, b.shortcutNorm.Parameters()...)
	}
	return params
}

// SetTraining propagates the train/eval flag to the block's normalization
// layers.
func (b *MicroBlock[B]) SetTraining(training bool) {
	for _, norm := range b.norms() {
		norm.SetTraining(training)
	}
}

// convs returns every convolution in the block, in a fixed order.
func (b *MicroBlock[B]) convs() []*nn.Conv2D[B] {
	convs := []*nn.Conv2D[B]{b.expand, b.depthwise, b.project}
	if b.useSE {
		convs = append(convs, b.seSqueeze, b.seExcite)
	}
	if b.shortcutConv != nil {
		convs = append(convs, b.shortcutConv)
	}
	return convs
}

// norms returns every normalization layer in the block, in a fixed order.
func (b *MicroBlock[B]) norms() []*nn.BatchNorm2d[B] {
	norms := []*nn.BatchNorm2d[B]{b.bn1, b.bn2, b.bn3}
	if b.shortcutNorm != nil {
		norms = append(norms, b.shortcutNorm)
	}
	return norms
}

// InChannels returns the block's input channel count.
func (b *MicroBlock[B]) InChannels() int {
	return b.inChannels
}

// OutChannels returns the block's output channel count.
func (b *MicroBlock[B]) OutChannels() int {
	return b.outChannels
}

// Stride returns the block's depthwise stride.
func (b *MicroBlock[B]) Stride() int {
	return b.stride
}

// UseSE reports whether the squeeze-excitation gate is enabled.
func (b *MicroBlock[B]) UseSE() bool {
	return b.useSE
}

// String returns a short description of the block.
func (b *MicroBlock[B]) String() string {
	return fmt.Sprintf("MicroBlock(in=%d, out=%d, expansion=%g, stride=%d, se=%v)",
		b.inChannels, b.outChannels, b.expansion, b.stride, b.useSE)
}
