package micronet

import (
	"golang.org/x/exp/rand"

	"github.com/micronet-ml/micronet/internal/nn"
)

// Initialization constants.
//
// The SE reduction ratio and the per-role gains below are carried over from
// the original training setup as-is. They are unvalidated hyperparameters
// with no documented derivation; treat them as tunables, not design intent.
const (
	// SEReduction is the squeeze ratio of the SE gate's bottleneck.
	SEReduction = 0.25

	// Per-role multipliers applied on top of the fan-out scaled standard
	// deviation in the second initialization pass.
	ExpandInitGain    = 0.73
	DepthwiseInitGain = 9.37
	ProjectInitGain   = 0.55
)

// resetParameters is the generic initialization pass, covering every
// parameter in the network:
//
//   - convolution weights ~ N(0, sqrt(2 / (kH*kW*outC))), biases zero
//   - normalization scale 1, shift 0
//   - linear weights ~ N(0, 0.01), bias zero
//
// Traversal order is fixed, so a given seed always produces the same
// network.
func (n *Network[B]) resetParameters(src rand.Source) {
	for _, conv := range n.convs() {
		w := conv.Weight().Tensor()
		nn.FillNormal(w, nn.FanOutStd(w.Shape()), src)
		if bias := conv.Bias(); bias != nil {
			nn.FillConstant(bias.Tensor(), 0)
		}
	}

	for _, norm := range n.norms() {
		nn.FillConstant(norm.Gamma.Tensor(), 1)
		nn.FillConstant(norm.Beta.Tensor(), 0)
	}

	nn.FillNormal(n.classifier.Weight().Tensor(), 0.01, src)
	nn.FillConstant(n.classifier.Bias().Tensor(), 0)
}

// resetBlockParameters is the override pass: it re-draws each block's
// expand, depthwise and project convolutions with role-specific gains on
// top of the same fan-out scaled formula. It runs after resetParameters and
// wins for the parameters it touches.
//
// The blocks are reached through their typed ConvsByRole handles, so nested
// layers cannot be silently skipped the way name-pattern matching would
// allow.
func (n *Network[B]) resetBlockParameters(src rand.Source) {
	for _, block := range n.blocks {
		convs := block.ConvsByRole()
		for _, rc := range []struct {
			conv *nn.Conv2D[B]
			gain float64
		}{
			{convs.Expand, ExpandInitGain},
			{convs.Depthwise, DepthwiseInitGain},
			{convs.Project, ProjectInitGain},
		} {
			w := rc.conv.Weight().Tensor()
			nn.FillNormal(w, rc.gain*nn.FanOutStd(w.Shape()), src)
		}
	}
}
