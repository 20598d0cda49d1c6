// Package micronet defines a MobileNet-style image classifier built from
// residual inverted-bottleneck blocks with optional squeeze-excitation
// gating and hard-swish activations.
//
// The package is a topology definition: construction wires the layers and
// runs a deterministic parameter initialization pass, Forward evaluates the
// graph, and the attached training recipe is configuration for an external
// training loop.
//
// Example:
//
//	backend := cpu.New()
//	net := micronet.New(micronet.Config{
//	    NumClasses: 1000,
//	    WideFactor: 1, DepthFactor: 1,
//	    UseSE:      true,
//	    Activation: micronet.ActivationHSwish,
//	}, backend)
//	net.SetTraining(false)
//	logits := net.Forward(images) // [N, 3, 224, 224] -> [N, 1000]
package micronet

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// Fixed architecture constants.
const (
	stemChannels = 32   // stem conv output width
	headChannels = 640  // head conv output width, classifier input
	dropoutRate  = 0.3  // classifier dropout
	bnMomentum   = 0.01 // running-statistics momentum for every norm layer
	bnEps        = 1e-5
)

// Network is the assembled classifier:
//
//	stem 3x3/s2 conv + norm + act
//	-> MicroBlock sequence (from the scaled stage table)
//	-> head 1x1 conv -> global average pool -> flatten
//	-> dropout -> linear -> logits
//
// Four stride-2 stages plus the stride-2 stem give a total spatial
// downsampling factor of 32; inputs whose sides are not compatible fail
// inside the first mismatched convolution.
type Network[B tensor.Backend] struct {
	cfg     Config
	stages  []StageConfig // scaled once, before block construction
	backend B

	stem     *nn.Sequential[B] // stemConv -> stemNorm -> activation
	stemConv *nn.Conv2D[B]
	stemNorm *nn.BatchNorm2d[B]

	blocks []*MicroBlock[B]

	head       *nn.Conv2D[B]
	pool       *nn.GlobalAvgPool2d[B]
	dropout    *nn.Dropout[B]
	classifier *nn.Linear[B]

	recipe Recipe
}

// New constructs the network described by cfg. All parameters are created
// here and immediately overwritten by the two-pass seeded initialization;
// afterwards the structure is fixed and only an external optimizer mutates
// the weights.
//
// Invalid configurations panic: a malformed topology is a construction-time
// contract violation, not a recoverable error.
func New[B tensor.Backend](cfg Config, backend B) *Network[B] {
	if err := cfg.validate(); err != nil {
		panic(err.Error())
	}

	// Width/depth rescaling happens exactly once, before any block exists.
	stages := scaleStages(DefaultStages(), cfg.WideFactor, cfg.DepthFactor)

	stemConv := nn.NewConv2D(3, stemChannels, 3, 3, 2, 1, 1, false, backend)
	stemNorm := nn.NewBatchNorm2d(stemChannels, bnMomentum, bnEps, backend)

	net := &Network[B]{
		cfg:     cfg,
		stages:  stages,
		backend: backend,

		stem:     nn.NewSequential[B](stemConv, stemNorm, newActivation[B](cfg.Activation)),
		stemConv: stemConv,
		stemNorm: stemNorm,

		pool:    nn.NewGlobalAvgPool2d[B](),
		dropout: nn.NewDropout[B](dropoutRate),

		recipe: DefaultRecipe(),
	}

	// Expand the stage table into blocks. The first block of a stage
	// carries the stage stride; the rest run at stride 1. in-channels
	// chains from block to block.
	inChannels := stemChannels
	for _, stage := range stages {
		stride := stage.Stride
		for i := 0; i < stage.NumBlocks; i++ {
			net.blocks = append(net.blocks, NewMicroBlock(
				inChannels, stage.OutChannels, stage.Expansion, stride,
				cfg.UseSE, cfg.Activation, backend,
			))
			inChannels = stage.OutChannels
			stride = 1
		}
	}

	net.head = nn.NewConv2D(inChannels, headChannels, 1, 1, 1, 0, 1, false, backend)
	net.classifier = nn.NewLinear[B](headChannels, cfg.NumClasses, backend)

	// Deterministic two-pass initialization; the override pass reaches the
	// block convolutions through their typed role handles.
	src := rand.NewSource(cfg.Seed)
	net.resetParameters(src)
	net.resetBlockParameters(src)

	return net
}

// Forward evaluates the network on a batch of images.
//
// Input: [batch, 3, height, width]. Output logits: [batch, NumClasses].
func (n *Network[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 4 || shape[1] != 3 {
		panic(fmt.Sprintf("micronet: expected input [N,3,H,W], got shape %v", shape))
	}

	out := n.stem.Forward(x)
	for _, block := range n.blocks {
		out = block.Forward(out)
	}
	out = n.head.Forward(out)
	out = n.pool.Forward(out)
	out = out.Reshape(shape[0], headChannels)
	return n.classifier.Forward(n.dropout.Forward(out))
}

// Parameters returns every trainable parameter in traversal order.
func (n *Network[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, n.stem.Parameters()...)
	for _, block := range n.blocks {
		params = append(params, block.Parameters()...)
	}
	params = append(params, n.head.Parameters()...)
	params = append(params, n.classifier.Parameters()...)
	return params
}

// NumParameters returns the total number of trainable scalars.
func (n *Network[B]) NumParameters() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.Tensor().NumElements()
	}
	return total
}

// Blocks returns the network's blocks in execution order.
func (n *Network[B]) Blocks() []*MicroBlock[B] {
	return n.blocks
}

// Stages returns the scaled stage table the blocks were built from.
func (n *Network[B]) Stages() []StageConfig {
	return append([]StageConfig(nil), n.stages...)
}

// Config returns the construction configuration.
func (n *Network[B]) Config() Config {
	return n.cfg
}

// NumClasses returns the classifier output size.
func (n *Network[B]) NumClasses() int {
	return n.cfg.NumClasses
}

// Recipe returns the attached training recipe.
func (n *Network[B]) Recipe() Recipe {
	return n.recipe
}

// SetRecipe replaces the attached training recipe.
func (n *Network[B]) SetRecipe(r Recipe) {
	n.recipe = r
}

// SetTraining switches the whole network between training and inference
// behavior (batch-norm statistics and dropout).
func (n *Network[B]) SetTraining(training bool) {
	n.stem.SetTraining(training)
	for _, block := range n.blocks {
		block.SetTraining(training)
	}
	n.dropout.SetTraining(training)
}

// convs returns every convolution in the network, in a fixed traversal
// order (stem, blocks, head).
func (n *Network[B]) convs() []*nn.Conv2D[B] {
	convs := []*nn.Conv2D[B]{n.stemConv}
	for _, block := range n.blocks {
		convs = append(convs, block.convs()...)
	}
	return append(convs, n.head)
}

// norms returns every normalization layer in the network.
func (n *Network[B]) norms() []*nn.BatchNorm2d[B] {
	norms := []*nn.BatchNorm2d[B]{n.stemNorm}
	for _, block := range n.blocks {
		norms = append(norms, block.norms()...)
	}
	return norms
}

// Summary returns a human-readable description of the architecture.
func (n *Network[B]) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "MicroNet(num_classes=%d, wide=%g, deep=%g, se=%v, activation=%s)\n",
		n.cfg.NumClasses, n.cfg.WideFactor, n.cfg.DepthFactor, n.cfg.UseSE, n.cfg.Activation)
	fmt.Fprintf(&sb, "  stem: %s\n", n.stemConv.String())
	for i, block := range n.blocks {
		fmt.Fprintf(&sb, "  block %2d: %s\n", i, block.String())
	}
	fmt.Fprintf(&sb, "  head: %s\n", n.head.String())
	fmt.Fprintf(&sb, "  classifier: %s\n", n.classifier.String())
	fmt.Fprintf(&sb, "  parameters: %d\n", n.NumParameters())
	return sb.String()
}
