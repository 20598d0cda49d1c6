package micronet

import (
	"fmt"
	"math"

	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// ActivationKind selects the nonlinearity used in the stem and all blocks.
type ActivationKind string

// Supported activations.
const (
	ActivationReLU   ActivationKind = "ReLU"
	ActivationHSwish ActivationKind = "HSwish"
)

// Config describes a network to construct.
type Config struct {
	// NumClasses is the size of the classifier output (>= 1).
	NumClasses int

	// WideFactor scales every stage's output channel count (> 0).
	WideFactor float64

	// DepthFactor scales the block count of stride-1 stages (> 0).
	// Downsampling stages keep their configured depth.
	DepthFactor float64

	// UseSE enables the squeeze-excitation gate in every block.
	UseSE bool

	// Activation is applied uniformly to the stem and all blocks.
	Activation ActivationKind

	// Seed drives the deterministic parameter initialization pass.
	Seed uint64
}

func (c Config) validate() error {
	if c.NumClasses < 1 {
		return fmt.Errorf("micronet: num_classes must be >= 1, got %d", c.NumClasses)
	}
	if c.WideFactor <= 0 {
		return fmt.Errorf("micronet: wide_factor must be > 0, got %g", c.WideFactor)
	}
	if c.DepthFactor <= 0 {
		return fmt.Errorf("micronet: depth_factor must be > 0, got %g", c.DepthFactor)
	}
	if c.Activation != ActivationReLU && c.Activation != ActivationHSwish {
		return fmt.Errorf("micronet: unknown activation %q", c.Activation)
	}
	return nil
}

// newActivation builds the module for the configured activation kind.
func newActivation[B tensor.Backend](kind ActivationKind) nn.Module[B] {
	switch kind {
	case ActivationHSwish:
		return nn.NewHSwish[B]()
	default:
		return nn.NewReLU[B]()
	}
}

// StageConfig describes one stage of the network: NumBlocks consecutive
// MicroBlocks sharing an expansion ratio and output width. Only the first
// block of a stage applies the stage stride; the rest run at stride 1.
type StageConfig struct {
	Expansion   float64
	OutChannels int
	NumBlocks   int
	Stride      int // 1 or 2
}

// DefaultStages returns a fresh copy of the ImageNet depth/width profile.
// Four of the eleven stages downsample; together with the stride-2 stem the
// total spatial reduction is 32x.
func DefaultStages() []StageConfig {
	return []StageConfig{
		{1, 16, 2, 1},
		{3, 24, 1, 2},
		{3, 24, 2, 1},
		{3, 40, 1, 2},
		{3, 40, 2, 1},
		{3, 80, 1, 2},
		{3, 80, 2, 1},
		{3, 96, 2, 1},
		{3, 192, 1, 2},
		{3, 192, 3, 1},
		{3, 320, 1, 1},
	}
}

// scaleStages applies the width and depth multipliers to a stage table,
// returning a new table. Channel counts scale by wide for every stage;
// block counts scale by depth only for stride-1 stages, so downsampling
// stages keep a fixed cost. Both scalings truncate to integers.
//
// Called exactly once per network, before any block is constructed.
func scaleStages(stages []StageConfig, wide, depth float64) []StageConfig {
	scaled := make([]StageConfig, len(stages))
	for i, s := range stages {
		s.OutChannels = int(float64(s.OutChannels) * wide)
		if s.Stride == 1 {
			s.NumBlocks = int(float64(s.NumBlocks) * depth)
		}
		if s.OutChannels < 1 {
			panic(fmt.Sprintf("micronet: wide_factor %g shrinks stage %d to %d channels", wide, i, s.OutChannels))
		}
		if s.NumBlocks < 1 {
			panic(fmt.Sprintf("micronet: depth_factor %g shrinks stage %d to %d blocks", depth, i, s.NumBlocks))
		}
		if s.Stride != 1 && s.Stride != 2 {
			panic(fmt.Sprintf("micronet: stage %d has invalid stride %d", i, s.Stride))
		}
		scaled[i] = s
	}
	return scaled
}

// roundToInt rounds a positive rational channel count to the nearest integer.
func roundToInt(v float64) int {
	return int(math.Round(v))
}
