package micronet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/optim"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// Criterion names a loss function.
type Criterion string

// Supported criteria.
const (
	CriterionCrossEntropy Criterion = "cross_entropy"
)

// Recipe is the training configuration attached to a network. It is plain
// data for an external training loop: nothing in this package executes an
// epoch. Device is an explicit field — there is no environment probing.
type Recipe struct {
	BatchSize   int       `yaml:"batch_size"`
	LR          float32   `yaml:"lr"`
	Momentum    float32   `yaml:"momentum"`
	WeightDecay float32   `yaml:"weight_decay"`
	Gamma       float32   `yaml:"gamma"`
	Milestones  []int     `yaml:"milestones"`
	Epochs      int       `yaml:"epochs"`
	Nesterov    bool      `yaml:"nesterov"`
	Device      string    `yaml:"device"`
	Criterion   Criterion `yaml:"criterion"`
}

// DefaultRecipe returns the reference ImageNet training configuration.
// Every call builds a fresh value — the milestones slice is never shared
// between recipes.
func DefaultRecipe() Recipe {
	return Recipe{
		BatchSize:   128,
		LR:          0.1,
		Momentum:    0.9,
		WeightDecay: 1e-5,
		Gamma:       0.1,
		Milestones:  []int{100, 150},
		Epochs:      200,
		Nesterov:    true,
		Device:      "cpu",
		Criterion:   CriterionCrossEntropy,
	}
}

// Validate checks the recipe fields for an external training loop.
func (r Recipe) Validate() error {
	if r.BatchSize < 1 {
		return fmt.Errorf("recipe: batch_size must be >= 1, got %d", r.BatchSize)
	}
	if r.LR <= 0 {
		return fmt.Errorf("recipe: lr must be > 0, got %g", r.LR)
	}
	if r.Momentum < 0 || r.Momentum >= 1 {
		return fmt.Errorf("recipe: momentum must be in [0, 1), got %g", r.Momentum)
	}
	if r.Epochs < 1 {
		return fmt.Errorf("recipe: epochs must be >= 1, got %d", r.Epochs)
	}
	if r.Device == "" {
		return fmt.Errorf("recipe: device must be set explicitly")
	}
	if r.Criterion != CriterionCrossEntropy {
		return fmt.Errorf("recipe: unknown criterion %q", r.Criterion)
	}
	return nil
}

// LoadRecipe reads a recipe from a YAML file.
func LoadRecipe(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Recipe{}, fmt.Errorf("recipe: read %s: %w", path, err)
	}

	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Recipe{}, fmt.Errorf("recipe: parse %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	return r, nil
}

// Save writes the recipe to a YAML file.
func (r Recipe) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("recipe: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("recipe: write %s: %w", path, err)
	}
	return nil
}

// NewOptimizer builds the SGD optimizer the recipe describes over the given
// parameters.
func NewOptimizer[B tensor.Backend](r Recipe, params []*nn.Parameter[B]) *optim.SGD[B] {
	return optim.NewSGD(params, optim.SGDConfig{
		LR:          r.LR,
		Momentum:    r.Momentum,
		WeightDecay: r.WeightDecay,
		Nesterov:    r.Nesterov,
	})
}

// NewScheduler builds the multi-step LR scheduler the recipe describes.
func NewScheduler(r Recipe, opt optim.Optimizer) *optim.MultiStepLR {
	return optim.NewMultiStepLR(opt, r.Milestones, r.Gamma)
}

// NewCriterion builds the loss function named by the recipe.
func NewCriterion[B tensor.Backend](r Recipe) *nn.CrossEntropyLoss[B] {
	switch r.Criterion {
	case CriterionCrossEntropy:
		return nn.NewCrossEntropyLoss[B]()
	default:
		panic(fmt.Sprintf("recipe: unknown criterion %q", r.Criterion))
	}
}
