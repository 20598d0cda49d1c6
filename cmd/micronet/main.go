// Package main provides the MicroNet CLI.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/micronet-ml/micronet/backend/cpu"
	"github.com/micronet-ml/micronet/micronet"
	"github.com/micronet-ml/micronet/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("MicroNet %s\n", version)
		return
	}

	classes := flag.Int("classes", 1000, "Number of output classes")
	wide := flag.Float64("wide", 1.0, "Width multiplier for stage channel counts")
	depth := flag.Float64("depth", 1.0, "Depth multiplier for stride-1 stage block counts")
	useSE := flag.Bool("se", true, "Enable squeeze-excitation gates")
	act := flag.String("act", "HSwish", "Activation: ReLU or HSwish")
	seed := flag.Uint64("seed", 42, "Seed for parameter initialization")
	recipePath := flag.String("recipe", "", "Optional YAML training recipe to load")
	smoke := flag.Bool("smoke", false, "Run a single forward pass on a random 224x224 batch")
	flag.Parse()

	backend := cpu.New()
	net := micronet.New(micronet.Config{
		NumClasses:  *classes,
		WideFactor:  *wide,
		DepthFactor: *depth,
		UseSE:       *useSE,
		Activation:  micronet.ActivationKind(*act),
		Seed:        *seed,
	}, backend)

	if *recipePath != "" {
		recipe, err := micronet.LoadRecipe(*recipePath)
		if err != nil {
			log.Fatalf("load recipe: %v", err)
		}
		net.SetRecipe(recipe)
	}

	fmt.Print(net.Summary())
	fmt.Printf("Parameters: %d\n", net.NumParameters())

	recipe := net.Recipe()
	fmt.Printf("Recipe: batch=%d lr=%g momentum=%g wd=%g epochs=%d milestones=%v device=%s\n",
		recipe.BatchSize, recipe.LR, recipe.Momentum, recipe.WeightDecay,
		recipe.Epochs, recipe.Milestones, recipe.Device)

	if *smoke {
		net.SetTraining(false)
		x := tensor.Randn[float32](tensor.Shape{1, 3, 224, 224}, backend)
		logits := net.Forward(x)
		fmt.Printf("Forward pass: %v -> %v\n", x.Shape(), logits.Shape())
	}
}
