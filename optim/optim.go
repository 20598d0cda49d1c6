// Copyright 2026 MicroNet ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for optimizers and learning rate
// schedulers.
package optim

import (
	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/optim"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum, Nesterov
// acceleration and L2 weight decay.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:          0.1,
//	        Momentum:    0.9,
//	        WeightDecay: 1e-5,
//	        Nesterov:    true,
//	    },
//	)
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Schedulers

// MultiStepLR decays the learning rate by gamma at each milestone epoch.
type MultiStepLR = optim.MultiStepLR

// NewMultiStepLR creates a multi-step learning rate scheduler.
//
// Example:
//
//	scheduler := optim.NewMultiStepLR(optimizer, []int{100, 150}, 0.1)
//	for epoch := 0; epoch < epochs; epoch++ {
//	    scheduler.Step(epoch)
//	    // ... train one epoch ...
//	}
func NewMultiStepLR(opt Optimizer, milestones []int, gamma float32) *MultiStepLR {
	return optim.NewMultiStepLR(opt, milestones, gamma)
}
