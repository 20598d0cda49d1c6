// Copyright 2026 MicroNet ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for neural network building blocks.
package nn

import (
	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Stateful is implemented by modules whose behavior differs between training
// and evaluation (batch norm, dropout).
type Stateful = nn.Stateful

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(640, 1000, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Conv2D represents a 2D convolutional layer with optional grouping.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer.
//
// groups=1 is a dense convolution; groups=inChannels with
// outChannels=inChannels is a depthwise convolution.
//
// Example:
//
//	backend := cpu.New()
//	conv := nn.NewConv2D(3, 32, 3, 3, 2, 1, 1, false, backend)
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding, groups int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, groups, useBias, backend)
}

// BatchNorm2d normalizes activations per channel over the batch and spatial
// dimensions, with learnable scale and shift.
type BatchNorm2d[B tensor.Backend] = nn.BatchNorm2d[B]

// NewBatchNorm2d creates a new batch normalization layer for [N, C, H, W]
// inputs with C = numFeatures channels.
func NewBatchNorm2d[B tensor.Backend](numFeatures int, momentum, eps float32, backend B) *BatchNorm2d[B] {
	return nn.NewBatchNorm2d(numFeatures, momentum, eps, backend)
}

// GlobalAvgPool2d averages each channel over its spatial extent, reducing
// [N, C, H, W] to [N, C, 1, 1].
type GlobalAvgPool2d[B tensor.Backend] = nn.GlobalAvgPool2d[B]

// NewGlobalAvgPool2d creates a global average pooling layer.
func NewGlobalAvgPool2d[B tensor.Backend]() *GlobalAvgPool2d[B] {
	return nn.NewGlobalAvgPool2d[B]()
}

// Dropout randomly zeroes elements during training with probability p,
// scaling the survivors by 1/(1-p). Identity in evaluation mode.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a dropout layer. Panics unless 0 <= p < 1.
func NewDropout[B tensor.Backend](p float32) *Dropout[B] {
	return nn.NewDropout[B](p)
}

// Sequential chains modules, feeding each output into the next module.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Activations

// ReLU is the rectified linear unit: max(0, x).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// ReLU6 is ReLU clamped to 6: min(max(0, x), 6).
type ReLU6[B tensor.Backend] = nn.ReLU6[B]

// NewReLU6 creates a ReLU6 activation module.
func NewReLU6[B tensor.Backend]() *ReLU6[B] {
	return nn.NewReLU6[B]()
}

// HSwish is the hard swish activation: x * clamp(x+3, 0, 6) / 6.
type HSwish[B tensor.Backend] = nn.HSwish[B]

// NewHSwish creates a hard swish activation module.
func NewHSwish[B tensor.Backend]() *HSwish[B] {
	return nn.NewHSwish[B]()
}

// Sigmoid is the logistic function: 1 / (1 + exp(-x)).
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Loss

// CrossEntropyLoss computes softmax cross entropy between logits and integer
// class targets.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// NewCrossEntropyLoss creates a cross entropy loss module.
func NewCrossEntropyLoss[B tensor.Backend]() *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss[B]()
}
