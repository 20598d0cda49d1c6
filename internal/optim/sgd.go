package optim

import (
	"github.com/micronet-ml/micronet/internal/nn"
	"github.com/micronet-ml/micronet/internal/tensor"
)

// SGD implements stochastic gradient descent with momentum, optional
// Nesterov acceleration and decoupled L2 weight decay.
//
// Update rule (g = gradient + weight_decay * param):
//
//	v = momentum * v + g
//	param -= lr * v            (classic momentum)
//	param -= lr * (g + momentum * v)   (nesterov)
//
// Example:
//
//	sgd := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:          0.1,
//	    Momentum:    0.9,
//	    WeightDecay: 1e-5,
//	    Nesterov:    true,
//	})
type SGD[B tensor.Backend] struct {
	params      []*nn.Parameter[B]
	lr          float32
	momentum    float32
	weightDecay float32
	nesterov    bool
	velocities  map[*nn.Parameter[B]][]float32
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR          float32 // Learning rate (default: 0.01)
	Momentum    float32 // Momentum factor, range [0, 1)
	WeightDecay float32 // L2 penalty coefficient
	Nesterov    bool    // Nesterov accelerated gradient
}

// NewSGD creates a new SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD[B]{
		params:      params,
		lr:          config.LR,
		momentum:    config.Momentum,
		weightDecay: config.WeightDecay,
		nesterov:    config.Nesterov,
		velocities:  make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one update to every parameter that carries a gradient.
func (s *SGD[B]) Step() {
	for _, param := range s.params {
		grad := param.Grad()
		if grad == nil {
			continue
		}

		pData := param.Tensor().Data()
		gData := grad.Data()
		if len(gData) != len(pData) {
			panic("sgd: gradient size does not match parameter size")
		}

		if s.momentum == 0 {
			for i := range pData {
				g := gData[i] + s.weightDecay*pData[i]
				pData[i] -= s.lr * g
			}
			continue
		}

		v, ok := s.velocities[param]
		if !ok {
			v = make([]float32, len(pData))
			s.velocities[param] = v
		}

		for i := range pData {
			g := gData[i] + s.weightDecay*pData[i]
			v[i] = s.momentum*v[i] + g
			if s.nesterov {
				pData[i] -= s.lr * (g + s.momentum*v[i])
			} else {
				pData[i] -= s.lr * v[i]
			}
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// LR returns the current learning rate.
func (s *SGD[B]) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// Momentum returns the momentum factor.
func (s *SGD[B]) Momentum() float32 {
	return s.momentum
}

// WeightDecay returns the L2 penalty coefficient.
func (s *SGD[B]) WeightDecay() float32 {
	return s.weightDecay
}

// Nesterov reports whether Nesterov acceleration is enabled.
func (s *SGD[B]) Nesterov() bool {
	return s.nesterov
}
