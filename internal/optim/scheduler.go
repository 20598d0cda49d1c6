package optim

import (
	"fmt"
	"sort"
)

// MultiStepLR decays an optimizer's learning rate by gamma at each milestone
// epoch: lr(epoch) = base_lr * gamma^(number of milestones <= epoch).
type MultiStepLR struct {
	opt        Optimizer
	milestones []int
	gamma      float32
	baseLR     float32
}

// NewMultiStepLR creates a scheduler over opt. Milestones are copied and
// sorted; the optimizer's learning rate at construction time is the base.
func NewMultiStepLR(opt Optimizer, milestones []int, gamma float32) *MultiStepLR {
	if gamma <= 0 {
		panic(fmt.Sprintf("multistep_lr: invalid gamma %v", gamma))
	}
	ms := append([]int(nil), milestones...)
	sort.Ints(ms)

	return &MultiStepLR{
		opt:        opt,
		milestones: ms,
		gamma:      gamma,
		baseLR:     opt.LR(),
	}
}

// Step sets the optimizer's learning rate for the given epoch (0-based).
func (m *MultiStepLR) Step(epoch int) {
	lr := m.baseLR
	for _, milestone := range m.milestones {
		if epoch < milestone {
			break
		}
		lr *= m.gamma
	}
	m.opt.SetLR(lr)
}

// Milestones returns the sorted milestone epochs.
func (m *MultiStepLR) Milestones() []int {
	return append([]int(nil), m.milestones...)
}

// Gamma returns the decay factor.
func (m *MultiStepLR) Gamma() float32 {
	return m.gamma
}
