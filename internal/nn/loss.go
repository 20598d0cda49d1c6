package nn

import (
	"fmt"
	"math"

	"github.com/micronet-ml/micronet/internal/tensor"
)

// CrossEntropyLoss combines log-softmax and negative log-likelihood.
//
// It consumes raw logits; models should not apply softmax themselves.
// This is the criterion named by the training recipe; the training loop that
// would minimize it lives outside this module.
type CrossEntropyLoss[B tensor.Backend] struct{}

// NewCrossEntropyLoss creates a new cross-entropy criterion.
func NewCrossEntropyLoss[B tensor.Backend]() *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{}
}

// Forward computes the mean cross-entropy over the batch.
//
// logits: [batch, num_classes], targets: one class index per sample.
// Uses the log-sum-exp trick for numerical stability.
func (c *CrossEntropyLoss[B]) Forward(logits *tensor.Tensor[float32, B], targets []int) float32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("cross_entropy: expected 2D logits [batch, classes], got shape %v", shape))
	}
	batch, classes := shape[0], shape[1]
	if len(targets) != batch {
		panic(fmt.Sprintf("cross_entropy: %d targets for batch of %d", len(targets), batch))
	}

	data := logits.Data()
	total := float64(0)

	for i := 0; i < batch; i++ {
		target := targets[i]
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("cross_entropy: target %d out of range [0, %d)", target, classes))
		}
		row := data[i*classes : (i+1)*classes]

		maxLogit := row[0]
		for _, v := range row[1:] {
			if v > maxLogit {
				maxLogit = v
			}
		}

		sumExp := float64(0)
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxLogit))
		}

		// -log softmax(target) = logsumexp - logit[target]
		total += math.Log(sumExp) + float64(maxLogit) - float64(row[target])
	}

	return float32(total / float64(batch))
}
