package micronet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micronet-ml/micronet/internal/backend/cpu"
)

// TestDefaultRecipe tests the reference training configuration.
func TestDefaultRecipe(t *testing.T) {
	r := DefaultRecipe()

	assert.Equal(t, 128, r.BatchSize)
	assert.Equal(t, float32(0.1), r.LR)
	assert.Equal(t, float32(0.9), r.Momentum)
	assert.Equal(t, float32(1e-5), r.WeightDecay)
	assert.Equal(t, float32(0.1), r.Gamma)
	assert.Equal(t, []int{100, 150}, r.Milestones)
	assert.Equal(t, 200, r.Epochs)
	assert.True(t, r.Nesterov)
	assert.Equal(t, "cpu", r.Device)
	assert.Equal(t, CriterionCrossEntropy, r.Criterion)

	require.NoError(t, r.Validate())
}

// TestDefaultRecipe_FreshMilestones tests that recipes never share the
// milestones slice.
func TestDefaultRecipe_FreshMilestones(t *testing.T) {
	a := DefaultRecipe()
	b := DefaultRecipe()

	a.Milestones[0] = 999
	assert.Equal(t, 100, b.Milestones[0], "milestones slice must not be shared between recipes")
}

// TestRecipe_PerNetwork tests that each network carries its own mutable
// recipe.
func TestRecipe_PerNetwork(t *testing.T) {
	backend := cpu.New()

	a := New(testConfig(), backend)
	b := New(testConfig(), backend)

	recipe := a.Recipe()
	recipe.LR = 0.5
	recipe.Milestones[0] = 7
	a.SetRecipe(recipe)

	assert.Equal(t, float32(0.5), a.Recipe().LR)
	assert.Equal(t, float32(0.1), b.Recipe().LR, "recipes must be per-network")
	assert.Equal(t, 100, b.Recipe().Milestones[0])
}

// TestRecipe_Validate tests the field contracts.
func TestRecipe_Validate(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*Recipe)
	}{
		{"batch_size", func(r *Recipe) { r.BatchSize = 0 }},
		{"lr", func(r *Recipe) { r.LR = 0 }},
		{"momentum", func(r *Recipe) { r.Momentum = 1 }},
		{"epochs", func(r *Recipe) { r.Epochs = 0 }},
		{"device", func(r *Recipe) { r.Device = "" }},
		{"criterion", func(r *Recipe) { r.Criterion = "mse" }},
	}

	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			r := DefaultRecipe()
			tc.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

// TestRecipe_SaveLoad tests the YAML round trip.
func TestRecipe_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")

	original := DefaultRecipe()
	original.LR = 0.05
	original.Milestones = []int{30, 60, 90}
	original.Epochs = 100

	require.NoError(t, original.Save(path))

	loaded, err := LoadRecipe(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

// TestLoadRecipe_Errors tests missing and invalid files.
func TestLoadRecipe_Errors(t *testing.T) {
	_, err := LoadRecipe(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, Recipe{}.Save(bad))
	_, err = LoadRecipe(bad)
	assert.Error(t, err, "a zero recipe fails validation on load")
}

// TestRecipe_BuildsTrainingObjects tests the optimizer/scheduler/criterion
// wiring an external training loop would use.
func TestRecipe_BuildsTrainingObjects(t *testing.T) {
	backend := cpu.New()

	net := New(testConfig(), backend)
	recipe := net.Recipe()

	opt := NewOptimizer(recipe, net.Parameters())
	require.NotNil(t, opt)
	assert.Equal(t, recipe.LR, opt.LR())
	assert.Equal(t, recipe.Momentum, opt.Momentum())
	assert.Equal(t, recipe.WeightDecay, opt.WeightDecay())
	assert.True(t, opt.Nesterov())

	sched := NewScheduler(recipe, opt)
	require.NotNil(t, sched)
	sched.Step(recipe.Milestones[0])
	assert.InDelta(t, float64(recipe.LR*recipe.Gamma), float64(opt.LR()), 1e-9)

	criterion := NewCriterion[*cpu.CPUBackend](recipe)
	require.NotNil(t, criterion)
}
