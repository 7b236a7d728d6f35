package training

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

func TestFit_TooFewRowsAborts(t *testing.T) {
	dims := personalization.Dims{EmbedDim: 4, HiddenDim: 8}
	rng := rand.New(rand.NewSource(1))
	params := personalization.NewRandomParams(dims, 2, 2, rng)

	cfg := FitConfig{EmbedDim: 4, HiddenDim: 8, Epochs: 2, BatchSize: 4, LearningRate: 1e-3, MinTrainRows: 5}
	samples := []Sample{{UserIdx: 0, ContextIdx: 0, ActivityIdx: 0, Label: 2, Reward: 1.0}}

	ok := Fit(params, samples, cfg, rng)
	assert.False(t, ok)
}

func TestFit_ConvergesTowardPreferredActivity(t *testing.T) {
	dims := personalization.Dims{EmbedDim: 4, HiddenDim: 8}
	rng := rand.New(rand.NewSource(1))
	params := personalization.NewRandomParams(dims, 1, 2, rng)

	var samples []Sample
	for i := 0; i < 10; i++ {
		samples = append(samples,
			Sample{UserIdx: 0, ContextIdx: 0, ActivityIdx: 0, Label: 2, Reward: 1.0},
			Sample{UserIdx: 0, ContextIdx: 0, ActivityIdx: 1, Label: 0, Reward: -1.0},
		)
	}

	cfg := FitConfig{EmbedDim: 4, HiddenDim: 8, Epochs: 40, BatchSize: 4, LearningRate: 3e-2, MinTrainRows: 5}
	ok := Fit(params, samples, cfg, rng)
	require.True(t, ok)

	m := personalization.New(dims)
	m.Publish(params, &personalization.Indices{
		UserIndex:       map[string]int{"u": 0},
		ActivityIndex:   map[string]int{"A": 0, "B": 1},
		ActivityByIndex: []string{"A", "B"},
	})

	rewardA, okA := m.Score("u", personalization.ContextMorning, "A")
	rewardB, okB := m.Score("u", personalization.ContextMorning, "B")
	require.True(t, okA)
	require.True(t, okB)
	assert.Greater(t, rewardA, rewardB)
}
