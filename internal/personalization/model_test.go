package personalization

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClaraBenejam/PAWSture/internal/domain/model"
)

var testDims = Dims{EmbedDim: 8, HiddenDim: 32}

func TestContextFromTime(t *testing.T) {
	morning := time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local)
	afternoon := time.Date(2026, 1, 1, 14, 0, 0, 0, time.Local)
	evening := time.Date(2026, 1, 1, 20, 0, 0, 0, time.Local)

	assert.Equal(t, ContextMorning, ContextFromTime(morning))
	assert.Equal(t, ContextAfternoon, ContextFromTime(afternoon))
	assert.Equal(t, ContextEvening, ContextFromTime(evening))
}

func TestScore_NotReadyFallsBack(t *testing.T) {
	m := New(testDims)
	_, scored := m.Score("1", ContextMorning, "A")
	assert.False(t, scored)
	assert.False(t, m.Ready())
}

func TestScore_UnknownUserFallsBack(t *testing.T) {
	m := New(testDims)
	rng := rand.New(rand.NewSource(1))
	params := NewRandomParams(testDims, 1, 2, rng)
	m.Publish(params, &Indices{
		UserIndex:       map[string]int{"1": 0},
		ActivityIndex:   map[string]int{"A": 0, "B": 1},
		ActivityByIndex: []string{"A", "B"},
	})

	_, scored := m.Score("unknown", ContextMorning, "A")
	assert.False(t, scored)

	_, scored = m.Score("1", ContextMorning, "A")
	assert.True(t, scored)
	assert.True(t, m.Ready())
}

func TestPick_ColdFallbackIsUniform(t *testing.T) {
	m := New(testDims)
	candidates := []model.Activity{{Name: "A"}, {Name: "B"}}
	rng := rand.New(rand.NewSource(42))

	act, source := m.Pick("1", ContextMorning, candidates, rng)
	assert.Equal(t, model.SourceCold, source)
	assert.Contains(t, []string{"A", "B"}, act.Name)
}

func TestPick_TrainedModelLabelsAI(t *testing.T) {
	m := New(testDims)
	rng := rand.New(rand.NewSource(7))
	params := NewRandomParams(testDims, 1, 2, rng)
	m.Publish(params, &Indices{
		UserIndex:       map[string]int{"1": 0},
		ActivityIndex:   map[string]int{"A": 0, "B": 1},
		ActivityByIndex: []string{"A", "B"},
	})

	candidates := []model.Activity{{Name: "A"}, {Name: "B"}}
	act, source := m.Pick("1", ContextMorning, candidates, rng)
	assert.Equal(t, model.SourceAI, source)
	assert.Contains(t, []string{"A", "B"}, act.Name)
}

func TestIndexSizes(t *testing.T) {
	m := New(testDims)
	users, activities := m.IndexSizes()
	assert.Equal(t, 0, users)
	assert.Equal(t, 0, activities)

	rng := rand.New(rand.NewSource(3))
	params := NewRandomParams(testDims, 2, 3, rng)
	m.Publish(params, &Indices{
		UserIndex:       map[string]int{"1": 0, "2": 1},
		ActivityIndex:   map[string]int{"A": 0, "B": 1, "C": 2},
		ActivityByIndex: []string{"A", "B", "C"},
	})
	users, activities = m.IndexSizes()
	assert.Equal(t, 2, users)
	assert.Equal(t, 3, activities)
}

func TestForward_RewardWithinUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	params := NewRandomParams(testDims, 1, 1, rng)
	rewards := forward(params, testDims, 0, 0, 1)
	require.Len(t, rewards, 1)
	assert.GreaterOrEqual(t, rewards[0], -1.0)
	assert.LessOrEqual(t, rewards[0], 1.0)
}
