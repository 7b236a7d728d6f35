// Package training implements the interaction-tensor builder, CP-decomposition
// initialiser, and Adam-based fit loop (spec §4.F).
package training

import (
	"sort"

	"github.com/ClaraBenejam/PAWSture/internal/catalog"
	"github.com/ClaraBenejam/PAWSture/internal/domain/repository"
	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

// Sample is one (user, context, activity) -> (label, reward) training example
// derived from a Response⋈Recommendation row.
type Sample struct {
	UserIdx     int
	ContextIdx  int
	ActivityIdx int
	Label       int // 0=reject, 1=postpone, 2=accept
	Reward      float64
}

// Tensor is the dense T[U,C,A] reward grid, most-recent-wins per cell.
type Tensor struct {
	Users, Contexts, Activities int
	data                        []float64 // row-major U*C*A
	set                         []bool
}

func newTensor(users, activities int) *Tensor {
	n := users * personalization.NumContexts * activities
	return &Tensor{
		Users: users, Contexts: personalization.NumContexts, Activities: activities,
		data: make([]float64, n),
		set:  make([]bool, n),
	}
}

func (t *Tensor) index(u, c, a int) int {
	return (u*t.Contexts+c)*t.Activities + a
}

// At returns the cell's reward (0 if never set).
func (t *Tensor) At(u, c, a int) float64 {
	return t.data[t.index(u, c, a)]
}

func (t *Tensor) set3(u, c, a int, reward float64) {
	t.data[t.index(u, c, a)] = reward
	t.set[t.index(u, c, a)] = true
}

// Build derives the interaction tensor, the stable axis indices, and the
// per-sample (label, reward) training set from the gateway's feedback history.
// The activity index always includes the full catalog so untrained activities
// still have an embedding slot.
func Build(rows []repository.TrainingRow) (*Tensor, *personalization.Indices, []Sample) {
	activityNames := catalog.Names()
	sort.Strings(activityNames)
	activityIndex := make(map[string]int, len(activityNames))
	for i, name := range activityNames {
		activityIndex[name] = i
	}

	userNames := make([]string, 0)
	userIndex := make(map[string]int)
	for _, r := range rows {
		if _, ok := userIndex[r.TriggeredUserID]; !ok {
			userIndex[r.TriggeredUserID] = len(userNames)
			userNames = append(userNames, r.TriggeredUserID)
		}
	}
	sort.Strings(userNames)
	for i, name := range userNames {
		userIndex[name] = i
	}

	tensor := newTensor(len(userNames), len(activityNames))

	samples := make([]Sample, 0, len(rows))
	// Sort by RespondedAt ascending so "most recent reward per cell" is well
	// defined by later overwrite.
	sorted := append([]repository.TrainingRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RespondedAt.Before(sorted[j].RespondedAt) })

	for _, r := range sorted {
		aIdx, ok := activityIndex[r.ActivityName]
		if !ok {
			continue
		}
		uIdx := userIndex[r.TriggeredUserID]
		cIdx := int(personalization.ContextFromTime(r.RespondedAt))

		reward := r.Response.Reward()
		tensor.set3(uIdx, cIdx, aIdx, reward)

		samples = append(samples, Sample{
			UserIdx: uIdx, ContextIdx: cIdx, ActivityIdx: aIdx,
			Label: r.Response.Label(), Reward: reward,
		})
	}

	indices := &personalization.Indices{
		UserIndex:       userIndex,
		ActivityIndex:   activityIndex,
		ActivityByIndex: activityNames,
	}
	return tensor, indices, samples
}
