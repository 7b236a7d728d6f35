// Package personalization implements the contextual 3-class recommendation
// scorer (spec §4.E): user/context embeddings feeding an affine-ReLU-affine
// network whose softmax output is contracted against the reward vector
// (-1, 0.1, 1.0).
package personalization

import (
	"math"
	"math/rand"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"
)

// Dims holds the network's fixed dimensions (§4.E).
type Dims struct {
	EmbedDim  int // d
	HiddenDim int // H
}

// rewardWeights is the fixed (-1, 0.1, 1.0) contraction vector for
// (reject, postpone, accept).
var rewardWeights = [3]float64{-1.0, 0.1, 1.0}

// Params are one trained (or freshly initialised) snapshot of network weights.
type Params struct {
	UserEmbed *mat.Dense // [U, d]
	CtxEmbed  *mat.Dense // [C, d]
	W1        *mat.Dense // [2d, H]
	B1        *mat.VecDense
	W2        *mat.Dense // [H, A*3]
	B2        *mat.VecDense
}

// Indices maps stable string keys to tensor axis positions. Rebuilt by the
// Training Loop and published atomically alongside Params.
type Indices struct {
	UserIndex       map[string]int
	ActivityIndex   map[string]int
	ActivityByIndex []string
}

// snapshot is one atomically-published (Params, Indices, readiness) triple.
type snapshot struct {
	params  *Params
	indices *Indices
	ready   bool
}

// Model is the scorer. All mutation happens via Publish; Score takes a local
// reference so concurrent scorers never observe a torn update.
type Model struct {
	dims    Dims
	current atomic.Pointer[snapshot]
}

// New builds a Model that starts not-ready: Score always falls back to COLD
// until the first Publish.
func New(dims Dims) *Model {
	m := &Model{dims: dims}
	m.current.Store(&snapshot{ready: false})
	return m
}

// NewRandomParams allocates embeddings/weights with small random values,
// the state a freshly initialised (untrained, or decomposition-seeded) model
// starts from.
func NewRandomParams(dims Dims, numUsers, numActivities int, rng *rand.Rand) *Params {
	d, h := dims.EmbedDim, dims.HiddenDim
	a3 := numActivities * 3

	newDense := func(r, c int) *mat.Dense {
		data := make([]float64, r*c)
		for i := range data {
			data[i] = (rng.Float64()*2 - 1) * 0.1
		}
		return mat.NewDense(r, c, data)
	}

	return &Params{
		UserEmbed: newDense(numUsers, d),
		CtxEmbed:  newDense(NumContexts, d),
		W1:        newDense(2*d, h),
		B1:        mat.NewVecDense(h, make([]float64, h)),
		W2:        newDense(h, a3),
		B2:        mat.NewVecDense(a3, make([]float64, a3)),
	}
}

// Publish atomically swaps in a new trained snapshot.
func (m *Model) Publish(params *Params, indices *Indices) {
	m.current.Store(&snapshot{params: params, indices: indices, ready: true})
}

// Ready reports whether a trained snapshot is currently published.
func (m *Model) Ready() bool {
	return m.current.Load().ready
}

// IndexSizes reports the current user/activity index sizes for model_status.
func (m *Model) IndexSizes() (users, activities int) {
	snap := m.current.Load()
	if snap.indices == nil {
		return 0, 0
	}
	return len(snap.indices.UserIndex), len(snap.indices.ActivityByIndex)
}

// Score returns the expected reward for (userID, ctx, activityName) plus
// whether the scoring used the trained model (false => caller must fall back
// to COLD/uniform selection per §4.E / invariant 6).
func (m *Model) Score(userID string, ctx Context, activityName string) (reward float64, scored bool) {
	snap := m.current.Load()
	if !snap.ready {
		return 0, false
	}

	uIdx, ok := snap.indices.UserIndex[userID]
	if !ok {
		return 0, false
	}
	aIdx, ok := snap.indices.ActivityIndex[activityName]
	if !ok {
		return 0, false
	}

	rewards := forward(snap.params, m.dims, uIdx, int(ctx), len(snap.indices.ActivityByIndex))
	return rewards[aIdx], true
}

// forward runs the affine-ReLU-affine-softmax network (dropout disabled: this
// path is inference-only) and returns the per-activity expected reward.
func forward(p *Params, dims Dims, userIdx, ctxIdx, numActivities int) []float64 {
	d := dims.EmbedDim
	x := mat.NewVecDense(2*d, nil)
	for i := 0; i < d; i++ {
		x.SetVec(i, p.UserEmbed.At(userIdx, i))
		x.SetVec(d+i, p.CtxEmbed.At(ctxIdx, i))
	}

	h := mat.NewVecDense(dims.HiddenDim, nil)
	h.MulVec(p.W1.T(), x)
	h.AddVec(h, p.B1)
	relu(h)

	logits := mat.NewVecDense(numActivities*3, nil)
	logits.MulVec(p.W2.T(), h)
	logits.AddVec(logits, p.B2)

	rewards := make([]float64, numActivities)
	for a := 0; a < numActivities; a++ {
		probs := softmax3(logits.AtVec(a*3), logits.AtVec(a*3+1), logits.AtVec(a*3+2))
		rewards[a] = probs[0]*rewardWeights[0] + probs[1]*rewardWeights[1] + probs[2]*rewardWeights[2]
	}
	return rewards
}

func relu(v *mat.VecDense) {
	for i := 0; i < v.Len(); i++ {
		if v.AtVec(i) < 0 {
			v.SetVec(i, 0)
		}
	}
}

func softmax3(a, b, c float64) [3]float64 {
	max := math.Max(a, math.Max(b, c))
	ea, eb, ec := math.Exp(a-max), math.Exp(b-max), math.Exp(c-max)
	sum := ea + eb + ec
	return [3]float64{ea / sum, eb / sum, ec / sum}
}
