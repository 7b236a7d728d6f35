package training

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/ClaraBenejam/PAWSture/internal/personalization"
)

// FitConfig parameterises the fit loop (spec §4.F step 5).
type FitConfig struct {
	EmbedDim     int
	HiddenDim    int
	Epochs       int
	BatchSize    int
	LearningRate float64
	MinTrainRows int
}

// adamParam tracks one flattened parameter's Adam moment state.
type adamParam struct {
	data []float64
	m, v []float64
}

func newAdamParam(d *mat.Dense) *adamParam {
	raw := d.RawMatrix().Data
	return &adamParam{data: raw, m: make([]float64, len(raw)), v: make([]float64, len(raw))}
}

func newAdamVec(v *mat.VecDense) *adamParam {
	raw := v.RawVector().Data
	return &adamParam{data: raw, m: make([]float64, len(raw)), v: make([]float64, len(raw))}
}

const (
	adamBeta1   = 0.9
	adamBeta2   = 0.999
	adamEpsilon = 1e-8
)

func (p *adamParam) step(grad []float64, lr float64, t int) {
	beta1t := math.Pow(adamBeta1, float64(t))
	beta2t := math.Pow(adamBeta2, float64(t))
	for i, g := range grad {
		p.m[i] = adamBeta1*p.m[i] + (1-adamBeta1)*g
		p.v[i] = adamBeta2*p.v[i] + (1-adamBeta2)*g*g
		mHat := p.m[i] / (1 - beta1t)
		vHat := p.v[i] / (1 - beta2t)
		p.data[i] -= lr * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

// Fit trains params in place over samples for cfg.Epochs mini-batch passes
// using Adam. Returns false without mutating params if there are fewer than
// cfg.MinTrainRows samples (§4.F step 5, §8 invariant 7).
func Fit(params *personalization.Params, samples []Sample, cfg FitConfig, rng *rand.Rand) bool {
	if len(samples) < cfg.MinTrainRows {
		return false
	}

	userAdam := newAdamParam(params.UserEmbed)
	ctxAdam := newAdamParam(params.CtxEmbed)
	w1Adam := newAdamParam(params.W1)
	b1Adam := newAdamVec(params.B1)
	w2Adam := newAdamParam(params.W2)
	b2Adam := newAdamVec(params.B2)

	d := cfg.EmbedDim
	h := cfg.HiddenDim

	step := 0
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		shuffled := append([]Sample(nil), samples...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		for start := 0; start < len(shuffled); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(shuffled) {
				end = len(shuffled)
			}
			batch := shuffled[start:end]
			step++

			gUser := make([]float64, len(userAdam.data))
			gCtx := make([]float64, len(ctxAdam.data))
			gW1 := make([]float64, len(w1Adam.data))
			gB1 := make([]float64, len(b1Adam.data))
			gW2 := make([]float64, len(w2Adam.data))
			gB2 := make([]float64, len(b2Adam.data))

			for _, s := range batch {
				accumulateGradients(params, d, h, s, gUser, gCtx, gW1, gB1, gW2, gB2)
			}

			scale := 1.0 / float64(len(batch))
			for _, g := range [][]float64{gUser, gCtx, gW1, gB1, gW2, gB2} {
				for i := range g {
					g[i] *= scale
				}
			}

			userAdam.step(gUser, cfg.LearningRate, step)
			ctxAdam.step(gCtx, cfg.LearningRate, step)
			w1Adam.step(gW1, cfg.LearningRate, step)
			b1Adam.step(gB1, cfg.LearningRate, step)
			w2Adam.step(gW2, cfg.LearningRate, step)
			b2Adam.step(gB2, cfg.LearningRate, step)
		}
	}

	return true
}

// accumulateGradients runs one forward+backward pass for sample s and adds its
// gradient contribution into the flat parameter gradient buffers.
func accumulateGradients(p *personalization.Params, d, h int, s Sample, gUser, gCtx, gW1, gB1, gW2, gB2 []float64) {
	x := make([]float64, 2*d)
	for i := 0; i < d; i++ {
		x[i] = p.UserEmbed.At(s.UserIdx, i)
		x[d+i] = p.CtxEmbed.At(s.ContextIdx, i)
	}

	z1 := make([]float64, h)
	for j := 0; j < h; j++ {
		sum := p.B1.AtVec(j)
		for i := 0; i < 2*d; i++ {
			sum += p.W1.At(i, j) * x[i]
		}
		z1[j] = sum
	}
	hidden := make([]float64, h)
	for j := range z1 {
		if z1[j] > 0 {
			hidden[j] = z1[j]
		}
	}

	base := s.ActivityIdx * 3
	logits := [3]float64{}
	for k := 0; k < 3; k++ {
		sum := p.B2.AtVec(base + k)
		for j := 0; j < h; j++ {
			sum += p.W2.At(j, base+k) * hidden[j]
		}
		logits[k] = sum
	}
	probs := softmax3(logits[0], logits[1], logits[2])

	dlogits := [3]float64{probs[0], probs[1], probs[2]}
	dlogits[s.Label] -= 1

	dh := make([]float64, h)
	for j := 0; j < h; j++ {
		for k := 0; k < 3; k++ {
			gW2[j*p.W2.RawMatrix().Cols+(base+k)] += hidden[j] * dlogits[k]
			dh[j] += p.W2.At(j, base+k) * dlogits[k]
		}
	}
	for k := 0; k < 3; k++ {
		gB2[base+k] += dlogits[k]
	}

	dz1 := make([]float64, h)
	for j := 0; j < h; j++ {
		if z1[j] > 0 {
			dz1[j] = dh[j]
		}
	}

	for i := 0; i < 2*d; i++ {
		for j := 0; j < h; j++ {
			gW1[i*h+j] += x[i] * dz1[j]
		}
	}
	for j := 0; j < h; j++ {
		gB1[j] += dz1[j]
	}

	dx := make([]float64, 2*d)
	for i := 0; i < 2*d; i++ {
		sum := 0.0
		for j := 0; j < h; j++ {
			sum += p.W1.At(i, j) * dz1[j]
		}
		dx[i] = sum
	}

	userCols := p.UserEmbed.RawMatrix().Cols
	ctxCols := p.CtxEmbed.RawMatrix().Cols
	for i := 0; i < d; i++ {
		gUser[s.UserIdx*userCols+i] += dx[i]
		gCtx[s.ContextIdx*ctxCols+i] += dx[d+i]
	}
}
