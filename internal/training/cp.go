package training

import (
	"errors"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// ErrDecompositionFailed signals a numerical failure (singular normal
// equations, NaN/Inf factors) during CP-ALS. Callers must treat this as
// non-fatal: embeddings remain at their random initialisation (§4.F step 4).
var ErrDecompositionFailed = errors.New("training: CP decomposition failed numerically")

// cpALS computes a rank-`rank` CP (PARAFAC) decomposition of a dense 3-way
// tensor via alternating least squares. gonum has no tensor-decomposition
// package, so the mode unfoldings and Khatri-Rao products are built directly
// on mat.Dense/mat.Inverse, the same primitives the rest of the scorer uses.
func cpALS(t *Tensor, rank, iterations int, rng *rand.Rand) (userFactor, ctxFactor, actFactor *mat.Dense, err error) {
	if t.Users == 0 || t.Contexts == 0 || t.Activities == 0 {
		return nil, nil, nil, ErrDecompositionFailed
	}

	u := randomFactor(t.Users, rank, rng)
	c := randomFactor(t.Contexts, rank, rng)
	a := randomFactor(t.Activities, rank, rng)

	x0 := unfoldMode0(t)
	x1 := unfoldMode1(t)
	x2 := unfoldMode2(t)

	for iter := 0; iter < iterations; iter++ {
		u, err = alsUpdate(x0, khatriRao(c, a))
		if err != nil {
			return nil, nil, nil, err
		}
		c, err = alsUpdate(x1, khatriRao(u, a))
		if err != nil {
			return nil, nil, nil, err
		}
		a, err = alsUpdate(x2, khatriRao(u, c))
		if err != nil {
			return nil, nil, nil, err
		}
	}

	if hasNonFinite(u) || hasNonFinite(c) || hasNonFinite(a) {
		return nil, nil, nil, ErrDecompositionFailed
	}
	return u, c, a, nil
}

// alsUpdate solves factor = X * KR * pinv(KR^T KR) for one mode.
func alsUpdate(unfolded, kr *mat.Dense) (*mat.Dense, error) {
	rows, rank := kr.Dims()
	_ = rows

	var gram mat.Dense
	gram.Mul(kr.T(), kr)
	// Ridge term: ALS normal equations are frequently ill-conditioned on sparse
	// feedback tensors; a small diagonal load keeps the inversion stable.
	for i := 0; i < rank; i++ {
		gram.Set(i, i, gram.At(i, i)+1e-4)
	}

	var gramInv mat.Dense
	if err := gramInv.Inverse(&gram); err != nil {
		return nil, ErrDecompositionFailed
	}

	var xkr mat.Dense
	xkr.Mul(unfolded, kr)

	var out mat.Dense
	out.Mul(&xkr, &gramInv)

	if out.RawMatrix().Cols != rank {
		return nil, ErrDecompositionFailed
	}
	return &out, nil
}

func randomFactor(rows, rank int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*rank)
	for i := range data {
		data[i] = rng.Float64()*0.2 - 0.1
	}
	return mat.NewDense(rows, rank, data)
}

func unfoldMode0(t *Tensor) *mat.Dense {
	out := mat.NewDense(t.Users, t.Contexts*t.Activities, nil)
	for uIdx := 0; uIdx < t.Users; uIdx++ {
		for cIdx := 0; cIdx < t.Contexts; cIdx++ {
			for aIdx := 0; aIdx < t.Activities; aIdx++ {
				out.Set(uIdx, cIdx*t.Activities+aIdx, t.At(uIdx, cIdx, aIdx))
			}
		}
	}
	return out
}

func unfoldMode1(t *Tensor) *mat.Dense {
	out := mat.NewDense(t.Contexts, t.Users*t.Activities, nil)
	for uIdx := 0; uIdx < t.Users; uIdx++ {
		for cIdx := 0; cIdx < t.Contexts; cIdx++ {
			for aIdx := 0; aIdx < t.Activities; aIdx++ {
				out.Set(cIdx, uIdx*t.Activities+aIdx, t.At(uIdx, cIdx, aIdx))
			}
		}
	}
	return out
}

func unfoldMode2(t *Tensor) *mat.Dense {
	out := mat.NewDense(t.Activities, t.Users*t.Contexts, nil)
	for uIdx := 0; uIdx < t.Users; uIdx++ {
		for cIdx := 0; cIdx < t.Contexts; cIdx++ {
			for aIdx := 0; aIdx < t.Activities; aIdx++ {
				out.Set(aIdx, uIdx*t.Contexts+cIdx, t.At(uIdx, cIdx, aIdx))
			}
		}
	}
	return out
}

// khatriRao computes the column-wise Khatri-Rao product of p [rows_p, r] and
// q [rows_q, r]: result row i*rows_q+j, column k is p[i,k]*q[j,k].
func khatriRao(p, q *mat.Dense) *mat.Dense {
	rowsP, rank := p.Dims()
	rowsQ, _ := q.Dims()
	out := mat.NewDense(rowsP*rowsQ, rank, nil)
	for i := 0; i < rowsP; i++ {
		for j := 0; j < rowsQ; j++ {
			for k := 0; k < rank; k++ {
				out.Set(i*rowsQ+j, k, p.At(i, k)*q.At(j, k))
			}
		}
	}
	return out
}

func hasNonFinite(d *mat.Dense) bool {
	r, c := d.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := d.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return true
			}
		}
	}
	return false
}
