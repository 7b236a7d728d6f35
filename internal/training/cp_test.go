package training

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPALS_ProducesFiniteFactors(t *testing.T) {
	tensor := newTensor(3, 4)
	tensor.set3(0, 0, 0, 1.0)
	tensor.set3(1, 1, 2, -1.0)
	tensor.set3(2, 2, 3, 0.1)

	rng := rand.New(rand.NewSource(1))
	u, c, a, err := cpALS(tensor, 2, 5, rng)
	require.NoError(t, err)

	assert.False(t, hasNonFinite(u))
	assert.False(t, hasNonFinite(c))
	assert.False(t, hasNonFinite(a))

	ur, uc := u.Dims()
	assert.Equal(t, 3, ur)
	assert.Equal(t, 2, uc)
}

func TestCPALS_EmptyTensorFails(t *testing.T) {
	tensor := newTensor(0, 0)
	rng := rand.New(rand.NewSource(1))
	_, _, _, err := cpALS(tensor, 2, 5, rng)
	assert.ErrorIs(t, err, ErrDecompositionFailed)
}

func TestKhatriRao_Shape(t *testing.T) {
	p := randomFactor(2, 3, rand.New(rand.NewSource(1)))
	q := randomFactor(4, 3, rand.New(rand.NewSource(2)))
	kr := khatriRao(p, q)
	r, c := kr.Dims()
	assert.Equal(t, 8, r)
	assert.Equal(t, 3, c)
}
