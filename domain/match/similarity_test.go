package match

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCosine_Identical(t *testing.T) {
	v := []float64{0.3, -1.2, 4.5}
	require.InDelta(t, 1.0, Cosine(v, v), 1e-6)
}

func TestCosine_Opposite(t *testing.T) {
	require.InDelta(t, -1.0, Cosine([]float64{1, 2}, []float64{-1, -2}), 1e-9)
}

func TestCosine_Orthogonal(t *testing.T) {
	require.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
}

func TestCosine_MagnitudeIndependent(t *testing.T) {
	require.InDelta(t,
		Cosine([]float64{1, 2, 3}, []float64{3, 2, 1}),
		Cosine([]float64{10, 20, 30}, []float64{3, 2, 1}),
		1e-12,
	)
}

func TestCosine_ZeroVector(t *testing.T) {
	zero := []float64{0, 0, 0}
	require.Equal(t, 0.0, Cosine(zero, []float64{1, 2, 3}))
	require.Equal(t, 0.0, Cosine([]float64{1, 2, 3}, zero))
	require.Equal(t, 0.0, Cosine(zero, zero))
}

func TestCosine_Degenerate(t *testing.T) {
	require.Equal(t, 0.0, Cosine(nil, nil))
	require.Equal(t, 0.0, Cosine([]float64{1, 2}, []float64{1, 2, 3}))
	require.Equal(t, 0.0, Cosine([]float64{math.NaN(), 1}, []float64{1, 1}))
	require.Equal(t, 0.0, Cosine([]float64{math.Inf(1), 1}, []float64{1, 1}))
}

func TestCosine_Bounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for range 1000 {
		a := make([]float64, 8)
		b := make([]float64, 8)
		for i := range a {
			a[i] = rng.NormFloat64() * 1e3
			b[i] = rng.NormFloat64() * 1e-3
		}
		score := Cosine(a, b)
		require.GreaterOrEqual(t, score, -1.0)
		require.LessOrEqual(t, score, 1.0)
	}
}

func TestCosine_ExtremeMagnitudes(t *testing.T) {
	for _, scale := range []float64{1e200, 1e-200, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		v := []float64{scale, scale}
		require.InDelta(t, 1.0, Cosine(v, v), 1e-12, "scale %g", scale)
		require.InDelta(t, -1.0, Cosine(v, []float64{-scale, -scale}), 1e-12, "scale %g", scale)
	}
	require.InDelta(t, 1.0, Cosine([]float64{1e200, 2e200}, []float64{1e-200, 2e-200}), 1e-12)
}
