package belief

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type coord []float64

func (c coord) Coords() []float64 { return c }

func TestRectGrid(t *testing.T) {
	t.Run("single dimension", func(t *testing.T) {
		g, err := NewRectGrid([]float64{0, 1, 2})
		require.NoError(t, err)
		require.Equal(t, 4, g.Bins())

		require.Equal(t, 0, g.Bin(coord{-5}))
		require.Equal(t, 1, g.Bin(coord{0.5}))
		require.Equal(t, 3, g.Bin(coord{9}))
	})

	t.Run("two dimensions compose by mixed radix", func(t *testing.T) {
		g, err := NewRectGrid([]float64{0}, []float64{0})
		require.NoError(t, err)
		require.Equal(t, 4, g.Bins())

		seen := map[int]bool{}
		for _, c := range []coord{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			seen[g.Bin(c)] = true
		}
		require.Len(t, seen, 4, "each quadrant should land in its own bin")
	})

	t.Run("rejects unsorted cuts", func(t *testing.T) {
		_, err := NewRectGrid([]float64{1, 0})
		require.Error(t, err)
	})

	t.Run("uniform cuts make the requested bin count", func(t *testing.T) {
		cuts := UniformCuts(-10, 15, 26)
		require.Len(t, cuts, 25)
		g, err := NewRectGrid(cuts)
		require.NoError(t, err)
		require.Equal(t, 26, g.Bins())
	})
}

func TestAccess(t *testing.T) {
	g, err := NewRectGrid([]float64{0, 1})
	require.NoError(t, err)
	cnt := make([]int, g.Bins())

	require.Equal(t, 1, Access(g, cnt, coord{0.5}), "fresh bin counts")
	require.Equal(t, 0, Access(g, cnt, coord{0.7}), "occupied bin does not")
	require.Equal(t, 1, Access(g, cnt, coord{-1}))
}

func TestKLDSampleSize(t *testing.T) {
	t.Run("stable at one bin", func(t *testing.T) {
		require.Equal(t, 1.0, KLDSampleSize(1, 0.05))
		require.Equal(t, 1.0, KLDSampleSize(0, 0.05))
	})

	t.Run("monotone in occupied bins", func(t *testing.T) {
		prev := 0.0
		for k := 1; k <= 60; k++ {
			n := KLDSampleSize(k, 0.05)
			require.GreaterOrEqual(t, n, prev, "sample size must grow with k (k=%d)", k)
			prev = n
		}
	})

	t.Run("tighter confidence needs more samples", func(t *testing.T) {
		require.Greater(t, KLDSampleSize(10, 0.01), KLDSampleSize(10, 0.2))
	})
}
