package belief

import (
	"testing"

	"adops/pomdp"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestWeightedBasics(t *testing.T) {
	b := New([]pomdp.State{"a", "b", "c"}, []float64{1, 2, 3})

	require.Equal(t, 3, b.NParticles())
	require.Equal(t, 6.0, b.WeightSum(), "sum cache should cover all weights")
	require.Equal(t, "b", b.Particle(1))
	require.Equal(t, 2.0, b.Weight(1))

	b.SetWeight(1, 0)
	require.Equal(t, 4.0, b.WeightSum(), "mutators must refresh the sum cache")

	b.Append("d", 6)
	require.Equal(t, 4, b.NParticles())
	require.Equal(t, 10.0, b.WeightSum())

	got := map[pomdp.State]float64{}
	b.Each(func(s pomdp.State, w float64) { got[s] = w })
	require.Equal(t, map[pomdp.State]float64{"a": 1, "b": 0, "c": 3, "d": 6}, got)

	b.Truncate()
	require.Equal(t, 0, b.NParticles())
	require.Equal(t, 0.0, b.WeightSum())
}

func TestWeightedPanicsOnLengthMismatch(t *testing.T) {
	require.Panics(t, func() {
		New([]pomdp.State{"a"}, []float64{1, 2})
	}, "particle and weight lengths must agree")
}

func TestPDFAndSupport(t *testing.T) {
	b := New([]pomdp.State{"a", "b", "a"}, []float64{1, 2, 1})

	require.InDelta(t, 0.5, b.PDF("a"), 1e-12, "pdf should sum duplicated particles")
	require.InDelta(t, 0.5, b.PDF("b"), 1e-12)
	require.Zero(t, b.PDF("z"))
	require.ElementsMatch(t, []pomdp.State{"a", "b"}, b.Support())
	// a and b tie at cumulative weight 2 here, so the mode is checked on a
	// belief where b is strictly heavier
	require.Equal(t, "b", New([]pomdp.State{"a", "b", "a"}, []float64{1, 3, 1}).Mode())

	// mutation invalidates the cached pdf
	b.SetWeight(1, 0)
	require.InDelta(t, 1.0, b.PDF("a"), 1e-12)
}

func TestRandFollowsWeights(t *testing.T) {
	b := New([]pomdp.State{"x", "y"}, []float64{9, 1})
	rng := rand.New(rand.NewSource(7))

	hits := 0
	for i := 0; i < 1000; i++ {
		if b.Rand(rng) == "x" {
			hits++
		}
	}
	require.Greater(t, hits, 800, "draws should follow the weight ratio")
}

type point struct{ x, y float64 }

func (p point) Coords() []float64 { return []float64{p.x, p.y} }

func TestMean(t *testing.T) {
	b := New([]pomdp.State{point{0, 0}, point{2, 4}}, []float64{1, 1})
	m := b.Mean()
	require.InDelta(t, 1.0, m[0], 1e-12)
	require.InDelta(t, 2.0, m[1], 1e-12)
}

func TestViewContext(t *testing.T) {
	particles := []pomdp.State{1, 2}
	weights := []float64{0.5, 0.5}
	v := NewView(particles, weights, 3, "obs")

	require.Equal(t, 3, v.Depth())
	require.Equal(t, "obs", v.LastObs())

	v.Rebind(particles, []float64{1, 3}, 4, "other")
	require.Equal(t, 4.0, v.WeightSum(), "rebind must recompute the sum")
	require.Equal(t, "other", v.LastObs())
}
