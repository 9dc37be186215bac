package lightdark

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestObsWeightNormalizes(t *testing.T) {
	m := New()
	for _, y := range []float64{-3, 0, 4.7, 5, 12} {
		total := 0.0
		for o := -60; o <= 80; o++ {
			total += m.ObsWeight(Right, State{Y: y}, Obs(o))
		}
		require.InDelta(t, 1.0, total, 1e-6, "integer readings at y=%v should exhaust the density", y)
	}
}

func TestNoiseShrinksNearTheLight(t *testing.T) {
	m := New()
	require.Less(t, m.sigma(m.LightLoc), m.sigma(0.0))
	require.Less(t, m.sigma(4), m.sigma(-8))
}

func TestStopEndsTheEpisode(t *testing.T) {
	m := New()
	rng := rand.New(rand.NewSource(9))

	sp, _, r := m.Step(State{Y: 0.2}, Stop, rng)
	require.True(t, m.IsTerminal(sp))
	require.Equal(t, m.RGood, r, "stopping inside the goal pays off")

	sp, _, r = m.Step(State{Y: 7}, Stop, rng)
	require.True(t, m.IsTerminal(sp))
	require.Equal(t, m.RBad, r)

	sp, _, r = m.Step(State{Y: 7}, Left, rng)
	require.False(t, m.IsTerminal(sp))
	require.Equal(t, 6.0, sp.(State).Y)
	require.Equal(t, m.StepCost, r)
}

func TestGreedyPolicy(t *testing.T) {
	m := New()
	p := GreedyPolicy{M: m}
	require.Equal(t, Left, p.Action(State{Y: 3}))
	require.Equal(t, Right, p.Action(State{Y: -2}))
	require.Equal(t, Stop, p.Action(State{Y: 0.5}))
}
