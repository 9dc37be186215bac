package agent

import (
	"testing"
	"time"

	"adops/bounds"
	"adops/filter"
	"adops/problems/tiger"
	"adops/searcher"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestAgentLoop(t *testing.T) {
	m := tiger.New()
	planner, err := searcher.NewSolver(bounds.Fixed(-20, 0),
		searcher.WithRNG(rand.New(rand.NewSource(1))),
		searcher.WithTimeBudget(20*time.Millisecond),
	).Solve(m)
	require.NoError(t, err)

	a := New(m, planner, filter.New(m, 1000, rand.New(rand.NewSource(2))))

	act, info, err := a.Act()
	require.NoError(t, err)
	require.Equal(t, tiger.Listen, act, "the prior is uniform, so listen first")
	require.Positive(t, info.Trials)

	a.Observe(tiger.Listen, tiger.HearLeft)
	a.Observe(tiger.Listen, tiger.HearLeft)
	a.Observe(tiger.Listen, tiger.HearLeft)

	left := 0.0
	b := a.Belief()
	for i := 0; i < b.NParticles(); i++ {
		if b.Particle(i) == tiger.TigerLeft {
			left += b.Weight(i)
		}
	}
	require.Greater(t, left/b.WeightSum(), 0.9, "consistent hints concentrate the belief")

	a.Reset()
	require.Equal(t, 1000, a.Belief().NParticles())
}
