package filter

import (
	"testing"

	"adops/pomdp"
	"adops/problems/baby"
	"adops/problems/tiger"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestInitialize(t *testing.T) {
	m := tiger.New()
	f := New(m, 500, rand.New(rand.NewSource(1)))

	b := f.Initialize(m.InitialBelief())
	require.Equal(t, 500, b.NParticles())
	require.Equal(t, 500.0, b.WeightSum())

	left := 0
	for i := 0; i < b.NParticles(); i++ {
		if b.Particle(i) == tiger.TigerLeft {
			left++
		}
	}
	require.InDelta(t, 250, left, 60, "initial draw should match the uniform prior")
}

func TestUpdateShiftsMassTowardTheEvidence(t *testing.T) {
	m := tiger.New()
	f := New(m, 2000, rand.New(rand.NewSource(2)))
	b := f.Initialize(m.InitialBelief())

	var cur pomdp.Belief = b
	for i := 0; i < 3; i++ {
		next, err := f.Update(cur, tiger.Listen, tiger.HearLeft)
		require.NoError(t, err)
		cur = next
	}

	left := 0.0
	for i := 0; i < cur.NParticles(); i++ {
		if cur.Particle(i) == tiger.TigerLeft {
			left += cur.Weight(i)
		}
	}
	require.Greater(t, left/cur.WeightSum(), 0.95,
		"three consistent hints should concentrate the belief")
}

func TestUpdateRejectsImpossibleObservations(t *testing.T) {
	m := baby.New()
	m.PCryFull = 0 // a full baby never cries
	f := New(m, 100, rand.New(rand.NewSource(3)))
	b := f.Initialize(m.InitialBelief())

	// feeding guarantees a full baby, so crying has zero likelihood
	_, err := f.Update(b, baby.Feed, baby.Obs(true))
	require.ErrorContains(t, err, "zero likelihood")
}
