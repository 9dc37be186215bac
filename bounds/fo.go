package bounds

import (
	"fmt"

	"adops/pomdp"

	"golang.org/x/exp/rand"
)

// FORollout estimates E[V] by rolling out the underlying MDP from each
// particle under a state policy, ignoring observations.
type FORollout struct {
	Policy pomdp.StatePolicy
}

func (f FORollout) Resolve(m pomdp.Model, mMax int, rng *rand.Rand) (Solved, error) {
	if f.Policy == nil {
		return nil, fmt.Errorf("bounds: FO rollout needs a state policy")
	}
	return &SolvedFORollout{m: m, pol: f.Policy, rng: rng, vals: make([]float64, 0, mMax), ws: make([]float64, 0, mMax)}, nil
}

// SolvedFORollout reuses a value scratch sized to the particle cap. The
// per-particle value depends only on the state, so the vector form runs a
// single inner pass over the shared particle set.
type SolvedFORollout struct {
	m    pomdp.Model
	pol  pomdp.StatePolicy
	rng  *rand.Rand
	vals []float64
	ws   []float64
}

func (e *SolvedFORollout) values(n int, particle func(int) pomdp.State, steps int) []float64 {
	e.vals = e.vals[:0]
	for i := 0; i < n; i++ {
		e.vals = append(e.vals, pomdp.StateRollout(e.m, e.pol, particle(i), steps, e.rng))
	}
	return e.vals
}

func (e *SolvedFORollout) Bound(b pomdp.Belief, maxDepth int) float64 {
	vals := e.values(b.NParticles(), b.Particle, maxDepth-b.Depth())
	return weightedMean(vals, beliefWeights(e.ws[:0], b))
}

func (e *SolvedFORollout) BatchBound(dst []float64, P []pomdp.State, W [][]float64, obs []pomdp.Observation, depth, maxDepth int) {
	vals := e.values(len(P), func(i int) pomdp.State { return P[i] }, maxDepth-depth)
	for i := range dst {
		dst[i] = weightedMean(vals, W[i])
	}
}

// FOValue is the weighted mean of a state-value function over particles.
type FOValue struct {
	Policy pomdp.StateValue
}

func (f FOValue) Resolve(m pomdp.Model, mMax int, rng *rand.Rand) (Solved, error) {
	if f.Policy == nil {
		return nil, fmt.Errorf("bounds: FO value needs a state-value function")
	}
	return &SolvedFOValue{m: m, pol: f.Policy, vals: make([]float64, 0, mMax), ws: make([]float64, 0, mMax)}, nil
}

type SolvedFOValue struct {
	m    pomdp.Model
	pol  pomdp.StateValue
	vals []float64
	ws   []float64
}

func (e *SolvedFOValue) values(n int, particle func(int) pomdp.State) []float64 {
	e.vals = e.vals[:0]
	for i := 0; i < n; i++ {
		s := particle(i)
		if e.m.IsTerminal(s) {
			e.vals = append(e.vals, 0)
			continue
		}
		e.vals = append(e.vals, e.pol.Value(s))
	}
	return e.vals
}

func (e *SolvedFOValue) Bound(b pomdp.Belief, _ int) float64 {
	vals := e.values(b.NParticles(), b.Particle)
	return weightedMean(vals, beliefWeights(e.ws[:0], b))
}

func (e *SolvedFOValue) BatchBound(dst []float64, P []pomdp.State, W [][]float64, _ []pomdp.Observation, _, _ int) {
	vals := e.values(len(P), func(i int) pomdp.State { return P[i] })
	for i := range dst {
		dst[i] = weightedMean(vals, W[i])
	}
}
