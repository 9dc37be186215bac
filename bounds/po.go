package bounds

import (
	"fmt"

	"adops/pomdp"

	"golang.org/x/exp/rand"
)

// PORollout simulates the POMDP from each particle under a belief policy
// with a belief updater tracking observations along the way.
type PORollout struct {
	Policy  pomdp.BeliefPolicy
	Updater pomdp.Updater
}

func (f PORollout) Resolve(m pomdp.Model, mMax int, rng *rand.Rand) (Solved, error) {
	if f.Policy == nil {
		return nil, fmt.Errorf("bounds: PO rollout needs a belief policy")
	}
	return &SolvedPORollout{m: m, pol: f.Policy, up: f.Updater, rng: rng, ws: make([]float64, 0, mMax), vals: make([]float64, 0, mMax)}, nil
}

type SolvedPORollout struct {
	m    pomdp.Model
	pol  pomdp.BeliefPolicy
	up   pomdp.Updater
	rng  *rand.Rand
	vals []float64
	ws   []float64
}

func (e *SolvedPORollout) Bound(b pomdp.Belief, maxDepth int) float64 {
	steps := maxDepth - b.Depth()
	e.vals = e.vals[:0]
	for i := 0; i < b.NParticles(); i++ {
		e.vals = append(e.vals, pomdp.Rollout(e.m, e.pol, e.up, b, b.Particle(i), steps, e.rng))
	}
	return weightedMean(e.vals, beliefWeights(e.ws[:0], b))
}

// POValue evaluates a belief-value function directly.
type POValue struct {
	Policy pomdp.BeliefValue
}

func (f POValue) Resolve(m pomdp.Model, _ int, _ *rand.Rand) (Solved, error) {
	if f.Policy == nil {
		return nil, fmt.Errorf("bounds: PO value needs a belief-value function")
	}
	return &solvedPOValue{pol: f.Policy}, nil
}

type solvedPOValue struct {
	pol pomdp.BeliefValue
}

func (e *solvedPOValue) Bound(b pomdp.Belief, _ int) float64 {
	return e.pol.ValueForBelief(b)
}
