// Package filter provides the bootstrap particle filter used to carry a
// belief between decision epochs. The planner does its own in-tree
// resampling; this updater only serves the outer simulation loop and the
// partially observable rollout estimators.
package filter

import (
	"fmt"

	"adops/belief"
	"adops/pomdp"

	"golang.org/x/exp/rand"
)

// Bootstrap is a sampling-importance-resampling filter with a fixed
// particle count and a low-variance redraw every update.
type Bootstrap struct {
	m   pomdp.Model
	n   int
	rng *rand.Rand
}

func New(m pomdp.Model, n int, rng *rand.Rand) *Bootstrap {
	if n < 1 {
		panic("filter: need at least one particle")
	}
	return &Bootstrap{m: m, n: n, rng: rng}
}

// Initialize draws the filter's first belief from a state distribution.
func (f *Bootstrap) Initialize(d pomdp.Distribution) *belief.Weighted {
	particles := make([]pomdp.State, f.n)
	weights := make([]float64, f.n)
	for i := range particles {
		particles[i] = d.Rand(f.rng)
		weights[i] = 1
	}
	return belief.New(particles, weights)
}

// Update propagates every particle through a, weights by the observation
// density of o, and resamples back to the filter's particle count. All
// weights vanishing means o was impossible under the predicted belief.
func (f *Bootstrap) Update(b pomdp.Belief, a pomdp.Action, o pomdp.Observation) (pomdp.Belief, error) {
	particles := make([]pomdp.State, 0, b.NParticles())
	weights := make([]float64, 0, b.NParticles())
	for i := 0; i < b.NParticles(); i++ {
		w := b.Weight(i)
		s := b.Particle(i)
		if w <= 0 || f.m.IsTerminal(s) {
			continue
		}
		sp, _, _ := f.m.Step(s, a, f.rng)
		particles = append(particles, sp)
		weights = append(weights, w*f.m.ObsWeight(a, sp, o))
	}
	predicted := belief.New(particles, weights)
	if predicted.WeightSum() == 0 {
		return nil, fmt.Errorf("filter: observation %v has zero likelihood", o)
	}
	out := belief.New(make([]pomdp.State, 0, f.n), make([]float64, 0, f.n))
	belief.Stratified(out, predicted, f.n, f.rng)
	return out, nil
}
