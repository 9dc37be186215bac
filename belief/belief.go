package belief

import (
	"adops/pomdp"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Weighted is an ordered particle set with a parallel weight vector and a
// cached weight sum. The cache is authoritative: every mutator refreshes it.
//
// A Weighted constructed with NewView borrows its slices from a tree arena
// and must not outlive the next arena mutation.
type Weighted struct {
	particles []pomdp.State
	weights   []float64
	wsum      float64
	depth     int
	obs       pomdp.Observation

	probs map[pomdp.State]float64 // lazy pdf cache
}

// New copies nothing: the belief takes ownership of both slices.
func New(particles []pomdp.State, weights []float64) *Weighted {
	if len(particles) != len(weights) {
		panic("belief: particle and weight lengths differ")
	}
	return &Weighted{
		particles: particles,
		weights:   weights,
		wsum:      floats.Sum(weights),
	}
}

// NewWithSum trusts the caller's precomputed weight sum.
func NewWithSum(particles []pomdp.State, weights []float64, sum float64) *Weighted {
	if len(particles) != len(weights) {
		panic("belief: particle and weight lengths differ")
	}
	return &Weighted{particles: particles, weights: weights, wsum: sum}
}

// NewView borrows arena memory and overrides depth and incoming observation
// for bound evaluation.
func NewView(particles []pomdp.State, weights []float64, depth int, obs pomdp.Observation) *Weighted {
	b := New(particles, weights)
	b.depth = depth
	b.obs = obs
	return b
}

// SetContext overrides depth and incoming observation without touching the
// particle data.
func (b *Weighted) SetContext(depth int, obs pomdp.Observation) {
	b.depth = depth
	b.obs = obs
}

// Rebind repoints a view at new arena memory, dropping caches.
func (b *Weighted) Rebind(particles []pomdp.State, weights []float64, depth int, obs pomdp.Observation) {
	b.particles = particles
	b.weights = weights
	b.wsum = floats.Sum(weights)
	b.depth = depth
	b.obs = obs
	b.probs = nil
}

func (b *Weighted) NParticles() int            { return len(b.particles) }
func (b *Weighted) Particle(i int) pomdp.State { return b.particles[i] }
func (b *Weighted) Particles() []pomdp.State   { return b.particles }
func (b *Weighted) Weight(i int) float64       { return b.weights[i] }
func (b *Weighted) Weights() []float64         { return b.weights }
func (b *Weighted) WeightSum() float64         { return b.wsum }
func (b *Weighted) Depth() int                 { return b.depth }
func (b *Weighted) LastObs() pomdp.Observation { return b.obs }

// SetWeight updates one weight and the sum cache.
func (b *Weighted) SetWeight(i int, w float64) {
	b.wsum += w - b.weights[i]
	b.weights[i] = w
	b.probs = nil
}

// Append grows the particle set in place, retaining capacity.
func (b *Weighted) Append(s pomdp.State, w float64) {
	b.particles = append(b.particles, s)
	b.weights = append(b.weights, w)
	b.wsum += w
	b.probs = nil
}

// Truncate empties the belief, retaining capacity.
func (b *Weighted) Truncate() {
	b.particles = b.particles[:0]
	b.weights = b.weights[:0]
	b.wsum = 0
	b.probs = nil
}

// RefreshSum recomputes the weight-sum cache after external weight edits.
func (b *Weighted) RefreshSum() {
	b.wsum = floats.Sum(b.weights)
	b.probs = nil
}

// Each visits the weighted particle pairs in order.
func (b *Weighted) Each(f func(s pomdp.State, w float64)) {
	for i, s := range b.particles {
		f(s, b.weights[i])
	}
}

// Rand draws a particle with probability proportional to its weight.
func (b *Weighted) Rand(rng *rand.Rand) pomdp.State {
	t := rng.Float64() * b.wsum
	for i, w := range b.weights {
		t -= w
		if t <= 0 {
			return b.particles[i]
		}
	}
	return b.particles[len(b.particles)-1]
}

func (b *Weighted) support() map[pomdp.State]float64 {
	if b.probs == nil {
		b.probs = make(map[pomdp.State]float64, len(b.particles))
		for i, s := range b.particles {
			b.probs[s] += b.weights[i]
		}
	}
	return b.probs
}

// PDF is the cumulative weight of particles equal to s over the weight sum.
func (b *Weighted) PDF(s pomdp.State) float64 {
	if b.wsum == 0 {
		return 0
	}
	return b.support()[s] / b.wsum
}

// Support enumerates the distinct states in the belief.
func (b *Weighted) Support() []pomdp.State {
	m := b.support()
	out := make([]pomdp.State, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	return out
}

// Mode is the support state of largest cumulative weight.
func (b *Weighted) Mode() pomdp.State {
	var best pomdp.State
	bestW := -1.0
	for s, w := range b.support() {
		if w > bestW {
			best, bestW = s, w
		}
	}
	return best
}

// Mean is the weighted mean of the particle coordinates. Particles must be
// pomdp.Located.
func (b *Weighted) Mean() []float64 {
	if len(b.particles) == 0 || b.wsum == 0 {
		return nil
	}
	mean := make([]float64, len(b.particles[0].(pomdp.Located).Coords()))
	for i, s := range b.particles {
		floats.AddScaled(mean, b.weights[i], s.(pomdp.Located).Coords())
	}
	floats.Scale(1/b.wsum, mean)
	return mean
}
