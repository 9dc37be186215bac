package pomdp

import "golang.org/x/exp/rand"

// State, Action and Observation are opaque to the planner. Concrete types
// must be comparable: observations are grouped in maps during expansion and
// belief supports are counted the same way.
type (
	State       = any
	Action      = any
	Observation = any
)

// Distribution samples states, e.g. an initial-state distribution or a
// particle belief.
type Distribution interface {
	Rand(rng *rand.Rand) State
}

// Belief is the read-only view of a weighted particle set handed to bound
// estimators and belief-conditioned action sets.
type Belief interface {
	Distribution
	NParticles() int
	Particle(i int) State
	Weight(i int) float64
	WeightSum() float64
	// Depth is the number of decision epochs below the planning root.
	Depth() int
	// LastObs is the observation that led to this belief, nil at the root.
	LastObs() Observation
}

// Located states expose numeric coordinates. State grids and belief means
// require them.
type Located interface {
	Coords() []float64
}

// Model is the generative capability a POMDP exposes to the planner.
type Model interface {
	// Actions returns the action set conditioned on a belief. A nil belief
	// must yield the full set.
	Actions(b Belief) []Action
	// Step samples (s', o, r) from the generative model G(s, a).
	Step(s State, a Action, rng *rand.Rand) (sp State, o Observation, r float64)
	// ObsWeight is the observation density pdf(O(a, s'), o).
	ObsWeight(a Action, sp State, o Observation) float64
	IsTerminal(s State) bool
	Discount() float64
	InitialBelief() Distribution
}
