// Package baby implements the crying-baby POMDP: feed the baby or risk it
// going hungry, observing only whether it cries.
package baby

import (
	"adops/pomdp"

	"golang.org/x/exp/rand"
)

type State bool // hungry?

const (
	Full   State = false
	Hungry State = true
)

type Action bool // feed?

const (
	Ignore Action = false
	Feed   Action = true
)

type Obs bool // crying?

type POMDP struct {
	RFeed      float64
	RHungry    float64
	PGetHungry float64 // per-step chance of becoming hungry when ignored
	PCryHungry float64
	PCryFull   float64
	Gamma      float64
}

func New() *POMDP {
	return &POMDP{
		RFeed:      -5,
		RHungry:    -10,
		PGetHungry: 0.1,
		PCryHungry: 0.8,
		PCryFull:   0.1,
		Gamma:      0.9,
	}
}

var actions = []pomdp.Action{Feed, Ignore}

func (m *POMDP) Actions(pomdp.Belief) []pomdp.Action { return actions }

func (m *POMDP) Step(s pomdp.State, a pomdp.Action, rng *rand.Rand) (pomdp.State, pomdp.Observation, float64) {
	st := s.(State)
	act := a.(Action)

	r := 0.0
	if st == Hungry {
		r += m.RHungry
	}
	if act == Feed {
		r += m.RFeed
	}

	sp := Full
	if act == Ignore && (st == Hungry || rng.Float64() < m.PGetHungry) {
		sp = Hungry
	}

	pCry := m.PCryFull
	if sp == Hungry {
		pCry = m.PCryHungry
	}
	return sp, Obs(rng.Float64() < pCry), r
}

func (m *POMDP) ObsWeight(_ pomdp.Action, sp pomdp.State, o pomdp.Observation) float64 {
	pCry := m.PCryFull
	if sp.(State) == Hungry {
		pCry = m.PCryHungry
	}
	if bool(o.(Obs)) {
		return pCry
	}
	return 1 - pCry
}

func (m *POMDP) IsTerminal(pomdp.State) bool { return false }

func (m *POMDP) Discount() float64 { return m.Gamma }

func (m *POMDP) InitialBelief() pomdp.Distribution { return AllFull{} }

// AllFull starts the baby fed with certainty.
type AllFull struct{}

func (AllFull) Rand(*rand.Rand) pomdp.State { return Full }

// HungerMass is the weight fraction of hungry particles in b.
func HungerMass(b pomdp.Belief) float64 {
	if b.WeightSum() == 0 {
		return 0
	}
	mass := 0.0
	for i := 0; i < b.NParticles(); i++ {
		if b.Particle(i).(State) == Hungry {
			mass += b.Weight(i)
		}
	}
	return mass / b.WeightSum()
}

// HeuristicPolicy feeds once the believed chance of hunger passes Thresh.
// It serves as a fixed rollout policy for lower bounds.
type HeuristicPolicy struct {
	Thresh float64
}

func (p HeuristicPolicy) ActionForBelief(b pomdp.Belief) pomdp.Action {
	if HungerMass(b) > p.Thresh {
		return Feed
	}
	return Ignore
}
