// Package tiger implements the classic tiger-behind-a-door POMDP: listen for
// a noisy hint or open a door, with a reset after every opening.
package tiger

import (
	"adops/pomdp"

	"golang.org/x/exp/rand"
)

type State int

const (
	TigerLeft State = iota
	TigerRight
)

type Action int

const (
	Listen Action = iota
	OpenLeft
	OpenRight
)

type Obs int

const (
	HearLeft Obs = iota
	HearRight
)

type POMDP struct {
	ListenAccuracy float64
	RListen        float64
	RWrong         float64
	RRight         float64
	Gamma          float64
}

func New() *POMDP {
	return &POMDP{
		ListenAccuracy: 0.85,
		RListen:        -1,
		RWrong:         -100,
		RRight:         10,
		Gamma:          0.95,
	}
}

var actions = []pomdp.Action{Listen, OpenLeft, OpenRight}

func (m *POMDP) Actions(pomdp.Belief) []pomdp.Action { return actions }

func (m *POMDP) Step(s pomdp.State, a pomdp.Action, rng *rand.Rand) (pomdp.State, pomdp.Observation, float64) {
	st := s.(State)
	switch a.(Action) {
	case Listen:
		o := HearLeft
		if st == TigerRight {
			o = HearRight
		}
		if rng.Float64() >= m.ListenAccuracy {
			o = 1 - o
		}
		return st, o, m.RListen
	case OpenLeft:
		r := m.RRight
		if st == TigerLeft {
			r = m.RWrong
		}
		return m.reset(rng), randomHint(rng), r
	default:
		r := m.RRight
		if st == TigerRight {
			r = m.RWrong
		}
		return m.reset(rng), randomHint(rng), r
	}
}

// The game restarts behind a fresh door after an opening; the observation is
// uninformative.
func (m *POMDP) reset(rng *rand.Rand) State {
	if rng.Float64() < 0.5 {
		return TigerLeft
	}
	return TigerRight
}

func randomHint(rng *rand.Rand) Obs {
	if rng.Float64() < 0.5 {
		return HearLeft
	}
	return HearRight
}

func (m *POMDP) ObsWeight(a pomdp.Action, sp pomdp.State, o pomdp.Observation) float64 {
	if a.(Action) != Listen {
		return 0.5
	}
	match := (sp.(State) == TigerLeft) == (o.(Obs) == HearLeft)
	if match {
		return m.ListenAccuracy
	}
	return 1 - m.ListenAccuracy
}

func (m *POMDP) IsTerminal(pomdp.State) bool { return false }

func (m *POMDP) Discount() float64 { return m.Gamma }

func (m *POMDP) InitialBelief() pomdp.Distribution { return Uniform{} }

// Uniform is the 50/50 prior over the tiger's position.
type Uniform struct{}

func (Uniform) Rand(rng *rand.Rand) pomdp.State {
	if rng.Float64() < 0.5 {
		return TigerLeft
	}
	return TigerRight
}
