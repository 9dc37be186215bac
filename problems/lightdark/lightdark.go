// Package lightdark implements a 1-D localization POMDP: the agent walks a
// line whose observation noise shrinks near a light, and must stop at the
// origin. Observations are integer-rounded position readings.
package lightdark

import (
	"math"

	"adops/pomdp"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

type State struct {
	Y    float64
	Done bool
}

func (s State) Coords() []float64 { return []float64{s.Y} }

type Action int

const (
	Stop  Action = 0
	Left  Action = -1
	Right Action = 1
)

type Obs int

type POMDP struct {
	GoalRadius float64
	RGood      float64
	RBad       float64
	StepCost   float64
	LightLoc   float64
	SigmaMin   float64
	InitMu     float64
	InitSigma  float64
	Gamma      float64
}

func New() *POMDP {
	return &POMDP{
		GoalRadius: 1,
		RGood:      100,
		RBad:       -100,
		StepCost:   -1,
		LightLoc:   5,
		SigmaMin:   0.01,
		InitMu:     2,
		InitSigma:  3,
		Gamma:      0.95,
	}
}

var actions = []pomdp.Action{Left, Stop, Right}

func (m *POMDP) Actions(pomdp.Belief) []pomdp.Action { return actions }

// sigma is the observation noise at position y: small in the light, wide in
// the dark.
func (m *POMDP) sigma(y float64) float64 {
	return math.Abs(y-m.LightLoc)/math.Sqrt2 + m.SigmaMin
}

func (m *POMDP) Step(s pomdp.State, a pomdp.Action, rng *rand.Rand) (pomdp.State, pomdp.Observation, float64) {
	st := s.(State)
	act := a.(Action)
	if act == Stop {
		r := m.RBad
		if math.Abs(st.Y) < m.GoalRadius {
			r = m.RGood
		}
		return State{Y: st.Y, Done: true}, m.observe(st.Y, rng), r
	}
	y := st.Y + float64(act)
	return State{Y: y}, m.observe(y, rng), m.StepCost
}

func (m *POMDP) observe(y float64, rng *rand.Rand) Obs {
	n := distuv.Normal{Mu: y, Sigma: m.sigma(y), Src: rng}
	return Obs(math.Round(n.Rand()))
}

func (m *POMDP) ObsWeight(_ pomdp.Action, sp pomdp.State, o pomdp.Observation) float64 {
	st := sp.(State)
	n := distuv.Normal{Mu: st.Y, Sigma: m.sigma(st.Y)}
	x := float64(o.(Obs))
	return n.CDF(x+0.5) - n.CDF(x-0.5)
}

func (m *POMDP) IsTerminal(s pomdp.State) bool { return s.(State).Done }

func (m *POMDP) Discount() float64 { return m.Gamma }

func (m *POMDP) InitialBelief() pomdp.Distribution { return initial{m} }

type initial struct{ m *POMDP }

func (d initial) Rand(rng *rand.Rand) pomdp.State {
	n := distuv.Normal{Mu: d.m.InitMu, Sigma: d.m.InitSigma, Src: rng}
	return State{Y: n.Rand()}
}

// EntropyUpperBound dampens the best stop reward by the spread of the
// belief over integer position bins. Looser beliefs promise less.
func (m *POMDP) EntropyUpperBound(_ pomdp.Model, b pomdp.Belief) float64 {
	if b.WeightSum() == 0 {
		return 0
	}
	mass := map[int]float64{}
	for i := 0; i < b.NParticles(); i++ {
		if w := b.Weight(i); w > 0 {
			mass[int(math.Round(b.Particle(i).(State).Y))] += w
		}
	}
	h := 0.0
	for _, w := range mass {
		p := w / b.WeightSum()
		if p > 0 {
			h -= p * math.Log(p)
		}
	}
	return m.RGood - 2*h
}

// GreedyPolicy walks toward the origin and stops inside the goal radius,
// driving full-observability rollouts.
type GreedyPolicy struct {
	M *POMDP
}

func (p GreedyPolicy) Action(s pomdp.State) pomdp.Action {
	y := s.(State).Y
	switch {
	case math.Abs(y) < p.M.GoalRadius:
		return Stop
	case y > 0:
		return Left
	default:
		return Right
	}
}
