package pomdp

import "golang.org/x/exp/rand"

// StatePolicy acts on fully observed states, driving MDP rollouts.
type StatePolicy interface {
	Action(s State) Action
}

// StateValue estimates the return of a policy from a single state.
type StateValue interface {
	Value(s State) float64
}

// BeliefPolicy acts on beliefs.
type BeliefPolicy interface {
	ActionForBelief(b Belief) Action
}

// BeliefValue estimates the return of a policy from a belief.
type BeliefValue interface {
	ValueForBelief(b Belief) float64
}

// Updater advances a belief through (action, observation) between epochs.
type Updater interface {
	Update(b Belief, a Action, o Observation) (Belief, error)
}

// RandomPolicy draws uniformly from the model's action set. It can drive
// rollouts; estimators built without a policy do not fall back to it.
type RandomPolicy struct {
	M   Model
	RNG *rand.Rand
}

func (p RandomPolicy) Action(State) Action {
	as := p.M.Actions(nil)
	return as[p.RNG.Intn(len(as))]
}

func (p RandomPolicy) ActionForBelief(Belief) Action {
	as := p.M.Actions(nil)
	return as[p.RNG.Intn(len(as))]
}

// FixedPolicy always plays the same action.
type FixedPolicy struct {
	A Action
}

func (p FixedPolicy) Action(State) Action { return p.A }

func (p FixedPolicy) ActionForBelief(Belief) Action { return p.A }
