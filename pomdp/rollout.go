package pomdp

import "golang.org/x/exp/rand"

// Rollout simulates the POMDP from state s for at most steps epochs,
// following pol over a belief maintained by up, and returns the discounted
// return. It starts from belief b, which is not mutated.
func Rollout(m Model, pol BeliefPolicy, up Updater, b Belief, s State, steps int, rng *rand.Rand) float64 {
	total := 0.0
	disc := 1.0
	gamma := m.Discount()
	for t := 0; t < steps && !m.IsTerminal(s); t++ {
		a := pol.ActionForBelief(b)
		sp, o, r := m.Step(s, a, rng)
		total += disc * r
		disc *= gamma
		s = sp
		if up == nil {
			continue
		}
		bp, err := up.Update(b, a, o)
		if err != nil {
			// An impossible observation starves the filter; the partial
			// return is still a usable estimate.
			break
		}
		b = bp
	}
	return total
}

// StateRollout simulates the underlying MDP from s for at most steps epochs
// under pol, ignoring observations.
func StateRollout(m Model, pol StatePolicy, s State, steps int, rng *rand.Rand) float64 {
	total := 0.0
	disc := 1.0
	gamma := m.Discount()
	for t := 0; t < steps && !m.IsTerminal(s); t++ {
		sp, _, r := m.Step(s, pol.Action(s), rng)
		total += disc * r
		disc *= gamma
		s = sp
	}
	return total
}
