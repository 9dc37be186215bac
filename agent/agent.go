// Package agent closes the loop around a planner: it carries the running
// belief through a particle filter and asks the planner for one action per
// decision epoch.
package agent

import (
	"adops/filter"
	"adops/pomdp"
	"adops/searcher"

	"github.com/rs/zerolog/log"
)

type Agent struct {
	m       pomdp.Model
	planner *searcher.Planner
	filter  *filter.Bootstrap
	prior   pomdp.Distribution
	belief  pomdp.Belief
}

func New(m pomdp.Model, planner *searcher.Planner, f *filter.Bootstrap) *Agent {
	a := &Agent{m: m, planner: planner, filter: f, prior: m.InitialBelief()}
	a.Reset()
	return a
}

// Reset reinitializes the belief from the model's prior.
func (a *Agent) Reset() {
	a.belief = a.filter.Initialize(a.prior)
}

// Act plans on the current belief.
func (a *Agent) Act() (pomdp.Action, *searcher.Info, error) {
	return a.planner.Plan(a.belief)
}

// Observe folds the executed action and received observation into the
// belief. A starved filter falls back to the prior.
func (a *Agent) Observe(act pomdp.Action, o pomdp.Observation) {
	next, err := a.filter.Update(a.belief, act, o)
	if err != nil {
		log.Warn().Err(err).Msg("filter starved, reinitializing from the prior")
		a.Reset()
		return
	}
	a.belief = next
}

func (a *Agent) Belief() pomdp.Belief { return a.belief }
