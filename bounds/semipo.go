package bounds

import (
	"fmt"

	"adops/belief"
	"adops/pomdp"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// SemiPORollout is a bounded-depth recursive simulation: one policy action
// per belief, sampled next-observations grouped into posterior branches,
// each branch recursed on with its summed weight. Single-particle branches
// fall through to a cheap single-path rollout.
type SemiPORollout struct {
	Policy pomdp.BeliefPolicy
}

func (f SemiPORollout) Resolve(m pomdp.Model, mMax int, rng *rand.Rand) (Solved, error) {
	if f.Policy == nil {
		return nil, fmt.Errorf("bounds: semi-PO rollout needs a belief policy")
	}
	e := &SolvedSemiPORollout{
		m:         m,
		pol:       f.Policy,
		rng:       rng,
		leafState: make([]pomdp.State, 1),
		leafW:     []float64{1},
	}
	e.leafView = belief.NewView(e.leafState, e.leafW, 0, nil)
	return e, nil
}

// SolvedSemiPORollout keeps per-depth scratch (observation index maps and
// per-branch particle lists) indexed by an explicit recursion depth, so
// frames never reallocate once capacity exists. The one-slot leaf buffer is
// shared by every single-path fall-through.
type SolvedSemiPORollout struct {
	m   pomdp.Model
	pol pomdp.BeliefPolicy
	rng *rand.Rand

	obsInd  []map[pomdp.Observation]int
	states  [][][]pomdp.State
	weights [][][]float64
	obsRep  [][]pomdp.Observation
	views   []*belief.Weighted

	leafState []pomdp.State
	leafW     []float64
	leafView  *belief.Weighted
}

func (e *SolvedSemiPORollout) Bound(b pomdp.Belief, maxDepth int) float64 {
	return e.recurse(b, 0, maxDepth-b.Depth())
}

func (e *SolvedSemiPORollout) recurse(b pomdp.Belief, d, steps int) float64 {
	if steps <= 0 || b.WeightSum() == 0 {
		return 0
	}
	e.ensure(d)
	a := e.pol.ActionForBelief(b)
	ind := e.obsInd[d]
	clear(ind)
	e.obsRep[d] = e.obsRep[d][:0]

	rsum := 0.0
	wsum := 0.0
	for i := 0; i < b.NParticles(); i++ {
		w := b.Weight(i)
		s := b.Particle(i)
		if w <= 0 || e.m.IsTerminal(s) {
			continue
		}
		wsum += w
		sp, o, r := e.m.Step(s, a, e.rng)
		rsum += w * r
		if e.m.IsTerminal(sp) {
			continue
		}
		j, ok := ind[o]
		if !ok {
			j = len(e.obsRep[d])
			ind[o] = j
			e.obsRep[d] = append(e.obsRep[d], o)
			if j < len(e.states[d]) {
				e.states[d][j] = e.states[d][j][:0]
				e.weights[d][j] = e.weights[d][j][:0]
			} else {
				e.states[d] = append(e.states[d], nil)
				e.weights[d] = append(e.weights[d], nil)
			}
		}
		e.states[d][j] = append(e.states[d][j], sp)
		e.weights[d][j] = append(e.weights[d][j], w)
	}
	if wsum == 0 {
		return 0
	}

	total := rsum
	gamma := e.m.Discount()
	for j := range e.obsRep[d] {
		ss := e.states[d][j]
		ww := e.weights[d][j]
		var v float64
		if len(ss) == 1 {
			v = e.single(ss[0], b.Depth()+1, steps-1)
		} else {
			e.views[d].Rebind(ss, ww, b.Depth()+1, e.obsRep[d][j])
			v = e.recurse(e.views[d], d+1, steps-1)
		}
		total += gamma * floats.Sum(ww) * v
	}
	return total / wsum
}

// single runs one particle forward, feeding the policy a one-particle view.
func (e *SolvedSemiPORollout) single(s pomdp.State, depth, steps int) float64 {
	total := 0.0
	disc := 1.0
	gamma := e.m.Discount()
	for t := 0; t < steps && !e.m.IsTerminal(s); t++ {
		e.leafState[0] = s
		e.leafView.Rebind(e.leafState, e.leafW, depth+t, nil)
		sp, _, r := e.m.Step(s, e.pol.ActionForBelief(e.leafView), e.rng)
		total += disc * r
		disc *= gamma
		s = sp
	}
	return total
}

func (e *SolvedSemiPORollout) ensure(d int) {
	for len(e.obsInd) <= d {
		e.obsInd = append(e.obsInd, make(map[pomdp.Observation]int))
		e.states = append(e.states, nil)
		e.weights = append(e.weights, nil)
		e.obsRep = append(e.obsRep, nil)
		e.views = append(e.views, belief.NewView(nil, nil, 0, nil))
	}
}
