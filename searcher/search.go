package searcher

import (
	"fmt"
	"math"
	"time"

	"adops/belief"
	"adops/bounds"
	"adops/pomdp"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Planner is a solver bound to a model. It owns the tree arenas, the root
// resample buffer, the packing scratch and the solved bound estimators, and
// reuses all of them across decision epochs. Not safe for concurrent use:
// the search is single-threaded and fully synchronous.
type Planner struct {
	sol  Solver
	m    pomdp.Model
	bnds *bounds.SolvedIndependent
	rng  *rand.Rand

	tree      *Tree
	rootBuf   *belief.Weighted
	view      *belief.Weighted
	resampled *belief.Weighted
	cnt       []int
	scratch   expandScratch

	depths []int
}

// Info reports what a single Plan call did.
type Info struct {
	// Depths is the terminal depth of each trial, in order.
	Depths   []int
	Trials   int
	PlanTime time.Duration
	// Tree is the search tree, populated only when the solver was built
	// with WithTreeInInfo.
	Tree *Tree
}

// Plan searches forward from the belief d and returns the chosen action.
// A panic out of the model or a bound estimator is caught here: with a
// default-action fallback configured the fallback is returned along with
// whatever info accumulated, otherwise the error surfaces.
func (p *Planner) Plan(d pomdp.Distribution) (act pomdp.Action, info *Info, err error) {
	info = &Info{}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		info.Depths = append(info.Depths, p.depths...)
		info.Trials = len(p.depths)
		if e := fmt.Errorf("planning: %v", r); p.sol.DefaultAction != nil {
			log.Error().Err(e).Msg("expansion failed, falling back to default action")
			act = p.sol.DefaultAction(p.m, d, e)
			err = nil
		} else {
			act, err = nil, e
		}
	}()

	start := time.Now()
	p.buildTree(d, start)
	act = p.bestAction()
	info.Depths = append(info.Depths, p.depths...)
	info.Trials = len(p.depths)
	info.PlanTime = time.Since(start)
	if p.sol.TreeInInfo {
		info.Tree = p.tree
	}
	return act, info, nil
}

// buildTree resets or allocates the tree for a root belief and runs trials
// until the root gap closes, the budget expires or the trial cap is hit.
func (p *Planner) buildTree(d pomdp.Distribution, start time.Time) {
	p.depths = p.depths[:0]

	var root *belief.Weighted
	if p.sol.TreeInInfo {
		// the caller keeps this tree, so it cannot be recycled
		p.tree = NewTree(p.sol.NumB)
		root = belief.New(
			make([]pomdp.State, 0, p.sol.MMax),
			make([]float64, 0, p.sol.MMax),
		)
	} else {
		p.tree.Reset()
		root = p.rootBuf
	}
	belief.ResampleDist(root, d, p.m, p.sol.Grid, p.cnt, p.sol.MMin, p.sol.MMax, p.sol.Zeta, p.rng)
	root.SetContext(0, nil)
	l, u := p.bnds.Bounds(root, p.sol.MaxDepth)
	p.tree.SetRoot(root, l, u)

	t := p.tree
	for t.U[0]-t.L[0] > p.sol.Epsilon &&
		time.Since(start) < p.sol.TMax &&
		len(p.depths) < p.sol.MaxTrials {
		p.depths = append(p.depths, p.trial())
	}
	if len(t.Children[0]) == 0 {
		// budget or gap closed before the first expansion; the root still
		// needs action branches to choose from
		dl, du := p.expand(0)
		p.backup(0, dl, du)
	}
	if elapsed := time.Since(start); elapsed > time.Duration(float64(p.sol.TMax)*(1+p.sol.OvertimeWarn)) {
		log.Warn().
			Dur("elapsed", elapsed).
			Dur("budget", p.sol.TMax).
			Msg("planning ran over its time budget")
	}
}

// trial descends from the root by next-best, expanding each leaf it reaches
// and backing the bound deltas up along the ancestry. It keeps descending
// past a fresh expansion until a backup relabels a best action, the excess
// uncertainty runs out, or the depth limit is hit. Returns the depth at
// which the trial ended.
func (p *Planner) trial() int {
	t := p.tree
	b := 0
	for {
		if t.Depth[b] >= p.sol.MaxDepth {
			// force-collapse the horizon leaf to zero bounds
			p.backup(b, -t.L[b], -t.U[b])
			return t.Depth[b]
		}
		if len(t.Children[b]) == 0 {
			dl, du := p.expand(b)
			relabeled := p.backup(b, dl, du)
			if relabeled || len(t.Children[b]) == 0 {
				return t.Depth[b]
			}
		}
		c, eu := p.nextBest(b)
		if c < 0 || eu <= 0 {
			return t.Depth[b]
		}
		b = c
	}
}

// nextBest picks the action branch maximizing the upper bound, then the
// observation child maximizing excess uncertainty: the gap beyond what is
// tolerable at that depth given the root gap.
func (p *Planner) nextBest(b int) (child int, eu float64) {
	t := p.tree
	ba := t.bestBaU(b)
	if ba < 0 {
		return -1, 0
	}
	rootGap := math.Max(t.U[0]-t.L[0], 0)
	child = -1
	eu = math.Inf(-1)
	for _, c := range t.BaChildren[ba] {
		tolerated := p.sol.Xi * rootGap / math.Pow(p.m.Discount(), float64(t.Depth[c]))
		e := t.ObsProb[c] * (t.U[c] - t.L[c] - tolerated)
		if e > eu {
			eu = e
			child = c
		}
	}
	return child, eu
}

// backup applies (dl, du) at b and walks both deltas to the root. The upper
// bound tracks max over action branches; the lower bound only ever rises.
// Reports whether any ancestor's best action branch changed.
func (p *Planner) backup(b int, dl, du float64) bool {
	t := p.tree
	t.L[b] += dl
	t.U[b] += du
	changed := false
	gamma := p.m.Discount()
	for t.Parent[b] >= 0 {
		ba := t.Parent[b]
		parent := t.BaParent[ba]
		prev := t.bestBaU(parent)
		t.BaU[ba] += gamma * t.ObsProb[b] * du
		best := t.bestBaU(parent)
		if best != prev {
			changed = true
		}
		du = t.BaU[best] - t.U[parent]
		t.U[parent] = t.BaU[best]

		if dl != 0 {
			t.BaL[ba] += gamma * t.ObsProb[b] * dl
			if t.BaL[ba] > t.L[parent] {
				dl = t.BaL[ba] - t.L[parent]
				t.L[parent] = t.BaL[ba]
			} else {
				dl = 0
			}
		}
		b = parent
	}
	return changed
}

// bestAction returns the root action branch with the maximal lower bound,
// breaking exact ties uniformly at random.
func (p *Planner) bestAction() pomdp.Action {
	t := p.tree
	best := math.Inf(-1)
	ties := 0
	var act pomdp.Action
	for _, ba := range t.Children[0] {
		switch {
		case t.BaL[ba] > best:
			best = t.BaL[ba]
			act = t.BaAction[ba]
			ties = 1
		case t.BaL[ba] == best:
			ties++
			if p.rng.Intn(ties) == 0 {
				act = t.BaAction[ba]
			}
		}
	}
	return act
}

// CurrentTree exposes the current search tree, mainly for tests and debugging.
func (p *Planner) CurrentTree() *Tree { return p.tree }
