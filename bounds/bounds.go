// Package bounds provides the leaf value estimators that feed the belief
// tree's lower and upper bounds. Estimators are resolved once at planner
// construction into solved forms that hold their policy, RNG and scratch.
package bounds

import (
	"fmt"
	"math"

	"adops/belief"
	"adops/pomdp"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// Estimator is an unsolved bound specification.
type Estimator interface {
	Resolve(m pomdp.Model, mMax int, rng *rand.Rand) (Solved, error)
}

// Solved evaluates a bound on a single belief.
type Solved interface {
	Bound(b pomdp.Belief, maxDepth int) float64
}

// BatchSolved additionally evaluates sibling beliefs that share one particle
// vector P but differ in weights and incoming observation, in a single inner
// pass over P.
type BatchSolved interface {
	Solved
	BatchBound(dst []float64, P []pomdp.State, W [][]float64, obs []pomdp.Observation, depth, maxDepth int)
}

// Constant is a fixed bound value.
type Constant float64

func (c Constant) Resolve(pomdp.Model, int, *rand.Rand) (Solved, error) {
	if math.IsInf(float64(c), 0) || math.IsNaN(float64(c)) {
		return nil, fmt.Errorf("bounds: constant bound %v is not finite", float64(c))
	}
	return solvedConstant(c), nil
}

type solvedConstant float64

func (c solvedConstant) Bound(pomdp.Belief, int) float64 { return float64(c) }

func (c solvedConstant) BatchBound(dst []float64, _ []pomdp.State, _ [][]float64, _ []pomdp.Observation, _, _ int) {
	for i := range dst {
		dst[i] = float64(c)
	}
}

// Func evaluates a user callback on the belief.
type Func func(m pomdp.Model, b pomdp.Belief) float64

func (f Func) Resolve(m pomdp.Model, _ int, _ *rand.Rand) (Solved, error) {
	if f == nil {
		return nil, fmt.Errorf("bounds: nil bound function")
	}
	return &solvedFunc{m: m, f: f}, nil
}

type solvedFunc struct {
	m pomdp.Model
	f Func
}

func (e *solvedFunc) Bound(b pomdp.Belief, _ int) float64 { return e.f(e.m, b) }

// weightedMean is sum(w*v)/sum(w), zero when the weight mass vanishes.
func weightedMean(vals, w []float64) float64 {
	sum := floats.Sum(w)
	if sum == 0 {
		return 0
	}
	return floats.Dot(vals, w) / sum
}

// beliefWeights copies a belief's weights into scratch for dot products.
func beliefWeights(buf []float64, b pomdp.Belief) []float64 {
	buf = buf[:0]
	for i := 0; i < b.NParticles(); i++ {
		buf = append(buf, b.Weight(i))
	}
	return buf
}

// batchByViews is the fallback vector form: one short-lived view per sibling.
func batchByViews(s Solved, view *belief.Weighted, dst []float64, P []pomdp.State, W [][]float64, obs []pomdp.Observation, depth, maxDepth int) {
	for i := range dst {
		view.Rebind(P, W[i], depth, obs[i])
		dst[i] = s.Bound(view, maxDepth)
	}
}
