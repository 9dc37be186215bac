package bounds

import (
	"fmt"
	"math"

	"adops/belief"
	"adops/pomdp"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Independent bundles an independent lower and upper estimator.
type Independent struct {
	Lower, Upper Estimator
}

// Fixed is an Independent pair of constants.
func Fixed(lower, upper float64) Independent {
	return Independent{Lower: Constant(lower), Upper: Constant(upper)}
}

func (ib Independent) Resolve(m pomdp.Model, mMax int, rng *rand.Rand) (*SolvedIndependent, error) {
	if ib.Lower == nil || ib.Upper == nil {
		return nil, fmt.Errorf("bounds: independent pair needs both estimators")
	}
	lower, err := ib.Lower.Resolve(m, mMax, rng)
	if err != nil {
		return nil, fmt.Errorf("resolving lower bound: %w", err)
	}
	upper, err := ib.Upper.Resolve(m, mMax, rng)
	if err != nil {
		return nil, fmt.Errorf("resolving upper bound: %w", err)
	}
	return &SolvedIndependent{
		lower:     lower,
		upper:     upper,
		FixThresh: 1e-5,
		Warn:      true,
		view:      belief.NewView(nil, nil, 0, nil),
	}, nil
}

// SolvedIndependent evaluates both bounds and reconciles estimator
// disagreement: u < l within FixThresh is silently lifted to u = l, anything
// worse is a diagnostic.
type SolvedIndependent struct {
	lower, upper Solved
	FixThresh    float64
	Warn         bool
	view         *belief.Weighted

	lbuf, ubuf []float64
}

func (s *SolvedIndependent) Bounds(b pomdp.Belief, maxDepth int) (l, u float64) {
	l = s.lower.Bound(b, maxDepth)
	u = s.upper.Bound(b, maxDepth)
	return s.fix(l, u)
}

// BatchBounds fills L and U for sibling beliefs over particles P. Estimators
// with a vector form run it; the rest evaluate through short-lived views.
func (s *SolvedIndependent) BatchBounds(L, U []float64, P []pomdp.State, W [][]float64, obs []pomdp.Observation, depth, maxDepth int) {
	if bl, ok := s.lower.(BatchSolved); ok {
		bl.BatchBound(L, P, W, obs, depth, maxDepth)
	} else {
		batchByViews(s.lower, s.view, L, P, W, obs, depth, maxDepth)
	}
	if bu, ok := s.upper.(BatchSolved); ok {
		bu.BatchBound(U, P, W, obs, depth, maxDepth)
	} else {
		batchByViews(s.upper, s.view, U, P, W, obs, depth, maxDepth)
	}
	for i := range L {
		L[i], U[i] = s.fix(L[i], U[i])
	}
}

func (s *SolvedIndependent) fix(l, u float64) (float64, float64) {
	if math.IsNaN(l) || math.IsInf(l, 0) || math.IsNaN(u) || math.IsInf(u, 0) {
		if s.Warn {
			log.Warn().Float64("lower", l).Float64("upper", u).Msg("bound estimate is not finite")
		}
		return l, u
	}
	if u < l {
		if u >= l-s.FixThresh {
			u = l
		} else if s.Warn {
			log.Warn().Float64("lower", l).Float64("upper", u).Msg("lower bound exceeds upper bound")
		}
	}
	return l, u
}
