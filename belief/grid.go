package belief

import (
	"fmt"
	"math"
	"sort"

	"adops/pomdp"

	"gonum.org/v1/gonum/stat/distuv"
)

// Grid maps states to dense bin indices for the KLD sample-size rule.
type Grid interface {
	Bin(s pomdp.State) int
	Bins() int
}

// RectGrid discretizes pomdp.Located states by per-dimension cut points.
// A dimension with k cuts has k+1 bins; bins compose by mixed radix.
type RectGrid struct {
	cuts [][]float64
	bins int
}

func NewRectGrid(cuts ...[]float64) (*RectGrid, error) {
	if len(cuts) == 0 {
		return nil, fmt.Errorf("grid: need at least one dimension")
	}
	bins := 1
	for d, c := range cuts {
		if len(c) == 0 {
			return nil, fmt.Errorf("grid: dimension %d has no cut points", d)
		}
		if !sort.Float64sAreSorted(c) {
			return nil, fmt.Errorf("grid: dimension %d cut points not ascending", d)
		}
		bins *= len(c) + 1
	}
	return &RectGrid{cuts: cuts, bins: bins}, nil
}

func (g *RectGrid) Bins() int { return g.bins }

func (g *RectGrid) Bin(s pomdp.State) int {
	c := s.(pomdp.Located).Coords()
	idx := 0
	stride := 1
	for d, cut := range g.cuts {
		idx += stride * sort.SearchFloat64s(cut, c[d])
		stride *= len(cut) + 1
	}
	return idx
}

// UniformCuts spaces bins-1 cut points evenly over (lo, hi), yielding bins
// bins over the line.
func UniformCuts(lo, hi float64, bins int) []float64 {
	cuts := make([]float64, bins-1)
	step := (hi - lo) / float64(bins)
	for i := range cuts {
		cuts[i] = lo + step*float64(i+1)
	}
	return cuts
}

// Access increments cnt at s's bin iff the bin was unoccupied and reports 1
// for a fresh bin, 0 otherwise. Summing the results over a sample counts its
// occupied bins.
func Access(g Grid, cnt []int, s pomdp.State) int {
	i := g.Bin(s)
	if cnt[i] != 0 {
		return 0
	}
	cnt[i]++
	return 1
}

// klTarget is the divergence bound of Fox's sample-size rule.
const klTarget = 0.05

// KLDSampleSize returns the minimum sample size for the empirical
// distribution over k occupied bins to stay within klTarget KL divergence of
// the truth with confidence 1-zeta, by the Wilson-Hilferty form of Fox's
// rule. Monotone in k; k <= 1 needs no spread and returns 1.
func KLDSampleSize(k int, zeta float64) float64 {
	if k <= 1 {
		return 1
	}
	d := float64(k - 1)
	z := distuv.UnitNormal.Quantile(1 - zeta)
	a := 1 - 2/(9*d) + math.Sqrt(2/(9*d))*z
	return d / (2 * klTarget) * a * a * a
}
