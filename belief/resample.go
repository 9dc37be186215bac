package belief

import (
	"math"

	"adops/pomdp"

	"golang.org/x/exp/rand"
)

// rejectionCap bounds consecutive terminal draws before the source
// distribution is declared empty of live states.
const rejectionCap = 10000

// ResampleDist fills dst with unit-weight draws from d, rejecting terminal
// states. With a nil grid the sample size is exactly mMax; otherwise it
// adapts between mMin and mMax by the KLD rule over occupied bins of cnt.
func ResampleDist(dst *Weighted, d pomdp.Distribution, m pomdp.Model, g Grid, cnt []int, mMin, mMax int, zeta float64, rng *rand.Rand) {
	dst.Truncate()
	if g == nil {
		for n := 0; n < mMax; n++ {
			dst.Append(drawLive(d, m, rng), 1.0)
		}
		return
	}
	for i := range cnt {
		cnt[i] = 0
	}
	k := 0
	target := mMin
	for n := 0; n < target; n++ {
		s := drawLive(d, m, rng)
		k += Access(g, cnt, s)
		dst.Append(s, 1.0)
		target = clampSize(KLDSampleSize(k, zeta), mMin, mMax)
	}
}

func drawLive(d pomdp.Distribution, m pomdp.Model, rng *rand.Rand) pomdp.State {
	for i := 0; i < rejectionCap; i++ {
		if s := d.Rand(rng); !m.IsTerminal(s) {
			return s
		}
	}
	panic("belief: distribution has no nonterminal support")
}

// ResampleSize sizes a stratified redraw of an existing weighted belief: the
// KLD rule over src's own positively weighted particles, clamped into
// [mMin, mMax]. A nil grid always yields mMax.
func ResampleSize(src *Weighted, g Grid, cnt []int, mMin, mMax int, zeta float64) int {
	if g == nil {
		return mMax
	}
	for i := range cnt {
		cnt[i] = 0
	}
	k := 0
	for i, s := range src.particles {
		if src.weights[i] > 0 {
			k += Access(g, cnt, s)
		}
	}
	return clampSize(KLDSampleSize(k, zeta), mMin, mMax)
}

// Stratified performs a single low-variance draw of m particles from src
// into dst. Output weights are equal and preserve src's weight sum.
func Stratified(dst *Weighted, src *Weighted, m int, rng *rand.Rand) {
	dst.Truncate()
	step := src.wsum / float64(m)
	u := rng.Float64() * step
	i := 0
	c := src.weights[0]
	for j := 0; j < m; j++ {
		for u > c && i+1 < len(src.particles) {
			i++
			c += src.weights[i]
		}
		dst.Append(src.particles[i], step)
		u += step
	}
}

func clampSize(v float64, lo, hi int) int {
	n := int(math.Ceil(v))
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
