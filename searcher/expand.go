package searcher

import (
	"adops/belief"
	"adops/pomdp"

	"gonum.org/v1/gonum/floats"
)

// packing and propagation scratch, cleared (length zeroed, capacity kept) at
// the start of each ba-node expansion.
type expandScratch struct {
	obsList []pomdp.Observation // raw observations in first-seen order
	obsW    []float64           // per raw observation, summed source weight
	obsIdx  map[pomdp.Observation]int

	packObs  []pomdp.Observation // accepted packed observations
	packW    []float64           // merged weight totals
	packWp   [][]float64         // reweighted particle vectors
	packNorm [][]float64         // L1-normalized prefixes for distance tests

	tmpW  []float64
	tmpN  []float64
	wrefs [][]float64
	lbuf  []float64
	ubuf  []float64
}

func (sc *expandScratch) clear() {
	sc.obsList = sc.obsList[:0]
	sc.obsW = sc.obsW[:0]
	clear(sc.obsIdx)
	sc.packObs = sc.packObs[:0]
	sc.packW = sc.packW[:0]
	sc.packWp = sc.packWp[:0]
	sc.packNorm = sc.packNorm[:0]
}

// growBuf revives a spare buffer slot when one exists, so repeated
// expansions stop allocating once capacity has been reached.
func growBuf(bufs [][]float64) ([][]float64, []float64) {
	if len(bufs) < cap(bufs) {
		bufs = bufs[:len(bufs)+1]
		return bufs, bufs[len(bufs)-1][:0]
	}
	return append(bufs, nil), nil
}

// expand grows the leaf b-node b by one ply: materialize its belief,
// propagate particles through every action, pack observation branches, and
// initialize child bounds. Returns the deltas to back up at b.
func (p *Planner) expand(b int) (dl, du float64) {
	t := p.tree
	bel, dead := p.materialize(b)
	if dead {
		// zero-weight belief: collapse this subtree's bounds to zero
		return -t.L[b], -t.U[b]
	}

	depth := t.Depth[b]
	wsum := bel.WeightSum()
	gamma := p.m.Discount()
	maxL := 0.0
	maxU := 0.0
	for i, a := range p.m.Actions(bel) {
		ba := t.AddBa(b, a)
		sc := &p.scratch
		sc.clear()

		// propagate particles; terminal sources ride along with zero weight
		rsum := 0.0
		for j := 0; j < bel.NParticles(); j++ {
			w := bel.Weight(j)
			s := bel.Particle(j)
			if w <= 0 {
				t.BaParticles[ba] = append(t.BaParticles[ba], s)
				continue
			}
			sp, o, r := p.m.Step(s, a, p.rng)
			rsum += w * r
			t.BaParticles[ba] = append(t.BaParticles[ba], sp)
			k, ok := sc.obsIdx[o]
			if !ok {
				k = len(sc.obsList)
				sc.obsIdx[o] = k
				sc.obsList = append(sc.obsList, o)
				sc.obsW = append(sc.obsW, 0)
			}
			sc.obsW[k] += w
		}

		p.pack(ba, bel, a)

		// observation children with vectorized bound initialization
		nc := len(sc.packObs)
		sc.wrefs = sc.wrefs[:0]
		for k := 0; k < nc; k++ {
			sc.wrefs = append(sc.wrefs, sc.packWp[k])
		}
		sc.lbuf = resize(sc.lbuf, nc)
		sc.ubuf = resize(sc.ubuf, nc)
		p.bnds.BatchBounds(sc.lbuf, sc.ubuf, t.BaParticles[ba], sc.wrefs, sc.packObs, depth+1, p.sol.MaxDepth)

		rbar := rsum / wsum
		baL := rbar
		baU := rbar
		pwSum := floats.Sum(sc.packW)
		for k := 0; k < nc; k++ {
			prob := sc.packW[k] / pwSum
			w := append([]float64(nil), sc.packWp[k]...)
			t.AddB(ba, sc.packObs[k], prob, w, depth+1, sc.lbuf[k], sc.ubuf[k])
			baL += gamma * prob * sc.lbuf[k]
			baU += gamma * prob * sc.ubuf[k]
		}
		t.BaRbar[ba] = rbar
		t.BaL[ba] = baL
		t.BaU[ba] = baU

		if i == 0 || baL > maxL {
			maxL = baL
		}
		if i == 0 || baU > maxU {
			maxU = baU
		}
	}
	return maxL - t.L[b], maxU - t.U[b]
}

// materialize builds the belief to expand from. The root uses the resampled
// root belief. Interior nodes zero the weights of terminal particles and,
// when the design effect n/ESS passes the threshold, stratified-resample
// into the planner's scratch belief.
func (p *Planner) materialize(b int) (bel *belief.Weighted, dead bool) {
	t := p.tree
	if b == 0 {
		return t.Root, false
	}
	P := t.BaParticles[t.Parent[b]]
	w := t.Weights[b]
	for i, s := range P {
		if w[i] > 0 && p.m.IsTerminal(s) {
			w[i] = 0
		}
	}
	wsum := floats.Sum(w)
	if wsum == 0 {
		return nil, true
	}
	p.view.Rebind(P, w, t.Depth[b], t.OwnObs[b])

	sq := 0.0
	for _, x := range w {
		sq += x * x
	}
	deff := float64(len(w)) * sq / (wsum * wsum)
	if deff <= p.sol.DeffThresh {
		return p.view, false
	}
	m := belief.ResampleSize(p.view, p.sol.Grid, p.cnt, p.sol.MMin, p.sol.MMax, p.sol.Zeta)
	belief.Stratified(p.resampled, p.view, m, p.rng)
	p.resampled.SetContext(t.Depth[b], t.OwnObs[b])
	return p.resampled, false
}

// pack merges the raw observations recorded in scratch into packed buckets:
// two observations whose L1-normalized reweighted prefixes are within Delta
// induce near-identical posteriors and share one child.
func (p *Planner) pack(ba int, bel *belief.Weighted, a pomdp.Action) {
	t := p.tree
	sc := &p.scratch
	P := t.BaParticles[ba]
	n := len(P)
	short := p.sol.MMin
	if n < short {
		short = n
	}

	for _, o := range sc.obsList {
		j := sc.obsIdx[o]
		sc.tmpW = p.reweight(sc.tmpW[:0], bel, P, a, o, 0, short)
		sc.tmpN = resize(sc.tmpN, short)
		copy(sc.tmpN, sc.tmpW)
		if s := floats.Sum(sc.tmpN); s > 0 {
			floats.Scale(1/s, sc.tmpN)
		}

		merged := -1
		for k := range sc.packNorm {
			if floats.Distance(sc.packNorm[k], sc.tmpN, 1) <= p.sol.Delta {
				merged = k
				break
			}
		}
		if merged >= 0 {
			sc.packW[merged] += sc.obsW[j]
			continue
		}
		var buf []float64
		sc.packObs = append(sc.packObs, o)
		sc.packW = append(sc.packW, sc.obsW[j])
		sc.packWp, buf = growBuf(sc.packWp)
		sc.packWp[len(sc.packWp)-1] = append(buf, sc.tmpW...)
		sc.packNorm, buf = growBuf(sc.packNorm)
		sc.packNorm[len(sc.packNorm)-1] = append(buf, sc.tmpN...)
	}

	// complete the reweighting beyond the packing prefix
	for k, o := range sc.packObs {
		sc.packWp[k] = p.reweight(sc.packWp[k], bel, P, a, o, short, n)
	}
}

// reweight appends w_i * pdf(O(a, s'_i), o) for particle indices [from, to).
func (p *Planner) reweight(dst []float64, bel *belief.Weighted, P []pomdp.State, a pomdp.Action, o pomdp.Observation, from, to int) []float64 {
	for i := from; i < to; i++ {
		w := bel.Weight(i)
		if w > 0 {
			w *= p.m.ObsWeight(a, P[i], o)
		}
		dst = append(dst, w)
	}
	return dst
}

func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
