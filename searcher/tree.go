// Package searcher implements an online anytime POMDP planner: a belief
// tree over weighted particle sets, grown by adaptive resampling and
// observation packing, searched by trial-based descent with upper and lower
// bound backup.
package searcher

import (
	"adops/belief"
	"adops/pomdp"
)

// Tree stores belief nodes (b-nodes) and action branches (ba-nodes) in two
// parallel column arenas addressed by integer handles. Handles are stable:
// columns only grow by append until Reset. Cross-links are handles, never
// pointers, so the structure is cycle-free and cache friendly.
//
// The root b-node is handle 0 and has parent -1. Its weights alias the
// resampled root belief held in Root; every other b-node's particles live on
// its parent ba-node.
type Tree struct {
	// b-node columns
	Weights  [][]float64
	Children [][]int // ba-node handles
	Parent   []int   // ba-node handle, -1 at the root
	OwnObs   []pomdp.Observation
	ObsProb  []float64
	L, U     []float64
	Depth    []int

	// ba-node columns
	BaParticles [][]pomdp.State
	BaChildren  [][]int // b-node handles
	BaParent    []int
	BaAction    []pomdp.Action
	BaRbar      []float64
	BaL, BaU    []float64

	Root *belief.Weighted
}

// NewTree preallocates the b-node arena for about numB nodes.
func NewTree(numB int) *Tree {
	t := &Tree{
		Weights:  make([][]float64, 0, numB),
		Children: make([][]int, 0, numB),
		Parent:   make([]int, 0, numB),
		OwnObs:   make([]pomdp.Observation, 0, numB),
		ObsProb:  make([]float64, 0, numB),
		L:        make([]float64, 0, numB),
		U:        make([]float64, 0, numB),
		Depth:    make([]int, 0, numB),
	}
	return t
}

// Reset clears both arenas in place, retaining column capacity, so the tree
// can be rebuilt for the next decision epoch.
func (t *Tree) Reset() {
	t.Weights = t.Weights[:0]
	t.Children = t.Children[:0]
	t.Parent = t.Parent[:0]
	t.OwnObs = t.OwnObs[:0]
	t.ObsProb = t.ObsProb[:0]
	t.L = t.L[:0]
	t.U = t.U[:0]
	t.Depth = t.Depth[:0]
	t.BaParticles = t.BaParticles[:0]
	t.BaChildren = t.BaChildren[:0]
	t.BaParent = t.BaParent[:0]
	t.BaAction = t.BaAction[:0]
	t.BaRbar = t.BaRbar[:0]
	t.BaL = t.BaL[:0]
	t.BaU = t.BaU[:0]
	t.Root = nil
}

// SetRoot installs the resampled root belief as b-node 0.
func (t *Tree) SetRoot(root *belief.Weighted, l, u float64) {
	if len(t.Parent) != 0 {
		panic("searcher: root added to a non-empty tree")
	}
	t.Root = root
	t.Weights = append(t.Weights, root.Weights())
	t.Children = append(t.Children, nil)
	t.Parent = append(t.Parent, -1)
	t.OwnObs = append(t.OwnObs, nil)
	t.ObsProb = append(t.ObsProb, 1)
	t.L = append(t.L, l)
	t.U = append(t.U, u)
	t.Depth = append(t.Depth, 0)
}

// AddB appends an observation child under ba and returns its handle.
func (t *Tree) AddB(ba int, obs pomdp.Observation, prob float64, weights []float64, depth int, l, u float64) int {
	if ba < 0 || ba >= len(t.BaParent) {
		panic("searcher: ba-node handle out of range")
	}
	b := len(t.Parent)
	t.Weights = append(t.Weights, weights)
	t.Children = append(t.Children, nil)
	t.Parent = append(t.Parent, ba)
	t.OwnObs = append(t.OwnObs, obs)
	t.ObsProb = append(t.ObsProb, prob)
	t.L = append(t.L, l)
	t.U = append(t.U, u)
	t.Depth = append(t.Depth, depth)
	t.BaChildren[ba] = append(t.BaChildren[ba], b)
	return b
}

// AddBa appends an action branch under b-node b and returns its handle.
func (t *Tree) AddBa(b int, a pomdp.Action) int {
	if b < 0 || b >= len(t.Parent) {
		panic("searcher: b-node handle out of range")
	}
	ba := len(t.BaParent)
	t.BaParticles = append(t.BaParticles, nil)
	t.BaChildren = append(t.BaChildren, nil)
	t.BaParent = append(t.BaParent, b)
	t.BaAction = append(t.BaAction, a)
	t.BaRbar = append(t.BaRbar, 0)
	t.BaL = append(t.BaL, 0)
	t.BaU = append(t.BaU, 0)
	t.Children[b] = append(t.Children[b], ba)
	return ba
}

func (t *Tree) NBNodes() int  { return len(t.Parent) }
func (t *Tree) NBaNodes() int { return len(t.BaParent) }

// bestBaU is the handle of b's action branch with the largest upper bound.
func (t *Tree) bestBaU(b int) int {
	best := -1
	for _, ba := range t.Children[b] {
		if best < 0 || t.BaU[ba] > t.BaU[best] {
			best = ba
		}
	}
	return best
}
