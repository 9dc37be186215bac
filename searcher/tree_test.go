package searcher

import (
	"testing"

	"adops/belief"
	"adops/pomdp"

	"github.com/stretchr/testify/require"
)

func newRootedTree() *Tree {
	t := NewTree(16)
	root := belief.New([]pomdp.State{"s0", "s1"}, []float64{1, 1})
	t.SetRoot(root, -10, 0)
	return t
}

func TestTreeHandles(t *testing.T) {
	tr := newRootedTree()

	require.Equal(t, 1, tr.NBNodes())
	require.Equal(t, -1, tr.Parent[0], "root has no parent branch")
	require.Equal(t, 0, tr.Depth[0])

	ba := tr.AddBa(0, "listen")
	require.Equal(t, 0, ba)
	require.Equal(t, []int{ba}, tr.Children[0])
	require.Equal(t, 0, tr.BaParent[ba])

	b := tr.AddB(ba, "hear", 0.6, []float64{1, 0}, 1, -10, 0)
	require.Equal(t, 1, b)
	require.Equal(t, []int{b}, tr.BaChildren[ba])
	require.Equal(t, ba, tr.Parent[b])
	require.Equal(t, 1, tr.Depth[b])
	require.Equal(t, 0.6, tr.ObsProb[b])
}

func TestTreePanicsOnCrossedArenas(t *testing.T) {
	tr := newRootedTree()

	require.Panics(t, func() { tr.AddBa(5, "a") }, "b-node handle out of range")
	require.Panics(t, func() { tr.AddB(2, "o", 1, nil, 1, 0, 0) }, "ba-node handle out of range")
	require.Panics(t, func() {
		other := NewTree(4)
		other.SetRoot(belief.New(nil, nil), 0, 0)
		other.SetRoot(belief.New(nil, nil), 0, 0)
	}, "tree already has a root")
}

func TestTreeReset(t *testing.T) {
	tr := newRootedTree()
	ba := tr.AddBa(0, "a")
	tr.AddB(ba, "o", 1, []float64{1, 1}, 1, -5, 5)

	tr.Reset()
	require.Zero(t, tr.NBNodes())
	require.Zero(t, tr.NBaNodes())
	require.Nil(t, tr.Root)

	// reusable after reset
	tr.SetRoot(belief.New([]pomdp.State{"x"}, []float64{1}), -1, 1)
	require.Equal(t, 1, tr.NBNodes())
	require.Equal(t, -1.0, tr.L[0])
	require.Equal(t, 1.0, tr.U[0])
}

func TestBestBaU(t *testing.T) {
	tr := newRootedTree()
	a := tr.AddBa(0, "a")
	b := tr.AddBa(0, "b")
	tr.BaU[a] = 1
	tr.BaU[b] = 3

	require.Equal(t, b, tr.bestBaU(0))
	tr.BaU[a] = 5
	require.Equal(t, a, tr.bestBaU(0))
}
