package bounds

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"adops/belief"
	"adops/pomdp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// chain is a deterministic MDP: position advances by one per step with
// reward 1 until the terminal position 3. Observation is always 0.
type chain struct{}

func (chain) Actions(pomdp.Belief) []pomdp.Action { return []pomdp.Action{"go"} }

func (chain) Step(s pomdp.State, _ pomdp.Action, _ *rand.Rand) (pomdp.State, pomdp.Observation, float64) {
	return s.(int) + 1, 0, 1
}

func (chain) ObsWeight(_ pomdp.Action, _ pomdp.State, _ pomdp.Observation) float64 { return 1 }

func (chain) IsTerminal(s pomdp.State) bool { return s.(int) >= 3 }

func (chain) Discount() float64 { return 0.5 }

func (chain) InitialBelief() pomdp.Distribution { return nil }

func rngFor(t *testing.T) *rand.Rand {
	t.Helper()
	return rand.New(rand.NewSource(1))
}

func TestConstant(t *testing.T) {
	t.Run("rejects non-finite values", func(t *testing.T) {
		_, err := Constant(1).Resolve(chain{}, 10, rngFor(t))
		require.NoError(t, err)
		_, err = Constant(math.Inf(-1)).Resolve(chain{}, 10, rngFor(t))
		require.Error(t, err, "infinite bound specs are configuration errors")
	})

	t.Run("vector form fills the value", func(t *testing.T) {
		s, err := Constant(-3).Resolve(chain{}, 10, rngFor(t))
		require.NoError(t, err)
		dst := make([]float64, 4)
		s.(BatchSolved).BatchBound(dst, nil, nil, nil, 0, 10)
		require.Equal(t, []float64{-3, -3, -3, -3}, dst)
	})
}

func TestFORollout(t *testing.T) {
	s, err := FORollout{Policy: pomdp.FixedPolicy{A: "go"}}.Resolve(chain{}, 10, rngFor(t))
	require.NoError(t, err)

	t.Run("weighted mean of deterministic rollouts", func(t *testing.T) {
		// from 0: 1 + 0.5 + 0.25 = 1.75; from 2: 1
		b := belief.NewView([]pomdp.State{0, 2}, []float64{1, 3}, 0, nil)
		got := s.Bound(b, 10)
		require.InDelta(t, (1*1.75+3*1)/4, got, 1e-12)
	})

	t.Run("terminal particles contribute zero", func(t *testing.T) {
		b := belief.NewView([]pomdp.State{3}, []float64{1}, 0, nil)
		require.Zero(t, s.Bound(b, 10))
	})

	t.Run("depth shortens the rollout", func(t *testing.T) {
		b := belief.NewView([]pomdp.State{0}, []float64{1}, 9, nil)
		require.InDelta(t, 1.0, s.Bound(b, 10), 1e-12, "one step left at depth 9")
	})

	t.Run("vector form shares one pass over particles", func(t *testing.T) {
		P := []pomdp.State{0, 2}
		W := [][]float64{{1, 0}, {0, 1}, {1, 1}}
		dst := make([]float64, 3)
		s.(BatchSolved).BatchBound(dst, P, W, []pomdp.Observation{0, 0, 0}, 0, 10)
		require.InDelta(t, 1.75, dst[0], 1e-12)
		require.InDelta(t, 1.0, dst[1], 1e-12)
		require.InDelta(t, 1.375, dst[2], 1e-12)
	})
}

type chainValue struct{}

func (chainValue) Value(s pomdp.State) float64 { return float64(10 - s.(int)) }

func TestFOValue(t *testing.T) {
	s, err := FOValue{Policy: chainValue{}}.Resolve(chain{}, 10, rngFor(t))
	require.NoError(t, err)

	b := belief.NewView([]pomdp.State{0, 2}, []float64{1, 1}, 0, nil)
	require.InDelta(t, 9.0, s.Bound(b, 10), 1e-12)

	t.Run("terminal states are worth zero", func(t *testing.T) {
		b := belief.NewView([]pomdp.State{3}, []float64{2}, 0, nil)
		require.Zero(t, s.Bound(b, 10))
	})
}

func TestPORollout(t *testing.T) {
	s, err := PORollout{Policy: pomdp.FixedPolicy{A: "go"}}.Resolve(chain{}, 10, rngFor(t))
	require.NoError(t, err)

	b := belief.NewView([]pomdp.State{0}, []float64{1}, 0, nil)
	require.InDelta(t, 1.75, s.Bound(b, 10), 1e-12)
}

func TestPOValue(t *testing.T) {
	s, err := POValue{Policy: beliefValue{}}.Resolve(chain{}, 10, rngFor(t))
	require.NoError(t, err)
	b := belief.NewView([]pomdp.State{0}, []float64{2}, 0, nil)
	require.Equal(t, 42.0, s.Bound(b, 10))
}

type beliefValue struct{}

func (beliefValue) ValueForBelief(pomdp.Belief) float64 { return 42 }

func TestSemiPORollout(t *testing.T) {
	s, err := SemiPORollout{Policy: pomdp.FixedPolicy{A: "go"}}.Resolve(chain{}, 10, rngFor(t))
	require.NoError(t, err)

	t.Run("deterministic chain matches the plain rollout", func(t *testing.T) {
		b := belief.NewView([]pomdp.State{0, 0}, []float64{1, 1}, 0, nil)
		require.InDelta(t, 1.75, s.Bound(b, 10), 1e-12)
	})

	t.Run("empty belief is worth zero", func(t *testing.T) {
		b := belief.NewView(nil, nil, 0, nil)
		require.Zero(t, s.Bound(b, 10))
	})

	t.Run("scratch survives repeated evaluation", func(t *testing.T) {
		b := belief.NewView([]pomdp.State{0, 1}, []float64{1, 2}, 0, nil)
		first := s.Bound(b, 10)
		require.InDelta(t, first, s.Bound(b, 10), 1e-12)
	})
}

func TestIndependent(t *testing.T) {
	t.Run("resolve requires both estimators", func(t *testing.T) {
		_, err := Independent{Lower: Constant(0)}.Resolve(chain{}, 10, rngFor(t))
		require.Error(t, err)
	})

	t.Run("small disagreement is lifted silently", func(t *testing.T) {
		s, err := Independent{Lower: Constant(1), Upper: Constant(1)}.Resolve(chain{}, 10, rngFor(t))
		require.NoError(t, err)
		s.FixThresh = 1e-3
		l, u := s.fix(1.0, 1.0-1e-4)
		require.Equal(t, 1.0, l)
		require.Equal(t, 1.0, u, "upper lifted to lower inside the tolerance")
	})

	t.Run("large disagreement warns and stands", func(t *testing.T) {
		var buf bytes.Buffer
		saved := log.Logger
		log.Logger = zerolog.New(&buf)
		defer func() { log.Logger = saved }()

		s, _ := Independent{Lower: Constant(0), Upper: Constant(0)}.Resolve(chain{}, 10, rngFor(t))
		s.FixThresh = 1e-3
		l, u := s.fix(1.0, 0.0)
		require.Equal(t, 1.0, l)
		require.Equal(t, 0.0, u)
		require.Contains(t, buf.String(), "lower bound exceeds upper bound")
	})

	t.Run("batch evaluates pairs and fixes each", func(t *testing.T) {
		s, err := Fixed(-20, 0).Resolve(chain{}, 10, rngFor(t))
		require.NoError(t, err)
		L := make([]float64, 2)
		U := make([]float64, 2)
		s.BatchBounds(L, U, []pomdp.State{0}, [][]float64{{1}, {1}}, []pomdp.Observation{0, 0}, 1, 10)
		require.Equal(t, []float64{-20, -20}, L)
		require.Equal(t, []float64{0, 0}, U)
	})

	t.Run("non-finite bounds emit a diagnostic", func(t *testing.T) {
		var buf bytes.Buffer
		saved := log.Logger
		log.Logger = zerolog.New(&buf)
		defer func() { log.Logger = saved }()

		s, _ := Fixed(0, 1).Resolve(chain{}, 10, rngFor(t))
		s.fix(0, 1/zero())
		require.True(t, strings.Contains(buf.String(), "not finite"))
	})
}

func zero() float64 { return 0 }
