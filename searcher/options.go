package searcher

import (
	"fmt"
	"math"
	"time"

	"adops/belief"
	"adops/bounds"
	"adops/pomdp"

	"golang.org/x/exp/rand"
)

// DefaultActionFn picks the fallback action when planning fails.
type DefaultActionFn func(m pomdp.Model, d pomdp.Distribution, err error) pomdp.Action

// Solver carries the planner configuration. Build one with NewSolver and
// bind it to a model with Solve.
type Solver struct {
	Epsilon        float64       // root gap at which search terminates
	Xi             float64       // excess-uncertainty fraction in (0, 1]
	TMax           time.Duration // wall-clock budget per decision
	OvertimeWarn   float64       // warn when elapsed exceeds TMax by this fraction
	MaxTrials      int
	MaxDepth       int
	Delta          float64 // L1 observation-packing radius
	MMin, MMax     int     // particle bounds per belief
	Zeta           float64 // KLD confidence parameter in (0, 1)
	DeffThresh     float64 // design-effect threshold for in-tree resampling
	Grid           belief.Grid
	Bounds         bounds.Independent
	NumB           int // b-node arena size hint
	TreeInInfo     bool
	BoundsWarnings bool
	FixThresh      float64 // bound-consistency fix-up tolerance
	DefaultAction  DefaultActionFn
	RNG            *rand.Rand
}

type Option func(*Solver)

func WithEpsilon(eps float64) Option     { return func(s *Solver) { s.Epsilon = eps } }
func WithXi(xi float64) Option           { return func(s *Solver) { s.Xi = xi } }
func WithTimeBudget(d time.Duration) Option {
	return func(s *Solver) {
		if d > 0 {
			s.TMax = d
		}
	}
}
func WithOvertimeWarning(frac float64) Option { return func(s *Solver) { s.OvertimeWarn = frac } }
func WithMaxTrials(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.MaxTrials = n
		}
	}
}
func WithMaxDepth(d int) Option {
	return func(s *Solver) {
		if d > 0 {
			s.MaxDepth = d
		}
	}
}
func WithPackingRadius(delta float64) Option { return func(s *Solver) { s.Delta = delta } }
func WithParticles(mMin, mMax int) Option {
	return func(s *Solver) { s.MMin, s.MMax = mMin, mMax }
}
func WithZeta(zeta float64) Option           { return func(s *Solver) { s.Zeta = zeta } }
func WithDeffThreshold(thres float64) Option { return func(s *Solver) { s.DeffThresh = thres } }
func WithGrid(g belief.Grid) Option          { return func(s *Solver) { s.Grid = g } }
func WithNumB(hint int) Option {
	return func(s *Solver) {
		if hint > 0 {
			s.NumB = hint
		}
	}
}
func WithTreeInInfo() Option                { return func(s *Solver) { s.TreeInInfo = true } }
func WithoutBoundsWarnings() Option         { return func(s *Solver) { s.BoundsWarnings = false } }
func WithFixThresh(thresh float64) Option   { return func(s *Solver) { s.FixThresh = thresh } }
func WithDefaultAction(f DefaultActionFn) Option {
	return func(s *Solver) { s.DefaultAction = f }
}
func WithRNG(rng *rand.Rand) Option { return func(s *Solver) { s.RNG = rng } }

// NewSolver applies options over the defaults.
func NewSolver(b bounds.Independent, options ...Option) *Solver {
	s := &Solver{
		Epsilon:        0,
		Xi:             0.95,
		TMax:           time.Second,
		OvertimeWarn:   0.5,
		MaxTrials:      math.MaxInt32,
		MaxDepth:       90,
		Delta:          0.1,
		MMin:           30,
		MMax:           200,
		Zeta:           0.05,
		DeffThresh:     2.0,
		NumB:           10000,
		BoundsWarnings: true,
		FixThresh:      1e-5,
		Bounds:         b,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Solve binds the solver to a model: configuration is validated, bound
// estimators are resolved into their solved forms, and the planner's arenas
// and scratch are allocated.
func (s *Solver) Solve(m pomdp.Model) (*Planner, error) {
	if err := s.validate(m); err != nil {
		return nil, fmt.Errorf("solver configuration: %w", err)
	}
	rng := s.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	solved, err := s.Bounds.Resolve(m, s.MMax, rng)
	if err != nil {
		return nil, fmt.Errorf("solver configuration: %w", err)
	}
	solved.FixThresh = s.FixThresh
	solved.Warn = s.BoundsWarnings

	p := &Planner{
		sol:  *s,
		m:    m,
		bnds: solved,
		rng:  rng,
		view: belief.NewView(nil, nil, 0, nil),
		resampled: belief.New(
			make([]pomdp.State, 0, s.MMax),
			make([]float64, 0, s.MMax),
		),
		scratch: expandScratch{obsIdx: make(map[pomdp.Observation]int)},
	}
	if s.Grid != nil {
		p.cnt = make([]int, s.Grid.Bins())
	}
	if !s.TreeInInfo {
		p.tree = NewTree(s.NumB)
		p.rootBuf = belief.New(
			make([]pomdp.State, 0, s.MMax),
			make([]float64, 0, s.MMax),
		)
	}
	return p, nil
}

func (s *Solver) validate(m pomdp.Model) error {
	if s.MMin < 1 || s.MMin > s.MMax {
		return fmt.Errorf("particle bounds m_min=%d, m_max=%d are inconsistent", s.MMin, s.MMax)
	}
	if s.Xi <= 0 || s.Xi > 1 {
		return fmt.Errorf("xi=%v outside (0, 1]", s.Xi)
	}
	if s.Zeta <= 0 || s.Zeta >= 1 {
		return fmt.Errorf("zeta=%v outside (0, 1)", s.Zeta)
	}
	if s.TMax <= 0 {
		return fmt.Errorf("time budget %v is not positive", s.TMax)
	}
	if s.MaxDepth < 1 {
		return fmt.Errorf("max depth %d is not positive", s.MaxDepth)
	}
	if s.Delta < 0 {
		return fmt.Errorf("packing radius %v is negative", s.Delta)
	}
	if g := m.Discount(); g <= 0 || g > 1 {
		return fmt.Errorf("model discount %v outside (0, 1]", g)
	}
	return nil
}
