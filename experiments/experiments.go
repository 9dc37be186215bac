// Package experiments runs benchmark scenarios: a planner against a
// simulated environment, with per-decision records collected and written as
// parquet.
package experiments

import (
	"fmt"
	"time"

	"adops/agent"
	"adops/belief"
	"adops/bounds"
	"adops/experiments/metrics"
	"adops/filter"
	"adops/pomdp"
	"adops/problems/baby"
	"adops/problems/lightdark"
	"adops/problems/tiger"
	"adops/searcher"

	"github.com/rs/zerolog/log"
	"github.com/seehuhn/mt19937"
	"golang.org/x/exp/rand"
)

// twister adapts the Mersenne Twister to the planner's RNG source contract.
// The environment stream stays independent of the planner stream.
type twister struct {
	*mt19937.MT19937
}

func (t twister) Seed(seed uint64) { t.MT19937.Seed(int64(seed)) }

// Run executes every scenario in cfg and writes the collected records.
func Run(cfg Config) error {
	writer, err := metrics.NewWriter(cfg.OutDir)
	if err != nil {
		return err
	}
	col := metrics.NewCollector()
	for _, sc := range cfg.Scenarios {
		if err := runScenario(sc, col); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Problem, err)
		}
	}
	if err := writer.WriteDecisions(col.Decisions()); err != nil {
		return err
	}
	if err := writer.WriteEpisodes(col.Episodes()); err != nil {
		return err
	}
	log.Info().Str("dir", writer.Dir()).Int("decisions", len(col.Decisions())).Msg("run complete")
	return nil
}

// setup is a problem bound to its scenario-appropriate estimators.
type setup struct {
	model   pomdp.Model
	bounds  bounds.Independent
	options []searcher.Option
}

func buildSetup(sc Scenario) (setup, error) {
	switch sc.Problem {
	case "tiger":
		return setup{model: tiger.New(), bounds: bounds.Fixed(-20, 0)}, nil
	case "baby":
		m := baby.New()
		return setup{
			model: m,
			bounds: bounds.Independent{
				Lower: bounds.SemiPORollout{Policy: baby.HeuristicPolicy{Thresh: 0.5}},
				Upper: bounds.Constant(0),
			},
		}, nil
	case "lightdark":
		m := lightdark.New()
		grid, err := belief.NewRectGrid(belief.UniformCuts(-10, 15, 26))
		if err != nil {
			return setup{}, err
		}
		return setup{
			model: m,
			bounds: bounds.Independent{
				Lower: bounds.FORollout{Policy: lightdark.GreedyPolicy{M: m}},
				Upper: bounds.Func(m.EntropyUpperBound),
			},
			options: []searcher.Option{searcher.WithGrid(grid)},
		}, nil
	default:
		return setup{}, fmt.Errorf("unknown problem %q", sc.Problem)
	}
}

func runScenario(sc Scenario, col *metrics.Collector) error {
	planRNG := rand.New(rand.NewSource(sc.Seed))
	su, err := buildSetup(sc)
	if err != nil {
		return err
	}

	options := append(su.options,
		searcher.WithRNG(planRNG),
		searcher.WithTimeBudget(time.Duration(sc.TimeBudgetMS)*time.Millisecond),
		searcher.WithMaxTrials(sc.MaxTrials),
		searcher.WithMaxDepth(sc.MaxDepth),
	)
	if sc.MMin > 0 && sc.MMax >= sc.MMin {
		options = append(options, searcher.WithParticles(sc.MMin, sc.MMax))
	} else if sc.MMin > 0 {
		options = append(options, searcher.WithParticles(sc.MMin, 4*sc.MMin))
	}
	if sc.Delta > 0 {
		options = append(options, searcher.WithPackingRadius(sc.Delta))
	}
	planner, err := searcher.NewSolver(su.bounds, options...).Solve(su.model)
	if err != nil {
		return err
	}

	mt := mt19937.New()
	mt.Seed(int64(sc.Seed) + 1)
	envRNG := rand.New(twister{mt})

	nFilter := sc.FilterParticles
	if nFilter == 0 {
		nFilter = 2000
	}
	f := filter.New(su.model, nFilter, envRNG)

	for ep := 0; ep < sc.Episodes; ep++ {
		if err := runEpisode(sc, ep, su.model, planner, f, envRNG, col); err != nil {
			return err
		}
	}
	return nil
}

func runEpisode(sc Scenario, ep int, m pomdp.Model, planner *searcher.Planner, f *filter.Bootstrap, envRNG *rand.Rand, col *metrics.Collector) error {
	start := time.Now()
	a := agent.New(m, planner, f)
	s := m.InitialBelief().Rand(envRNG)

	total := 0.0
	disc := 1.0
	steps := 0
	for ; steps < sc.Steps && !m.IsTerminal(s); steps++ {
		act, info, err := a.Act()
		if err != nil {
			return err
		}

		sp, o, r := m.Step(s, act, envRNG)
		total += disc * r
		disc *= m.Discount()

		depth := 0
		for _, d := range info.Depths {
			if d > depth {
				depth = d
			}
		}
		col.AddDecision(metrics.DecisionRecord{
			Problem:  sc.Problem,
			Episode:  int32(ep),
			Step:     int32(steps),
			Action:   fmt.Sprintf("%v", act),
			Trials:   int32(info.Trials),
			BNodes:   int32(planner.CurrentTree().NBNodes()),
			BaNodes:  int32(planner.CurrentTree().NBaNodes()),
			MaxDepth: int32(depth),
			PlanMS:   float64(info.PlanTime.Microseconds()) / 1000,
			Reward:   r,
		})

		s = sp
		a.Observe(act, o)
	}

	col.AddEpisode(metrics.EpisodeRecord{
		Problem: sc.Problem,
		Episode: int32(ep),
		Steps:   int32(steps),
		Return:  total,
		WallMS:  float64(time.Since(start).Microseconds()) / 1000,
	})
	log.Info().Str("problem", sc.Problem).Int("episode", ep).Float64("return", total).Msg("episode finished")
	return nil
}
