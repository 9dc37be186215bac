// Package metrics collects per-decision and per-episode planning records for
// the experiment harness and persists them as parquet.
package metrics

// DecisionRecord is a single planning decision within an episode.
type DecisionRecord struct {
	Problem  string  `parquet:"problem,dict"`
	Episode  int32   `parquet:"episode"`
	Step     int32   `parquet:"step"`
	Action   string  `parquet:"action,dict"`
	Trials   int32   `parquet:"trials"`
	BNodes   int32   `parquet:"b_nodes"`
	BaNodes  int32   `parquet:"ba_nodes"`
	MaxDepth int32   `parquet:"max_depth"`
	PlanMS   float64 `parquet:"plan_ms"`
	Reward   float64 `parquet:"reward"`
}

// EpisodeRecord summarizes one simulated episode.
type EpisodeRecord struct {
	Problem string  `parquet:"problem,dict"`
	Episode int32   `parquet:"episode"`
	Steps   int32   `parquet:"steps"`
	Return  float64 `parquet:"discounted_return"`
	WallMS  float64 `parquet:"wall_ms"`
}

type Collector struct {
	decisions []DecisionRecord
	episodes  []EpisodeRecord
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) AddDecision(r DecisionRecord) { c.decisions = append(c.decisions, r) }

func (c *Collector) AddEpisode(r EpisodeRecord) { c.episodes = append(c.episodes, r) }

func (c *Collector) Decisions() []DecisionRecord { return c.decisions }

func (c *Collector) Episodes() []EpisodeRecord { return c.episodes }
