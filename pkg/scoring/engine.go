package scoring

import (
	"fmt"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// Metric is the interface that all sub-score metrics implement.
type Metric interface {
	// Kind returns the sub-score this metric produces.
	Kind() Kind
	// Name returns the human-readable metric name.
	Name() string
	// Requires lists the current-snapshot fields the metric reads. When none
	// of them is present the metric is skipped and reported absent.
	Requires() []health.Key
	// Evaluate computes the sub-score from prepared inputs.
	Evaluate(in *Inputs) InsightMetric
}

// Options configures an Engine. The zero Options is not valid; start from
// DefaultOptions.
type Options struct {
	Goals   Goals
	Weights DefaultWeights
	// Metrics overrides DefaultMetrics(Weights) when non-empty.
	Metrics []Metric
}

// DefaultOptions returns default goals and weights.
func DefaultOptions() Options {
	return Options{Goals: DefaultGoals(), Weights: Defaults()}
}

// Engine runs all configured metrics against a snapshot and produces a
// Bundle. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	metrics []Metric
	goals   Goals
	main    map[Kind]float64
	quorum  int
}

// NewEngine validates opts and creates a scoring engine.
func NewEngine(opts Options) (*Engine, error) {
	if err := opts.Goals.Validate(); err != nil {
		return nil, err
	}
	for k, w := range opts.Weights.Main {
		if _, err := ParseKind(string(k)); err != nil {
			return nil, fmt.Errorf("main weights: %w", err)
		}
		if w < 0 {
			return nil, fmt.Errorf("main weight for %s is negative", k)
		}
	}
	if opts.Weights.Quorum < 2 {
		return nil, fmt.Errorf("quorum must be at least 2, got %d", opts.Weights.Quorum)
	}

	metrics := opts.Metrics
	if len(metrics) == 0 {
		metrics = DefaultMetrics(opts.Weights)
	}

	return &Engine{
		metrics: metrics,
		goals:   opts.Goals,
		main:    opts.Weights.Main,
		quorum:  opts.Weights.Quorum,
	}, nil
}

// Goals returns the goals the engine was configured with.
func (e *Engine) Goals() Goals { return e.goals }

// Compute evaluates all metrics and produces a complete Bundle. It never
// fails: missing inputs yield absent sub-scores, and too few sub-scores
// yield an absent main score. Equal inputs always produce equal bundles.
func (e *Engine) Compute(current health.Snapshot, history []health.DailyRecord, period health.Period) Bundle {
	in := newInputs(current, history, period, e.goals)

	b := Bundle{
		Period: in.Period,
		Scores: make(map[Kind]InsightMetric, len(AllKinds)),
	}
	for _, k := range AllKinds {
		b.Scores[k] = Absent(k)
	}

	for _, m := range e.metrics {
		if !hasAny(in.Current, m.Requires()) {
			continue
		}
		b.Scores[m.Kind()] = m.Evaluate(in)
	}

	b.MainScore, b.Contributors = e.mainScore(b)
	b.Goals = e.goals.progress(in.Current, in.Period, in.exerciseMinutes())
	return b
}

// mainScore is the weighted mean of the present contributing sub-scores,
// renormalized over those present. Absent below quorum.
func (e *Engine) mainScore(b Bundle) (health.Value, int) {
	var sum, weight float64
	var n int
	for _, k := range AllKinds {
		w := e.main[k]
		if w <= 0 {
			continue
		}
		v, ok := b.Get(k).Value.Get()
		if !ok {
			continue
		}
		sum += w * v
		weight += w
		n++
	}
	if n < e.quorum || weight == 0 {
		return health.None(), n
	}
	return health.Some(clamp100(sum / weight)), n
}

func hasAny(s health.Snapshot, keys []health.Key) bool {
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}
