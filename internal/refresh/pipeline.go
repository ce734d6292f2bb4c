// Package refresh runs one refresh cycle: read raw samples, score them,
// publish the results to the cache, and kick off the slower work (score
// history and narrative) in the background.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/internal/narrative"
	"github.com/vitalscope/vitalscope/internal/source"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// DefaultNarrativeTimeout bounds a single narrative request.
const DefaultNarrativeTimeout = 90 * time.Second

// Config wires a Pipeline. Narrator may be nil.
type Config struct {
	Engine           *scoring.Engine
	Source           source.Source
	Cache            *cache.Cache
	Narrator         narrative.Narrator
	NarrativeTimeout time.Duration
	Logger           zerolog.Logger
}

// Result is what a refresh produced synchronously.
type Result struct {
	Stamp       string         `json:"stamp"`
	Bundle      scoring.Bundle `json:"bundle"`
	Tier        *scoring.Tier  `json:"tier,omitempty"` // nil when there is no main score
	ContentHash string         `json:"content_hash"`
}

// Pipeline is safe for concurrent refreshes. Later stamps win wherever
// results race.
type Pipeline struct {
	engine   *scoring.Engine
	history  *history.Builder
	source   source.Source
	cache    *cache.Cache
	narrator narrative.Narrator
	timeout  time.Duration
	log      zerolog.Logger

	// ctx scopes background work; cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	latest map[health.Period]string

	// applyMu keeps a history and the weekly stats derived from it together.
	applyMu sync.Mutex
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	timeout := cfg.NarrativeTimeout
	if timeout <= 0 {
		timeout = DefaultNarrativeTimeout
	}
	return &Pipeline{
		engine:   cfg.Engine,
		history:  history.NewBuilder(cfg.Engine),
		source:   cfg.Source,
		cache:    cfg.Cache,
		narrator: cfg.Narrator,
		timeout:  timeout,
		log:      cfg.Logger.With().Str("component", "refresh").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		latest:   make(map[health.Period]string),
	}
}

// Refresh scores period and saves the main score (and, for the day
// period, the breakdown) before returning. History and narrative follow in
// the background; use Wait to join them.
func (p *Pipeline) Refresh(ctx context.Context, period health.Period) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()

	stamp := ulid.Make().String()
	p.mu.Lock()
	p.latest[period] = stamp
	p.mu.Unlock()

	log := p.log.With().Str("stamp", stamp).Str("period", string(period)).Logger()

	in, err := p.source.Fetch(ctx, period)
	if err != nil {
		// Empty input scores as all absent.
		log.Error().Err(err).Msg("fetching samples failed, scoring empty input")
		in = source.Input{}
	}

	// The builder copies the records before it returns.
	historyCh := p.history.Start(p.ctx, stamp, in.History)

	bundle := p.engine.Compute(in.Snapshot, in.History, period)
	res := Result{
		Stamp:       stamp,
		Bundle:      bundle,
		ContentHash: health.ContentHash(in.Snapshot, in.History),
	}

	status := ""
	if score, ok := bundle.MainScore.Get(); ok {
		tier := scoring.Classify(score)
		res.Tier = &tier
		status = tier.Status
	}

	if p.superseded(period, stamp) {
		log.Debug().Msg("newer refresh already running, not publishing")
	} else {
		p.cache.SaveMainScore(bundle.MainScore, status, period)
		p.cache.SaveScoreBreakdown(period, bundle.Breakdown())
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.applyHistory(historyCh, log)
	}()

	if p.narrator != nil && period == health.PeriodDay && bundle.MainScore.OK() && p.cache.NarrativeStale(res.ContentHash) {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.narrate(res, log)
		}()
	}

	log.Info().
		Str("main_score", bundle.MainScore.String()).
		Int("contributors", bundle.Contributors).
		Int("present", len(bundle.Present())).
		Dur("duration", time.Since(start)).
		Msg("refresh complete")

	return res, nil
}

func (p *Pipeline) superseded(period health.Period, stamp string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest[period] > stamp
}

func (p *Pipeline) applyHistory(ch <-chan history.Result, log zerolog.Logger) {
	res, ok := <-ch
	if !ok {
		return
	}
	p.applyMu.Lock()
	defer p.applyMu.Unlock()
	if !p.cache.ApplyHistory(res.Stamp, res.History) {
		log.Debug().Msg("history superseded by a newer refresh")
		return
	}
	p.cache.SaveWeeklyStats(res.History.WeeklyStats())
	log.Debug().Int("days", len(res.History.Points)).Msg("history applied")
}

func (p *Pipeline) narrate(res Result, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()

	prev, hasPrev := p.cache.LoadExternalNarrative()
	req := narrative.Request{
		ContentHash: res.ContentHash,
		Period:      res.Bundle.Period,
		MainScore:   res.Bundle.MainScore,
		Breakdown:   res.Bundle.Breakdown(),
	}
	if res.Tier != nil {
		req.Tier = *res.Tier
	}
	if hasPrev {
		req.PreviousName = prev.Name
	}
	if w, ok := p.cache.LoadWeeklyStats(); ok {
		req.Weekly = w.WeeklyStats
	}

	n, err := p.narrator.Generate(ctx, req)
	if err != nil {
		// The previous narrative stays; the next refresh tries again.
		log.Warn().Err(err).Msg("narrative generation failed")
		return
	}
	if p.superseded(res.Bundle.Period, res.Stamp) {
		log.Debug().Msg("newer refresh started, dropping narrative")
		return
	}

	switch {
	case !hasPrev || n.Name == prev.Name:
		// A reveal staged by an earlier refresh is older than n.
		p.cache.SettleNarrative(cache.Narrative{
			Name:          n.Name,
			SecondaryName: n.SecondaryName,
			Explanation:   n.Explanation,
			Score:         res.Bundle.MainScore,
			ContentHash:   res.ContentHash,
		})
		log.Info().Str("name", n.Name).Msg("narrative saved")
	default:
		p.cache.StagePendingReveal(cache.PendingReveal{
			NewName:          n.Name,
			NewSecondaryName: n.SecondaryName,
			Explanation:      n.Explanation,
			Score:            res.Bundle.MainScore,
			PreviousName:     prev.Name,
			ContentHash:      res.ContentHash,
		})
		log.Info().Str("name", n.Name).Str("previous", prev.Name).Msg("narrative change staged")
	}
}

// Latest returns the stamp of the newest refresh started for period.
func (p *Pipeline) Latest(period health.Period) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.latest[period]
	return s, ok
}

// Wait blocks until all background work started so far has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Shutdown cancels background work and waits for it to stop.
func (p *Pipeline) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
