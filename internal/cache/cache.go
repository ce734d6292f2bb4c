// Package cache holds the last computed results and the externally
// supplied narrative for consumers. Every field is swapped atomically as a
// whole, so readers see either the previous or the new value and never a
// mix. Writes are persisted behind the caller's back to a kv.Store.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vitalscope/vitalscope/internal/kv"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// Persisted keys, one per cached field. Clear removes exactly this set.
const (
	KeyMainScore     = "vitalscope/main_score"
	KeyBreakdown     = "vitalscope/score_breakdown"
	KeyNarrative     = "vitalscope/narrative"
	KeyPendingReveal = "vitalscope/pending_reveal"
	KeyWeeklyStats   = "vitalscope/weekly_stats"
)

// Keys lists every persisted key.
var Keys = []string{KeyMainScore, KeyBreakdown, KeyNarrative, KeyPendingReveal, KeyWeeklyStats}

// MainScore is the last computed main score with its status label.
type MainScore struct {
	Score   health.Value  `json:"score" msgpack:"score"`
	Status  string        `json:"status" msgpack:"status"`
	Period  health.Period `json:"period" msgpack:"period"`
	SavedAt time.Time     `json:"saved_at" msgpack:"saved_at"`
}

// Breakdown is the last day-period sub-score breakdown.
type Breakdown struct {
	Scores  scoring.Breakdown `json:"scores" msgpack:"scores"`
	SavedAt time.Time         `json:"saved_at" msgpack:"saved_at"`
}

// Narrative is externally generated text about the current state. The
// cache stores it verbatim.
type Narrative struct {
	Name          string       `json:"name" msgpack:"name"`
	SecondaryName string       `json:"secondary_name" msgpack:"secondary_name"`
	Explanation   string       `json:"explanation" msgpack:"explanation"`
	Score         health.Value `json:"score" msgpack:"score"`
	ContentHash   string       `json:"content_hash" msgpack:"content_hash"`
	SavedAt       time.Time    `json:"saved_at" msgpack:"saved_at"`
}

// PendingReveal is a staged narrative change not yet shown to the user.
type PendingReveal struct {
	NewName          string       `json:"new_name" msgpack:"new_name"`
	NewSecondaryName string       `json:"new_secondary_name" msgpack:"new_secondary_name"`
	Explanation      string       `json:"explanation" msgpack:"explanation"`
	Score            health.Value `json:"score" msgpack:"score"`
	PreviousName     string       `json:"previous_name" msgpack:"previous_name"`
	ContentHash      string       `json:"content_hash" msgpack:"content_hash"`
	StagedAt         time.Time    `json:"staged_at" msgpack:"staged_at"`
}

// WeeklyStats are the cached rolling averages.
type WeeklyStats struct {
	history.WeeklyStats `msgpack:",inline"`
	SavedAt             time.Time `json:"saved_at" msgpack:"saved_at"`
}

// History is the last applied score history and the stamp of the refresh
// that produced it. It lives in memory only.
type History struct {
	Stamp   string               `json:"stamp"`
	History history.ScoreHistory `json:"history"`
}

// Cache is safe for concurrent use. Reads never block; writes take a short
// in-memory lock and never wait on storage.
type Cache struct {
	mainScore atomic.Pointer[MainScore]
	breakdown atomic.Pointer[Breakdown]
	narrative atomic.Pointer[Narrative]
	pending   atomic.Pointer[PendingReveal]
	weekly    atomic.Pointer[WeeklyStats]
	history   atomic.Pointer[History]

	// mu serializes writers so multi-field transitions and dirty tracking
	// stay consistent.
	mu    sync.Mutex
	dirty map[string]struct{}

	store   kv.Store
	flushMu sync.Mutex
	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	now func() time.Time
	log zerolog.Logger
}

// New creates an in-memory cache with no persistence.
func New(log zerolog.Logger) *Cache {
	return &Cache{
		dirty: make(map[string]struct{}),
		now:   time.Now,
		log:   log.With().Str("component", "cache").Logger(),
	}
}

// Open creates a cache backed by store, warms it from the stored values and
// starts the background flusher. Entries that fail to decode are logged and
// treated as absent.
func Open(ctx context.Context, store kv.Store, log zerolog.Logger) (*Cache, error) {
	c := New(log)
	c.store = store

	for _, key := range Keys {
		data, err := store.Get(ctx, key)
		if errors.Is(err, kv.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("warm cache %s: %w", key, err)
		}
		if err := c.decode(key, data); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		}
	}

	c.wake = make(chan struct{}, 1)
	c.stop = make(chan struct{})
	c.stopped = make(chan struct{})
	go c.flushLoop()
	return c, nil
}

func (c *Cache) decode(key string, data []byte) error {
	switch key {
	case KeyMainScore:
		return load(data, &c.mainScore)
	case KeyBreakdown:
		return load(data, &c.breakdown)
	case KeyNarrative:
		return load(data, &c.narrative)
	case KeyPendingReveal:
		return load(data, &c.pending)
	case KeyWeeklyStats:
		return load(data, &c.weekly)
	}
	return fmt.Errorf("unknown key %s", key)
}

func load[T any](data []byte, p *atomic.Pointer[T]) error {
	v := new(T)
	if err := msgpack.Unmarshal(data, v); err != nil {
		return err
	}
	p.Store(v)
	return nil
}

// SaveMainScore replaces the cached main score.
func (c *Cache) SaveMainScore(score health.Value, status string, period health.Period) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mainScore.Store(&MainScore{Score: score, Status: status, Period: period, SavedAt: c.now()})
	c.markDirty(KeyMainScore)
}

// LoadMainScore returns the cached main score.
func (c *Cache) LoadMainScore() (MainScore, bool) {
	return get(&c.mainScore)
}

// SaveScoreBreakdown replaces the cached breakdown. Only the day period is
// accepted; it reports whether the breakdown was stored.
func (c *Cache) SaveScoreBreakdown(period health.Period, b scoring.Breakdown) bool {
	if period != health.PeriodDay {
		c.log.Debug().Str("period", string(period)).Msg("ignoring breakdown for non-day period")
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakdown.Store(&Breakdown{Scores: b, SavedAt: c.now()})
	c.markDirty(KeyBreakdown)
	return true
}

// LoadScoreBreakdown returns the cached breakdown.
func (c *Cache) LoadScoreBreakdown() (Breakdown, bool) {
	return get(&c.breakdown)
}

// SaveExternalNarrative replaces the cached narrative. The cache never
// talks to the service that produced it.
func (c *Cache) SaveExternalNarrative(n Narrative) {
	if n.SavedAt.IsZero() {
		n.SavedAt = c.now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.narrative.Store(&n)
	c.markDirty(KeyNarrative)
}

// SettleNarrative saves n as the current narrative and discards any staged
// reveal in the same step. n must come from newer inputs than the reveal.
func (c *Cache) SettleNarrative(n Narrative) {
	if n.SavedAt.IsZero() {
		n.SavedAt = c.now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.narrative.Store(&n)
	c.markDirty(KeyNarrative)
	if c.pending.Load() != nil {
		c.pending.Store(nil)
		c.markDirty(KeyPendingReveal)
	}
}

// LoadExternalNarrative returns the cached narrative.
func (c *Cache) LoadExternalNarrative() (Narrative, bool) {
	return get(&c.narrative)
}

// StagePendingReveal stages r without touching the current narrative.
// A later stage replaces an earlier unconsumed one.
func (c *Cache) StagePendingReveal(r PendingReveal) {
	if r.StagedAt.IsZero() {
		r.StagedAt = c.now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending.Store(&r)
	c.markDirty(KeyPendingReveal)
}

// PeekPendingReveal returns the staged reveal without consuming it.
func (c *Cache) PeekPendingReveal() (PendingReveal, bool) {
	return get(&c.pending)
}

// ConsumePendingReveal returns and clears the staged reveal, promoting it
// to the current narrative. Concurrent callers get it at most once between
// them.
func (c *Cache) ConsumePendingReveal() (PendingReveal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.pending.Load()
	if r == nil {
		return PendingReveal{}, false
	}
	c.pending.Store(nil)

	c.narrative.Store(&Narrative{
		Name:          r.NewName,
		SecondaryName: r.NewSecondaryName,
		Explanation:   r.Explanation,
		Score:         r.Score,
		ContentHash:   r.ContentHash,
		SavedAt:       c.now(),
	})
	c.markDirty(KeyPendingReveal)
	c.markDirty(KeyNarrative)
	return *r, true
}

// NarrativeStale reports whether neither the cached narrative nor a staged
// reveal was derived from inputs with the given content hash.
func (c *Cache) NarrativeStale(contentHash string) bool {
	if n := c.narrative.Load(); n != nil && n.ContentHash == contentHash {
		return false
	}
	if r := c.pending.Load(); r != nil && r.ContentHash == contentHash {
		return false
	}
	return true
}

// SaveWeeklyStats replaces the cached rolling averages.
func (c *Cache) SaveWeeklyStats(s history.WeeklyStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weekly.Store(&WeeklyStats{WeeklyStats: s, SavedAt: c.now()})
	c.markDirty(KeyWeeklyStats)
}

// LoadWeeklyStats returns the cached rolling averages.
func (c *Cache) LoadWeeklyStats() (WeeklyStats, bool) {
	return get(&c.weekly)
}

// ApplyHistory stores h unless a history with a newer stamp was already
// applied. Stamps must sort in issue order. It reports whether h was kept.
func (c *Cache) ApplyHistory(stamp string, h history.ScoreHistory) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur := c.history.Load(); cur != nil && stamp < cur.Stamp {
		c.log.Debug().Str("stamp", stamp).Str("current", cur.Stamp).Msg("dropping stale history")
		return false
	}
	c.history.Store(&History{Stamp: stamp, History: h})
	return true
}

// LoadHistory returns the last applied history.
func (c *Cache) LoadHistory() (History, bool) {
	return get(&c.history)
}

// Clear wipes every cached field, in memory and in the store.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mainScore.Store(nil)
	c.breakdown.Store(nil)
	c.narrative.Store(nil)
	c.pending.Store(nil)
	c.weekly.Store(nil)
	c.history.Store(nil)
	for _, key := range Keys {
		c.markDirty(key)
	}
}

func get[T any](p *atomic.Pointer[T]) (T, bool) {
	if v := p.Load(); v != nil {
		return *v, true
	}
	var zero T
	return zero, false
}

// markDirty must be called with mu held.
func (c *Cache) markDirty(key string) {
	if c.store == nil {
		return
	}
	c.dirty[key] = struct{}{}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}
