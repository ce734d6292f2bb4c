package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalscope/vitalscope/internal/kv"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func intp(n int) *int { return &n }

func taycan() PendingReveal {
	return PendingReveal{
		NewName:          "Porsche Taycan",
		NewSecondaryName: "Porsche_Taycan",
		Explanation:      "Quick off the line and recovering well.",
		Score:            health.Some(83),
		PreviousName:     "Tesla Model 3",
		ContentHash:      "hash-2",
	}
}

func fill(c *Cache) {
	c.SaveMainScore(health.Some(78), "Great", health.PeriodDay)
	c.SaveScoreBreakdown(health.PeriodDay, scoring.Breakdown{RecoveryReadiness: intp(81), SleepQuality: intp(70)})
	c.SaveExternalNarrative(Narrative{Name: "Tesla Model 3", SecondaryName: "Tesla_Model_3", ContentHash: "hash-1"})
	c.StagePendingReveal(taycan())
	c.SaveWeeklyStats(history.WeeklyStats{AvgSleepHours: health.Some(7.1)})
	c.ApplyHistory("01A", history.ScoreHistory{Points: []history.Point{{MainScore: health.Some(70)}}})
}

func assertAllAbsent(t *testing.T, c *Cache) {
	t.Helper()
	_, ok := c.LoadMainScore()
	assert.False(t, ok, "main score")
	_, ok = c.LoadScoreBreakdown()
	assert.False(t, ok, "breakdown")
	_, ok = c.LoadExternalNarrative()
	assert.False(t, ok, "narrative")
	_, ok = c.PeekPendingReveal()
	assert.False(t, ok, "pending reveal")
	_, ok = c.LoadWeeklyStats()
	assert.False(t, ok, "weekly stats")
	_, ok = c.LoadHistory()
	assert.False(t, ok, "history")
}

func TestNewCacheIsEmpty(t *testing.T) {
	assertAllAbsent(t, New(zerolog.Nop()))
}

func TestClearWipesEverything(t *testing.T) {
	c := New(zerolog.Nop())
	fill(c)

	c.Clear()
	assertAllAbsent(t, c)
	_, ok := c.ConsumePendingReveal()
	assert.False(t, ok)
}

func TestPendingRevealConsumedOnce(t *testing.T) {
	c := New(zerolog.Nop())
	c.SaveExternalNarrative(Narrative{Name: "Tesla Model 3", Score: health.Some(71), ContentHash: "hash-1"})
	c.StagePendingReveal(taycan())

	// Staging leaves the shown narrative alone.
	shown, ok := c.LoadExternalNarrative()
	require.True(t, ok)
	assert.Equal(t, "Tesla Model 3", shown.Name)

	got, ok := c.ConsumePendingReveal()
	require.True(t, ok)
	assert.Equal(t, "Porsche Taycan", got.NewName)
	assert.Equal(t, "Porsche_Taycan", got.NewSecondaryName)
	assert.Equal(t, "Tesla Model 3", got.PreviousName)

	_, ok = c.ConsumePendingReveal()
	assert.False(t, ok, "second consume must be absent")

	promoted, ok := c.LoadExternalNarrative()
	require.True(t, ok)
	assert.Equal(t, "Porsche Taycan", promoted.Name)
	assert.Equal(t, "hash-2", promoted.ContentHash)
	assert.Equal(t, health.Some(83), promoted.Score)
}

func TestSettleNarrativeDiscardsStagedReveal(t *testing.T) {
	c := New(zerolog.Nop())
	c.SaveExternalNarrative(Narrative{Name: "Tesla Model 3", ContentHash: "hash-1"})
	c.StagePendingReveal(taycan())

	c.SettleNarrative(Narrative{Name: "Tesla Model 3", Score: health.Some(75), ContentHash: "hash-3"})

	_, ok := c.PeekPendingReveal()
	assert.False(t, ok)
	_, ok = c.ConsumePendingReveal()
	assert.False(t, ok)

	shown, ok := c.LoadExternalNarrative()
	require.True(t, ok)
	assert.Equal(t, "hash-3", shown.ContentHash)
	assert.False(t, c.NarrativeStale("hash-3"))
	assert.True(t, c.NarrativeStale("hash-2"))
}

func TestConcurrentConsumeReturnsRevealOnce(t *testing.T) {
	c := New(zerolog.Nop())
	c.StagePendingReveal(taycan())

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.ConsumePendingReveal(); ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestMainScoreNeverTorn(t *testing.T) {
	c := New(zerolog.Nop())
	c.SaveMainScore(health.Some(0), "0", health.PeriodDay)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				n := w*10000 + i
				c.SaveMainScore(health.Some(float64(n)), strconv.Itoa(n), health.PeriodDay)
			}
		}(w)
	}

	var torn atomic.Int32
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				m, ok := c.LoadMainScore()
				if !ok {
					continue
				}
				v, _ := m.Score.Get()
				if m.Status != strconv.Itoa(int(v)) {
					torn.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()
	assert.Zero(t, torn.Load())
}

func TestBreakdownOnlyForDay(t *testing.T) {
	c := New(zerolog.Nop())

	assert.False(t, c.SaveScoreBreakdown(health.PeriodWeek, scoring.Breakdown{SleepQuality: intp(50)}))
	_, ok := c.LoadScoreBreakdown()
	assert.False(t, ok)

	assert.True(t, c.SaveScoreBreakdown(health.PeriodDay, scoring.Breakdown{SleepQuality: intp(50)}))
	b, ok := c.LoadScoreBreakdown()
	require.True(t, ok)
	assert.Equal(t, 50, *b.Scores.SleepQuality)
}

func TestNarrativeStale(t *testing.T) {
	c := New(zerolog.Nop())
	assert.True(t, c.NarrativeStale("hash-1"))

	c.SaveExternalNarrative(Narrative{Name: "Tesla Model 3", ContentHash: "hash-1"})
	assert.False(t, c.NarrativeStale("hash-1"))
	assert.True(t, c.NarrativeStale("hash-2"))

	c.StagePendingReveal(taycan())
	assert.False(t, c.NarrativeStale("hash-2"), "a staged reveal already covers the new inputs")
}

func TestApplyHistoryDropsStaleStamp(t *testing.T) {
	c := New(zerolog.Nop())
	newer := history.ScoreHistory{Points: []history.Point{{MainScore: health.Some(80)}}}
	older := history.ScoreHistory{Points: []history.Point{{MainScore: health.Some(40)}}}

	assert.True(t, c.ApplyHistory("01HB", newer))
	assert.False(t, c.ApplyHistory("01HA", older))

	h, ok := c.LoadHistory()
	require.True(t, ok)
	assert.Equal(t, "01HB", h.Stamp)
	assert.Equal(t, newer, h.History)

	assert.True(t, c.ApplyHistory("01HB", older), "equal stamp replaces")
}

func TestPersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	c, err := Open(ctx, store, zerolog.Nop())
	require.NoError(t, err)
	fill(c)
	require.NoError(t, c.Close(ctx))
	assert.ElementsMatch(t, Keys, store.Keys())

	reopened, err := Open(ctx, store, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close(ctx)

	m, ok := reopened.LoadMainScore()
	require.True(t, ok)
	assert.Equal(t, health.Some(78), m.Score)
	assert.Equal(t, "Great", m.Status)

	b, ok := reopened.LoadScoreBreakdown()
	require.True(t, ok)
	assert.Equal(t, 81, *b.Scores.RecoveryReadiness)
	assert.Nil(t, b.Scores.LoadBalance)

	r, ok := reopened.PeekPendingReveal()
	require.True(t, ok)
	assert.Equal(t, "Porsche Taycan", r.NewName)
	assert.Equal(t, health.Some(83), r.Score)

	w, ok := reopened.LoadWeeklyStats()
	require.True(t, ok)
	assert.Equal(t, health.Some(7.1), w.AvgSleepHours)
	assert.False(t, w.AvgHRV.OK())

	_, ok = reopened.LoadHistory()
	assert.False(t, ok, "history is not persisted")
}

func TestClearDeletesPersistedKeys(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()

	c, err := Open(ctx, store, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close(ctx)

	fill(c)
	require.NoError(t, c.Flush(ctx))
	require.NotEmpty(t, store.Keys())

	c.Clear()
	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, store.Keys())
}

func TestCorruptEntryTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Put(ctx, KeyNarrative, []byte{0xc1, 0xff, 0x00}))

	c, err := Open(ctx, store, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close(ctx)

	_, ok := c.LoadExternalNarrative()
	assert.False(t, ok)
	assert.True(t, c.NarrativeStale("anything"))
}

type failingStore struct{ *kv.MemoryStore }

func (failingStore) Put(context.Context, string, []byte) error { return fmt.Errorf("disk full") }

func TestFlushKeepsFailedKeysDirty(t *testing.T) {
	ctx := context.Background()
	c, err := Open(ctx, failingStore{kv.NewMemoryStore()}, zerolog.Nop())
	require.NoError(t, err)

	c.SaveMainScore(health.Some(50), "Fair", health.PeriodDay)
	assert.Error(t, c.Flush(ctx))

	// Reads are unaffected by storage failures.
	m, ok := c.LoadMainScore()
	require.True(t, ok)
	assert.Equal(t, health.Some(50), m.Score)
	assert.Error(t, c.Close(ctx))
}
