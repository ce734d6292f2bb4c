package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/internal/narrative"
	"github.com/vitalscope/vitalscope/internal/refresh"
	"github.com/vitalscope/vitalscope/internal/source"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func sampleInput() source.Input {
	in := source.Input{
		Snapshot: health.Snapshot{
			Steps:            health.Some(9000),
			ActiveEnergy:     health.Some(520),
			ExerciseMinutes:  health.Some(35),
			HRV:              health.Some(52),
			RestingHeartRate: health.Some(58),
			SleepHours:       health.Some(7.4),
			DeepSleepHours:   health.Some(1.2),
			REMSleepHours:    health.Some(1.6),
			SleepEfficiency:  health.Some(91),
		},
	}
	for i := 1; i <= 14; i++ {
		in.History = append(in.History, health.DailyRecord{
			Date:             day(i),
			Steps:            health.Some(8500),
			ActiveEnergy:     health.Some(480),
			HRV:              health.Some(50),
			RestingHeartRate: health.Some(59),
			SleepHours:       health.Some(7),
		})
	}
	return in
}

type failingSource struct{}

func (failingSource) Fetch(context.Context, health.Period) (source.Input, error) {
	return source.Input{}, errors.New("adapter offline")
}

func newPipeline(t *testing.T, src source.Source, n narrative.Narrator) (*refresh.Pipeline, *cache.Cache) {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.DefaultOptions())
	require.NoError(t, err)
	c := cache.New(zerolog.Nop())
	p := refresh.New(refresh.Config{
		Engine:   engine,
		Source:   src,
		Cache:    c,
		Narrator: n,
		Logger:   zerolog.Nop(),
	})
	t.Cleanup(p.Shutdown)
	return p, c
}

func TestRefreshPublishesScores(t *testing.T) {
	p, c := newPipeline(t, source.Static(sampleInput()), nil)

	res, err := p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	require.True(t, res.Bundle.MainScore.OK())
	require.NotNil(t, res.Tier)

	m, ok := c.LoadMainScore()
	require.True(t, ok)
	assert.Equal(t, res.Bundle.MainScore, m.Score)
	assert.Equal(t, res.Tier.Status, m.Status)

	b, ok := c.LoadScoreBreakdown()
	require.True(t, ok)
	assert.Equal(t, res.Bundle.Breakdown(), b.Scores)

	p.Wait()
	h, ok := c.LoadHistory()
	require.True(t, ok)
	assert.Equal(t, res.Stamp, h.Stamp)
	assert.Len(t, h.History.Points, 7)

	w, ok := c.LoadWeeklyStats()
	require.True(t, ok)
	assert.Equal(t, health.Some(7), w.AvgSleepHours)

	latest, ok := p.Latest(health.PeriodDay)
	require.True(t, ok)
	assert.Equal(t, res.Stamp, latest)
}

func TestRefreshWeekSkipsBreakdown(t *testing.T) {
	p, c := newPipeline(t, source.Static(sampleInput()), nil)

	_, err := p.Refresh(context.Background(), health.PeriodWeek)
	require.NoError(t, err)

	m, ok := c.LoadMainScore()
	require.True(t, ok)
	assert.Equal(t, health.PeriodWeek, m.Period)
	_, ok = c.LoadScoreBreakdown()
	assert.False(t, ok)
}

func TestRefreshAdapterFailureScoresEmpty(t *testing.T) {
	p, c := newPipeline(t, failingSource{}, nil)

	res, err := p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	assert.False(t, res.Bundle.MainScore.OK())
	assert.Nil(t, res.Tier)
	assert.Empty(t, res.Bundle.Present())

	m, ok := c.LoadMainScore()
	require.True(t, ok)
	assert.False(t, m.Score.OK())
	assert.Empty(t, m.Status)
}

func TestRefreshCancelledContext(t *testing.T) {
	p, _ := newPipeline(t, source.Static(sampleInput()), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Refresh(ctx, health.PeriodDay)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStampsIncrease(t *testing.T) {
	p, _ := newPipeline(t, source.Static(sampleInput()), nil)

	var last string
	for i := 0; i < 5; i++ {
		res, err := p.Refresh(context.Background(), health.PeriodDay)
		require.NoError(t, err)
		assert.Greater(t, res.Stamp, last)
		last = res.Stamp
	}
}

func TestNarrativeFirstSavedThenStaged(t *testing.T) {
	names := []string{"Tesla Model 3", "Tesla Model 3", "Porsche Taycan"}
	var calls atomic.Int32
	n := narrative.Func(func(_ context.Context, req narrative.Request) (narrative.Narrative, error) {
		i := calls.Add(1) - 1
		return narrative.Narrative{Name: names[i]}.Normalize(), nil
	})

	in := sampleInput()
	p, c := newPipeline(t, source.Static(in), n)

	// First narrative is saved directly.
	_, err := p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	p.Wait()
	shown, ok := c.LoadExternalNarrative()
	require.True(t, ok)
	assert.Equal(t, "Tesla Model 3", shown.Name)
	_, ok = c.PeekPendingReveal()
	assert.False(t, ok)

	// Same inputs: the narrative is fresh, no call.
	_, err = p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	p.Wait()
	assert.Equal(t, int32(1), calls.Load())

	// New inputs, same name: narrative refreshed in place.
	in.Snapshot.Steps = health.Some(12000)
	p2, _ := newPipelineWithCache(t, source.Static(in), n, c)
	_, err = p2.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	p2.Wait()
	shown, _ = c.LoadExternalNarrative()
	assert.Equal(t, "Tesla Model 3", shown.Name)
	_, ok = c.PeekPendingReveal()
	assert.False(t, ok)

	// New inputs, new name: staged, current narrative untouched.
	in.Snapshot.Steps = health.Some(15000)
	p3, _ := newPipelineWithCache(t, source.Static(in), n, c)
	_, err = p3.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	p3.Wait()

	shown, _ = c.LoadExternalNarrative()
	assert.Equal(t, "Tesla Model 3", shown.Name)
	r, ok := c.PeekPendingReveal()
	require.True(t, ok)
	assert.Equal(t, "Porsche Taycan", r.NewName)
	assert.Equal(t, "Porsche_Taycan", r.NewSecondaryName)
	assert.Equal(t, "Tesla Model 3", r.PreviousName)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNarrativeFailureKeepsPrevious(t *testing.T) {
	n := narrative.Func(func(context.Context, narrative.Request) (narrative.Narrative, error) {
		return narrative.Narrative{}, errors.New("service down")
	})
	p, c := newPipeline(t, source.Static(sampleInput()), n)
	c.SaveExternalNarrative(cache.Narrative{Name: "Volvo XC90", ContentHash: "old"})

	_, err := p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	p.Wait()

	shown, ok := c.LoadExternalNarrative()
	require.True(t, ok)
	assert.Equal(t, "Volvo XC90", shown.Name)
}

func TestNoNarrativeWithoutMainScore(t *testing.T) {
	var calls atomic.Int32
	n := narrative.Func(func(context.Context, narrative.Request) (narrative.Narrative, error) {
		calls.Add(1)
		return narrative.Narrative{Name: "x"}, nil
	})
	p, _ := newPipeline(t, failingSource{}, n)

	_, err := p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	p.Wait()
	assert.Zero(t, calls.Load())
}

func newPipelineWithCache(t *testing.T, src source.Source, n narrative.Narrator, c *cache.Cache) (*refresh.Pipeline, *cache.Cache) {
	t.Helper()
	engine, err := scoring.NewEngine(scoring.DefaultOptions())
	require.NoError(t, err)
	p := refresh.New(refresh.Config{Engine: engine, Source: src, Cache: c, Narrator: n, Logger: zerolog.Nop()})
	t.Cleanup(p.Shutdown)
	return p, c
}

// seqSource serves the inputs in order, repeating the last one.
type seqSource struct {
	mu     sync.Mutex
	inputs []source.Input
}

func (s *seqSource) Fetch(context.Context, health.Period) (source.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := s.inputs[0]
	if len(s.inputs) > 1 {
		s.inputs = s.inputs[1:]
	}
	return in, nil
}

func TestNarrativeBackToCurrentNameDropsStagedReveal(t *testing.T) {
	names := []string{"Tesla Model 3", "Porsche Taycan", "Tesla Model 3"}
	var calls atomic.Int32
	n := narrative.Func(func(_ context.Context, req narrative.Request) (narrative.Narrative, error) {
		i := calls.Add(1) - 1
		return narrative.Narrative{Name: names[i]}.Normalize(), nil
	})

	var inputs []source.Input
	for _, steps := range []float64{9000, 12000, 15000} {
		in := sampleInput()
		in.Snapshot.Steps = health.Some(steps)
		inputs = append(inputs, in)
	}
	p, c := newPipeline(t, &seqSource{inputs: inputs}, n)

	var results []refresh.Result
	for range inputs {
		res, err := p.Refresh(context.Background(), health.PeriodDay)
		require.NoError(t, err)
		p.Wait()
		results = append(results, res)

		if len(results) == 2 {
			r, ok := c.PeekPendingReveal()
			require.True(t, ok)
			assert.Equal(t, "Porsche Taycan", r.NewName)
			assert.Equal(t, res.Bundle.MainScore, r.Score)
		}
	}
	require.Equal(t, int32(3), calls.Load())

	latest := results[2]
	_, ok := c.PeekPendingReveal()
	assert.False(t, ok, "older reveal must not survive a newer narrative")
	_, ok = c.ConsumePendingReveal()
	assert.False(t, ok)

	shown, ok := c.LoadExternalNarrative()
	require.True(t, ok)
	assert.Equal(t, "Tesla Model 3", shown.Name)
	assert.Equal(t, latest.ContentHash, shown.ContentHash)
	assert.Equal(t, latest.Bundle.MainScore, shown.Score)
	assert.False(t, c.NarrativeStale(latest.ContentHash))
}

// gateSource blocks the first Fetch until release is closed.
type gateSource struct {
	first, rest source.Input
	entered     chan struct{}
	release     chan struct{}
	calls       atomic.Int32
}

func (s *gateSource) Fetch(ctx context.Context, _ health.Period) (source.Input, error) {
	if s.calls.Add(1) == 1 {
		close(s.entered)
		<-s.release
		return s.first, nil
	}
	return s.rest, nil
}

func TestSupersededRefreshDoesNotPublish(t *testing.T) {
	slow := sampleInput()
	slow.Snapshot.Steps = health.Some(1500)
	slow.Snapshot.SleepHours = health.Some(4.5)
	for i := range slow.History {
		slow.History[i].SleepHours = health.Some(5)
	}
	src := &gateSource{
		first:   slow,
		rest:    sampleInput(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	p, c := newPipeline(t, src, nil)

	type outcome struct {
		res refresh.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := p.Refresh(context.Background(), health.PeriodDay)
		done <- outcome{res, err}
	}()
	<-src.entered

	newer, err := p.Refresh(context.Background(), health.PeriodDay)
	require.NoError(t, err)
	close(src.release)
	older := <-done
	require.NoError(t, older.err)
	p.Wait()

	require.Less(t, older.res.Stamp, newer.Stamp)
	require.NotEqual(t, older.res.Bundle.MainScore, newer.Bundle.MainScore)

	m, ok := c.LoadMainScore()
	require.True(t, ok)
	assert.Equal(t, newer.Bundle.MainScore, m.Score)

	b, ok := c.LoadScoreBreakdown()
	require.True(t, ok)
	assert.Equal(t, newer.Bundle.Breakdown(), b.Scores)

	h, ok := c.LoadHistory()
	require.True(t, ok)
	assert.Equal(t, newer.Stamp, h.Stamp)

	w, ok := c.LoadWeeklyStats()
	require.True(t, ok)
	assert.Equal(t, health.Some(7), w.AvgSleepHours)
}
