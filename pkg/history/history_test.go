package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func day(n int) time.Time {
	return time.Date(2026, 4, n, 0, 0, 0, 0, time.UTC)
}

func newBuilder(t *testing.T) *history.Builder {
	t.Helper()
	e, err := scoring.NewEngine(scoring.DefaultOptions())
	require.NoError(t, err)
	return history.NewBuilder(e)
}

func record(n int, sleep, hrv float64) health.DailyRecord {
	return health.DailyRecord{
		Date:       day(n),
		Steps:      health.Some(9000),
		SleepHours: health.Some(sleep),
		HRV:        health.Some(hrv),
	}
}

func TestBuildTrailingWeekWithGaps(t *testing.T) {
	b := newBuilder(t)

	var records []health.DailyRecord
	for n := 1; n <= 12; n++ {
		if n == 9 {
			continue // gap
		}
		records = append(records, record(n, 7, 50))
	}

	h := b.Build(records)
	require.Len(t, h.Points, 6, "days 6..12 minus the gap")
	assert.Equal(t, day(6), h.Points[0].Date)
	assert.Equal(t, day(12), h.Points[len(h.Points)-1].Date)
	for _, p := range h.Points {
		assert.NotEqual(t, day(9), p.Date)
		assert.True(t, p.MainScore.OK())
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	b := newBuilder(t)
	records := []health.DailyRecord{record(3, 7, 50), record(1, 6, 40)}

	b.Build(records)
	assert.Equal(t, day(3), records[0].Date)
	assert.Equal(t, day(1), records[1].Date)
}

func TestBuildEmpty(t *testing.T) {
	assert.Empty(t, newBuilder(t).Build(nil).Points)
}

func TestBuildMatchesSingleDayScoring(t *testing.T) {
	e, err := scoring.NewEngine(scoring.DefaultOptions())
	require.NoError(t, err)
	r := record(4, 6.5, 55)

	h := history.NewBuilder(e).Build([]health.DailyRecord{r})
	require.Len(t, h.Points, 1)

	want := e.Compute(r.Snapshot(), nil, health.PeriodDay)
	assert.Equal(t, want.MainScore, h.Points[0].MainScore)
	assert.Equal(t, want.Breakdown(), h.Points[0].Breakdown)
}

func TestWeeklyStats(t *testing.T) {
	h := history.ScoreHistory{Points: []history.Point{
		{SleepHours: health.Some(6), HRV: health.Some(40), Readiness: health.Some(70)},
		{SleepHours: health.Some(8), HRV: health.Some(60)},
	}}

	s := h.WeeklyStats()
	assert.Equal(t, health.Some(7), s.AvgSleepHours)
	assert.Equal(t, health.Some(50), s.AvgHRV)
	assert.Equal(t, health.Some(70), s.AvgReadiness)
	assert.False(t, s.AvgStrain.OK())

	empty := history.ScoreHistory{}.WeeklyStats()
	assert.False(t, empty.AvgSleepHours.OK())
}

func TestStartDeliversStampedResult(t *testing.T) {
	b := newBuilder(t)
	records := []health.DailyRecord{record(1, 7, 50), record(2, 7.5, 52)}

	ch := b.Start(context.Background(), "stamp-1", records)
	records[0].Date = day(20) // caller keeps ownership of its slice

	select {
	case res, ok := <-ch:
		require.True(t, ok)
		assert.Equal(t, "stamp-1", res.Stamp)
		require.Len(t, res.History.Points, 2)
		assert.Equal(t, day(1), res.History.Points[0].Date)
	case <-time.After(5 * time.Second):
		t.Fatal("history result never arrived")
	}

	_, open := <-ch
	assert.False(t, open)
}

func TestWeeklyStatsIgnoreNegativeSleep(t *testing.T) {
	b := newBuilder(t)
	h := b.Build([]health.DailyRecord{record(1, -2, 50), record(2, 8, 50)})

	w := h.WeeklyStats()
	assert.Equal(t, health.Some(4), w.AvgSleepHours, "negative nights count as zero")
}
