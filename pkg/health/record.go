package health

import (
	"sort"
	"time"
)

// MaxHistoryDays bounds the raw history an adapter is expected to supply.
const MaxHistoryDays = 90

// DailyRecord is one calendar day's subset of snapshot fields.
type DailyRecord struct {
	Date             time.Time `json:"date"`
	Steps            Value     `json:"steps"`
	HRV              Value     `json:"hrv_ms"`
	RestingHeartRate Value     `json:"resting_heart_rate"`
	SleepHours       Value     `json:"sleep_hours"`
	DeepSleepHours   Value     `json:"deep_sleep_hours"`
	REMSleepHours    Value     `json:"rem_sleep_hours"`
	CoreSleepHours   Value     `json:"core_sleep_hours"`
	ActiveEnergy     Value     `json:"active_energy_kcal"`
	VO2Max           Value     `json:"vo2max"`
}

// Day truncates t to its calendar day in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Snapshot builds a single-day snapshot from the record's own data.
func (r DailyRecord) Snapshot() Snapshot {
	return Snapshot{
		Date:             Day(r.Date),
		Steps:            r.Steps,
		HRV:              r.HRV,
		RestingHeartRate: r.RestingHeartRate,
		SleepHours:       r.SleepHours,
		DeepSleepHours:   r.DeepSleepHours,
		REMSleepHours:    r.REMSleepHours,
		CoreSleepHours:   r.CoreSleepHours,
		ActiveEnergy:     r.ActiveEnergy,
		VO2Max:           r.VO2Max,
	}
}

// Normalized returns a copy with every quantity floored at zero.
func (r DailyRecord) Normalized() DailyRecord {
	for _, p := range []*Value{
		&r.Steps, &r.HRV, &r.RestingHeartRate, &r.SleepHours, &r.DeepSleepHours,
		&r.REMSleepHours, &r.CoreSleepHours, &r.ActiveEnergy, &r.VO2Max,
	} {
		*p = p.Map(nonNegative)
	}
	return r
}

// SortRecords returns a normalized copy ordered oldest to newest with one
// record per calendar day. When a day repeats, the later entry in the input
// wins. Records without a date are dropped. The input is never modified.
func SortRecords(records []DailyRecord) []DailyRecord {
	byDay := make(map[time.Time]DailyRecord, len(records))
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		d := Day(r.Date)
		r = r.Normalized()
		r.Date = d
		byDay[d] = r
	}
	out := make([]DailyRecord, 0, len(byDay))
	for _, r := range byDay {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Window returns the records of sorted that fall within the n days ending
// the day before anchor. sorted must already be ordered by SortRecords.
func Window(sorted []DailyRecord, anchor time.Time, n int) []DailyRecord {
	if n <= 0 || len(sorted) == 0 {
		return nil
	}
	end := Day(anchor)
	start := end.AddDate(0, 0, -n)
	var out []DailyRecord
	for _, r := range sorted {
		if !r.Date.Before(start) && r.Date.Before(end) {
			out = append(out, r)
		}
	}
	return out
}

// Anchor returns the day baselines are measured up to. A dated snapshot
// anchors on its own day; otherwise the day after the newest record is
// used so the whole trailing history counts.
func Anchor(s Snapshot, sorted []DailyRecord) time.Time {
	if !s.Date.IsZero() {
		return Day(s.Date)
	}
	if len(sorted) == 0 {
		return time.Time{}
	}
	return sorted[len(sorted)-1].Date.AddDate(0, 0, 1)
}

// Values collects the present values selected by field from records.
func Values(records []DailyRecord, field func(DailyRecord) Value) []float64 {
	var out []float64
	for _, r := range records {
		if v, ok := field(r).Get(); ok {
			out = append(out, v)
		}
	}
	return out
}
