// Package source defines the raw sample adapter boundary. Implementations
// hand the engine an aggregated snapshot for a period plus the daily
// records its baselines are built from.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// Source supplies raw samples for a period.
type Source interface {
	// Fetch returns the period aggregate and trailing daily records.
	// Unmeasured fields stay absent; adapters never substitute zeros.
	Fetch(ctx context.Context, period health.Period) (Input, error)
}

// Input is one adapter read. An empty Input is valid and scores as all
// absent.
type Input struct {
	Snapshot health.Snapshot      `json:"snapshot"`
	History  []health.DailyRecord `json:"history"`
}

// HistoryFile is the file FileSource reads daily records from.
const HistoryFile = "history.json"

// SnapshotFile returns the file name FileSource reads for period.
func SnapshotFile(period health.Period) string {
	return fmt.Sprintf("snapshot_%s.json", period)
}

// FileSource reads JSON exports from a directory. A missing file means
// no data for that part of the input.
type FileSource struct {
	Dir string
}

// NewFileSource creates a FileSource rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

// Fetch loads snapshot_<period>.json and history.json from Dir. History
// older than health.MaxHistoryDays before the newest record is dropped.
func (s *FileSource) Fetch(ctx context.Context, period health.Period) (Input, error) {
	if err := ctx.Err(); err != nil {
		return Input{}, err
	}

	var in Input
	snap, err := health.LoadSnapshot(filepath.Join(s.Dir, SnapshotFile(period)))
	switch {
	case err == nil:
		in.Snapshot = *snap
	case !errors.Is(err, os.ErrNotExist):
		return Input{}, fmt.Errorf("fetch %s snapshot: %w", period, err)
	}

	records, err := health.LoadHistory(filepath.Join(s.Dir, HistoryFile))
	switch {
	case err == nil:
		in.History = trim(records)
	case !errors.Is(err, os.ErrNotExist):
		return Input{}, fmt.Errorf("fetch history: %w", err)
	}

	return in, nil
}

// Save writes in to Dir in the layout Fetch reads.
func (s *FileSource) Save(period health.Period, in Input) error {
	if err := health.SaveSnapshot(filepath.Join(s.Dir, SnapshotFile(period)), &in.Snapshot); err != nil {
		return err
	}
	return health.SaveHistory(filepath.Join(s.Dir, HistoryFile), in.History)
}

func trim(sorted []health.DailyRecord) []health.DailyRecord {
	if len(sorted) == 0 {
		return sorted
	}
	newest := sorted[len(sorted)-1].Date
	return health.Window(sorted, newest.AddDate(0, 0, 1), health.MaxHistoryDays)
}

// Static is a Source that always returns the same input. Useful for
// one-shot scoring of a file the caller already loaded.
type Static Input

// Fetch returns the static input regardless of period.
func (s Static) Fetch(ctx context.Context, _ health.Period) (Input, error) {
	if err := ctx.Err(); err != nil {
		return Input{}, err
	}
	return Input(s), nil
}
