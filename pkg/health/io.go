package health

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveSnapshot writes a snapshot to disk as JSON.
func SaveSnapshot(path string, snap *Snapshot) error {
	return saveJSON(path, snap, "snapshot")
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshaling snapshot: %w", err)
	}

	return &snap, nil
}

// SaveHistory writes daily records to disk as JSON.
func SaveHistory(path string, records []DailyRecord) error {
	return saveJSON(path, records, "history")
}

// LoadHistory reads daily records from disk, sorted and de-duplicated.
func LoadHistory(path string) ([]DailyRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var records []DailyRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshaling history: %w", err)
	}

	return SortRecords(records), nil
}

func saveJSON(path string, v any, what string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", what, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", what, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}

	return nil
}

// ContentHash fingerprints the inputs a narrative was derived from. Equal
// inputs (after sorting the history) always hash the same.
func ContentHash(snap Snapshot, records []DailyRecord) string {
	payload := struct {
		Snapshot Snapshot      `json:"s"`
		History  []DailyRecord `json:"h"`
	}{snap, SortRecords(records)}

	data, err := json.Marshal(payload)
	if err != nil {
		// JSON rejects years outside 0-9999; hash the Go syntax form instead.
		data = []byte(fmt.Sprintf("%#v", payload))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
