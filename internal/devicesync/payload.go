// Package devicesync builds the compact payload sent to a companion
// device. The payload is versioned; decoders reject versions they do not
// know.
package devicesync

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// Version is the payload layout this package writes.
const Version = 1

// Payload is the v1 device layout. Scores follow
// scoring.BreakdownKinds; a nil entry is an absent sub-score.
type Payload struct {
	V           int       `msgpack:"v" json:"v"`
	ID          string    `msgpack:"id" json:"id"`
	GeneratedAt time.Time `msgpack:"generated_at" json:"generated_at"`
	Main        *int      `msgpack:"main" json:"main"`
	Status      string    `msgpack:"status" json:"status"`
	Scores      []*int    `msgpack:"scores" json:"scores"`
}

// Build assembles a payload from the cache. It never computes; missing
// cache entries become absent fields.
func Build(c *cache.Cache, now time.Time) Payload {
	p := Payload{
		V:           Version,
		ID:          uuid.NewString(),
		GeneratedAt: now.UTC(),
		Scores:      make([]*int, len(scoring.BreakdownKinds)),
	}
	if m, ok := c.LoadMainScore(); ok {
		if v, ok := m.Score.Get(); ok {
			n := int(math.Round(v))
			p.Main = &n
		}
		p.Status = m.Status
	}
	if b, ok := c.LoadScoreBreakdown(); ok {
		p.Scores = b.Scores.Scores()
	}
	return p
}

// Encode serializes p with msgpack.
func Encode(p Payload) ([]byte, error) {
	data, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("encode device payload: %w", err)
	}
	return data, nil
}

// Decode parses a payload and checks its version and shape.
func Decode(data []byte) (Payload, error) {
	var p Payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decode device payload: %w", err)
	}
	if p.V != Version {
		return Payload{}, fmt.Errorf("decode device payload: unsupported version %d", p.V)
	}
	if len(p.Scores) != len(scoring.BreakdownKinds) {
		return Payload{}, fmt.Errorf("decode device payload: want %d scores, got %d", len(scoring.BreakdownKinds), len(p.Scores))
	}
	return p, nil
}

// Breakdown maps the ordered scores back onto a breakdown.
func (p Payload) Breakdown() scoring.Breakdown {
	at := func(i int) *int {
		if i < len(p.Scores) {
			return p.Scores[i]
		}
		return nil
	}
	return scoring.Breakdown{
		RecoveryReadiness:    at(0),
		SleepQuality:         at(1),
		NervousSystemBalance: at(2),
		EnergyForecast:       at(3),
		ActivityScore:        at(4),
		LoadBalance:          at(5),
	}
}
