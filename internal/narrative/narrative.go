// Package narrative is the boundary to the external service that names
// and explains the current state in plain language. The rest of the system
// only stores what it returns.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// Narrator generates a narrative for one set of scored inputs.
type Narrator interface {
	Generate(ctx context.Context, req Request) (Narrative, error)
}

// Request carries everything a narrator may describe. ContentHash
// identifies the inputs and is echoed back by the caller, not the
// narrator.
type Request struct {
	ContentHash  string              `json:"-"`
	Period       health.Period       `json:"period"`
	MainScore    health.Value        `json:"main_score"`
	Tier         scoring.Tier        `json:"tier"`
	Breakdown    scoring.Breakdown   `json:"breakdown"`
	Weekly       history.WeeklyStats `json:"weekly"`
	PreviousName string              `json:"previous_name,omitempty"`
}

// Narrative is a generated name and explanation.
type Narrative struct {
	Name          string `json:"name" jsonschema:"description=Short display name for the current state, at most 40 characters"`
	SecondaryName string `json:"secondary_name" jsonschema:"description=Asset key for the name: ASCII letters digits and underscores only"`
	Explanation   string `json:"explanation" jsonschema:"description=Two or three sentences explaining the score in plain language"`
}

// Validate rejects narratives a consumer cannot display.
func (n Narrative) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return fmt.Errorf("narrative has no name")
	}
	return nil
}

// Normalize trims whitespace and derives a secondary name when missing.
func (n Narrative) Normalize() Narrative {
	n.Name = strings.TrimSpace(n.Name)
	n.Explanation = strings.TrimSpace(n.Explanation)
	n.SecondaryName = assetKey(n.SecondaryName)
	if n.SecondaryName == "" {
		n.SecondaryName = assetKey(n.Name)
	}
	return n
}

func assetKey(s string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// Func adapts a function to the Narrator interface.
type Func func(ctx context.Context, req Request) (Narrative, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, req Request) (Narrative, error) {
	return f(ctx, req)
}
