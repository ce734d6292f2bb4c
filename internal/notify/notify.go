// Package notify composes the short summary shown in a notification.
package notify

import (
	"fmt"
	"math"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// NoData is the body used when no main score has been computed.
const NoData = "Not enough data yet"

// View is the cached state a notification is built from.
type View struct {
	MainScore health.Value
	Narrative string // cached narrative name, empty when none
	Weekly    *cache.WeeklyStats
}

// Message is a composed notification.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// FromCache reads the view from c.
func FromCache(c *cache.Cache) View {
	var v View
	if m, ok := c.LoadMainScore(); ok {
		v.MainScore = m.Score
	}
	if n, ok := c.LoadExternalNarrative(); ok {
		v.Narrative = n.Name
	}
	if w, ok := c.LoadWeeklyStats(); ok {
		v.Weekly = &w
	}
	return v
}

// Compose builds the notification for v. The narrative name wins over the
// tier label.
func Compose(v View) Message {
	score, ok := v.MainScore.Get()
	if !ok {
		return Message{Title: "Vitalscope", Body: NoData}
	}

	tier := scoring.Classify(score)
	msg := Message{
		Title: scoring.Display(tier, v.Narrative),
		Body:  fmt.Sprintf("Score %d · %s", int(math.Round(score)), tier.Status),
	}
	if v.Weekly != nil {
		if hours, ok := v.Weekly.AvgSleepHours.Get(); ok {
			msg.Body += fmt.Sprintf(" · %.1fh avg sleep", hours)
		}
	}
	return msg
}
