package api

import (
	"net/http"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/internal/devicesync"
	"github.com/vitalscope/vitalscope/internal/notify"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

const notComputed = "not computed yet"

func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cache.LoadMainScore()
	if !ok {
		writeError(w, http.StatusNotFound, notComputed)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type tierResponse struct {
	scoring.Tier
	Display string `json:"display"`
}

func (h *Handler) handleTier(w http.ResponseWriter, r *http.Request) {
	m, ok := h.cache.LoadMainScore()
	if !ok {
		writeError(w, http.StatusNotFound, notComputed)
		return
	}
	score, ok := m.Score.Get()
	if !ok {
		writeError(w, http.StatusNotFound, "no main score for the last refresh")
		return
	}

	tier := scoring.Classify(score)
	var name string
	if n, ok := h.cache.LoadExternalNarrative(); ok {
		name = n.Name
	}
	writeJSON(w, http.StatusOK, tierResponse{Tier: tier, Display: scoring.Display(tier, name)})
}

func (h *Handler) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	b, ok := h.cache.LoadScoreBreakdown()
	if !ok {
		writeError(w, http.StatusNotFound, notComputed)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type narrativeResponse struct {
	Narrative     *cache.Narrative `json:"narrative"`
	PendingReveal bool             `json:"pending_reveal"`
}

// handleNarrative peeks at the pending reveal; only POST
// /reveal/consume clears it.
func (h *Handler) handleNarrative(w http.ResponseWriter, r *http.Request) {
	n, ok := h.cache.LoadExternalNarrative()
	_, pending := h.cache.PeekPendingReveal()
	if !ok && !pending {
		writeError(w, http.StatusNotFound, "no narrative")
		return
	}
	resp := narrativeResponse{PendingReveal: pending}
	if ok {
		resp.Narrative = &n
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleWeekly(w http.ResponseWriter, r *http.Request) {
	s, ok := h.cache.LoadWeeklyStats()
	if !ok {
		writeError(w, http.StatusNotFound, notComputed)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	hist, ok := h.cache.LoadHistory()
	if !ok {
		writeError(w, http.StatusNotFound, notComputed)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (h *Handler) handleNotification(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, notify.Compose(notify.FromCache(h.cache)))
}

// handleDevice serves the device payload as msgpack, or JSON with
// ?format=json.
func (h *Handler) handleDevice(w http.ResponseWriter, r *http.Request) {
	p := devicesync.Build(h.cache, h.now())
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, p)
		return
	}

	data, err := devicesync.Encode(p)
	if err != nil {
		h.log.Error().Err(err).Msg("encoding device payload")
		writeError(w, http.StatusInternalServerError, "failed to encode payload")
		return
	}
	w.Header().Set("Content-Type", "application/msgpack")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
