package api

import (
	"net/http"

	"github.com/vitalscope/vitalscope/pkg/health"
)

func (h *Handler) handleConsumeReveal(w http.ResponseWriter, r *http.Request) {
	reveal, ok := h.cache.ConsumePendingReveal()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, reveal)
}

type refreshResponse struct {
	Stamp     string       `json:"stamp"`
	Period    string       `json:"period"`
	MainScore health.Value `json:"main_score"`
	Status    string       `json:"status,omitempty"`
	Present   int          `json:"present"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh is not configured")
		return
	}

	period := health.PeriodDay
	if p := r.URL.Query().Get("period"); p != "" {
		parsed, err := health.ParsePeriod(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		period = parsed
	}

	res, err := h.refresher.Refresh(r.Context(), period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "refresh failed: "+err.Error())
		return
	}

	resp := refreshResponse{
		Stamp:     res.Stamp,
		Period:    string(period),
		MainScore: res.Bundle.MainScore,
		Present:   len(res.Bundle.Present()),
	}
	if res.Tier != nil {
		resp.Status = res.Tier.Status
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) handleClearCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	h.log.Info().Msg("cache cleared via api")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
