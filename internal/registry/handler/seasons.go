package handler

import (
	"net/http"
)

func (h *Handler) handleSeasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Seasons(r.Context()))
}

// handleSeason resolves a season by number; 0 means the latest season.
func (h *Handler) handleSeason(w http.ResponseWriter, r *http.Request) {
	number, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	season, err := h.registry.SeasonByNumber(r.Context(), number)
	if err != nil {
		h.fail(w, r, "fetch season", err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

func (h *Handler) handleCurrentSeason(w http.ResponseWriter, r *http.Request) {
	season, err := h.registry.CurrentSeason(r.Context())
	if err != nil {
		h.fail(w, r, "fetch current season", err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

func (h *Handler) handleSeasonStats(w http.ResponseWriter, r *http.Request) {
	number, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	stats, err := h.registry.SeasonStats(r.Context(), number)
	if err != nil {
		h.fail(w, r, "fetch season stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAllSeasonStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.AllSeasonStats(r.Context()))
}

func (h *Handler) handleSeasonAddresses(w http.ResponseWriter, r *http.Request) {
	number, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, addressesResponse{
		Addresses: h.registry.SeasonAddresses(r.Context(), number),
	})
}
