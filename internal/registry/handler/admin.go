package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// registerAdminRoutes mounts the operator surface. Authentication is handled
// by the surrounding group; authorization is the service's concern.
func (h *Handler) registerAdminRoutes(r chi.Router) {
	r.Post("/admin/names/gift", h.handleGift)
	r.Post("/admin/names/create-with-address", h.handleCreateWithAddress)

	r.Post("/admin/seasons", h.handleCreateSeason)
	r.Post("/admin/seasons/{number}/deactivate", h.handleDeactivateSeason)
	r.Post("/admin/seasons/{number}/addresses", h.handleAddAddress)

	r.Get("/admin/admins", h.handleAdmins)
	r.Post("/admin/admins", h.handleAddAdmin)
	r.Delete("/admin/admins/{principal}", h.handleRemoveAdmin)

	r.Get("/admin/short-names/approved", h.handleApprovedShortUsers)
	r.Post("/admin/short-names/approved", h.handleApproveShortUser)
	r.Delete("/admin/short-names/approved/{principal}", h.handleRevokeShortUser)
	r.Put("/admin/short-names/mode", h.handleSetShortNameMode)

	r.Post("/admin/reserved-names", h.handleAddReservedName)
	r.Put("/admin/fees/base", h.handleSetBaseFee)
}

func (h *Handler) handleGift(w http.ResponseWriter, r *http.Request) {
	var req giftRequest
	if !h.decode(w, r, &req) {
		return
	}
	recipient, err := id.ParsePrincipal(req.Recipient)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient"))
		return
	}
	result, err := h.registry.Gift(r.Context(), models.GiftRequest{
		Name:          req.Name,
		Recipient:     recipient,
		Administrator: id.Principal(req.Administrator),
		Operator:      id.Principal(req.Operator),
	})
	if err != nil {
		h.fail(w, r, "gift name", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleCreateWithAddress(w http.ResponseWriter, r *http.Request) {
	var req createWithAddressRequest
	if !h.decode(w, r, &req) {
		return
	}
	recipient, err := id.ParsePrincipal(req.Recipient)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid recipient"))
		return
	}
	result, err := h.registry.CreateWithAddress(r.Context(), models.CreateWithAddressRequest{
		Name:             req.Name,
		Recipient:        recipient,
		Administrator:    id.Principal(req.Administrator),
		Operator:         id.Principal(req.Operator),
		RecipientAddress: req.RecipientAddress,
	})
	if err != nil {
		h.fail(w, r, "create name with address", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleCreateSeason(w http.ResponseWriter, r *http.Request) {
	var req createSeasonRequest
	if !h.decode(w, r, &req) {
		return
	}
	seasonID, err := h.registry.CreateSeason(r.Context(), models.CreateSeasonRequest{
		MinLetters:   req.MinLetters,
		MaxLetters:   req.MaxLetters,
		TotalAllowed: req.TotalAllowed,
		UnitPrice:    req.UnitPrice,
	})
	if err != nil {
		h.fail(w, r, "create season", err)
		return
	}
	writeJSON(w, http.StatusCreated, seasonCreatedResponse{SeasonID: seasonID})
}

func (h *Handler) handleDeactivateSeason(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	if err := h.registry.DeactivateSeason(r.Context(), seasonID); err != nil {
		h.fail(w, r, "deactivate season", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddAddress(w http.ResponseWriter, r *http.Request) {
	seasonID, ok := h.seasonParam(w, r)
	if !ok {
		return
	}
	var req addressRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.registry.AddAddressToSeason(r.Context(), seasonID, req.Address); err != nil {
		h.fail(w, r, "allow address for season", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdmins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principalsResponse{Principals: h.registry.Admins(r.Context())})
}

func (h *Handler) handleAddAdmin(w http.ResponseWriter, r *http.Request) {
	var req principalRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, err := id.ParsePrincipal(req.Principal)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid principal"))
		return
	}
	if err := h.registry.AddAdmin(r.Context(), principal); err != nil {
		h.fail(w, r, "add admin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveAdmin(w http.ResponseWriter, r *http.Request) {
	principal := id.Principal(chi.URLParam(r, "principal"))
	if err := h.registry.RemoveAdmin(r.Context(), principal); err != nil {
		h.fail(w, r, "remove admin", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleApprovedShortUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, principalsResponse{Principals: h.registry.ApprovedShortUsers(r.Context())})
}

func (h *Handler) handleApproveShortUser(w http.ResponseWriter, r *http.Request) {
	var req principalRequest
	if !h.decode(w, r, &req) {
		return
	}
	principal, err := id.ParsePrincipal(req.Principal)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid principal"))
		return
	}
	if err := h.registry.ApproveShortUser(r.Context(), principal); err != nil {
		h.fail(w, r, "approve short name user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevokeShortUser(w http.ResponseWriter, r *http.Request) {
	principal := id.Principal(chi.URLParam(r, "principal"))
	if err := h.registry.RevokeShortUser(r.Context(), principal); err != nil {
		h.fail(w, r, "revoke short name user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetShortNameMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if !h.decode(w, r, &req) {
		return
	}
	mode, err := models.ParseShortNameMode(req.Mode)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid short name mode"))
		return
	}
	if err := h.registry.SetShortNameMode(r.Context(), mode); err != nil {
		h.fail(w, r, "set short name mode", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleShortNameMode(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, modeResponse{Mode: string(h.registry.CurrentShortNameMode(r.Context()))})
}

func (h *Handler) handleAddReservedName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.registry.AddReservedName(r.Context(), req.Name); err != nil {
		h.fail(w, r, "reserve name", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetBaseFee(w http.ResponseWriter, r *http.Request) {
	var req feeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.registry.SetBaseFee(r.Context(), req.Fee); err != nil {
		h.fail(w, r, "set base fee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// seasonParam parses the {number} path segment.
func (h *Handler) seasonParam(w http.ResponseWriter, r *http.Request) (id.SeasonID, bool) {
	raw := chi.URLParam(r, "number")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid season number"))
		return 0, false
	}
	return id.SeasonID(n), true
}
