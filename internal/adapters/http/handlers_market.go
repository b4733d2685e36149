package http

import (
	"net/http"
	"strings"

	"github.com/citadelx/marketplace/internal/application"
	"github.com/citadelx/marketplace/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) listModerators(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	status := domain.ModeratorStatus(r.URL.Query().Get("status"))

	moderators, err := h.service.ListModerators(r.Context(), status, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_moderators", err)
		return
	}
	writeSuccess(w, http.StatusOK, moderators)
}

func (h *Handler) listDAOModerators(w http.ResponseWriter, r *http.Request) {
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_dao_moderators", err)
		return
	}

	moderators, err := h.service.ListDAOModerators(r.Context(), daoID)
	if err != nil {
		writeMappedError(r.Context(), w, "list_dao_moderators", err)
		return
	}
	writeSuccess(w, http.StatusOK, moderators)
}

func (h *Handler) getModerator(w http.ResponseWriter, r *http.Request) {
	moderatorID, err := pathUUID(r, "moderator_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_moderator", err)
		return
	}

	moderator, err := h.service.GetModerator(r.Context(), moderatorID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_moderator", err)
		return
	}
	writeSuccess(w, http.StatusOK, moderator)
}

func (h *Handler) setPricing(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	moderatorID, err := pathUUID(r, "moderator_id")
	if err != nil {
		writeValidationError(r.Context(), w, "set_pricing", err)
		return
	}

	var req application.SetPricingRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "set_pricing", err)
		return
	}

	moderator, err := h.service.SetPricing(r.Context(), moderatorID, caller, req)
	if err != nil {
		writeMappedError(r.Context(), w, "set_pricing", err)
		return
	}
	writeSuccess(w, http.StatusOK, moderator)
}

func (h *Handler) activateModerator(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	moderatorID, err := pathUUID(r, "moderator_id")
	if err != nil {
		writeValidationError(r.Context(), w, "activate_moderator", err)
		return
	}

	moderator, err := h.service.ActivateModerator(r.Context(), moderatorID, caller)
	if err != nil {
		writeMappedError(r.Context(), w, "activate_moderator", err)
		return
	}
	writeSuccess(w, http.StatusOK, moderator)
}

func (h *Handler) purchase(w http.ResponseWriter, r *http.Request) {
	buyer, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	moderatorID, err := pathUUID(r, "moderator_id")
	if err != nil {
		writeValidationError(r.Context(), w, "purchase", err)
		return
	}

	var req application.PurchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "purchase", err)
		return
	}

	res, err := h.service.Purchase(r.Context(), moderatorID, buyer, req)
	if err != nil {
		writeMappedError(r.Context(), w, "purchase", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) checkAccess(w http.ResponseWriter, r *http.Request) {
	moderatorID, err := pathUUID(r, "moderator_id")
	if err != nil {
		writeValidationError(r.Context(), w, "check_access", err)
		return
	}
	address := strings.TrimSpace(chi.URLParam(r, "address"))
	if address == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "address is required")
		return
	}

	allowed, err := h.service.HasAccess(r.Context(), moderatorID, address)
	if err != nil {
		writeMappedError(r.Context(), w, "check_access", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"moderator_id": moderatorID,
		"address":      address,
		"has_access":   allowed,
	})
}
