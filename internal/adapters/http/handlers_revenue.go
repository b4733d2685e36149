package http

import (
	"net/http"
)

func (h *Handler) getRevenue(w http.ResponseWriter, r *http.Request) {
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_revenue", err)
		return
	}
	limit, offset := pagination(r)

	summary, err := h.service.DAORevenue(r.Context(), daoID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "get_revenue", err)
		return
	}
	writeSuccess(w, http.StatusOK, summary)
}

func (h *Handler) getRevenueShares(w http.ResponseWriter, r *http.Request) {
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_revenue_shares", err)
		return
	}

	breakdown, err := h.service.DistributeShares(r.Context(), daoID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_revenue_shares", err)
		return
	}
	writeSuccess(w, http.StatusOK, breakdown)
}
