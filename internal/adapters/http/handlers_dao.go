package http

import (
	"net/http"

	"github.com/citadelx/marketplace/internal/application"
	"github.com/citadelx/marketplace/internal/domain"
)

func (h *Handler) createDAO(w http.ResponseWriter, r *http.Request) {
	creator, ok := h.callerAddress(w, r)
	if !ok {
		return
	}

	var req application.CreateDAORequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_dao", err)
		return
	}

	dao, err := h.service.CreateDAO(r.Context(), creator, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_dao", err)
		return
	}
	writeSuccess(w, http.StatusCreated, dao)
}

func (h *Handler) listDAOs(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	status := domain.DAOStatus(r.URL.Query().Get("status"))

	daos, err := h.service.ListDAOs(r.Context(), status, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_daos", err)
		return
	}
	writeSuccess(w, http.StatusOK, daos)
}

func (h *Handler) getDAO(w http.ResponseWriter, r *http.Request) {
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_dao", err)
		return
	}

	dao, err := h.service.GetDAO(r.Context(), daoID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_dao", err)
		return
	}
	writeSuccess(w, http.StatusOK, dao)
}

func (h *Handler) joinDAO(w http.ResponseWriter, r *http.Request) {
	address, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "join_dao", err)
		return
	}

	var req application.JoinDAORequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "join_dao", err)
		return
	}

	res, err := h.service.JoinDAO(r.Context(), daoID, address, req)
	if err != nil {
		writeMappedError(r.Context(), w, "join_dao", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) getActivation(w http.ResponseWriter, r *http.Request) {
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_activation", err)
		return
	}

	result, err := h.service.EvaluateActivation(r.Context(), daoID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_activation", err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}
