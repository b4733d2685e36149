package http

import (
	"net/http"

	"github.com/citadelx/marketplace/internal/application"
)

func (h *Handler) createProposal(w http.ResponseWriter, r *http.Request) {
	creator, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "create_proposal", err)
		return
	}

	var req application.CreateProposalRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_proposal", err)
		return
	}

	proposal, err := h.service.CreateProposal(r.Context(), daoID, creator, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_proposal", err)
		return
	}
	writeSuccess(w, http.StatusCreated, proposal)
}

func (h *Handler) listProposals(w http.ResponseWriter, r *http.Request) {
	daoID, err := pathUUID(r, "dao_id")
	if err != nil {
		writeValidationError(r.Context(), w, "list_proposals", err)
		return
	}
	limit, offset := pagination(r)

	proposals, err := h.service.ListProposals(r.Context(), daoID, limit, offset)
	if err != nil {
		writeMappedError(r.Context(), w, "list_proposals", err)
		return
	}
	writeSuccess(w, http.StatusOK, proposals)
}

func (h *Handler) getProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, err := pathUUID(r, "proposal_id")
	if err != nil {
		writeValidationError(r.Context(), w, "get_proposal", err)
		return
	}

	proposal, err := h.service.GetProposal(r.Context(), proposalID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_proposal", err)
		return
	}
	writeSuccess(w, http.StatusOK, proposal)
}

func (h *Handler) castVote(w http.ResponseWriter, r *http.Request) {
	voter, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	proposalID, err := pathUUID(r, "proposal_id")
	if err != nil {
		writeValidationError(r.Context(), w, "cast_vote", err)
		return
	}

	var req application.CastVoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "cast_vote", err)
		return
	}

	res, err := h.service.CastVote(r.Context(), proposalID, voter, req)
	if err != nil {
		writeMappedError(r.Context(), w, "cast_vote", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (h *Handler) executeProposal(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.callerAddress(w, r)
	if !ok {
		return
	}
	proposalID, err := pathUUID(r, "proposal_id")
	if err != nil {
		writeValidationError(r.Context(), w, "execute_proposal", err)
		return
	}

	var req application.ExecuteProposalRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "execute_proposal", err)
		return
	}

	res, err := h.service.ExecuteProposal(r.Context(), proposalID, caller, req)
	if err != nil {
		writeMappedError(r.Context(), w, "execute_proposal", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}
