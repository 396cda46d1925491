// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/violie/server/election"
	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
)

type VoteHandler struct {
	svc *election.Service
}

func NewVoteHandler(svc *election.Service) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Submit handles POST /vote/submit
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeCoded(w, http.StatusBadRequest, CodeValidation, "nim and a numeric candidateId are required")
		return
	}

	res, err := h.svc.SubmitVote(r.Context(), req.NIM, req.CandidateID)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SubmitVoteResponse{
		Message: res.Message,
		Action:  res.Action,
		Delay:   res.Delay,
	})
}
