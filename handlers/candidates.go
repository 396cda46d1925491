// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

type CandidateHandler struct {
	store *store.Store
}

func NewCandidateHandler(st *store.Store) *CandidateHandler {
	return &CandidateHandler{store: st}
}

// List handles GET /candidates and GET /admin/candidates
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.store.ListCandidates(r.Context())
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, candidates)
}

// Get handles GET /admin/candidates/{id}
func (h *CandidateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	c, err := h.store.GetCandidate(r.Context(), id)
	if errors.Is(err, store.ErrCandidateNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to query candidate", "error", err, "candidate_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// Create handles POST /admin/candidates
func (h *CandidateHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := parseCandidate(w, r)
	if !ok {
		return
	}

	c, err := h.store.CreateCandidate(r.Context(), req, time.Now())
	if err != nil {
		slog.Error("failed to create candidate", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create candidate")
		return
	}

	slog.Info("candidate created", "candidate_id", c.ID)

	middleware.JSONResponse(w, http.StatusCreated, models.CandidateResponse{
		Message:   "Candidate created",
		Candidate: c,
	})
}

// Update handles PUT /admin/candidates/{id}
func (h *CandidateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}
	req, ok := parseCandidate(w, r)
	if !ok {
		return
	}

	c, err := h.store.UpdateCandidate(r.Context(), id, req, time.Now())
	if errors.Is(err, store.ErrCandidateNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	}
	if err != nil {
		slog.Error("failed to update candidate", "error", err, "candidate_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update candidate")
		return
	}

	slog.Info("candidate updated", "candidate_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.CandidateResponse{
		Message:   "Candidate updated",
		Candidate: c,
	})
}

// Delete handles DELETE /admin/candidates/{id}
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := candidateID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteCandidate(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrCandidateNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Candidate not found")
		return
	case errors.Is(err, store.ErrInUse):
		middleware.ErrorResponse(w, http.StatusConflict, "Candidate already has votes and cannot be deleted")
		return
	default:
		slog.Error("failed to delete candidate", "error", err, "candidate_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete candidate")
		return
	}

	slog.Info("candidate deleted", "candidate_id", id)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Candidate deleted"})
}

func candidateID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseCandidate(w http.ResponseWriter, r *http.Request) (models.CandidateRequest, bool) {
	var req models.CandidateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return req, false
	}

	req.Chair = strings.TrimSpace(req.Chair)
	req.ViceChair = strings.TrimSpace(req.ViceChair)
	if req.Chair == "" || req.ViceChair == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "chair and viceChair are required")
		return req, false
	}
	return req, true
}
