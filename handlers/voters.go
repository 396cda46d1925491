// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/violie/server/election"
	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

// Voter list paging
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	MaxPage          = math.MaxInt32 / MaxPageLimit
)

type VoterHandler struct {
	store *store.Store
	svc   *election.Service
}

func NewVoterHandler(st *store.Store, svc *election.Service) *VoterHandler {
	return &VoterHandler{store: st, svc: svc}
}

// List handles GET /admin/voters?page=&limit=&search=&program=&status=
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.VoterFilter{
		Search:  strings.TrimSpace(q.Get("search")),
		Program: strings.TrimSpace(q.Get("program")),
		Status:  q.Get("status"),
		Page:    positiveInt(q.Get("page"), 1),
		Limit:   positiveInt(q.Get("limit"), DefaultPageLimit),
	}
	filter.Limit = min(filter.Limit, MaxPageLimit)
	filter.Page = min(filter.Page, MaxPage)
	if filter.Status != "" && filter.Status != models.StatusVoted && filter.Status != models.StatusNotVoted {
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be voted or not_voted")
		return
	}

	voters, total, err := h.store.ListVoters(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoterListResponse{
		Voters:      voters,
		TotalVoters: total,
		CurrentPage: filter.Page,
		TotalPages:  (total + filter.Limit - 1) / filter.Limit,
	})
}

// Register handles POST /admin/voters
func (h *VoterHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	nim := strings.TrimSpace(req.NIM)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if nim == "" || email == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "nim and email are required")
		return
	}
	if !election.ValidEmail(email) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid email format")
		return
	}
	if req.ProgramCode != nil && strings.TrimSpace(*req.ProgramCode) == "" {
		req.ProgramCode = nil
	}

	voter, err := h.store.CreateVoter(r.Context(), nim, email, req.ProgramCode, time.Now())
	switch {
	case err == nil:
	case errors.Is(err, store.ErrConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "NIM or email is already registered")
		return
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unknown program code")
		return
	default:
		slog.Error("failed to register voter", "error", err, "nim", nim)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register voter")
		return
	}

	slog.Info("voter registered", "nim", nim)

	middleware.JSONResponse(w, http.StatusCreated, voter)
}

// Delete handles DELETE /admin/voters/{nim}
func (h *VoterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	nim := r.PathValue("nim")

	err := h.store.DeleteVoter(r.Context(), nim)
	if errors.Is(err, store.ErrVoterNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete voter", "error", err, "nim", nim)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete voter")
		return
	}

	slog.Info("voter deleted", "nim", nim)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Voter deleted"})
}

// ResetVote handles POST /admin/voters/{nim}/reset-vote
func (h *VoterHandler) ResetVote(w http.ResponseWriter, r *http.Request) {
	nim := r.PathValue("nim")

	if err := h.svc.ResetVote(r.Context(), nim); err != nil {
		writeError(w, err)
		return
	}

	admin, _ := middleware.AdminFromContext(r.Context())
	slog.Info("vote reset by admin", "nim", nim, "admin", admin)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Vote reset"})
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
