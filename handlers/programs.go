// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/violie/server/election"
	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

type ProgramHandler struct {
	store *store.Store
}

func NewProgramHandler(st *store.Store) *ProgramHandler {
	return &ProgramHandler{store: st}
}

// List handles GET /admin/programs
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.store.ListPrograms(r.Context())
	if err != nil {
		slog.Error("failed to list programs", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, programs)
}

// Get handles GET /admin/programs/{code}
func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	p, err := h.store.GetProgram(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Program not found")
		return
	}
	if err != nil {
		slog.Error("failed to query program", "error", err, "code", code)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, p)
}

// Create handles POST /admin/programs
func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.ProgramRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	code := strings.TrimSpace(req.Code)
	name := strings.TrimSpace(req.Name)
	if len(code) != election.ProgramCodeLength {
		middleware.ErrorResponse(w, http.StatusBadRequest, "code must be exactly 4 characters")
		return
	}
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.store.CreateProgram(r.Context(), code, name, time.Now())
	if errors.Is(err, store.ErrConflict) {
		middleware.ErrorResponse(w, http.StatusConflict, "Program code already exists")
		return
	}
	if err != nil {
		slog.Error("failed to create program", "error", err, "code", code)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create program")
		return
	}

	slog.Info("program created", "code", code)

	middleware.JSONResponse(w, http.StatusCreated, models.ProgramResponse{
		Message: "Program created",
		Program: p,
	})
}

// Update handles PUT /admin/programs/{code}. Only the name can change.
func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req models.ProgramRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.store.UpdateProgram(r.Context(), code, name, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Program not found")
		return
	}
	if err != nil {
		slog.Error("failed to update program", "error", err, "code", code)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update program")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProgramResponse{
		Message: "Program updated",
		Program: p,
	})
}

// Delete handles DELETE /admin/programs/{code}
func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	err := h.store.DeleteProgram(r.Context(), code)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Program not found")
		return
	case errors.Is(err, store.ErrInUse):
		middleware.ErrorResponse(w, http.StatusConflict, "Program still has registered voters")
		return
	default:
		slog.Error("failed to delete program", "error", err, "code", code)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete program")
		return
	}

	slog.Info("program deleted", "code", code)

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Program deleted"})
}
