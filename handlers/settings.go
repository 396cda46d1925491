// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

type SettingsHandler struct {
	store *store.Store
}

func NewSettingsHandler(st *store.Store) *SettingsHandler {
	return &SettingsHandler{store: st}
}

// GetPublic handles GET /settings
func (h *SettingsHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to query settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, settings.Public())
}

// Get handles GET /admin/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetSettings(r.Context())
	if err != nil {
		slog.Error("failed to query settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, settings)
}

// Update handles PUT /admin/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.ElectionTitle = strings.TrimSpace(req.ElectionTitle)
	if req.ElectionTitle == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "electionTitle is required")
		return
	}
	if req.LoginMethod != models.LoginCampusEmailFormat && req.LoginMethod != models.LoginDatabaseEmailList {
		middleware.ErrorResponse(w, http.StatusBadRequest, "loginMethod must be campus_email_format or database_email_list")
		return
	}

	settings, err := h.store.UpdateSettings(r.Context(), req, time.Now())
	if err != nil {
		slog.Error("failed to update settings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	admin, _ := middleware.AdminFromContext(r.Context())
	slog.Info("settings updated", "login_method", settings.LoginMethod, "admin", admin)

	middleware.JSONResponse(w, http.StatusOK, models.SettingsResponse{
		Message:  "Settings updated",
		Settings: settings,
	})
}
