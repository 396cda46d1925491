// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/violie/server/auth"
	"github.com/violie/server/cliparse"
	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

type AdminHandler struct {
	store *store.Store
	cfg   cliparse.Config
}

func NewAdminHandler(st *store.Store, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{store: st, cfg: cfg}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	admin, err := h.store.GetAdmin(r.Context(), email)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query admin", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		slog.Warn("admin login failed", "email", email, "client_ip", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !h.cfg.IsAdminEmail(email) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Admin access is not allowed for this account")
		return
	}

	token, expiresAt, err := auth.IssueAdminToken(email, h.cfg.AdminJWTSecret, time.Now())
	if err != nil {
		slog.Error("failed to issue admin token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("admin logged in", "email", email)

	middleware.JSONResponse(w, http.StatusOK, models.AdminLoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
