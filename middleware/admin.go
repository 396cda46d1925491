// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/violie/server/auth"
	"github.com/violie/server/cliparse"
)

type contextKey string

const adminEmailKey contextKey = "admin_email"

// RequireAdmin rejects requests without a valid admin bearer token. The
// token's email must still be on the configured allow-list.
func RequireAdmin(cfg cliparse.Config, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "admin token required")
			return
		}

		email, err := auth.ParseAdminToken(token, cfg.AdminJWTSecret)
		if err != nil {
			ErrorResponse(w, http.StatusUnauthorized, "invalid or expired admin token")
			return
		}

		if !cfg.IsAdminEmail(email) {
			slog.Warn("admin token for email no longer allowed", "email", email)
			ErrorResponse(w, http.StatusForbidden, "not an admin")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), adminEmailKey, email)))
	}
}

// AdminFromContext returns the admin email set by RequireAdmin
func AdminFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(adminEmailKey).(string)
	return email, ok
}
