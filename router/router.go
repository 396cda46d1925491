// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/violie/server/cliparse"
	"github.com/violie/server/election"
	"github.com/violie/server/handlers"
	"github.com/violie/server/mailer"
	"github.com/violie/server/middleware"
	"github.com/violie/server/store"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, m mailer.Mailer) *http.ServeMux {
	mux := http.NewServeMux()

	st := store.New(db)
	svc := election.NewService(st, m, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc)
	voteHandler := handlers.NewVoteHandler(svc)
	adminHandler := handlers.NewAdminHandler(st, cfg)
	candidateHandler := handlers.NewCandidateHandler(st)
	programHandler := handlers.NewProgramHandler(st)
	settingsHandler := handlers.NewSettingsHandler(st)
	voterHandler := handlers.NewVoterHandler(st, svc)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := st.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Voter login and verification
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /auth/resend-otp", middleware.WithLogging(authHandler.ResendOTP))
	mux.HandleFunc("POST /auth/verify-otp", middleware.WithLogging(authHandler.VerifyOTP))

	// Voting
	mux.HandleFunc("POST /vote/submit", middleware.WithLogging(voteHandler.Submit))

	// Public election data
	mux.HandleFunc("GET /candidates", middleware.WithLogging(candidateHandler.List))
	mux.HandleFunc("GET /settings", middleware.WithLogging(settingsHandler.GetPublic))

	// Administration
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))

	mux.HandleFunc("GET /admin/candidates", admin(candidateHandler.List))
	mux.HandleFunc("POST /admin/candidates", admin(candidateHandler.Create))
	mux.HandleFunc("GET /admin/candidates/{id}", admin(candidateHandler.Get))
	mux.HandleFunc("PUT /admin/candidates/{id}", admin(candidateHandler.Update))
	mux.HandleFunc("DELETE /admin/candidates/{id}", admin(candidateHandler.Delete))

	mux.HandleFunc("GET /admin/programs", admin(programHandler.List))
	mux.HandleFunc("POST /admin/programs", admin(programHandler.Create))
	mux.HandleFunc("GET /admin/programs/{code}", admin(programHandler.Get))
	mux.HandleFunc("PUT /admin/programs/{code}", admin(programHandler.Update))
	mux.HandleFunc("DELETE /admin/programs/{code}", admin(programHandler.Delete))

	mux.HandleFunc("GET /admin/settings", admin(settingsHandler.Get))
	mux.HandleFunc("PUT /admin/settings", admin(settingsHandler.Update))

	mux.HandleFunc("GET /admin/voters", admin(voterHandler.List))
	mux.HandleFunc("POST /admin/voters", admin(voterHandler.Register))
	mux.HandleFunc("DELETE /admin/voters/{nim}", admin(voterHandler.Delete))
	mux.HandleFunc("POST /admin/voters/{nim}/reset-vote", admin(voterHandler.ResetVote))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("violie API v1"))
	})

	return mux
}
