// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/violie/server/election"
	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
)

type AuthHandler struct {
	svc *election.Service
}

func NewAuthHandler(svc *election.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeCoded(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	res, err := h.svc.Login(r.Context(), req.NIM, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Message:      "A verification code has been sent to your email",
		NIM:          res.NIM,
		Email:        res.Email,
		ProgramName:  res.ProgramName,
		AlreadyVoted: res.AlreadyVoted,
	})
}

// ResendOTP handles POST /auth/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeCoded(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	if err := h.svc.ResendOTP(r.Context(), req.NIM, req.Email); err != nil {
		writeError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{
		Message: "A new verification code has been sent to your email",
	})
}

// VerifyOTP handles POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		writeCoded(w, http.StatusBadRequest, CodeValidation, "Invalid JSON")
		return
	}

	res, err := h.svc.VerifyOTP(r.Context(), req.NIM, req.OTP)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Verification successful"
	if res.AlreadyVoted {
		message = "Verification successful, you have already voted"
	}

	middleware.JSONResponse(w, http.StatusOK, models.VerifyOTPResponse{
		Message:      message,
		AlreadyVoted: res.AlreadyVoted,
		ProgramName:  res.ProgramName,
	})
}
