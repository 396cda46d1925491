// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/violie/server/election"
	"github.com/violie/server/middleware"
	"github.com/violie/server/models"
)

// Error codes sent in the errorCode field
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeCredentialMismatch  = "CREDENTIAL_MISMATCH"
	CodeInvalidOTP          = "INVALID_OR_EXPIRED_OTP"
	CodeNotEligible         = "NOT_ELIGIBLE"
	CodeAlreadyVoted        = "ALREADY_VOTED"
	CodeVerificationPending = "VERIFICATION_PENDING"
	CodeVoterNotFound       = "VOTER_NOT_FOUND"
	CodeInvalidCandidate    = "INVALID_CANDIDATE"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeRateLimited         = "RATE_LIMITED"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeTransient           = "TRANSIENT_FAILURE"
)

// writeError maps an election error to its status and errorCode. Anything
// it does not recognise is reported as a transient failure.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *election.ValidationError
		invalidOTP *election.InvalidOTPError
		limited    *election.RateLimitedError
	)

	switch {
	case errors.As(err, &validation):
		writeCoded(w, http.StatusBadRequest, CodeValidation, validation.Message)
	case errors.As(err, &invalidOTP):
		remaining := invalidOTP.AttemptsRemaining
		middleware.JSONResponse(w, http.StatusBadRequest, models.ErrorResponse{
			Message:           invalidOTP.Error(),
			ErrorCode:         CodeInvalidOTP,
			AttemptsRemaining: &remaining,
		})
	case errors.As(err, &limited):
		seconds := limited.RetrySeconds()
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		middleware.JSONResponse(w, http.StatusTooManyRequests, models.ErrorResponse{
			Message:           limited.Error(),
			ErrorCode:         CodeRateLimited,
			RetryAfterSeconds: &seconds,
		})
	case errors.Is(err, election.ErrCredentialMismatch):
		writeCoded(w, http.StatusBadRequest, CodeCredentialMismatch, err.Error())
	case errors.Is(err, election.ErrNotEligible):
		writeCoded(w, http.StatusForbidden, CodeNotEligible, err.Error())
	case errors.Is(err, election.ErrAlreadyVoted):
		writeCoded(w, http.StatusForbidden, CodeAlreadyVoted, err.Error())
	case errors.Is(err, election.ErrVerificationPending):
		writeCoded(w, http.StatusForbidden, CodeVerificationPending, err.Error())
	case errors.Is(err, election.ErrVoterNotFound):
		writeCoded(w, http.StatusNotFound, CodeVoterNotFound, err.Error())
	case errors.Is(err, election.ErrInvalidCandidate):
		writeCoded(w, http.StatusNotFound, CodeInvalidCandidate, err.Error())
	case errors.Is(err, election.ErrEmailTaken):
		writeCoded(w, http.StatusConflict, CodeEmailTaken, err.Error())
	case errors.Is(err, election.ErrDeliveryFailed):
		writeCoded(w, http.StatusInternalServerError, CodeDeliveryFailed, err.Error())
	case errors.Is(err, election.ErrTransient):
		writeCoded(w, http.StatusInternalServerError, CodeTransient, err.Error())
	default:
		slog.Error("unmapped error", "error", err)
		writeCoded(w, http.StatusInternalServerError, CodeTransient, election.ErrTransient.Error())
	}
}

func writeCoded(w http.ResponseWriter, status int, code, message string) {
	middleware.JSONResponse(w, status, models.ErrorResponse{
		Message:   message,
		ErrorCode: code,
	})
}
