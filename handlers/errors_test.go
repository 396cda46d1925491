// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/violie/server/election"
)

func TestWriteError(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{"validation", &election.ValidationError{Field: "nim", Message: "NIM is required"}, http.StatusBadRequest, CodeValidation},
		{"credential mismatch", election.ErrCredentialMismatch, http.StatusBadRequest, CodeCredentialMismatch},
		{"not eligible", election.ErrNotEligible, http.StatusForbidden, CodeNotEligible},
		{"already voted", election.ErrAlreadyVoted, http.StatusForbidden, CodeAlreadyVoted},
		{"verification pending", election.ErrVerificationPending, http.StatusForbidden, CodeVerificationPending},
		{"voter not found", election.ErrVoterNotFound, http.StatusNotFound, CodeVoterNotFound},
		{"invalid candidate", election.ErrInvalidCandidate, http.StatusNotFound, CodeInvalidCandidate},
		{"email taken", election.ErrEmailTaken, http.StatusConflict, CodeEmailTaken},
		{"delivery failed", election.ErrDeliveryFailed, http.StatusInternalServerError, CodeDeliveryFailed},
		{"transient", election.ErrTransient, http.StatusInternalServerError, CodeTransient},
		{"wrapped sentinel", fmt.Errorf("login: %w", election.ErrNotEligible), http.StatusForbidden, CodeNotEligible},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, CodeTransient},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tc.err)
			assertErrorCode(t, w, tc.expectedStatus, tc.expectedCode)
		})
	}
}

func TestWriteErrorInvalidOTP(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, &election.InvalidOTPError{AttemptsRemaining: 3})

	resp := assertErrorCode(t, w, http.StatusBadRequest, CodeInvalidOTP)
	if resp.AttemptsRemaining == nil || *resp.AttemptsRemaining != 3 {
		t.Errorf("Expected attemptsRemaining 3, got %v", resp.AttemptsRemaining)
	}
	if resp.RetryAfterSeconds != nil {
		t.Error("Expected no retryAfterSeconds")
	}
}

func TestWriteErrorRateLimited(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, &election.RateLimitedError{RetryAfter: 90*time.Second + 200*time.Millisecond})

	resp := assertErrorCode(t, w, http.StatusTooManyRequests, CodeRateLimited)
	if got := w.Header().Get("Retry-After"); got != "91" {
		t.Errorf("Expected Retry-After '91', got '%s'", got)
	}
	if resp.RetryAfterSeconds == nil || *resp.RetryAfterSeconds != 91 {
		t.Errorf("Expected retryAfterSeconds 91, got %v", resp.RetryAfterSeconds)
	}
	if resp.Message == "" {
		t.Error("Expected a message")
	}
}

func TestWriteErrorDoesNotLeakInternals(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, errors.New("pq: relation \"voter\" does not exist"))

	resp := assertErrorCode(t, w, http.StatusInternalServerError, CodeTransient)
	if resp.Message != election.ErrTransient.Error() {
		t.Errorf("Expected generic message, got '%s'", resp.Message)
	}
}
