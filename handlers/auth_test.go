// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/violie/server/cliparse"
	"github.com/violie/server/election"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
	"github.com/violie/server/testutil"
)

const (
	testNIM   = "202012345"
	testEmail = "202012345@student.example.ac.id"
)

type testEnv struct {
	db     *sql.DB
	cfg    cliparse.Config
	mailer *testutil.FakeMailer
	store  *store.Store
	svc    *election.Service
}

// newTestEnv opens a campus-format election with program 2020 allowed
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	m := &testutil.FakeMailer{}
	st := store.New(db)

	testutil.CreateTestProgram(t, db, "2020", "Teknik Informatika")

	return &testEnv{
		db:     db,
		cfg:    cfg,
		mailer: m,
		store:  st,
		svc:    election.NewService(st, m, cfg),
	}
}

func call(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func loginRequest(nim, email string) *http.Request {
	return testutil.MakeRequest("POST", "/auth/login", models.LoginRequest{NIM: nim, Email: email}, nil)
}

func verifyRequest(nim, code string) *http.Request {
	return testutil.MakeRequest("POST", "/auth/verify-otp", models.VerifyOTPRequest{NIM: nim, OTP: code}, nil)
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) models.ErrorResponse {
	t.Helper()
	testutil.AssertStatus(t, w, status)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.ErrorCode != code {
		t.Errorf("Expected errorCode '%s', got '%s' (%s)", code, resp.ErrorCode, resp.Message)
	}
	return resp
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)

	t.Run("campus email registers voter and mails a code", func(t *testing.T) {
		w := call(handler.Login, loginRequest(testNIM, testEmail))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.LoginResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.NIM != testNIM || resp.Email != testEmail {
			t.Errorf("Unexpected voter in response: %+v", resp)
		}
		if resp.ProgramName != "Teknik Informatika" {
			t.Errorf("Expected program name 'Teknik Informatika', got '%s'", resp.ProgramName)
		}
		if resp.AlreadyVoted {
			t.Error("Expected alreadyVoted to be false")
		}
		if !testutil.VoterExists(t, env.db, testNIM) {
			t.Error("Expected voter to be registered")
		}

		code := env.mailer.LastCode(t, testEmail)
		if strings.Contains(w.Body.String(), code) {
			t.Error("Response must not contain the verification code")
		}
	})

	testCases := []struct {
		name           string
		req            *http.Request
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "invalid JSON",
			req:            httptest.NewRequest("POST", "/auth/login", strings.NewReader("{bad")),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "missing email",
			req:            loginRequest(testNIM, ""),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "malformed email",
			req:            loginRequest(testNIM, "not-an-email"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeValidation,
		},
		{
			name:           "local part differs from NIM",
			req:            loginRequest(testNIM, "someone@student.example.ac.id"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   CodeCredentialMismatch,
		},
		{
			name:           "program not allowed",
			req:            loginRequest("199912345", "199912345@student.example.ac.id"),
			expectedStatus: http.StatusForbidden,
			expectedCode:   CodeNotEligible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := call(handler.Login, tc.req)
			assertErrorCode(t, w, tc.expectedStatus, tc.expectedCode)
		})
	}
}

func TestLoginAlreadyVoted(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)

	program := "2020"
	testutil.CreateVerifiedVoter(t, env.db, testNIM, testEmail, &program)
	candidateID := testutil.CreateTestCandidate(t, env.db, "Alya", "Bima")
	if _, err := env.svc.SubmitVote(t.Context(), testNIM, candidateID); err != nil {
		t.Fatalf("Failed to vote: %v", err)
	}

	w := call(handler.Login, loginRequest(testNIM, testEmail))
	assertErrorCode(t, w, http.StatusForbidden, CodeAlreadyVoted)

	if len(env.mailer.Sent()) != 0 {
		t.Error("No code should be mailed to a voter who already voted")
	}
}

func TestLoginCuratedList(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)
	testutil.SetLoginMethod(t, env.db, models.LoginDatabaseEmailList)

	testutil.CreateTestVoter(t, env.db, "A11.2021.00042", "budi@gmail.com", nil)

	w := call(handler.Login, loginRequest("A11.2021.00042", "Budi@Gmail.com"))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = call(handler.Login, loginRequest("A11.2021.00042", "other@gmail.com"))
	assertErrorCode(t, w, http.StatusBadRequest, CodeCredentialMismatch)

	w = call(handler.Login, loginRequest(testNIM, testEmail))
	assertErrorCode(t, w, http.StatusForbidden, CodeNotEligible)
}

func TestLoginDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.Err = errors.New("smtp: connection refused")
	handler := NewAuthHandler(env.svc)

	w := call(handler.Login, loginRequest(testNIM, testEmail))
	assertErrorCode(t, w, http.StatusInternalServerError, CodeDeliveryFailed)

	v, err := env.store.GetVoter(t.Context(), testNIM)
	if err != nil {
		t.Fatalf("Failed to load voter: %v", err)
	}
	if !v.HasPendingOTP() {
		t.Error("Expected the code to stay stored after a delivery failure")
	}
}

func TestResendOTP(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)

	w := call(handler.Login, loginRequest(testNIM, testEmail))
	testutil.AssertStatus(t, w, http.StatusOK)

	req := testutil.MakeRequest("POST", "/auth/resend-otp", models.LoginRequest{NIM: testNIM, Email: testEmail}, nil)
	w = call(handler.ResendOTP, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	if n := len(env.mailer.Sent()); n != 2 {
		t.Fatalf("Expected 2 messages, got %d", n)
	}

	// Only the latest code is valid
	w = call(handler.VerifyOTP, verifyRequest(testNIM, env.mailer.LastCode(t, testEmail)))
	testutil.AssertStatus(t, w, http.StatusOK)

	t.Run("unknown voter", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/auth/resend-otp", models.LoginRequest{
			NIM: "202099999", Email: "202099999@student.example.ac.id",
		}, nil)
		w := call(handler.ResendOTP, req)
		assertErrorCode(t, w, http.StatusNotFound, CodeVoterNotFound)
	})

	t.Run("wrong email", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/auth/resend-otp", models.LoginRequest{
			NIM: testNIM, Email: "someone@student.example.ac.id",
		}, nil)
		w := call(handler.ResendOTP, req)
		assertErrorCode(t, w, http.StatusBadRequest, CodeCredentialMismatch)
	})
}

func TestVerifyOTP(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)

	w := call(handler.Login, loginRequest(testNIM, testEmail))
	testutil.AssertStatus(t, w, http.StatusOK)
	code := env.mailer.LastCode(t, testEmail)

	t.Run("malformed code", func(t *testing.T) {
		w := call(handler.VerifyOTP, verifyRequest(testNIM, "12ab"))
		assertErrorCode(t, w, http.StatusBadRequest, CodeValidation)
	})

	t.Run("wrong code reports attempts remaining", func(t *testing.T) {
		wrong := "000000"
		if code == wrong {
			wrong = "111111"
		}
		w := call(handler.VerifyOTP, verifyRequest(testNIM, wrong))
		resp := assertErrorCode(t, w, http.StatusBadRequest, CodeInvalidOTP)
		if resp.AttemptsRemaining == nil || *resp.AttemptsRemaining != env.cfg.OTPMaxAttempts-1 {
			t.Errorf("Expected attemptsRemaining %d, got %v", env.cfg.OTPMaxAttempts-1, resp.AttemptsRemaining)
		}
	})

	t.Run("correct code", func(t *testing.T) {
		w := call(handler.VerifyOTP, verifyRequest(testNIM, code))
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.VerifyOTPResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.AlreadyVoted {
			t.Error("Expected alreadyVoted to be false")
		}
		if resp.ProgramName != "Teknik Informatika" {
			t.Errorf("Expected program name, got '%s'", resp.ProgramName)
		}
	})

	t.Run("code cannot be reused", func(t *testing.T) {
		w := call(handler.VerifyOTP, verifyRequest(testNIM, code))
		assertErrorCode(t, w, http.StatusBadRequest, CodeInvalidOTP)
	})
}

func TestVerifyOTPLockout(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)

	w := call(handler.Login, loginRequest(testNIM, testEmail))
	testutil.AssertStatus(t, w, http.StatusOK)
	code := env.mailer.LastCode(t, testEmail)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	for i := 1; i < env.cfg.OTPMaxAttempts; i++ {
		w := call(handler.VerifyOTP, verifyRequest(testNIM, wrong))
		assertErrorCode(t, w, http.StatusBadRequest, CodeInvalidOTP)
	}

	w = call(handler.VerifyOTP, verifyRequest(testNIM, wrong))
	resp := assertErrorCode(t, w, http.StatusTooManyRequests, CodeRateLimited)
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if resp.RetryAfterSeconds == nil || *resp.RetryAfterSeconds <= 0 {
		t.Errorf("Expected positive retryAfterSeconds, got %v", resp.RetryAfterSeconds)
	}

	// Even the right code is refused while locked
	w = call(handler.VerifyOTP, verifyRequest(testNIM, code))
	assertErrorCode(t, w, http.StatusTooManyRequests, CodeRateLimited)
}
