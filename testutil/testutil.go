// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/violie/server/auth"
	"github.com/violie/server/cliparse"
	"github.com/violie/server/db"
	"github.com/violie/server/mailer"
)

// TestOTPSalt is the salt used by GetTestConfig
const TestOTPSalt = "test-otp-salt"

// SetupTestDB creates a fresh SQLite database with the full schema in
// the test's temp dir. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "violie.db")
	conn, err := db.Open(db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      "violie.db",
		DatabaseType:     db.TypeSQLite,
		OTPSalt:          TestOTPSalt,
		AdminJWTSecret:   "test-jwt-secret",
		OTPTTL:           cliparse.DefaultOTPTTL,
		OTPMaxAttempts:   cliparse.DefaultOTPMaxAttempts,
		OTPAttemptWindow: cliparse.DefaultOTPAttemptWindow,
		OTPLockout:       cliparse.DefaultOTPLockout,
	}
}

// CreateTestProgram adds an allowed program
func CreateTestProgram(t *testing.T, conn *sql.DB, code, name string) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := conn.Exec(`
		INSERT INTO allowed_program (code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, code, name, now)
	if err != nil {
		t.Fatalf("Failed to create test program: %v", err)
	}
}

// CreateTestVoter registers a voter with no pending code who has never
// logged in
func CreateTestVoter(t *testing.T, conn *sql.DB, nim, email string, programCode *string) {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	_, err := conn.Exec(`
		INSERT INTO voter (nim, email, program_code, already_voted, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`, nim, email, programCode, now)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}
}

// CreateVerifiedVoter registers a voter who has already completed OTP
// verification and may vote
func CreateVerifiedVoter(t *testing.T, conn *sql.DB, nim, email string, programCode *string) {
	t.Helper()

	CreateTestVoter(t, conn, nim, email, programCode)
	now := time.Now().UTC().Truncate(time.Second)
	if _, err := conn.Exec(`UPDATE voter SET last_login_at = $2 WHERE nim = $1`, nim, now); err != nil {
		t.Fatalf("Failed to verify test voter: %v", err)
	}
}

// CreateTestCandidate adds a candidate pair and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, chair, viceChair string) int64 {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	var id int64
	err := conn.QueryRow(`
		INSERT INTO candidate (chair, vice_chair, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`, chair, viceChair, now).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// CreateTestAdmin stores an admin account with a bcrypt password
func CreateTestAdmin(t *testing.T, conn *sql.DB, email, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO admin_user (email, password_hash, created_at) VALUES ($1, $2, $3)
	`, email, hash, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		t.Fatalf("Failed to create test admin: %v", err)
	}
}

// SetLoginMethod switches the election's login method
func SetLoginMethod(t *testing.T, conn *sql.DB, method string) {
	t.Helper()

	if _, err := conn.Exec(`UPDATE app_settings SET login_method = $1 WHERE id = 1`, method); err != nil {
		t.Fatalf("Failed to set login method: %v", err)
	}
}

// CountVotes returns how many vote rows exist for nim
func CountVotes(t *testing.T, conn *sql.DB, nim string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE voter_nim = $1`, nim).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// VoterExists reports whether a voter row exists for nim
func VoterExists(t *testing.T, conn *sql.DB, nim string) bool {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM voter WHERE nim = $1`, nim).Scan(&n); err != nil {
		t.Fatalf("Failed to query voter: %v", err)
	}
	return n > 0
}

// AdminToken issues a bearer token the admin middleware accepts
func AdminToken(t *testing.T, cfg cliparse.Config, email string) string {
	t.Helper()

	token, _, err := auth.IssueAdminToken(email, cfg.AdminJWTSecret, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue admin token: %v", err)
	}
	return token
}

var codePattern = regexp.MustCompile(`adalah: (\d{6})`)

// FakeMailer records messages instead of sending them
type FakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	Err  error
}

func (m *FakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of every delivered message
func (m *FakeMailer) Sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

// LastCode extracts the verification code from the latest message to email
func (m *FakeMailer) LastCode(t *testing.T, email string) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].To != email {
			continue
		}
		if match := codePattern.FindStringSubmatch(m.sent[i].Text); match != nil {
			return match[1]
		}
	}
	t.Fatalf("No verification code sent to %s", email)
	return ""
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
