// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv() {
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("OTP_SALT", "test-otp-salt")
	os.Setenv("ADMIN_JWT_SECRET", "test-jwt-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	setRequiredEnv()
	os.Setenv("OTP_TTL", "10m")
	os.Setenv("ADMIN_EMAILS", "Admin@Example.com, second@example.com")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.OTPTTL != 10*time.Minute {
		t.Errorf("expected OTP TTL 10m, got %s", cfg.OTPTTL)
	}
	if len(cfg.AdminEmails) != 2 || cfg.AdminEmails[0] != "admin@example.com" {
		t.Errorf("unexpected admin emails: %v", cfg.AdminEmails)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-otp-salt", "s1", "-jwt-secret", "s2", "-otp-lockout", "1h"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.OTPLockout != time.Hour {
		t.Errorf("expected lockout 1h, got %s", cfg.OTPLockout)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.OTPTTL != DefaultOTPTTL || cfg.OTPAttemptWindow != DefaultOTPAttemptWindow || cfg.OTPLockout != DefaultOTPLockout {
		t.Errorf("unexpected OTP durations: %s %s %s", cfg.OTPTTL, cfg.OTPAttemptWindow, cfg.OTPLockout)
	}
	if cfg.OTPMaxAttempts != DefaultOTPMaxAttempts {
		t.Errorf("expected %d max attempts, got %d", DefaultOTPMaxAttempts, cfg.OTPMaxAttempts)
	}
	if cfg.SMTPPort != DefaultSMTPPort {
		t.Errorf("expected SMTP port %d, got %d", DefaultSMTPPort, cfg.SMTPPort)
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing database url", "DATABASE_URL"},
		{"missing otp salt", "OTP_SALT"},
		{"missing jwt secret", "ADMIN_JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv()
			os.Unsetenv(tt.unset)
			defer os.Clearenv()

			if _, err := ParseFlags(nil); err == nil {
				t.Errorf("expected error when %s is unset", tt.unset)
			}
		})
	}
}

func TestParseFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"bad duration", "OTP_TTL", "fifteen"},
		{"bad attempts", "OTP_MAX_ATTEMPTS", "many"},
		{"negative attempts", "OTP_MAX_ATTEMPTS", "-1"},
		{"bad database type", "DATABASE_TYPE", "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv()
			os.Setenv(tt.env, tt.val)
			defer os.Clearenv()

			if _, err := ParseFlags(nil); err == nil {
				t.Errorf("expected error for %s=%s", tt.env, tt.val)
			}
		})
	}
}

func TestIsAdminEmail(t *testing.T) {
	open := Config{}
	if !open.IsAdminEmail("anyone@example.com") {
		t.Error("empty allow-list should accept any email")
	}

	restricted := Config{AdminEmails: []string{"admin@example.com"}}
	if !restricted.IsAdminEmail(" ADMIN@example.com ") {
		t.Error("allow-list match should be case-insensitive")
	}
	if restricted.IsAdminEmail("other@example.com") {
		t.Error("email outside allow-list should be rejected")
	}
}

func TestLoadEnvFile(t *testing.T) {
	defer os.Clearenv()

	// Missing file is fine
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OTP_SALT=from-file\nPORT=7000\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	os.Setenv("PORT", "9000")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}
	if got := os.Getenv("OTP_SALT"); got != "from-file" {
		t.Errorf("expected OTP_SALT from file, got %q", got)
	}
	// Existing env wins
	if got := os.Getenv("PORT"); got != "9000" {
		t.Errorf("expected existing PORT to be kept, got %q", got)
	}
}
