package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Secrets
	OTPSalt        string
	AdminJWTSecret string
	AdminEmails    []string

	// OTP policy
	OTPTTL           time.Duration
	OTPMaxAttempts   int
	OTPAttemptWindow time.Duration
	OTPLockout       time.Duration

	// Mail delivery
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	SeedFile   string
	CORSOrigin string
}

// Defaults for the OTP policy
const (
	DefaultOTPTTL           = 15 * time.Minute
	DefaultOTPMaxAttempts   = 5
	DefaultOTPAttemptWindow = 15 * time.Minute
	DefaultOTPLockout       = 30 * time.Minute
	DefaultSMTPPort         = 587
)

// LoadEnvFile loads variables from a dotenv file.
// A missing file is not an error; variables already set in the
// environment win over the file.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var adminEmails string

	fs := flag.NewFlagSet("violie", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.OTPSalt, "otp-salt", "", "OTP hashing salt (prefer env)")
	fs.StringVar(&cfg.AdminJWTSecret, "jwt-secret", "", "Admin token signing secret (prefer env)")
	fs.StringVar(&adminEmails, "admin-emails", "", "Comma separated admin email allow-list")

	fs.DurationVar(&cfg.OTPTTL, "otp-ttl", 0, "OTP lifetime")
	fs.IntVar(&cfg.OTPMaxAttempts, "otp-max-attempts", 0, "Failed OTP attempts before lockout")
	fs.DurationVar(&cfg.OTPAttemptWindow, "otp-window", 0, "Inactivity after which failed attempts reset")
	fs.DurationVar(&cfg.OTPLockout, "otp-lockout", 0, "Lockout duration after too many failures")

	fs.StringVar(&cfg.SMTPHost, "smtp-host", "", "SMTP host (empty logs mail instead of sending)")
	fs.IntVar(&cfg.SMTPPort, "smtp-port", 0, "SMTP port")
	fs.StringVar(&cfg.MailFrom, "mail-from", "", "Sender address")

	fs.StringVar(&cfg.SeedFile, "seed", "", "YAML seed file applied at startup")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.OTPSalt == "" {
		cfg.OTPSalt = os.Getenv("OTP_SALT")
	}
	if cfg.OTPSalt == "" {
		return Config{}, errors.New("OTP_SALT required")
	}

	if cfg.AdminJWTSecret == "" {
		cfg.AdminJWTSecret = os.Getenv("ADMIN_JWT_SECRET")
	}
	if cfg.AdminJWTSecret == "" {
		return Config{}, errors.New("ADMIN_JWT_SECRET required")
	}

	if adminEmails == "" {
		adminEmails = os.Getenv("ADMIN_EMAILS")
	}
	cfg.AdminEmails = splitList(adminEmails)

	var err error
	if cfg.OTPTTL, err = durationOrEnv(cfg.OTPTTL, "OTP_TTL", DefaultOTPTTL); err != nil {
		return Config{}, err
	}
	if cfg.OTPAttemptWindow, err = durationOrEnv(cfg.OTPAttemptWindow, "OTP_ATTEMPT_WINDOW", DefaultOTPAttemptWindow); err != nil {
		return Config{}, err
	}
	if cfg.OTPLockout, err = durationOrEnv(cfg.OTPLockout, "OTP_LOCKOUT", DefaultOTPLockout); err != nil {
		return Config{}, err
	}
	if cfg.OTPMaxAttempts, err = intOrEnv(cfg.OTPMaxAttempts, "OTP_MAX_ATTEMPTS", DefaultOTPMaxAttempts); err != nil {
		return Config{}, err
	}
	if cfg.OTPTTL <= 0 || cfg.OTPAttemptWindow <= 0 || cfg.OTPLockout <= 0 || cfg.OTPMaxAttempts <= 0 {
		return Config{}, errors.New("OTP policy values must be positive")
	}

	// Mail
	if cfg.SMTPHost == "" {
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
	}
	if cfg.SMTPPort, err = intOrEnv(cfg.SMTPPort, "SMTP_PORT", DefaultSMTPPort); err != nil {
		return Config{}, err
	}
	cfg.SMTPUser = os.Getenv("SMTP_USER")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	if cfg.MailFrom == "" {
		cfg.MailFrom = os.Getenv("MAIL_FROM")
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	if cfg.SeedFile == "" {
		cfg.SeedFile = os.Getenv("SEED_FILE")
	}
	cfg.CORSOrigin = os.Getenv("CORS_ORIGIN")

	return cfg, nil
}

// IsAdminEmail reports whether email may sign in to the admin panel.
// An empty allow-list defers entirely to the stored admin accounts.
func (c Config) IsAdminEmail(email string) bool {
	if len(c.AdminEmails) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range c.AdminEmails {
		if allowed == email {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func durationOrEnv(v time.Duration, env string, def time.Duration) (time.Duration, error) {
	if v != 0 {
		return v, nil
	}
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", env, err)
	}
	return d, nil
}

func intOrEnv(v int, env string, def int) (int, error) {
	if v != 0 {
		return v, nil
	}
	s := os.Getenv(env)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", env)
	}
	return n, nil
}
