// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file can be loaded first; a missing file is ignored:

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		log.Fatal(err)
	}

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL or SQLite connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - OTPSalt: Secret for OTP hashing (required)
  - AdminJWTSecret: Secret for admin bearer tokens (required)
  - AdminEmails: Admin email allow-list (optional)
  - OTPTTL, OTPMaxAttempts, OTPAttemptWindow, OTPLockout: OTP policy
  - SMTPHost, SMTPPort, SMTPUser, SMTPPassword, MailFrom: mail delivery
  - SeedFile: YAML seed applied at startup

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-otp-salt         OTP salt
	-jwt-secret       Admin token secret
	-admin-emails     Admin allow-list
	-otp-ttl          OTP lifetime (e.g. 15m)
	-otp-max-attempts Failures before lockout
	-otp-window       Failure counter inactivity window
	-otp-lockout      Lockout duration
	-smtp-host        SMTP host
	-smtp-port        SMTP port
	-mail-from        Sender address
	-seed             Seed file

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	OTP_SALT           → -otp-salt
	ADMIN_JWT_SECRET   → -jwt-secret
	ADMIN_EMAILS       → -admin-emails
	OTP_TTL            → -otp-ttl
	OTP_MAX_ATTEMPTS   → -otp-max-attempts
	OTP_ATTEMPT_WINDOW → -otp-window
	OTP_LOCKOUT        → -otp-lockout
	SMTP_HOST          → -smtp-host
	SMTP_PORT          → -smtp-port
	MAIL_FROM          → -mail-from
	SEED_FILE          → -seed

SMTP_USER, SMTP_PASSWORD and CORS_ORIGIN are read from the environment only.

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - OTP_SALT must be provided
  - ADMIN_JWT_SECRET must be provided

Durations and counts must parse and be positive.
*/
package cliparse
