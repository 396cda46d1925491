// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Violie election server.

Violie runs a one-person-one-vote student election. A voter identifies
with NIM and email, receives a 6 digit code by email, verifies it and
casts exactly one vote.

# Starting the Server

Configuration comes from flags, environment variables or a local .env:

	DATABASE_TYPE=postgres DATABASE_URL=postgres://... OTP_SALT=... ADMIN_JWT_SECRET=... go run .

SQLite is the default and needs no database server:

	go run . -d violie.db -otp-salt dev -jwt-secret dev -seed seed.yaml

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL URL or SQLite file path
  - OTP_SALT (--otp-salt): HMAC key for stored verification codes
  - ADMIN_JWT_SECRET (--jwt-secret): signing key for admin tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - OTP_TTL, OTP_MAX_ATTEMPTS, OTP_ATTEMPT_WINDOW, OTP_LOCKOUT
  - SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASSWORD, MAIL_FROM
  - ADMIN_EMAILS: comma separated admin allow-list
  - SEED_FILE (-seed): YAML bootstrap data
  - CORS_ORIGIN: allowed browser origin

Without SMTP_HOST verification emails are written to the debug log.

# Architecture

  - election: login policies, code issuing and verification, voting
  - store: SQL data store with the atomic vote and code primitives
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin auth, JSON helpers
  - mailer: SMTP delivery and email templates
  - seed: YAML bootstrap
  - models: Request/response and domain types
  - auth: Codes, password hashes and admin tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
