// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dbType string) error {
	var schema string
	switch dbType {
	case TypePostgres:
		schema = postgresSchema
	case TypeSQLite:
		schema = sqliteSchema
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Settings live in a single row
	_, err = db.Exec(`
		INSERT INTO app_settings (id, election_title, login_method)
		VALUES (1, 'Pemilihan Himpunan', 'campus_email_format')
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to create default settings: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Allowed programs
CREATE TABLE IF NOT EXISTS allowed_program (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    nim TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    program_code TEXT REFERENCES allowed_program(code),
    otp_code TEXT,
    otp_expires_at TIMESTAMPTZ,
    already_voted BOOLEAN NOT NULL DEFAULT FALSE,
    last_login_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (NOT (already_voted AND otp_code IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_voter_program_code ON voter(program_code);
CREATE INDEX IF NOT EXISTS idx_voter_already_voted ON voter(already_voted);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id BIGSERIAL PRIMARY KEY,
    chair TEXT NOT NULL,
    vice_chair TEXT NOT NULL,
    cabinet TEXT,
    vision TEXT,
    mission TEXT,
    image_url TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Votes (one per voter)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    voter_nim TEXT NOT NULL UNIQUE REFERENCES voter(nim) ON DELETE CASCADE,
    candidate_id BIGINT NOT NULL REFERENCES candidate(id),
    cast_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

-- Failed OTP attempts
CREATE TABLE IF NOT EXISTS otp_attempt (
    nim TEXT PRIMARY KEY,
    failures INTEGER NOT NULL DEFAULT 0,
    last_failure_at TIMESTAMPTZ NOT NULL,
    locked_until TIMESTAMPTZ
);

-- Admin accounts
CREATE TABLE IF NOT EXISTS admin_user (
    email TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Application settings
CREATE TABLE IF NOT EXISTS app_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    election_title TEXT NOT NULL,
    login_method TEXT NOT NULL CHECK (login_method IN ('campus_email_format', 'database_email_list')),
    login_page_logo_url TEXT,
    header_logo1_url TEXT,
    header_logo2_url TEXT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

const sqliteSchema = `
-- Allowed programs
CREATE TABLE IF NOT EXISTS allowed_program (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    nim TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    program_code TEXT REFERENCES allowed_program(code),
    otp_code TEXT,
    otp_expires_at TIMESTAMP,
    already_voted BOOLEAN NOT NULL DEFAULT FALSE,
    last_login_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CHECK (NOT (already_voted AND otp_code IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_voter_program_code ON voter(program_code);
CREATE INDEX IF NOT EXISTS idx_voter_already_voted ON voter(already_voted);

-- Candidates
CREATE TABLE IF NOT EXISTS candidate (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    chair TEXT NOT NULL,
    vice_chair TEXT NOT NULL,
    cabinet TEXT,
    vision TEXT,
    mission TEXT,
    image_url TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Votes (one per voter)
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    voter_nim TEXT NOT NULL UNIQUE REFERENCES voter(nim) ON DELETE CASCADE,
    candidate_id INTEGER NOT NULL REFERENCES candidate(id),
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vote_candidate_id ON vote(candidate_id);

-- Failed OTP attempts
CREATE TABLE IF NOT EXISTS otp_attempt (
    nim TEXT PRIMARY KEY,
    failures INTEGER NOT NULL DEFAULT 0,
    last_failure_at TIMESTAMP NOT NULL,
    locked_until TIMESTAMP
);

-- Admin accounts
CREATE TABLE IF NOT EXISTS admin_user (
    email TEXT PRIMARY KEY,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Application settings
CREATE TABLE IF NOT EXISTS app_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    election_title TEXT NOT NULL,
    login_method TEXT NOT NULL CHECK (login_method IN ('campus_email_format', 'database_email_list')),
    login_page_logo_url TEXT,
    header_logo1_url TEXT,
    header_logo2_url TEXT,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`
