// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connections

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

SQLite connections enable foreign keys, a busy timeout and immediate
transactions, and are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables for the given dialect:

	if err := db.CreateSchema(conn, db.TypePostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes,
and inserts the default settings row only once.

# Tables

  - allowed_program: Program codes allowed to self-register
  - voter: Identity, pending OTP and the already-voted flag
  - candidate: Candidate pairs
  - vote: One row per voter (voter_nim is UNIQUE)
  - otp_attempt: Failed OTP verification counters and lockouts
  - admin_user: Admin accounts (bcrypt hashes)
  - app_settings: Single row with title, logos and login method

# Relationships

	allowed_program 1──* voter
	voter 1──0..1 vote
	candidate 1──* vote

Deleting a voter cascades to its vote. Candidates and programs that are
still referenced cannot be deleted.

# Constraint Errors

IsUniqueViolation and IsForeignKeyViolation recognise constraint failures
from both drivers so callers can translate them without string matching.
*/
package db
