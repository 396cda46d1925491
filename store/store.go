// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrVoterNotFound       = errors.New("voter not found")
	ErrCandidateNotFound   = errors.New("candidate not found")
	ErrAlreadyVoted        = errors.New("voter has already voted")
	ErrVerificationPending = errors.New("otp verification not completed")
	ErrConflict            = errors.New("record already exists")
	ErrInUse               = errors.New("record is still referenced")
)

// Store is the relational data store shared by every server instance.
// It keeps no voter state in memory; each call goes to the database.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection for health checks and tests
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, committing only if fn succeeds
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ts normalizes timestamps before they are bound. SQLite compares
// timestamps as text, so every value must share one zone and precision.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
