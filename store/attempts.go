// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// AttemptPolicy bounds failed OTP verifications per NIM
type AttemptPolicy struct {
	MaxFailures int
	Window      time.Duration
	Lockout     time.Duration
}

// AttemptResult describes the counter after a failure was recorded.
// LockedUntil is set while the NIM is locked out, whether this failure
// triggered the lock or an earlier one did.
type AttemptResult struct {
	Failures    int
	LockedUntil *time.Time
}

type queryer interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// activeLock returns the lockout deadline for nim, or nil if none is
// in force at now.
func activeLock(ctx context.Context, q queryer, nim string, now time.Time) (*time.Time, error) {
	var lockedUntil *time.Time
	err := q.QueryRowContext(ctx, `
		SELECT locked_until FROM otp_attempt WHERE nim = $1
	`, nim).Scan(&lockedUntil)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query otp attempts: %w", err)
	}
	if lockedUntil == nil || !lockedUntil.After(now) {
		return nil, nil
	}
	return lockedUntil, nil
}

// AttemptLock returns the lockout deadline for nim if one is active at now
func (s *Store) AttemptLock(ctx context.Context, nim string, now time.Time) (time.Time, bool, error) {
	lockedUntil, err := activeLock(ctx, s.db, nim, ts(now))
	if err != nil || lockedUntil == nil {
		return time.Time{}, false, err
	}
	return *lockedUntil, true, nil
}

// RecordFailedAttempt counts one failed verification. Failures older than
// the window restart the count at one. Reaching MaxFailures locks the
// NIM and resets the counter so the next window starts clean. A failure
// recorded while the lock is active leaves the lock and counter alone.
func (s *Store) RecordFailedAttempt(ctx context.Context, nim string, now time.Time, p AttemptPolicy) (AttemptResult, error) {
	var result AttemptResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = recordFailure(ctx, tx, nim, ts(now), p)
		return err
	})
	if err != nil {
		return AttemptResult{}, err
	}
	return result, nil
}

func recordFailure(ctx context.Context, tx *sql.Tx, nim string, now time.Time, p AttemptPolicy) (AttemptResult, error) {
	var result AttemptResult
	err := tx.QueryRowContext(ctx, `
		INSERT INTO otp_attempt (nim, failures, last_failure_at, locked_until)
		VALUES ($1, 1, $2, NULL)
		ON CONFLICT (nim) DO UPDATE SET
			failures = CASE
				WHEN otp_attempt.locked_until > $2 THEN otp_attempt.failures
				WHEN otp_attempt.last_failure_at < $3 THEN 1
				ELSE otp_attempt.failures + 1
			END,
			last_failure_at = CASE
				WHEN otp_attempt.locked_until > $2 THEN otp_attempt.last_failure_at
				ELSE excluded.last_failure_at
			END,
			locked_until = CASE
				WHEN otp_attempt.locked_until > $2 THEN otp_attempt.locked_until
				ELSE NULL
			END
		RETURNING failures
	`, nim, now, now.Add(-p.Window)).Scan(&result.Failures)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("failed to record otp attempt: %w", err)
	}

	lockedUntil, err := activeLock(ctx, tx, nim, now)
	if err != nil {
		return AttemptResult{}, err
	}
	if lockedUntil != nil {
		result.LockedUntil = lockedUntil
		return result, nil
	}
	if result.Failures < p.MaxFailures {
		return result, nil
	}

	until := now.Add(p.Lockout)
	_, err = tx.ExecContext(ctx, `
		UPDATE otp_attempt SET failures = 0, locked_until = $2 WHERE nim = $1
	`, nim, until)
	if err != nil {
		return AttemptResult{}, fmt.Errorf("failed to lock otp attempts: %w", err)
	}
	result.LockedUntil = &until
	return result, nil
}

// claimAttempts makes sure nim has an attempt row and takes its row lock,
// so verifications for one NIM run one at a time.
func claimAttempts(ctx context.Context, tx *sql.Tx, nim string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO otp_attempt (nim, failures, last_failure_at, locked_until)
		VALUES ($1, 0, $2, NULL)
		ON CONFLICT (nim) DO UPDATE SET nim = excluded.nim
	`, nim, now)
	if err != nil {
		return fmt.Errorf("failed to claim otp attempts: %w", err)
	}
	return nil
}

func clearAttempts(ctx context.Context, tx *sql.Tx, nim string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM otp_attempt WHERE nim = $1`, nim); err != nil {
		return fmt.Errorf("failed to clear otp attempts: %w", err)
	}
	return nil
}
