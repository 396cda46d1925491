// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/violie/server/db"
	"github.com/violie/server/models"
)

const voterSelect = `
	SELECT v.nim, v.email, v.program_code, p.name, v.otp_code, v.otp_expires_at,
	       v.already_voted, v.last_login_at, v.created_at
	FROM voter v
	LEFT JOIN allowed_program p ON p.code = v.program_code
`

func scanVoter(row rowScanner) (models.Voter, error) {
	var v models.Voter
	err := row.Scan(
		&v.NIM, &v.Email, &v.ProgramCode, &v.ProgramName, &v.OTPHash, &v.OTPExpiresAt,
		&v.AlreadyVoted, &v.LastLoginAt, &v.CreatedAt,
	)
	return v, err
}

func getVoter(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, nim string) (models.Voter, error) {
	v, err := scanVoter(q.QueryRowContext(ctx, voterSelect+` WHERE v.nim = $1`, nim))
	if err == sql.ErrNoRows {
		return models.Voter{}, ErrVoterNotFound
	}
	if err != nil {
		return models.Voter{}, fmt.Errorf("failed to query voter: %w", err)
	}
	return v, nil
}

// GetVoter loads a voter with its program name
func (s *Store) GetVoter(ctx context.Context, nim string) (models.Voter, error) {
	return getVoter(ctx, s.db, nim)
}

// CreateVoter inserts a new voter. A clash on NIM or email returns
// ErrConflict and leaves the table unchanged.
func (s *Store) CreateVoter(ctx context.Context, nim, email string, programCode *string, now time.Time) (models.Voter, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO voter (nim, email, program_code, already_voted, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`, nim, email, programCode, ts(now))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.Voter{}, ErrConflict
		}
		if db.IsForeignKeyViolation(err) {
			return models.Voter{}, ErrNotFound
		}
		return models.Voter{}, fmt.Errorf("failed to insert voter: %w", err)
	}
	return s.GetVoter(ctx, nim)
}

// DeleteVoter removes a voter and, through the cascade, its vote
func (s *Store) DeleteVoter(ctx context.Context, nim string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM voter WHERE nim = $1`, nim)
	if err != nil {
		return fmt.Errorf("failed to delete voter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVoterNotFound
	}
	return nil
}

// StoreOTP replaces the voter's pending code. The update only applies
// while the voter has not voted, so a code can never be attached to a
// voter whose vote is already recorded.
func (s *Store) StoreOTP(ctx context.Context, nim, otpHash string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE voter
		SET otp_code = $2, otp_expires_at = $3
		WHERE nim = $1 AND already_voted = FALSE
	`, nim, otpHash, ts(expiresAt))
	if err != nil {
		return fmt.Errorf("failed to store otp: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var alreadyVoted bool
	err = s.db.QueryRowContext(ctx, `SELECT already_voted FROM voter WHERE nim = $1`, nim).Scan(&alreadyVoted)
	if err == sql.ErrNoRows {
		return ErrVoterNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query voter: %w", err)
	}
	if alreadyVoted {
		return ErrAlreadyVoted
	}
	return fmt.Errorf("otp update affected no rows for %s", nim)
}

// OTPResult is the outcome of one verification. When OK is false,
// Attempt reports the failure counter, and Attempt.LockedUntil is set if
// the NIM is locked out.
type OTPResult struct {
	OK      bool
	Voter   models.Voter
	Attempt AttemptResult
}

// ConsumeOTP clears the pending code and stamps last_login_at, but only
// if the NIM is not locked out, otpHash matches and the code has not
// expired at now. The lock check, the conditional consume and the
// attempt bookkeeping share one transaction, so concurrent guesses for
// one NIM are evaluated one at a time and a locked NIM never has its
// code compared. On success the voter is read back in the same
// transaction and its failures are cleared.
func (s *Store) ConsumeOTP(ctx context.Context, nim, otpHash string, now time.Time, p AttemptPolicy) (OTPResult, error) {
	now = ts(now)

	var out OTPResult
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := claimAttempts(ctx, tx, nim, now); err != nil {
			return err
		}
		lockedUntil, err := activeLock(ctx, tx, nim, now)
		if err != nil {
			return err
		}
		if lockedUntil != nil {
			out.Attempt.LockedUntil = lockedUntil
			return nil
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE voter
			SET otp_code = NULL, otp_expires_at = NULL, last_login_at = $3
			WHERE nim = $1
			  AND otp_code = $2
			  AND otp_expires_at IS NOT NULL
			  AND otp_expires_at >= $3
		`, nim, otpHash, now)
		if err != nil {
			return fmt.Errorf("failed to consume otp: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			out.Attempt, err = recordFailure(ctx, tx, nim, now, p)
			return err
		}

		out.Voter, err = getVoter(ctx, tx, nim)
		if err != nil {
			return err
		}
		if err := clearAttempts(ctx, tx, nim); err != nil {
			return err
		}
		out.OK = true
		return nil
	})
	if err != nil {
		return OTPResult{}, err
	}
	return out, nil
}

// maxOffset caps the row offset so a huge page number cannot overflow
const maxOffset = math.MaxInt32

// ListVoters returns one page of voters matching the filter, newest
// first, plus the total number of matches.
func (s *Store) ListVoters(ctx context.Context, f models.VoterFilter) ([]models.Voter, int, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Search != "" {
		p := arg("%" + strings.ToLower(f.Search) + "%")
		conds = append(conds, "(LOWER(v.nim) LIKE "+p+" OR LOWER(v.email) LIKE "+p+")")
	}
	if f.Program != "" {
		conds = append(conds, "v.program_code = "+arg(f.Program))
	}
	switch f.Status {
	case models.StatusVoted:
		conds = append(conds, "v.already_voted = TRUE")
	case models.StatusNotVoted:
		conds = append(conds, "v.already_voted = FALSE")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM voter v`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count voters: %w", err)
	}

	offset := 0
	if f.Page > 1 && f.Limit > 0 {
		offset = min(f.Page-1, maxOffset/f.Limit) * f.Limit
	}
	query := voterSelect + where + ` ORDER BY v.created_at DESC, v.nim LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		v, err := scanVoter(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate voters: %w", err)
	}

	return voters, total, nil
}

// InsertVoterIfAbsent is used by seeding; existing voters are left alone
func (s *Store) InsertVoterIfAbsent(ctx context.Context, nim, email string, programCode *string, now time.Time) error {
	_, err := s.CreateVoter(ctx, nim, email, programCode, now)
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}
