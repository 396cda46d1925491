// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/violie/server/db"
	"github.com/violie/server/models"
)

// RecordVoteIfNotAlreadyVoted flips the voter's flag and inserts the
// vote in one transaction. The flag only flips for a voter who has
// finished OTP verification and has not voted, so of any number of
// concurrent submissions for one NIM exactly one succeeds.
func (s *Store) RecordVoteIfNotAlreadyVoted(ctx context.Context, nim string, candidateID int64, now time.Time) (models.Vote, error) {
	vote := models.Vote{
		ID:          uuid.NewString(),
		VoterNIM:    nim,
		CandidateID: candidateID,
		CastAt:      ts(now),
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM candidate WHERE id = $1)`, candidateID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check candidate: %w", err)
		}
		if !exists {
			return ErrCandidateNotFound
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE voter
			SET already_voted = TRUE
			WHERE nim = $1
			  AND already_voted = FALSE
			  AND otp_code IS NULL
			  AND last_login_at IS NOT NULL
		`, nim)
		if err != nil {
			return fmt.Errorf("failed to mark voter: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return voteRefusal(ctx, tx, nim)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO vote (id, voter_nim, candidate_id, cast_at)
			VALUES ($1, $2, $3, $4)
		`, vote.ID, vote.VoterNIM, vote.CandidateID, vote.CastAt)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return ErrAlreadyVoted
			}
			if db.IsForeignKeyViolation(err) {
				return ErrCandidateNotFound
			}
			return fmt.Errorf("failed to insert vote: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Vote{}, err
	}
	return vote, nil
}

// voteRefusal explains why the conditional flag update matched nothing
func voteRefusal(ctx context.Context, tx *sql.Tx, nim string) error {
	var alreadyVoted, pending, loggedIn bool
	err := tx.QueryRowContext(ctx, `
		SELECT already_voted, otp_code IS NOT NULL, last_login_at IS NOT NULL
		FROM voter WHERE nim = $1
	`, nim).Scan(&alreadyVoted, &pending, &loggedIn)
	if err == sql.ErrNoRows {
		return ErrVoterNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query voter: %w", err)
	}
	if alreadyVoted {
		return ErrAlreadyVoted
	}
	return ErrVerificationPending
}

// GetVoteByVoter returns the vote cast by nim
func (s *Store) GetVoteByVoter(ctx context.Context, nim string) (models.Vote, error) {
	var v models.Vote
	err := s.db.QueryRowContext(ctx, `
		SELECT id, voter_nim, candidate_id, cast_at FROM vote WHERE voter_nim = $1
	`, nim).Scan(&v.ID, &v.VoterNIM, &v.CandidateID, &v.CastAt)
	if err == sql.ErrNoRows {
		return models.Vote{}, ErrNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("failed to query vote: %w", err)
	}
	return v, nil
}

// CountVotes returns the number of recorded votes
func (s *Store) CountVotes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vote`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// ResetVote deletes the voter's vote and clears the flag. The voter
// must log in and verify a fresh code before voting again.
func (s *Store) ResetVote(ctx context.Context, nim string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE voter
			SET already_voted = FALSE, otp_code = NULL, otp_expires_at = NULL, last_login_at = NULL
			WHERE nim = $1
		`, nim)
		if err != nil {
			return fmt.Errorf("failed to reset voter: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrVoterNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM vote WHERE voter_nim = $1`, nim); err != nil {
			return fmt.Errorf("failed to delete vote: %w", err)
		}
		return nil
	})
}
