// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/violie/server/db"
	"github.com/violie/server/models"
)

const candidateSelect = `
	SELECT id, chair, vice_chair, cabinet, vision, mission, image_url, created_at, updated_at
	FROM candidate
`

func scanCandidate(row rowScanner) (models.Candidate, error) {
	var c models.Candidate
	err := row.Scan(&c.ID, &c.Chair, &c.ViceChair, &c.Cabinet, &c.Vision, &c.Mission,
		&c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) ListCandidates(ctx context.Context) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, candidateSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

func (s *Store) GetCandidate(ctx context.Context, id int64) (models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, candidateSelect+` WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Candidate{}, ErrCandidateNotFound
	}
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

func (s *Store) CountCandidates(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM candidate`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}

func (s *Store) CreateCandidate(ctx context.Context, req models.CandidateRequest, now time.Time) (models.Candidate, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO candidate (chair, vice_chair, cabinet, vision, mission, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id
	`, req.Chair, req.ViceChair, req.Cabinet, req.Vision, req.Mission, req.ImageURL, ts(now)).Scan(&id)
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to insert candidate: %w", err)
	}
	return s.GetCandidate(ctx, id)
}

// UpdateCandidate edits the live record in place
func (s *Store) UpdateCandidate(ctx context.Context, id int64, req models.CandidateRequest, now time.Time) (models.Candidate, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE candidate
		SET chair = $2, vice_chair = $3, cabinet = $4, vision = $5, mission = $6,
		    image_url = $7, updated_at = $8
		WHERE id = $1
	`, id, req.Chair, req.ViceChair, req.Cabinet, req.Vision, req.Mission, req.ImageURL, ts(now))
	if err != nil {
		return models.Candidate{}, fmt.Errorf("failed to update candidate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Candidate{}, ErrCandidateNotFound
	}
	return s.GetCandidate(ctx, id)
}

// DeleteCandidate refuses with ErrInUse once the candidate has votes
func (s *Store) DeleteCandidate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM candidate WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCandidateNotFound
	}
	return nil
}
