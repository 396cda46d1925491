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

func (s *Store) ListPrograms(ctx context.Context) ([]models.AllowedProgram, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, created_at, updated_at FROM allowed_program ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	programs := []models.AllowedProgram{}
	for rows.Next() {
		var p models.AllowedProgram
		if err := rows.Scan(&p.Code, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan program: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate programs: %w", err)
	}
	return programs, nil
}

// GetProgram returns ErrNotFound when code is not an allowed program
func (s *Store) GetProgram(ctx context.Context, code string) (models.AllowedProgram, error) {
	var p models.AllowedProgram
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, created_at, updated_at FROM allowed_program WHERE code = $1
	`, code).Scan(&p.Code, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.AllowedProgram{}, ErrNotFound
	}
	if err != nil {
		return models.AllowedProgram{}, fmt.Errorf("failed to query program: %w", err)
	}
	return p, nil
}

func (s *Store) CreateProgram(ctx context.Context, code, name string, now time.Time) (models.AllowedProgram, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allowed_program (code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, code, name, ts(now))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return models.AllowedProgram{}, ErrConflict
		}
		return models.AllowedProgram{}, fmt.Errorf("failed to insert program: %w", err)
	}
	return s.GetProgram(ctx, code)
}

func (s *Store) UpdateProgram(ctx context.Context, code, name string, now time.Time) (models.AllowedProgram, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE allowed_program SET name = $2, updated_at = $3 WHERE code = $1
	`, code, name, ts(now))
	if err != nil {
		return models.AllowedProgram{}, fmt.Errorf("failed to update program: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.AllowedProgram{}, ErrNotFound
	}
	return s.GetProgram(ctx, code)
}

// UpsertProgram creates or renames a program; used by seeding
func (s *Store) UpsertProgram(ctx context.Context, code, name string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO allowed_program (code, name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (code) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at
	`, code, name, ts(now))
	if err != nil {
		return fmt.Errorf("failed to upsert program: %w", err)
	}
	return nil
}

// DeleteProgram refuses with ErrInUse while voters still reference code
func (s *Store) DeleteProgram(ctx context.Context, code string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM allowed_program WHERE code = $1`, code)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrInUse
		}
		return fmt.Errorf("failed to delete program: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
