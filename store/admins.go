// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/violie/server/models"
)

func (s *Store) GetAdmin(ctx context.Context, email string) (models.AdminUser, error) {
	var a models.AdminUser
	err := s.db.QueryRowContext(ctx, `
		SELECT email, password_hash, created_at FROM admin_user WHERE email = $1
	`, strings.ToLower(email)).Scan(&a.Email, &a.PasswordHash, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return models.AdminUser{}, ErrNotFound
	}
	if err != nil {
		return models.AdminUser{}, fmt.Errorf("failed to query admin: %w", err)
	}
	return a, nil
}

// UpsertAdmin stores a bcrypt hash for email, replacing any previous one
func (s *Store) UpsertAdmin(ctx context.Context, email, passwordHash string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_user (email, password_hash, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = excluded.password_hash
	`, strings.ToLower(email), passwordHash, ts(now))
	if err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	return nil
}
