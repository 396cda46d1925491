// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/violie/server/models"
)

// GetSettings reads the single settings row created with the schema
func (s *Store) GetSettings(ctx context.Context) (models.AppSettings, error) {
	var st models.AppSettings
	err := s.db.QueryRowContext(ctx, `
		SELECT election_title, login_method, login_page_logo_url, header_logo1_url,
		       header_logo2_url, updated_at
		FROM app_settings WHERE id = 1
	`).Scan(&st.ElectionTitle, &st.LoginMethod, &st.LoginPageLogoURL, &st.HeaderLogo1URL,
		&st.HeaderLogo2URL, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.AppSettings{}, ErrNotFound
	}
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("failed to query settings: %w", err)
	}
	return st, nil
}

func (s *Store) UpdateSettings(ctx context.Context, req models.SettingsRequest, now time.Time) (models.AppSettings, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_settings (id, election_title, login_method, login_page_logo_url,
		                          header_logo1_url, header_logo2_url, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			election_title = excluded.election_title,
			login_method = excluded.login_method,
			login_page_logo_url = excluded.login_page_logo_url,
			header_logo1_url = excluded.header_logo1_url,
			header_logo2_url = excluded.header_logo2_url,
			updated_at = excluded.updated_at
	`, req.ElectionTitle, req.LoginMethod, req.LoginPageLogoURL, req.HeaderLogo1URL,
		req.HeaderLogo2URL, ts(now))
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return s.GetSettings(ctx)
}
