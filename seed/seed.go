// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/violie/server/auth"
	"github.com/violie/server/models"
	"github.com/violie/server/store"
	"gopkg.in/yaml.v3"
)

type File struct {
	Settings   *Settings   `yaml:"settings"`
	Programs   []Program   `yaml:"programs"`
	Candidates []Candidate `yaml:"candidates"`
	Admins     []Admin     `yaml:"admins"`
	Voters     []Voter     `yaml:"voters"`
}

type Settings struct {
	ElectionTitle    string  `yaml:"election_title"`
	LoginMethod      string  `yaml:"login_method"`
	LoginPageLogoURL *string `yaml:"login_page_logo_url"`
	HeaderLogo1URL   *string `yaml:"header_logo1_url"`
	HeaderLogo2URL   *string `yaml:"header_logo2_url"`
}

type Program struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type Candidate struct {
	Chair     string  `yaml:"chair"`
	ViceChair string  `yaml:"vice_chair"`
	Cabinet   *string `yaml:"cabinet"`
	Vision    *string `yaml:"vision"`
	Mission   *string `yaml:"mission"`
	ImageURL  *string `yaml:"image_url"`
}

// Admin passwords are plain text in the file and hashed on Apply
type Admin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Voter struct {
	NIM         string  `yaml:"nim"`
	Email       string  `yaml:"email"`
	ProgramCode *string `yaml:"program_code"`
}

func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file before anything is written
func (f *File) Validate() error {
	if f.Settings != nil {
		if f.Settings.ElectionTitle == "" {
			return fmt.Errorf("settings.election_title is required")
		}
		switch f.Settings.LoginMethod {
		case models.LoginCampusEmailFormat, models.LoginDatabaseEmailList:
		default:
			return fmt.Errorf("settings.login_method %q is not supported", f.Settings.LoginMethod)
		}
	}
	for i, p := range f.Programs {
		if p.Code == "" || p.Name == "" {
			return fmt.Errorf("programs[%d]: code and name are required", i)
		}
	}
	for i, c := range f.Candidates {
		if c.Chair == "" || c.ViceChair == "" {
			return fmt.Errorf("candidates[%d]: chair and vice_chair are required", i)
		}
	}
	for i, a := range f.Admins {
		if a.Email == "" || a.Password == "" {
			return fmt.Errorf("admins[%d]: email and password are required", i)
		}
	}
	for i, v := range f.Voters {
		if v.NIM == "" || v.Email == "" {
			return fmt.Errorf("voters[%d]: nim and email are required", i)
		}
	}
	return nil
}

// Apply writes the file into the store. It can run on every start:
// programs and admins are upserted, voters are only added when missing,
// and candidates are only created while the candidate table is empty.
func Apply(ctx context.Context, st *store.Store, f *File, now time.Time) error {
	if f.Settings != nil {
		_, err := st.UpdateSettings(ctx, models.SettingsRequest{
			ElectionTitle:    f.Settings.ElectionTitle,
			LoginMethod:      f.Settings.LoginMethod,
			LoginPageLogoURL: f.Settings.LoginPageLogoURL,
			HeaderLogo1URL:   f.Settings.HeaderLogo1URL,
			HeaderLogo2URL:   f.Settings.HeaderLogo2URL,
		}, now)
		if err != nil {
			return err
		}
	}

	for _, p := range f.Programs {
		if err := st.UpsertProgram(ctx, p.Code, p.Name, now); err != nil {
			return err
		}
	}

	if len(f.Candidates) > 0 {
		n, err := st.CountCandidates(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			for _, c := range f.Candidates {
				_, err := st.CreateCandidate(ctx, models.CandidateRequest{
					Chair:     c.Chair,
					ViceChair: c.ViceChair,
					Cabinet:   c.Cabinet,
					Vision:    c.Vision,
					Mission:   c.Mission,
					ImageURL:  c.ImageURL,
				}, now)
				if err != nil {
					return err
				}
			}
		} else {
			slog.Info("candidates already present, skipping seed candidates", "count", n)
		}
	}

	for _, a := range f.Admins {
		hash, err := auth.HashPassword(a.Password)
		if err != nil {
			return err
		}
		if err := st.UpsertAdmin(ctx, a.Email, hash, now); err != nil {
			return err
		}
	}

	for _, v := range f.Voters {
		email := strings.ToLower(strings.TrimSpace(v.Email))
		if err := st.InsertVoterIfAbsent(ctx, strings.TrimSpace(v.NIM), email, v.ProgramCode, now); err != nil {
			return fmt.Errorf("failed to seed voter %s: %w", v.NIM, err)
		}
	}

	slog.Info("seed applied",
		"programs", len(f.Programs),
		"candidates", len(f.Candidates),
		"admins", len(f.Admins),
		"voters", len(f.Voters),
	)
	return nil
}
