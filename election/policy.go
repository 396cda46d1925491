// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/violie/server/models"
	"github.com/violie/server/store"
)

// ProgramCodeLength is how many leading NIM characters form the program code
const ProgramCodeLength = 4

// ProgramCode derives a program code from a NIM
func ProgramCode(nim string) string {
	if len(nim) < ProgramCodeLength {
		return nim
	}
	return nim[:ProgramCodeLength]
}

// LoginPolicy decides which voter a (NIM, email) pair identifies.
// It is resolved once per request from the configured login method.
type LoginPolicy interface {
	Method() string
	ResolveVoter(ctx context.Context, nim, email string) (models.Voter, error)
}

// CampusFormat accepts institutional addresses whose local part is the
// NIM. Unseen NIMs from an allowed program register themselves.
type CampusFormat struct {
	store Store
	now   func() time.Time
}

// CuratedList accepts only voters an admin registered beforehand
type CuratedList struct {
	store Store
}

func policyFor(method string, st Store, now func() time.Time) (LoginPolicy, error) {
	switch method {
	case models.LoginCampusEmailFormat:
		return CampusFormat{store: st, now: now}, nil
	case models.LoginDatabaseEmailList:
		return CuratedList{store: st}, nil
	default:
		return nil, fmt.Errorf("unknown login method %q", method)
	}
}

func (CampusFormat) Method() string { return models.LoginCampusEmailFormat }

func (p CampusFormat) ResolveVoter(ctx context.Context, nim, email string) (models.Voter, error) {
	local, _, _ := strings.Cut(email, "@")
	if local != strings.ToLower(nim) {
		return models.Voter{}, ErrCredentialMismatch
	}

	code := ProgramCode(nim)
	allowed, err := eligible(ctx, p.store, code)
	if err != nil {
		return models.Voter{}, err
	}
	if !allowed {
		return models.Voter{}, ErrNotEligible
	}

	voter, err := p.store.GetVoter(ctx, nim)
	if err == nil {
		return matchEmail(voter, email)
	}
	if !errors.Is(err, store.ErrVoterNotFound) {
		return models.Voter{}, transient("failed to load voter", err, "nim", nim)
	}

	voter, err = p.store.CreateVoter(ctx, nim, email, &code, p.now())
	switch {
	case err == nil:
		slog.Info("voter registered", "nim", nim, "program", code)
		return voter, nil
	case errors.Is(err, store.ErrConflict):
		// Either a concurrent first login created the NIM, or the email
		// already belongs to someone else
		existing, getErr := p.store.GetVoter(ctx, nim)
		if getErr == nil {
			return matchEmail(existing, email)
		}
		if errors.Is(getErr, store.ErrVoterNotFound) {
			return models.Voter{}, ErrEmailTaken
		}
		return models.Voter{}, transient("failed to load voter", getErr, "nim", nim)
	case errors.Is(err, store.ErrNotFound):
		// Program deleted between the gate and the insert
		return models.Voter{}, ErrNotEligible
	default:
		return models.Voter{}, transient("failed to register voter", err, "nim", nim)
	}
}

func (CuratedList) Method() string { return models.LoginDatabaseEmailList }

func (p CuratedList) ResolveVoter(ctx context.Context, nim, email string) (models.Voter, error) {
	voter, err := p.store.GetVoter(ctx, nim)
	if errors.Is(err, store.ErrVoterNotFound) {
		return models.Voter{}, ErrNotEligible
	}
	if err != nil {
		return models.Voter{}, transient("failed to load voter", err, "nim", nim)
	}
	return matchEmail(voter, email)
}

func matchEmail(voter models.Voter, email string) (models.Voter, error) {
	if !strings.EqualFold(voter.Email, email) {
		return models.Voter{}, ErrCredentialMismatch
	}
	return voter, nil
}

func eligible(ctx context.Context, st Store, programCode string) (bool, error) {
	_, err := st.GetProgram(ctx, programCode)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, transient("failed to check program", err, "program", programCode)
	}
	return true, nil
}
