// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/violie/server/models"
	"github.com/violie/server/testutil"
)

func TestProgramCRUD(t *testing.T) {
	s := setupStore(t)
	now := time.Now()

	p, err := s.CreateProgram(ctx, "2020", "Teknik Informatika", now)
	require.NoError(t, err)
	assert.Equal(t, "Teknik Informatika", p.Name)

	_, err = s.CreateProgram(ctx, "2020", "Duplicate", now)
	assert.ErrorIs(t, err, ErrConflict)

	p, err = s.UpdateProgram(ctx, "2020", "Informatika", now)
	require.NoError(t, err)
	assert.Equal(t, "Informatika", p.Name)

	_, err = s.UpdateProgram(ctx, "9999", "x", now)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpsertProgram(ctx, "2021", "Sistem Informasi", now))
	require.NoError(t, s.UpsertProgram(ctx, "2021", "SI", now))
	p, err = s.GetProgram(ctx, "2021")
	require.NoError(t, err)
	assert.Equal(t, "SI", p.Name)

	programs, err := s.ListPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, "2020", programs[0].Code)

	testutil.CreateTestVoter(t, s.DB(), "202012345", "a@x.id", strPtr("2020"))
	assert.ErrorIs(t, s.DeleteProgram(ctx, "2020"), ErrInUse)

	require.NoError(t, s.DeleteProgram(ctx, "2021"))
	assert.ErrorIs(t, s.DeleteProgram(ctx, "2021"), ErrNotFound)
	_, err = s.GetProgram(ctx, "2021")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCandidateCRUD(t *testing.T) {
	s := setupStore(t)
	now := time.Now()

	c, err := s.CreateCandidate(ctx, models.CandidateRequest{
		Chair:     "Alya",
		ViceChair: "Bima",
		Cabinet:   strPtr("Kabinet Harmoni"),
	}, now)
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	require.NotNil(t, c.Cabinet)
	assert.Equal(t, "Kabinet Harmoni", *c.Cabinet)
	assert.Nil(t, c.Vision)

	c, err = s.UpdateCandidate(ctx, c.ID, models.CandidateRequest{
		Chair:     "Alya",
		ViceChair: "Bimo",
		Vision:    strPtr("Maju bersama"),
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "Bimo", c.ViceChair)
	assert.Nil(t, c.Cabinet)
	require.NotNil(t, c.Vision)

	_, err = s.UpdateCandidate(ctx, c.ID+100, models.CandidateRequest{Chair: "x", ViceChair: "y"}, now)
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	n, err := s.CountCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := s.ListCandidates(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// A candidate with votes cannot be deleted
	testutil.CreateVerifiedVoter(t, s.DB(), "202012345", "a@x.id", nil)
	_, err = s.RecordVoteIfNotAlreadyVoted(ctx, "202012345", c.ID, now)
	require.NoError(t, err)
	assert.ErrorIs(t, s.DeleteCandidate(ctx, c.ID), ErrInUse)

	other := testutil.CreateTestCandidate(t, s.DB(), "Citra", "Dimas")
	require.NoError(t, s.DeleteCandidate(ctx, other))
	assert.ErrorIs(t, s.DeleteCandidate(ctx, other), ErrCandidateNotFound)
}

func TestSettings(t *testing.T) {
	s := setupStore(t)

	st, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.LoginCampusEmailFormat, st.LoginMethod)
	assert.NotEmpty(t, st.ElectionTitle)

	st, err = s.UpdateSettings(ctx, models.SettingsRequest{
		ElectionTitle:  "Pemilihan 2025",
		LoginMethod:    models.LoginDatabaseEmailList,
		HeaderLogo1URL: strPtr("https://cdn.example.com/logo.png"),
	}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Pemilihan 2025", st.ElectionTitle)
	assert.Equal(t, models.LoginDatabaseEmailList, st.LoginMethod)
	require.NotNil(t, st.HeaderLogo1URL)
	assert.Nil(t, st.LoginPageLogoURL)

	_, err = s.UpdateSettings(ctx, models.SettingsRequest{ElectionTitle: "x", LoginMethod: "magic_link"}, time.Now())
	assert.Error(t, err, "schema rejects unknown login methods")
}

func TestAdmins(t *testing.T) {
	s := setupStore(t)
	now := time.Now()

	_, err := s.GetAdmin(ctx, "admin@x.id")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpsertAdmin(ctx, "Admin@X.id", "hash-1", now))
	require.NoError(t, s.UpsertAdmin(ctx, "admin@x.id", "hash-2", now))

	a, err := s.GetAdmin(ctx, "ADMIN@x.id")
	require.NoError(t, err)
	assert.Equal(t, "admin@x.id", a.Email)
	assert.Equal(t, "hash-2", a.PasswordHash)
}
