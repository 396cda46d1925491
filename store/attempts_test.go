// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/violie/server/testutil"
)

var testPolicy = AttemptPolicy{
	MaxFailures: 5,
	Window:      15 * time.Minute,
	Lockout:     30 * time.Minute,
}

func TestRecordFailedAttemptLocksAtThreshold(t *testing.T) {
	s := setupStore(t)
	now := time.Now()

	for i := 1; i < testPolicy.MaxFailures; i++ {
		res, err := s.RecordFailedAttempt(ctx, "202012345", now, testPolicy)
		require.NoError(t, err)
		assert.Equal(t, i, res.Failures)
		assert.Nil(t, res.LockedUntil)
	}

	_, locked, err := s.AttemptLock(ctx, "202012345", now)
	require.NoError(t, err)
	assert.False(t, locked)

	res, err := s.RecordFailedAttempt(ctx, "202012345", now, testPolicy)
	require.NoError(t, err)
	assert.Equal(t, testPolicy.MaxFailures, res.Failures)
	require.NotNil(t, res.LockedUntil)

	until, locked, err := s.AttemptLock(ctx, "202012345", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, locked)
	assert.WithinDuration(t, now.Add(testPolicy.Lockout), until, time.Second)

	// Lock lapses on its own
	_, locked, err = s.AttemptLock(ctx, "202012345", now.Add(testPolicy.Lockout+time.Second))
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestRecordFailedAttemptWindowResets(t *testing.T) {
	s := setupStore(t)
	start := time.Now()

	for i := 0; i < testPolicy.MaxFailures-1; i++ {
		_, err := s.RecordFailedAttempt(ctx, "202012345", start, testPolicy)
		require.NoError(t, err)
	}

	later := start.Add(testPolicy.Window + time.Minute)
	res, err := s.RecordFailedAttempt(ctx, "202012345", later, testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failures, "old failures fall out of the window")
	assert.Nil(t, res.LockedUntil)
}

func TestRecordFailedAttemptWhileLocked(t *testing.T) {
	s := setupStore(t)
	now := time.Now()

	var lockedUntil time.Time
	for i := 0; i < testPolicy.MaxFailures; i++ {
		res, err := s.RecordFailedAttempt(ctx, "202012345", now, testPolicy)
		require.NoError(t, err)
		if res.LockedUntil != nil {
			lockedUntil = *res.LockedUntil
		}
	}
	require.False(t, lockedUntil.IsZero())

	later := now.Add(time.Minute)
	for i := 0; i < testPolicy.MaxFailures+2; i++ {
		res, err := s.RecordFailedAttempt(ctx, "202012345", later, testPolicy)
		require.NoError(t, err)
		require.NotNil(t, res.LockedUntil, "failure %d while locked", i)
		assert.True(t, lockedUntil.Equal(*res.LockedUntil), "lock must not move")
		assert.Equal(t, 0, res.Failures)
	}

	until, locked, err := s.AttemptLock(ctx, "202012345", later)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.True(t, lockedUntil.Equal(until))

	// Counting resumes from scratch once the lock lapses
	res, err := s.RecordFailedAttempt(ctx, "202012345", lockedUntil.Add(time.Second), testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failures)
	assert.Nil(t, res.LockedUntil)
}

func TestConsumeOTPClearsAttempts(t *testing.T) {
	s := setupStore(t)
	testutil.CreateTestVoter(t, s.DB(), "202012345", "a@x.id", nil)
	now := time.Now()
	require.NoError(t, s.StoreOTP(ctx, "202012345", "good", now.Add(15*time.Minute)))

	for i := 0; i < testPolicy.MaxFailures-1; i++ {
		_, err := s.RecordFailedAttempt(ctx, "202012345", now, testPolicy)
		require.NoError(t, err)
	}

	res, err := s.ConsumeOTP(ctx, "202012345", "good", now, testPolicy)
	require.NoError(t, err)
	require.True(t, res.OK)

	res2, err := s.RecordFailedAttempt(ctx, "202012345", now, testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 1, res2.Failures)
}

func TestConsumeOTPRefusedWhileLocked(t *testing.T) {
	s := setupStore(t)
	testutil.CreateTestVoter(t, s.DB(), "202012345", "a@x.id", nil)
	now := time.Now()
	require.NoError(t, s.StoreOTP(ctx, "202012345", "good", now.Add(15*time.Minute)))

	for i := 0; i < testPolicy.MaxFailures; i++ {
		res, err := s.ConsumeOTP(ctx, "202012345", "bad", now, testPolicy)
		require.NoError(t, err)
		require.False(t, res.OK)
	}

	res, err := s.ConsumeOTP(ctx, "202012345", "good", now.Add(time.Minute), testPolicy)
	require.NoError(t, err)
	assert.False(t, res.OK, "locked NIM must not consume its code")
	require.NotNil(t, res.Attempt.LockedUntil)

	v, err := s.GetVoter(ctx, "202012345")
	require.NoError(t, err)
	assert.True(t, v.HasPendingOTP())
	assert.Nil(t, v.LastLoginAt)

	res, err = s.ConsumeOTP(ctx, "202012345", "good", now.Add(testPolicy.Lockout+time.Second), testPolicy)
	require.NoError(t, err)
	assert.False(t, res.OK, "code expired during the lockout")
	assert.Nil(t, res.Attempt.LockedUntil)
}

func TestAttemptsArePerNIM(t *testing.T) {
	s := setupStore(t)
	now := time.Now()

	for i := 0; i < testPolicy.MaxFailures; i++ {
		_, err := s.RecordFailedAttempt(ctx, "202011111", now, testPolicy)
		require.NoError(t, err)
	}

	_, locked, err := s.AttemptLock(ctx, "202022222", now)
	require.NoError(t, err)
	assert.False(t, locked)
}
