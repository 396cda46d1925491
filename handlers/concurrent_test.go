// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/violie/server/testutil"
)

// TestConcurrentVoteSubmissions fires many submissions for the same voter
// at once. Exactly one may succeed.
func TestConcurrentVoteSubmissions(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoteHandler(env.svc)

	program := "2020"
	testutil.CreateVerifiedVoter(t, env.db, testNIM, testEmail, &program)
	candA := testutil.CreateTestCandidate(t, env.db, "Alya", "Bima")
	candB := testutil.CreateTestCandidate(t, env.db, "Citra", "Dimas")

	numRequests := 20
	var successCount, alreadyVotedCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			candidate := candA
			if idx%2 == 1 {
				candidate = candB
			}

			w := call(handler.Submit, voteRequest(testNIM, candidate))
			switch w.Code {
			case http.StatusOK:
				successCount.Add(1)
			case http.StatusForbidden:
				alreadyVotedCount.Add(1)
			default:
				t.Errorf("Unexpected status %d: %s", w.Code, w.Body.String())
			}
		}(i)
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful vote, got %d", successCount.Load())
	}
	if alreadyVotedCount.Load() != int32(numRequests-1) {
		t.Errorf("Expected %d refusals, got %d", numRequests-1, alreadyVotedCount.Load())
	}
	if n := testutil.CountVotes(t, env.db, testNIM); n != 1 {
		t.Errorf("Expected 1 vote row, got %d", n)
	}
}

// TestConcurrentDistinctVoters verifies that simultaneous votes from
// different voters are all recorded
func TestConcurrentDistinctVoters(t *testing.T) {
	env := newTestEnv(t)
	handler := NewVoteHandler(env.svc)

	program := "2020"
	candidateID := testutil.CreateTestCandidate(t, env.db, "Alya", "Bima")

	numVoters := 10
	nims := make([]string, numVoters)
	for i := 0; i < numVoters; i++ {
		nims[i] = fmt.Sprintf("2020%05d", i)
		testutil.CreateVerifiedVoter(t, env.db, nims[i], nims[i]+"@student.example.ac.id", &program)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for _, nim := range nims {
		wg.Add(1)
		go func(nim string) {
			defer wg.Done()

			w := call(handler.Submit, voteRequest(nim, candidateID))
			if w.Code == http.StatusOK {
				successCount.Add(1)
			} else {
				t.Errorf("Vote for %s failed: %d %s", nim, w.Code, w.Body.String())
			}
		}(nim)
	}

	wg.Wait()

	if successCount.Load() != int32(numVoters) {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	total, err := env.store.CountVotes(t.Context())
	if err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if total != numVoters {
		t.Errorf("Expected %d votes, got %d", numVoters, total)
	}
}

// TestConcurrentFirstLogins makes sure racing first logins for the same
// NIM register one voter and all succeed
func TestConcurrentFirstLogins(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.svc)

	numRequests := 5
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := call(handler.Login, loginRequest(testNIM, testEmail))
			if w.Code == http.StatusOK {
				successCount.Add(1)
			} else {
				t.Errorf("Login failed: %d %s", w.Code, w.Body.String())
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != int32(numRequests) {
		t.Errorf("Expected %d successful logins, got %d", numRequests, successCount.Load())
	}
	if !testutil.VoterExists(t, env.db, testNIM) {
		t.Error("Expected voter to be registered")
	}
}
