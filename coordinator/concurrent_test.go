// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mhowell/story-poker/domain"
)

// TestConcurrentVoteSubmissions verifies that simultaneous votes from
// different participants are all recorded and the reveal fires exactly
// once.
func TestConcurrentVoteSubmissions(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	numVoters := 10
	voters := make([]string, numVoters)
	voters[0] = "alice"
	for i := 1; i < numVoters; i++ {
		voters[i] = fmt.Sprintf("voter%02d", i)
		if _, err := env.coord.JoinSession(cardID, voters[i]); err != nil {
			t.Fatalf("JoinSession failed: %v", err)
		}
	}

	points := []int{1, 2, 3, 5, 8, 13}
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := env.coord.SubmitVote(cardID, voters[idx], points[idx%len(points)]); err == nil {
				successCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful votes, got %d", numVoters, successCount.Load())
	}

	session, err := env.store.Session(cardID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	if len(session.Votes) != numVoters {
		t.Errorf("votes = %d, want %d", len(session.Votes), numVoters)
	}
	if session.RevealedAt == nil {
		t.Error("all votes in, expected auto-reveal")
	}

	reveals := env.recorder.EventsOfType(domain.EventVotesRevealed)
	if len(reveals) != 1 {
		t.Errorf("votes-revealed events = %d, want exactly 1", len(reveals))
	}
}

// TestConcurrentSessionStarts races two hosts starting sessions for
// different cards. Exactly one may win; the loser gets a conflict.
func TestConcurrentSessionStarts(t *testing.T) {
	env := setup(t)
	first := env.createCard(t, "alice")
	second := env.createCard(t, "bob")

	type result struct {
		err error
	}
	results := make([]result, 2)
	var wg sync.WaitGroup

	starts := []struct {
		cardID string
		user   string
	}{
		{first, "alice"},
		{second, "bob"},
	}
	for i, s := range starts {
		wg.Add(1)
		go func(idx int, cardID, user string) {
			defer wg.Done()
			_, err := env.coord.StartSession(cardID, user)
			results[idx] = result{err: err}
		}(i, s.cardID, s.user)
	}
	wg.Wait()

	var wins, conflicts int
	for _, r := range results {
		switch {
		case r.err == nil:
			wins++
		case errors.Is(r.err, domain.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", r.err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Errorf("wins = %d, conflicts = %d; want exactly one of each", wins, conflicts)
	}

	active, err := env.store.ActiveSession()
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active == nil {
		t.Fatal("expected one active session")
	}
}

// TestConcurrentRevotes hammers a single participant's vote from many
// goroutines; the session must end with exactly one recorded vote.
func TestConcurrentRevotes(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	// A second participant keeps the set incomplete so votes never reveal
	if _, err := env.coord.JoinSession(cardID, "observer"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}

	points := []int{1, 2, 3, 5, 8, 13}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if _, err := env.coord.SubmitVote(cardID, "alice", points[idx%len(points)]); err != nil {
				t.Errorf("revote failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	session, err := env.store.Session(cardID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	if len(session.Votes) != 1 {
		t.Errorf("votes = %d, want 1", len(session.Votes))
	}
	if session.RevealedAt != nil {
		t.Error("incomplete set revealed")
	}
}
