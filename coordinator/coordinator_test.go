// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"errors"
	"testing"
	"time"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/domain"
	"github.com/mhowell/story-poker/store"
	"github.com/mhowell/story-poker/testutil"
)

type testEnv struct {
	store    *store.Store
	coord    *Coordinator
	recorder *testutil.Recorder
	poolID   string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	recorder := &testutil.Recorder{}
	coord := New(st, recorder, testutil.DiscardLogger())
	poolID := testutil.CreateTestPool(t, db, "alice")
	return &testEnv{store: st, coord: coord, recorder: recorder, poolID: poolID}
}

func (e *testEnv) createCard(t *testing.T, host string) string {
	t.Helper()
	id, err := auth.GenerateID(8)
	if err != nil {
		t.Fatalf("GenerateID failed: %v", err)
	}
	card, err := domain.NewStoryCard(domain.StoryCardConfig{
		ID:        id,
		PoolID:    e.poolID,
		Title:     "Test card",
		CreatedBy: host,
	})
	if err != nil {
		t.Fatalf("NewStoryCard failed: %v", err)
	}
	if err := e.store.CreateCard(card); err != nil {
		t.Fatalf("CreateCard failed: %v", err)
	}
	return card.ID
}

// expireVoting rewinds the countdown deadline so the sweep sees it as
// past due.
func (e *testEnv) expireVoting(t *testing.T, sessionID string) {
	t.Helper()
	session, err := e.store.Session(sessionID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	past := time.Now().Add(-time.Minute)
	started := past.Add(-domain.VotingCountdown)
	session.VotingStartedAt = &started
	session.VotingDeadline = &past
	if err := e.store.SaveSession(session); err != nil {
		t.Fatalf("save session failed: %v", err)
	}
}

func TestStartSession(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	session, err := env.coord.StartSession(cardID, "alice")
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if session.StoryCardID != cardID {
		t.Errorf("session id = %s, want %s", session.StoryCardID, cardID)
	}
	if _, ok := session.Participants["alice"]; !ok {
		t.Error("initiator was not added as participant")
	}

	card, err := env.store.Card(cardID)
	if err != nil {
		t.Fatalf("load card failed: %v", err)
	}
	if card.Status != domain.CardEstimating {
		t.Errorf("card status = %s, want %s", card.Status, domain.CardEstimating)
	}
	if card.VotingSessionID != cardID {
		t.Errorf("card session binding = %s, want %s", card.VotingSessionID, cardID)
	}

	events := env.recorder.EventsOfType(domain.EventSessionStarted)
	if len(events) != 1 {
		t.Fatalf("session-started events = %d, want 1", len(events))
	}
	if events[0].SessionID != cardID {
		t.Errorf("event session id = %s, want %s", events[0].SessionID, cardID)
	}
}

func TestJoinSessionEvent(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "bob"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}

	// Joining re-emits session-started with the updated roster
	events := env.recorder.EventsOfType(domain.EventSessionStarted)
	if len(events) != 2 {
		t.Fatalf("session-started events = %d, want 2", len(events))
	}
	joined := events[1]
	if joined.Participant != "bob" {
		t.Errorf("event participant = %s, want bob", joined.Participant)
	}
	if joined.ParticipantCount != 2 {
		t.Errorf("event participant_count = %d, want 2", joined.ParticipantCount)
	}
	if joined.SessionID != cardID {
		t.Errorf("event session id = %s, want %s", joined.SessionID, cardID)
	}
}

func TestStartSessionNotHost(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	_, err := env.coord.StartSession(cardID, "bob")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Card untouched
	card, _ := env.store.Card(cardID)
	if card.Status != domain.CardNotEstimated {
		t.Errorf("card status = %s, want %s", card.Status, domain.CardNotEstimated)
	}
}

func TestStartSessionWhileAnotherActive(t *testing.T) {
	env := setup(t)
	first := env.createCard(t, "alice")
	second := env.createCard(t, "bob")

	if _, err := env.coord.StartSession(first, "alice"); err != nil {
		t.Fatalf("first StartSession failed: %v", err)
	}

	_, err := env.coord.StartSession(second, "bob")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// After the first session ends, the second can start
	if _, err := env.coord.CancelSession(first, "alice"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := env.coord.StartSession(second, "bob"); err != nil {
		t.Errorf("StartSession after cancel failed: %v", err)
	}
}

func TestStartSessionAfterCompleted(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}
	if _, err := env.coord.CompleteSession(cardID, "alice", 5); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	_, err := env.coord.StartSession(cardID, "alice")
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("re-estimation: expected ErrConflict, got %v", err)
	}
}

func TestSubmitVoteAutoReveal(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "bob"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}

	session, err := env.coord.SubmitVote(cardID, "alice", 5)
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if session.RevealedAt != nil {
		t.Error("revealed with 1/2 votes")
	}

	session, err = env.coord.SubmitVote(cardID, "bob", 8)
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if session.RevealedAt == nil {
		t.Error("last vote did not auto-reveal")
	}

	reveals := env.recorder.EventsOfType(domain.EventVotesRevealed)
	if len(reveals) != 1 {
		t.Fatalf("votes-revealed events = %d, want 1", len(reveals))
	}
	if reveals[0].Votes["alice"] != 5 || reveals[0].Votes["bob"] != 8 {
		t.Errorf("revealed votes = %v", reveals[0].Votes)
	}
	if reveals[0].Statistics == nil {
		t.Fatal("reveal event missing statistics")
	}
	if reveals[0].Statistics.Max != 8 || reveals[0].Statistics.Min != 5 {
		t.Errorf("statistics = %+v", reveals[0].Statistics)
	}

	// vote-submitted events carry counts, never values
	submitted := env.recorder.EventsOfType(domain.EventVoteSubmitted)
	if len(submitted) != 2 {
		t.Fatalf("vote-submitted events = %d, want 2", len(submitted))
	}
	for _, e := range submitted {
		if e.Votes != nil {
			t.Error("vote-submitted event leaked vote values")
		}
	}
}

func TestSubmitVoteUpdate(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "bob"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}

	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	session, err := env.coord.SubmitVote(cardID, "alice", 8)
	if err != nil {
		t.Fatalf("revote failed: %v", err)
	}
	if len(session.Votes) != 1 {
		t.Errorf("votes = %d, want 1", len(session.Votes))
	}
	if session.Votes["alice"].Point.Value() != 8 {
		t.Errorf("vote = %d, want 8", session.Votes["alice"].Point.Value())
	}

	submitted := env.recorder.EventsOfType(domain.EventVoteSubmitted)
	if len(submitted) != 2 {
		t.Fatalf("vote-submitted events = %d, want 2", len(submitted))
	}
	if submitted[0].VoteUpdated {
		t.Error("first vote flagged as update")
	}
	if !submitted[1].VoteUpdated {
		t.Error("revote not flagged as update")
	}
}

func TestSubmitVoteInvalidPoint(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	_, err := env.coord.SubmitVote(cardID, "alice", 4)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("non-Fibonacci vote: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSubmitVoteAfterReveal(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	// Sole participant: first vote completes the set and reveals
	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	_, err := env.coord.SubmitVote(cardID, "alice", 8)
	if !errors.Is(err, domain.ErrIllegalState) {
		t.Errorf("vote after reveal: expected ErrIllegalState, got %v", err)
	}
}

func TestCompleteSession(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	// Final point is the host's call, not necessarily a vote value
	session, err := env.coord.CompleteSession(cardID, "alice", 8)
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if session.Status != domain.SessionCompleted {
		t.Errorf("session status = %s, want %s", session.Status, domain.SessionCompleted)
	}

	card, err := env.store.Card(cardID)
	if err != nil {
		t.Fatalf("load card failed: %v", err)
	}
	if card.Status != domain.CardEstimated {
		t.Errorf("card status = %s, want %s", card.Status, domain.CardEstimated)
	}
	if card.StoryPoint == nil || card.StoryPoint.Value() != 8 {
		t.Errorf("card point = %v, want 8", card.StoryPoint)
	}

	events := env.recorder.EventsOfType(domain.EventSessionCompleted)
	if len(events) != 1 || events[0].FinalPoint != 8 {
		t.Errorf("session-completed events = %+v", events)
	}
}

func TestCompleteSessionNotHost(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	_, err := env.coord.CompleteSession(cardID, "bob", 5)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	// Failed authorization leaves the session untouched
	session, err := env.store.Session(cardID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	if session.Status != domain.SessionInProgress {
		t.Errorf("session status = %s, want %s", session.Status, domain.SessionInProgress)
	}
}

func TestCompleteSessionBeforeReveal(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "bob"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}
	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	_, err := env.coord.CompleteSession(cardID, "alice", 5)
	if !errors.Is(err, domain.ErrIllegalState) {
		t.Errorf("complete before reveal: expected ErrIllegalState, got %v", err)
	}
}

func TestCancelSession(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}

	if _, err := env.coord.CancelSession(cardID, "bob"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("non-host cancel: expected ErrUnauthorized, got %v", err)
	}

	session, err := env.coord.CancelSession(cardID, "alice")
	if err != nil {
		t.Fatalf("CancelSession failed: %v", err)
	}
	if session.Status != domain.SessionCancelled {
		t.Errorf("session status = %s, want %s", session.Status, domain.SessionCancelled)
	}

	card, err := env.store.Card(cardID)
	if err != nil {
		t.Fatalf("load card failed: %v", err)
	}
	if card.Status != domain.CardNotEstimated {
		t.Errorf("card status = %s, want %s", card.Status, domain.CardNotEstimated)
	}
}

func TestStartVotingNotHost(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "bob"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}

	if _, err := env.coord.StartVoting(cardID, "bob"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := env.coord.StartVoting(cardID, "alice"); err != nil {
		t.Errorf("host StartVoting failed: %v", err)
	}
}

func TestSweepForfeitsAbsentVoters(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "bob"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}
	if _, err := env.coord.JoinSession(cardID, "carol"); err != nil {
		t.Fatalf("JoinSession failed: %v", err)
	}
	if _, err := env.coord.StartVoting(cardID, "alice"); err != nil {
		t.Fatalf("StartVoting failed: %v", err)
	}
	if _, err := env.coord.SubmitVote(cardID, "alice", 5); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := env.coord.SubmitVote(cardID, "bob", 8); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	// Not yet expired: sweep is a no-op
	if err := env.coord.SweepExpiredVoting(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	session, _ := env.store.Session(cardID)
	if session.RevealedAt != nil {
		t.Fatal("sweep revealed before the deadline")
	}

	env.expireVoting(t, cardID)
	if err := env.coord.SweepExpiredVoting(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	session, err := env.store.Session(cardID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	if session.RevealedAt == nil {
		t.Fatal("sweep did not reveal after expiry")
	}
	if len(session.Votes) != 2 {
		t.Errorf("votes = %d, want 2", len(session.Votes))
	}

	reveals := env.recorder.EventsOfType(domain.EventVotesRevealed)
	if len(reveals) != 1 {
		t.Fatalf("votes-revealed events = %d, want 1", len(reveals))
	}
	if len(reveals[0].Absent) != 1 || reveals[0].Absent[0] != "carol" {
		t.Errorf("absent = %v, want [carol]", reveals[0].Absent)
	}

	// Sweep is idempotent once revealed
	if err := env.coord.SweepExpiredVoting(); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if got := env.recorder.EventsOfType(domain.EventVotesRevealed); len(got) != 1 {
		t.Errorf("second sweep re-published the reveal")
	}

	// A vote arriving after the forfeiture reveal is rejected, not
	// silently dropped
	if _, err := env.coord.SubmitVote(cardID, "carol", 13); !errors.Is(err, domain.ErrIllegalState) {
		t.Errorf("late vote: expected ErrIllegalState, got %v", err)
	}
}

func TestSweepCancelsWhenNobodyVoted(t *testing.T) {
	env := setup(t)
	cardID := env.createCard(t, "alice")

	if _, err := env.coord.StartSession(cardID, "alice"); err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	if _, err := env.coord.StartVoting(cardID, "alice"); err != nil {
		t.Fatalf("StartVoting failed: %v", err)
	}

	env.expireVoting(t, cardID)
	if err := env.coord.SweepExpiredVoting(); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	session, err := env.store.Session(cardID)
	if err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	if session.Status != domain.SessionCancelled {
		t.Errorf("session status = %s, want %s", session.Status, domain.SessionCancelled)
	}

	card, err := env.store.Card(cardID)
	if err != nil {
		t.Fatalf("load card failed: %v", err)
	}
	if card.Status != domain.CardNotEstimated {
		t.Errorf("card status = %s, want %s", card.Status, domain.CardNotEstimated)
	}
}
