// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mhowell/story-poker/domain"
)

// Store is the persistence surface the coordinator needs.
type Store interface {
	Card(id string) (*domain.StoryCard, error)
	SaveCard(c *domain.StoryCard) error
	Session(id string) (*domain.VotingSession, error)
	ActiveSession() (*domain.VotingSession, error)
	CompletedSessionExists(storyCardID string) (bool, error)
	SaveSession(s *domain.VotingSession) error
	SaveSessionAndCard(s *domain.VotingSession, c *domain.StoryCard) error
}

// Notifier delivers session events to subscribers.
type Notifier interface {
	Publish(event domain.Event)
}

// Coordinator enforces the single-active-session rule and serializes
// all mutation of a given session behind a per-session lock. Starting
// a session additionally takes a global lock so two racing starts
// cannot both pass the active-session check.
type Coordinator struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger

	startMu sync.Mutex

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

func New(store Store, notifier Notifier, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		notifier: notifier,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the mutex for a session, creating it on first use.
// Locks are never removed; the session space is bounded by the backlog.
func (c *Coordinator) sessionLock(sessionID string) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	mu, ok := c.locks[sessionID]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[sessionID] = mu
	}
	return mu
}

// StartSession begins estimation for a card. Only the card's host may
// start; a card with a completed session cannot be re-estimated; and at
// most one session may be in progress across the whole backlog.
func (c *Coordinator) StartSession(storyCardID, user string) (*domain.VotingSession, error) {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	card, err := c.store.Card(storyCardID)
	if err != nil {
		return nil, err
	}
	if !card.IsHost(user) {
		return nil, fmt.Errorf("only the host may start estimation for card %s: %w", storyCardID, domain.ErrUnauthorized)
	}

	done, err := c.store.CompletedSessionExists(storyCardID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, fmt.Errorf("card %s already has a completed session: %w", storyCardID, domain.ErrConflict)
	}

	active, err := c.store.ActiveSession()
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("session %s is already in progress: %w", active.StoryCardID, domain.ErrConflict)
	}

	session, err := domain.NewVotingSession(domain.VotingSessionConfig{
		StoryCardID: storyCardID,
		HostName:    user,
	})
	if err != nil {
		return nil, err
	}
	if err := session.AddParticipant(user); err != nil {
		return nil, err
	}
	if err := card.StartEstimation(); err != nil {
		return nil, err
	}
	if err := card.BindVotingSession(session.StoryCardID); err != nil {
		return nil, err
	}

	if err := c.store.SaveSessionAndCard(session, card); err != nil {
		return nil, err
	}

	c.logger.Info("voting session started",
		"session_id", session.StoryCardID,
		"host", user)
	c.notifier.Publish(domain.Event{
		Type:             domain.EventSessionStarted,
		SessionID:        session.StoryCardID,
		StoryCardID:      storyCardID,
		Timestamp:        time.Now(),
		Participant:      user,
		ParticipantCount: len(session.Participants),
	})
	return session, nil
}

// JoinSession adds user as a participant. Joining twice is a no-op.
func (c *Coordinator) JoinSession(sessionID, user string) (*domain.VotingSession, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.AddParticipant(user); err != nil {
		return nil, err
	}
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}

	c.logger.Info("participant joined",
		"session_id", sessionID,
		"participant", user,
		"participants", len(session.Participants))
	// Re-emit session-started so live subscribers see the new roster.
	c.notifier.Publish(domain.Event{
		Type:             domain.EventSessionStarted,
		SessionID:        sessionID,
		StoryCardID:      session.StoryCardID,
		Timestamp:        time.Now(),
		Participant:      user,
		ParticipantCount: len(session.Participants),
	})
	return session, nil
}

// StartVoting begins the countdown. Host only.
func (c *Coordinator) StartVoting(sessionID, user string) (*domain.VotingSession, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostName != user {
		return nil, fmt.Errorf("only the host may start voting for session %s: %w", sessionID, domain.ErrUnauthorized)
	}
	if err := session.StartVoting(); err != nil {
		return nil, err
	}
	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}

	c.logger.Info("voting countdown started",
		"session_id", sessionID,
		"deadline", session.VotingDeadline)
	return session, nil
}

// SubmitVote records user's vote. Voting implicitly joins the session.
// When the vote completes the set, results are revealed immediately.
func (c *Coordinator) SubmitVote(sessionID, user string, pointValue int) (*domain.VotingSession, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	_, isUpdate := session.Votes[user]

	point, err := domain.NewStoryPoint(pointValue)
	if err != nil {
		return nil, err
	}
	vote, err := domain.NewVote(user, point, time.Now())
	if err != nil {
		return nil, err
	}
	if err := session.AddVote(vote); err != nil {
		return nil, err
	}

	revealed := false
	if session.RevealedAt == nil && session.AreAllVotesComplete() {
		if err := session.RevealVotes(); err != nil {
			return nil, err
		}
		revealed = true
	}

	if err := c.store.SaveSession(session); err != nil {
		return nil, err
	}

	c.logger.Info("vote submitted",
		"session_id", sessionID,
		"participant", user,
		"updated", isUpdate,
		"votes", len(session.Votes),
		"participants", len(session.Participants))
	c.notifier.Publish(domain.Event{
		Type:             domain.EventVoteSubmitted,
		SessionID:        sessionID,
		StoryCardID:      session.StoryCardID,
		Timestamp:        time.Now(),
		Participant:      user,
		ParticipantCount: len(session.Participants),
		VoteCount:        len(session.Votes),
		VoteUpdated:      isUpdate,
	})
	if revealed {
		c.publishReveal(session)
	}
	return session, nil
}

// Session returns the current session state.
func (c *Coordinator) Session(sessionID string) (*domain.VotingSession, error) {
	return c.store.Session(sessionID)
}

// CompleteSession finishes estimation with the host's final point and
// stamps the card ESTIMATED. Session and card change in one transaction.
func (c *Coordinator) CompleteSession(sessionID, user string, finalPointValue int) (*domain.VotingSession, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostName != user {
		return nil, fmt.Errorf("only the host may complete session %s: %w", sessionID, domain.ErrUnauthorized)
	}
	card, err := c.store.Card(session.StoryCardID)
	if err != nil {
		return nil, err
	}

	finalPoint, err := domain.NewStoryPoint(finalPointValue)
	if err != nil {
		return nil, err
	}
	if err := session.Complete(finalPoint); err != nil {
		return nil, err
	}
	if err := card.CompleteEstimation(finalPoint); err != nil {
		return nil, err
	}

	if err := c.store.SaveSessionAndCard(session, card); err != nil {
		return nil, err
	}

	c.logger.Info("session completed",
		"session_id", sessionID,
		"final_point", finalPoint.Value())
	c.notifier.Publish(domain.Event{
		Type:        domain.EventSessionCompleted,
		SessionID:   sessionID,
		StoryCardID: session.StoryCardID,
		Timestamp:   time.Now(),
		FinalPoint:  finalPoint.Value(),
	})
	return session, nil
}

// CancelSession terminates an in-progress session and reverts its card
// to NOT_ESTIMATED. Host only.
func (c *Coordinator) CancelSession(sessionID, user string) (*domain.VotingSession, error) {
	mu := c.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := c.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostName != user {
		return nil, fmt.Errorf("only the host may cancel session %s: %w", sessionID, domain.ErrUnauthorized)
	}
	return c.cancelLocked(session)
}

func (c *Coordinator) cancelLocked(session *domain.VotingSession) (*domain.VotingSession, error) {
	if err := session.Cancel(); err != nil {
		return nil, err
	}
	card, err := c.store.Card(session.StoryCardID)
	if err != nil {
		return nil, err
	}
	if err := card.CancelEstimation(); err != nil {
		return nil, err
	}
	if err := c.store.SaveSessionAndCard(session, card); err != nil {
		return nil, err
	}
	c.logger.Info("session cancelled", "session_id", session.StoryCardID)
	return session, nil
}

// SweepExpiredVoting checks the active session's countdown. Past the
// deadline, absent voters forfeit and partial results are revealed; if
// nobody voted at all, the session is cancelled and the card reverted.
func (c *Coordinator) SweepExpiredVoting() error {
	active, err := c.store.ActiveSession()
	if err != nil {
		return err
	}
	if active == nil {
		return nil
	}

	mu := c.sessionLock(active.StoryCardID)
	mu.Lock()
	defer mu.Unlock()

	// Reload under the lock; the session may have changed.
	session, err := c.store.Session(active.StoryCardID)
	if err != nil {
		return err
	}
	if session.Status != domain.SessionInProgress || !session.IsVotingExpired() {
		return nil
	}
	if session.RevealedAt != nil {
		return nil
	}

	if len(session.Votes) == 0 {
		c.logger.Warn("voting expired with no votes, cancelling session",
			"session_id", session.StoryCardID)
		_, err := c.cancelLocked(session)
		return err
	}

	forfeited, err := session.ForfeitAbsentVoters()
	if err != nil {
		return err
	}
	if !forfeited {
		return nil
	}
	if err := c.store.SaveSession(session); err != nil {
		return err
	}

	c.logger.Info("absent voters forfeited",
		"session_id", session.StoryCardID,
		"absent", session.AbsentParticipants(),
		"votes", len(session.Votes))
	c.publishReveal(session)
	return nil
}

func (c *Coordinator) publishReveal(session *domain.VotingSession) {
	event := domain.Event{
		Type:        domain.EventVotesRevealed,
		SessionID:   session.StoryCardID,
		StoryCardID: session.StoryCardID,
		Timestamp:   time.Now(),
		VoteCount:   len(session.Votes),
		Votes:       session.VoteValues(),
		Absent:      session.AbsentParticipants(),
	}
	if stats, err := session.GetStatistics(); err == nil {
		event.Statistics = &stats
	}
	c.notifier.Publish(event)
}
