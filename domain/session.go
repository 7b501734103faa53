// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Session status constants
const (
	SessionInProgress = "IN_PROGRESS"
	SessionCompleted  = "COMPLETED"
	SessionCancelled  = "CANCELLED"
)

// VotingCountdown is the fixed window between StartVoting and the
// forfeiture deadline. Not configurable per session.
const VotingCountdown = 30 * time.Second

// Statistics summarizes the revealed votes. Forfeited participants are
// excluded: they have no entry in the vote map at all.
type Statistics struct {
	Average float64 `json:"average"`
	Max     int     `json:"max"`
	Min     int     `json:"min"`
}

// VotingSession is one estimation round for a single story card. The
// session's identity is the card's id; the binding is 1:1 and permanent.
//
// Invariants:
//   - every voter is a participant (AddVote joins the voter implicitly)
//   - RevealedAt is set only when votes exist and, absent forfeiture,
//     every participant has voted
//   - COMPLETED is reachable only after reveal
//   - terminal sessions (COMPLETED, CANCELLED) reject all mutation
type VotingSession struct {
	StoryCardID     string
	Status          string
	HostName        string
	Participants    map[string]struct{}
	Votes           map[string]Vote
	CreatedAt       time.Time
	VotingStartedAt *time.Time
	VotingDeadline  *time.Time
	RevealedAt      *time.Time
	CompletedAt     *time.Time
}

// VotingSessionConfig holds the fields required to create a session.
type VotingSessionConfig struct {
	StoryCardID string
	HostName    string
	CreatedAt   time.Time
}

// NewVotingSession returns a session in IN_PROGRESS status with no
// participants or votes.
func NewVotingSession(cfg VotingSessionConfig) (*VotingSession, error) {
	if cfg.StoryCardID == "" {
		return nil, fmt.Errorf("voting session requires a story card id: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(cfg.HostName) == "" {
		return nil, fmt.Errorf("voting session requires a host: %w", ErrInvalidArgument)
	}
	createdAt := cfg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &VotingSession{
		StoryCardID:  cfg.StoryCardID,
		Status:       SessionInProgress,
		HostName:     cfg.HostName,
		Participants: make(map[string]struct{}),
		Votes:        make(map[string]Vote),
		CreatedAt:    createdAt,
	}, nil
}

// AddParticipant joins a participant. Re-adding an existing participant
// is a no-op, not an error.
func (s *VotingSession) AddParticipant(name string) error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("session %s is not in progress: %w", s.StoryCardID, ErrIllegalState)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("participant name must not be blank: %w", ErrInvalidArgument)
	}
	s.Participants[name] = struct{}{}
	return nil
}

// AddVote records a vote, joining the voter as a participant if needed.
// A second vote from the same participant replaces the first. Votes are
// rejected once results are revealed.
func (s *VotingSession) AddVote(v Vote) error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("session %s is not in progress: %w", s.StoryCardID, ErrIllegalState)
	}
	if s.RevealedAt != nil {
		return fmt.Errorf("session %s votes are already revealed: %w", s.StoryCardID, ErrIllegalState)
	}
	if v.Participant == "" {
		return fmt.Errorf("vote requires a participant: %w", ErrInvalidArgument)
	}
	s.Participants[v.Participant] = struct{}{}
	s.Votes[v.Participant] = v
	return nil
}

// AreAllVotesComplete reports whether every participant has voted. A
// session with no participants is never complete.
func (s *VotingSession) AreAllVotesComplete() bool {
	if len(s.Participants) == 0 {
		return false
	}
	return len(s.Votes) == len(s.Participants)
}

// RevealVotes marks results visible. Idempotent: revealing an already
// revealed session is a no-op. Fails unless all participants have voted;
// forfeiture is the only path that reveals with partial votes.
func (s *VotingSession) RevealVotes() error {
	if s.RevealedAt != nil {
		return nil
	}
	if !s.AreAllVotesComplete() {
		return fmt.Errorf("votes incomplete for session %s (%d/%d): %w",
			s.StoryCardID, len(s.Votes), len(s.Participants), ErrIllegalState)
	}
	now := time.Now()
	s.RevealedAt = &now
	return nil
}

// StartVoting starts the countdown. The deadline is VotingCountdown
// after now. Participants may join and pre-stage before this is called.
func (s *VotingSession) StartVoting() error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("session %s is not in progress: %w", s.StoryCardID, ErrIllegalState)
	}
	if s.VotingStartedAt != nil {
		return fmt.Errorf("voting already started for session %s: %w", s.StoryCardID, ErrIllegalState)
	}
	now := time.Now()
	deadline := now.Add(VotingCountdown)
	s.VotingStartedAt = &now
	s.VotingDeadline = &deadline
	return nil
}

// IsVotingExpired reports whether the countdown deadline has passed.
// Always false before StartVoting.
func (s *VotingSession) IsVotingExpired() bool {
	if s.VotingDeadline == nil {
		return false
	}
	return time.Now().After(*s.VotingDeadline)
}

// ForfeitAbsentVoters excludes participants who have not voted and, when
// at least one vote exists, forces a reveal with the partial votes.
// Absent participants are omitted entirely, not recorded as zero votes.
// Returns whether a reveal happened; with no votes it reports false and
// leaves the session untouched for the caller to resolve.
func (s *VotingSession) ForfeitAbsentVoters() (bool, error) {
	if s.VotingStartedAt == nil {
		return false, fmt.Errorf("voting has not started for session %s: %w", s.StoryCardID, ErrIllegalState)
	}
	if s.RevealedAt != nil {
		return false, nil
	}
	if len(s.Votes) == 0 {
		return false, nil
	}
	now := time.Now()
	s.RevealedAt = &now
	return true, nil
}

// AbsentParticipants returns the sorted names of participants without a
// vote.
func (s *VotingSession) AbsentParticipants() []string {
	absent := []string{}
	for name := range s.Participants {
		if _, voted := s.Votes[name]; !voted {
			absent = append(absent, name)
		}
	}
	sort.Strings(absent)
	return absent
}

// ParticipantNames returns the sorted participant names.
func (s *VotingSession) ParticipantNames() []string {
	names := make([]string, 0, len(s.Participants))
	for name := range s.Participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VoterNames returns the sorted names of participants who have voted.
func (s *VotingSession) VoterNames() []string {
	names := make([]string, 0, len(s.Votes))
	for name := range s.Votes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VoteValues maps each voter to their recorded point value.
func (s *VotingSession) VoteValues() map[string]int {
	values := make(map[string]int, len(s.Votes))
	for name, v := range s.Votes {
		values[name] = v.Point.Value()
	}
	return values
}

// GetStatistics computes average, max, and min over the revealed votes.
// Fails before reveal or when no votes were recorded.
func (s *VotingSession) GetStatistics() (Statistics, error) {
	if s.RevealedAt == nil {
		return Statistics{}, fmt.Errorf("votes not revealed for session %s: %w", s.StoryCardID, ErrIllegalState)
	}
	if len(s.Votes) == 0 {
		return Statistics{}, fmt.Errorf("no votes recorded for session %s: %w", s.StoryCardID, ErrIllegalState)
	}
	sum := 0
	max := 0
	min := 0
	first := true
	for _, v := range s.Votes {
		val := v.Point.Value()
		sum += val
		if first || val > max {
			max = val
		}
		if first || val < min {
			min = val
		}
		first = false
	}
	return Statistics{
		Average: float64(sum) / float64(len(s.Votes)),
		Max:     max,
		Min:     min,
	}, nil
}

// Complete finishes the session with the host's chosen final point. The
// final point is a human decision informed by, but independent of, the
// vote distribution.
func (s *VotingSession) Complete(finalPoint StoryPoint) error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("session %s is not in progress: %w", s.StoryCardID, ErrIllegalState)
	}
	if s.RevealedAt == nil {
		return fmt.Errorf("votes not revealed for session %s: %w", s.StoryCardID, ErrIllegalState)
	}
	if finalPoint.IsZero() {
		return fmt.Errorf("final story point is required: %w", ErrInvalidArgument)
	}
	now := time.Now()
	s.Status = SessionCompleted
	s.CompletedAt = &now
	return nil
}

// Cancel terminates an in-progress session. No other precondition.
func (s *VotingSession) Cancel() error {
	if s.Status != SessionInProgress {
		return fmt.Errorf("session %s is not in progress: %w", s.StoryCardID, ErrIllegalState)
	}
	s.Status = SessionCancelled
	return nil
}
