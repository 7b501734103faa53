// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package domain holds the estimation model: story points, votes, story
cards, voting sessions, and backlog pools.

# Value Types

StoryPoint accepts only positive Fibonacci numbers, checked with the
perfect-square test on 5n²±4. Vote pairs a participant name with a
StoryPoint and a timestamp; votes are keyed by participant, so a
repeated vote replaces the earlier one.

# State Machines

StoryCard: NOT_ESTIMATED → ESTIMATING → ESTIMATED. A card binds at most
one voting session, ever; cancellation reverts the status but not the
binding.

VotingSession: IN_PROGRESS → COMPLETED | CANCELLED (terminal). The
session id is the card id; the two are bound 1:1. The voting flow:

	s, _ := domain.NewVotingSession(domain.VotingSessionConfig{
	    StoryCardID: card.ID,
	    HostName:    card.HostName,
	})
	s.AddParticipant("alice")
	s.StartVoting()            // 30s countdown
	s.AddVote(vote)            // implicit join, upsert by name
	s.AreAllVotesComplete()    // triggers auto-reveal upstream
	s.GetStatistics()          // after reveal only

ForfeitAbsentVoters handles the timeout path: voters who never voted
are simply omitted and the recorded votes are revealed. With zero votes
it reveals nothing and reports false so the caller can decide.

# Errors

All failures wrap one of the sentinel kinds (ErrNotFound,
ErrUnauthorized, ErrConflict, ErrInvalidArgument, ErrIllegalState);
callers dispatch with errors.Is.

This package has no dependencies on storage or transport. Mutation is
not internally synchronized; the coordinator serializes access per
session.
*/
package domain
