// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import "time"

// Event kinds broadcast to session subscribers.
const (
	EventSessionStarted   = "session-started"
	EventVoteSubmitted    = "vote-submitted"
	EventVotesRevealed    = "votes-revealed"
	EventSessionCompleted = "session-completed"
)

// Event is the envelope delivered to notification subscribers. Delivery
// is at-most-once and best-effort; a failed delivery never rolls back
// the state change that produced it.
//
// Vote values appear only on votes-revealed; vote-submitted carries
// counts so observers cannot see estimates early.
type Event struct {
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id"`
	StoryCardID string    `json:"story_card_id"`
	Timestamp   time.Time `json:"timestamp"`

	Participant      string         `json:"participant,omitempty"`
	ParticipantCount int            `json:"participant_count,omitempty"`
	VoteCount        int            `json:"vote_count,omitempty"`
	VoteUpdated      bool           `json:"vote_updated,omitempty"`
	Votes            map[string]int `json:"votes,omitempty"`
	Absent           []string       `json:"absent,omitempty"`
	Statistics       *Statistics    `json:"statistics,omitempty"`
	FinalPoint       int            `json:"final_point,omitempty"`
}
