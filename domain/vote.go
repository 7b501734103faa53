// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Vote is one participant's submitted estimate. Votes are keyed by
// participant: a later vote from the same participant replaces the
// earlier one.
type Vote struct {
	Participant string
	Point       StoryPoint
	VotedAt     time.Time
}

// NewVote validates the participant name and point. A zero votedAt
// defaults to the current time.
func NewVote(participant string, point StoryPoint, votedAt time.Time) (Vote, error) {
	if strings.TrimSpace(participant) == "" {
		return Vote{}, fmt.Errorf("participant name must not be blank: %w", ErrInvalidArgument)
	}
	if point.IsZero() {
		return Vote{}, fmt.Errorf("vote requires a story point: %w", ErrInvalidArgument)
	}
	if votedAt.IsZero() {
		votedAt = time.Now()
	}
	return Vote{Participant: participant, Point: point, VotedAt: votedAt}, nil
}
