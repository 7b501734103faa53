// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Card status constants
const (
	CardNotEstimated = "NOT_ESTIMATED"
	CardEstimating   = "ESTIMATING"
	CardEstimated    = "ESTIMATED"
)

const (
	maxCardTitleLen       = 100
	maxCardDescriptionLen = 2000
)

// StoryCard is a work item to be estimated. It moves
// NOT_ESTIMATED → ESTIMATING → ESTIMATED, binds at most one voting
// session in its lifetime, and carries a final StoryPoint only once
// estimated.
type StoryCard struct {
	ID              string
	PoolID          string
	Title           string
	Description     string
	Status          string
	StoryPoint      *StoryPoint
	CreatedBy       string
	HostName        string
	VotingSessionID string
	CreatedAt       time.Time
	EstimatedAt     *time.Time
}

// StoryCardConfig holds the fields required to create a card.
type StoryCardConfig struct {
	ID          string
	PoolID      string
	Title       string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// NewStoryCard validates cfg and returns a card in NOT_ESTIMATED status.
// The creator becomes the host.
func NewStoryCard(cfg StoryCardConfig) (*StoryCard, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("story card id is required: %w", ErrInvalidArgument)
	}
	if cfg.PoolID == "" {
		return nil, fmt.Errorf("story card pool id is required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(cfg.CreatedBy) == "" {
		return nil, fmt.Errorf("story card creator is required: %w", ErrInvalidArgument)
	}
	if err := validateCardTitle(cfg.Title); err != nil {
		return nil, err
	}
	if err := validateCardDescription(cfg.Description); err != nil {
		return nil, err
	}
	createdAt := cfg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &StoryCard{
		ID:          cfg.ID,
		PoolID:      cfg.PoolID,
		Title:       cfg.Title,
		Description: cfg.Description,
		Status:      CardNotEstimated,
		CreatedBy:   cfg.CreatedBy,
		HostName:    cfg.CreatedBy,
		CreatedAt:   createdAt,
	}, nil
}

// IsHost reports whether user is the card's host. Exact, case-sensitive
// match; false when either side is empty.
func (c *StoryCard) IsHost(user string) bool {
	if user == "" || c.HostName == "" {
		return false
	}
	return c.HostName == user
}

// StartEstimation moves the card into ESTIMATING.
func (c *StoryCard) StartEstimation() error {
	if c.Status == CardEstimating {
		return fmt.Errorf("story card %s is already being estimated: %w", c.ID, ErrIllegalState)
	}
	if c.Status == CardEstimated {
		return fmt.Errorf("story card %s is already estimated: %w", c.ID, ErrIllegalState)
	}
	c.Status = CardEstimating
	return nil
}

// BindVotingSession associates the card with its voting session. A card
// binds once; the reference is never cleared, so re-estimation requires
// an administrative reset outside this model.
func (c *StoryCard) BindVotingSession(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("voting session id is required: %w", ErrInvalidArgument)
	}
	if c.VotingSessionID != "" {
		return fmt.Errorf("story card %s is already bound to session %s: %w", c.ID, c.VotingSessionID, ErrIllegalState)
	}
	c.VotingSessionID = sessionID
	c.Status = CardEstimating
	return nil
}

// CompleteEstimation records the final point and moves the card to
// ESTIMATED.
func (c *StoryCard) CompleteEstimation(finalPoint StoryPoint) error {
	if c.Status != CardEstimating {
		return fmt.Errorf("story card %s is not being estimated: %w", c.ID, ErrIllegalState)
	}
	if finalPoint.IsZero() {
		return fmt.Errorf("final story point is required: %w", ErrInvalidArgument)
	}
	now := time.Now()
	c.Status = CardEstimated
	c.StoryPoint = &finalPoint
	c.EstimatedAt = &now
	return nil
}

// CancelEstimation reverts an ESTIMATING card to NOT_ESTIMATED.
func (c *StoryCard) CancelEstimation() error {
	if c.Status != CardEstimating {
		return fmt.Errorf("story card %s is not being estimated: %w", c.ID, ErrIllegalState)
	}
	c.Status = CardNotEstimated
	return nil
}

// Update replaces title and description. Not allowed while the card is
// being estimated.
func (c *StoryCard) Update(title, description string) error {
	if c.Status == CardEstimating {
		return fmt.Errorf("story card %s is being estimated and cannot be updated: %w", c.ID, ErrIllegalState)
	}
	if err := validateCardTitle(title); err != nil {
		return err
	}
	if err := validateCardDescription(description); err != nil {
		return err
	}
	c.Title = title
	c.Description = description
	return nil
}

// EnsureDeletable rejects deletion of cards that are estimating or
// already estimated.
func (c *StoryCard) EnsureDeletable() error {
	if c.Status != CardNotEstimated {
		return fmt.Errorf("story card %s cannot be deleted in status %s: %w", c.ID, c.Status, ErrIllegalState)
	}
	return nil
}

func validateCardTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("story card title must not be blank: %w", ErrInvalidArgument)
	}
	if len([]rune(title)) > maxCardTitleLen {
		return fmt.Errorf("story card title must be at most %d characters: %w", maxCardTitleLen, ErrInvalidArgument)
	}
	return nil
}

func validateCardDescription(description string) error {
	if len([]rune(description)) > maxCardDescriptionLen {
		return fmt.Errorf("story card description must be at most %d characters: %w", maxCardDescriptionLen, ErrInvalidArgument)
	}
	return nil
}
