// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	maxPoolNameLen        = 100
	maxPoolDescriptionLen = 500
)

// BacklogPool is a named collection of story cards.
type BacklogPool struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

// NewBacklogPool validates the fields and returns a pool.
func NewBacklogPool(id, name, description, createdBy string) (*BacklogPool, error) {
	if id == "" {
		return nil, fmt.Errorf("pool id is required: %w", ErrInvalidArgument)
	}
	if strings.TrimSpace(createdBy) == "" {
		return nil, fmt.Errorf("pool creator is required: %w", ErrInvalidArgument)
	}
	if err := validatePoolName(name); err != nil {
		return nil, err
	}
	if err := validatePoolDescription(description); err != nil {
		return nil, err
	}
	return &BacklogPool{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now(),
	}, nil
}

func validatePoolName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("pool name must not be blank: %w", ErrInvalidArgument)
	}
	if len([]rune(name)) > maxPoolNameLen {
		return fmt.Errorf("pool name must be at most %d characters: %w", maxPoolNameLen, ErrInvalidArgument)
	}
	return nil
}

func validatePoolDescription(description string) error {
	if len([]rune(description)) > maxPoolDescriptionLen {
		return fmt.Errorf("pool description must be at most %d characters: %w", maxPoolDescriptionLen, ErrInvalidArgument)
	}
	return nil
}
