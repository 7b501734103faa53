// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package domain

import "errors"

// Error kinds shared across the domain. Callers dispatch with errors.Is;
// the HTTP layer maps each kind to a status code.
var (
	// ErrNotFound means a card, pool, or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means a non-host attempted a host-only action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict means the operation collides with existing state,
	// such as a second active estimation session.
	ErrConflict = errors.New("conflict")

	// ErrInvalidArgument means a malformed value: blank names,
	// non-Fibonacci points, out-of-range text.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIllegalState means the operation is not valid for the current
	// lifecycle state, such as completing a session before reveal.
	ErrIllegalState = errors.New("illegal state")
)
