// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package store implements SQL persistence for backlog pools, story
// cards, and voting sessions. It reconstructs domain aggregates on
// load and writes session state transactionally so the session row
// and its participants and votes never drift apart.
package store
