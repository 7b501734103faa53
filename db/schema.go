// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to what SQLite and PostgreSQL both accept:
// TEXT/INTEGER/TIMESTAMP columns and no server-side time defaults
// (timestamps are always written by the application).
const schema = `
-- Backlog pools
CREATE TABLE IF NOT EXISTS backlog_pool (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    created_by TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Story cards
CREATE TABLE IF NOT EXISTS story_card (
    id TEXT PRIMARY KEY,
    pool_id TEXT NOT NULL REFERENCES backlog_pool(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'NOT_ESTIMATED' CHECK (status IN ('NOT_ESTIMATED', 'ESTIMATING', 'ESTIMATED')),
    story_point INTEGER,
    created_by TEXT NOT NULL,
    host_name TEXT NOT NULL,
    voting_session_id TEXT,
    created_at TIMESTAMP NOT NULL,
    estimated_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_story_card_pool_id ON story_card(pool_id);
CREATE INDEX IF NOT EXISTS idx_story_card_status ON story_card(status);

-- Voting sessions (session id = story card id, 1:1)
CREATE TABLE IF NOT EXISTS voting_session (
    story_card_id TEXT PRIMARY KEY REFERENCES story_card(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'IN_PROGRESS' CHECK (status IN ('IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
    host_name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    voting_started_at TIMESTAMP,
    voting_deadline TIMESTAMP,
    revealed_at TIMESTAMP,
    completed_at TIMESTAMP
);

-- At most one estimation session may be active system-wide. The
-- coordinator serializes the check-and-create; this index backs the
-- same invariant at the storage layer.
CREATE UNIQUE INDEX IF NOT EXISTS one_active_session ON voting_session(status) WHERE status = 'IN_PROGRESS';

-- Session participants
CREATE TABLE IF NOT EXISTS session_participant (
    session_id TEXT NOT NULL REFERENCES voting_session(story_card_id) ON DELETE CASCADE,
    participant TEXT NOT NULL,
    PRIMARY KEY (session_id, participant)
);

-- Session votes (one per participant, upserted on re-vote)
CREATE TABLE IF NOT EXISTS session_vote (
    session_id TEXT NOT NULL REFERENCES voting_session(story_card_id) ON DELETE CASCADE,
    participant TEXT NOT NULL,
    story_point INTEGER NOT NULL,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (session_id, participant)
);
`
