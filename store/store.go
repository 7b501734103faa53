// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mhowell/story-poker/domain"
)

// Store persists pools, cards, and voting sessions through database/sql.
// Session saves are transactional: the session row and its participant
// and vote sub-collections are written together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ---- Backlog pools ----

func (s *Store) CreatePool(p *domain.BacklogPool) error {
	_, err := s.db.Exec(`
		INSERT INTO backlog_pool (id, name, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Name, p.Description, p.CreatedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pool: %w", err)
	}
	return nil
}

func (s *Store) Pool(id string) (*domain.BacklogPool, error) {
	var p domain.BacklogPool
	err := s.db.QueryRow(`
		SELECT id, name, description, created_by, created_at
		FROM backlog_pool
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pool %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pool: %w", err)
	}
	return &p, nil
}

func (s *Store) Pools() ([]*domain.BacklogPool, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, created_by, created_at
		FROM backlog_pool
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer rows.Close()

	pools := []*domain.BacklogPool{}
	for rows.Next() {
		var p domain.BacklogPool
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, &p)
	}
	return pools, rows.Err()
}

// ---- Story cards ----

func (s *Store) CreateCard(c *domain.StoryCard) error {
	_, err := s.db.Exec(`
		INSERT INTO story_card (id, pool_id, title, description, status, story_point,
		                        created_by, host_name, voting_session_id, created_at, estimated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.PoolID, c.Title, c.Description, c.Status, pointValue(c.StoryPoint),
		c.CreatedBy, c.HostName, nullString(c.VotingSessionID), c.CreatedAt, c.EstimatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert story card: %w", err)
	}
	return nil
}

func (s *Store) SaveCard(c *domain.StoryCard) error {
	return saveCard(s.db, c)
}

func (s *Store) Card(id string) (*domain.StoryCard, error) {
	return scanCard(s.db.QueryRow(`
		SELECT id, pool_id, title, description, status, story_point,
		       created_by, host_name, voting_session_id, created_at, estimated_at
		FROM story_card
		WHERE id = $1
	`, id), id)
}

func (s *Store) CardsByPool(poolID string) ([]*domain.StoryCard, error) {
	rows, err := s.db.Query(`
		SELECT id, pool_id, title, description, status, story_point,
		       created_by, host_name, voting_session_id, created_at, estimated_at
		FROM story_card
		WHERE pool_id = $1
		ORDER BY created_at, id
	`, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to query story cards: %w", err)
	}
	defer rows.Close()

	cards := []*domain.StoryCard{}
	for rows.Next() {
		card, err := scanCardRow(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *Store) DeleteCard(id string) error {
	res, err := s.db.Exec(`DELETE FROM story_card WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story card: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("story card %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ---- Voting sessions ----

func (s *Store) Session(id string) (*domain.VotingSession, error) {
	session, err := scanSession(s.db.QueryRow(sessionSelect+` WHERE story_card_id = $1`, id), id)
	if err != nil {
		return nil, err
	}
	if err := s.loadSessionCollections(session); err != nil {
		return nil, err
	}
	return session, nil
}

// ActiveSession returns the single IN_PROGRESS session, or nil when no
// estimation is running anywhere.
func (s *Store) ActiveSession() (*domain.VotingSession, error) {
	session, err := scanSession(s.db.QueryRow(sessionSelect+` WHERE status = $1`, domain.SessionInProgress), "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.loadSessionCollections(session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompletedSessionExists reports whether the card already has a
// completed session, which blocks re-estimation.
func (s *Store) CompletedSessionExists(storyCardID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM voting_session
			WHERE story_card_id = $1 AND status = $2
		)
	`, storyCardID, domain.SessionCompleted).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query completed session: %w", err)
	}
	return exists, nil
}

// SaveSession upserts the session row and rewrites its participants and
// votes in one transaction.
func (s *Store) SaveSession(session *domain.VotingSession) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveSession(tx, session); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveSessionAndCard writes both aggregates in one transaction. Used by
// start, complete, and cancel, where the session and its card must
// change together.
func (s *Store) SaveSessionAndCard(session *domain.VotingSession, card *domain.StoryCard) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveSession(tx, session); err != nil {
		return err
	}
	if err := saveCard(tx, card); err != nil {
		return err
	}
	return tx.Commit()
}

// ---- internals ----

// execer covers *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const sessionSelect = `
	SELECT story_card_id, status, host_name, created_at,
	       voting_started_at, voting_deadline, revealed_at, completed_at
	FROM voting_session`

func saveSession(tx *sql.Tx, session *domain.VotingSession) error {
	_, err := tx.Exec(`
		INSERT INTO voting_session (story_card_id, status, host_name, created_at,
		                            voting_started_at, voting_deadline, revealed_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (story_card_id) DO UPDATE SET
			status = EXCLUDED.status,
			voting_started_at = EXCLUDED.voting_started_at,
			voting_deadline = EXCLUDED.voting_deadline,
			revealed_at = EXCLUDED.revealed_at,
			completed_at = EXCLUDED.completed_at
	`, session.StoryCardID, session.Status, session.HostName, session.CreatedAt,
		session.VotingStartedAt, session.VotingDeadline, session.RevealedAt, session.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM session_participant WHERE session_id = $1`, session.StoryCardID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	for _, name := range session.ParticipantNames() {
		if _, err := tx.Exec(`
			INSERT INTO session_participant (session_id, participant)
			VALUES ($1, $2)
		`, session.StoryCardID, name); err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM session_vote WHERE session_id = $1`, session.StoryCardID); err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	for _, name := range session.ParticipantNames() {
		v, ok := session.Votes[name]
		if !ok {
			continue
		}
		if _, err := tx.Exec(`
			INSERT INTO session_vote (session_id, participant, story_point, voted_at)
			VALUES ($1, $2, $3, $4)
		`, session.StoryCardID, v.Participant, v.Point.Value(), v.VotedAt); err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}
	return nil
}

func saveCard(e execer, c *domain.StoryCard) error {
	res, err := e.Exec(`
		UPDATE story_card
		SET title = $1, description = $2, status = $3, story_point = $4,
		    voting_session_id = $5, estimated_at = $6
		WHERE id = $7
	`, c.Title, c.Description, c.Status, pointValue(c.StoryPoint),
		nullString(c.VotingSessionID), c.EstimatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update story card: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("story card %s: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) loadSessionCollections(session *domain.VotingSession) error {
	rows, err := s.db.Query(`
		SELECT participant FROM session_participant WHERE session_id = $1
	`, session.StoryCardID)
	if err != nil {
		return fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		session.Participants[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	voteRows, err := s.db.Query(`
		SELECT participant, story_point, voted_at FROM session_vote WHERE session_id = $1
	`, session.StoryCardID)
	if err != nil {
		return fmt.Errorf("failed to query votes: %w", err)
	}
	defer voteRows.Close()
	for voteRows.Next() {
		var (
			name    string
			value   int
			votedAt time.Time
		)
		if err := voteRows.Scan(&name, &value, &votedAt); err != nil {
			return fmt.Errorf("failed to scan vote: %w", err)
		}
		point, err := domain.NewStoryPoint(value)
		if err != nil {
			return fmt.Errorf("stored vote for %s is invalid: %w", name, err)
		}
		vote, err := domain.NewVote(name, point, votedAt)
		if err != nil {
			return fmt.Errorf("stored vote for %s is invalid: %w", name, err)
		}
		session.Votes[name] = vote
	}
	return voteRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner, id string) (*domain.VotingSession, error) {
	session := &domain.VotingSession{
		Participants: make(map[string]struct{}),
		Votes:        make(map[string]domain.Vote),
	}
	var startedAt, deadline, revealedAt, completedAt sql.NullTime
	err := row.Scan(&session.StoryCardID, &session.Status, &session.HostName, &session.CreatedAt,
		&startedAt, &deadline, &revealedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("voting session %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	session.VotingStartedAt = timePtr(startedAt)
	session.VotingDeadline = timePtr(deadline)
	session.RevealedAt = timePtr(revealedAt)
	session.CompletedAt = timePtr(completedAt)
	return session, nil
}

func scanCard(row rowScanner, id string) (*domain.StoryCard, error) {
	card, err := scanCardRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("story card %s: %w", id, domain.ErrNotFound)
	}
	return card, err
}

func scanCardRow(row rowScanner) (*domain.StoryCard, error) {
	var (
		c           domain.StoryCard
		point       sql.NullInt64
		sessionID   sql.NullString
		estimatedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.PoolID, &c.Title, &c.Description, &c.Status, &point,
		&c.CreatedBy, &c.HostName, &sessionID, &c.CreatedAt, &estimatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan story card: %w", err)
	}
	if point.Valid {
		p, err := domain.NewStoryPoint(int(point.Int64))
		if err != nil {
			return nil, fmt.Errorf("stored story point is invalid: %w", err)
		}
		c.StoryPoint = &p
	}
	if sessionID.Valid {
		c.VotingSessionID = sessionID.String
	}
	c.EstimatedAt = timePtr(estimatedAt)
	return &c, nil
}

func pointValue(p *domain.StoryPoint) any {
	if p == nil {
		return nil
	}
	return p.Value()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

