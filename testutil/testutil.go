// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/cliparse"
	dbschema "github.com/mhowell/story-poker/db"
	"github.com/mhowell/story-poker/domain"
	_ "modernc.org/sqlite"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// Each call gets its own database; cache=shared keeps it alive across
// the pooled connections of one *sql.DB.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name, err := auth.GenerateID(8)
	if err != nil {
		t.Fatalf("Failed to generate database name: %v", err)
	}

	db, err := sql.Open("sqlite", "file:test_"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := dbschema.CreateSchema(db); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  "sqlite",
		DatabaseURL:   ":memory:",
		SweepInterval: 2,
	}
}

// DiscardLogger returns a logger that drops everything
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateTestPool creates a pool in the database and returns its ID
func CreateTestPool(t *testing.T, db *sql.DB, createdBy string) string {
	t.Helper()

	poolID, _ := auth.GenerateID(16)
	_, err := db.Exec(`
		INSERT INTO backlog_pool (id, name, description, created_by, created_at)
		VALUES ($1, 'Test Pool', 'A test pool', $2, $3)
	`, poolID, createdBy, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test pool: %v", err)
	}

	return poolID
}

// CreateTestCard creates a story card and returns its ID. The creator
// becomes the host. status should be NOT_ESTIMATED, ESTIMATING, or
// ESTIMATED.
func CreateTestCard(t *testing.T, db *sql.DB, poolID, createdBy, status string) string {
	t.Helper()

	cardID, _ := auth.GenerateID(16)

	var sessionID *string
	if status == domain.CardEstimating {
		sessionID = &cardID
	}
	var point *int
	var estimatedAt *time.Time
	if status == domain.CardEstimated {
		p := 5
		point = &p
		now := time.Now()
		estimatedAt = &now
		sessionID = &cardID
	}

	_, err := db.Exec(`
		INSERT INTO story_card (id, pool_id, title, description, status, story_point,
		                        created_by, host_name, voting_session_id, created_at, estimated_at)
		VALUES ($1, $2, 'Test Card', 'A test card', $3, $4, $5, $6, $7, $8, $9)
	`, cardID, poolID, status, point, createdBy, createdBy, sessionID, time.Now(), estimatedAt)
	if err != nil {
		t.Fatalf("Failed to create test card: %v", err)
	}

	return cardID
}

// CreateTestSession inserts a voting session row for a card
func CreateTestSession(t *testing.T, db *sql.DB, cardID, hostName, status string) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO voting_session (story_card_id, status, host_name, created_at)
		VALUES ($1, $2, $3, $4)
	`, cardID, status, hostName, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	_, err = db.Exec(`
		INSERT INTO session_participant (session_id, participant)
		VALUES ($1, $2)
	`, cardID, hostName)
	if err != nil {
		t.Fatalf("Failed to add test participant: %v", err)
	}
}

// Recorder captures published events for assertions
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *Recorder) Publish(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// EventsOfType filters captured events by type
func (r *Recorder) EventsOfType(eventType string) []domain.Event {
	var out []domain.Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
