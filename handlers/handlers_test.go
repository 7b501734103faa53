// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"testing"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/coordinator"
	"github.com/mhowell/story-poker/notify"
	"github.com/mhowell/story-poker/store"
	"github.com/mhowell/story-poker/testutil"
)

type env struct {
	db     *sql.DB
	store  *store.Store
	coord  *coordinator.Coordinator
	hub    *notify.Hub
	tokens *auth.SessionStore
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	st := store.New(db)
	hub := notify.NewHub(testutil.DiscardLogger())
	return &env{
		db:     db,
		store:  st,
		coord:  coordinator.New(st, hub, testutil.DiscardLogger()),
		hub:    hub,
		tokens: auth.NewSessionStore(),
	}
}

func (e *env) login(t *testing.T, name string) string {
	t.Helper()
	token, err := e.tokens.Login(name)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	return token
}

func authHeader(token string) map[string]string {
	return map[string]string{"X-Session-Token": token}
}
