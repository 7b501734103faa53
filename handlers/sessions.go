// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"time"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/coordinator"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/models"
)

type SessionHandler struct {
	coord  *coordinator.Coordinator
	tokens *auth.SessionStore
}

func NewSessionHandler(coord *coordinator.Coordinator, tokens *auth.SessionStore) *SessionHandler {
	return &SessionHandler{coord: coord, tokens: tokens}
}

// StartSession handles POST /cards/:id/session
// Host only; fails while any other session is in progress.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	cardID := r.PathValue("id")
	if cardID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	session, err := h.coord.StartSession(cardID, user)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.SessionFromDomain(session, time.Now()))
}

// GetSession handles GET /sessions/:id
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	session, err := h.coord.Session(id)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionFromDomain(session, time.Now()))
}

// JoinSession handles POST /sessions/:id/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	session, err := h.coord.JoinSession(id, user)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionFromDomain(session, time.Now()))
}

// StartVoting handles POST /sessions/:id/start-voting
// Host only; starts the countdown.
func (h *SessionHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	session, err := h.coord.StartVoting(id, user)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionFromDomain(session, time.Now()))
}

// SubmitVote handles POST /sessions/:id/votes
// Voting joins the session implicitly; a second vote replaces the first.
func (h *SessionHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.coord.SubmitVote(id, user, req.StoryPoint)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.SessionFromDomain(session, time.Now()))
}

// CompleteSession handles POST /sessions/:id/complete
// Host only; requires revealed votes and a valid final point.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	var req models.CompleteSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	session, err := h.coord.CompleteSession(id, user, req.FinalPoint)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionFromDomain(session, time.Now()))
}

// CancelSession handles POST /sessions/:id/cancel
// Host only; reverts the card to NOT_ESTIMATED.
func (h *SessionHandler) CancelSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	session, err := h.coord.CancelSession(id, user)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionFromDomain(session, time.Now()))
}
