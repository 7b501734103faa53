// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/models"
	"github.com/mhowell/story-poker/store"
)

type CardHandler struct {
	store  *store.Store
	tokens *auth.SessionStore
}

func NewCardHandler(store *store.Store, tokens *auth.SessionStore) *CardHandler {
	return &CardHandler{store: store, tokens: tokens}
}

// GetCard handles GET /cards/:id
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	card, err := h.store.Card(id)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.CardFromDomain(card))
}

// UpdateCard handles PUT /cards/:id
// Host only; rejected while the card is being estimated.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	var req models.UpdateCardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	card, err := h.store.Card(id)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	if !card.IsHost(user) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Only the host may update this card")
		return
	}
	if err := card.Update(req.Title, req.Description); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	if err := h.store.SaveCard(card); err != nil {
		slog.Error("failed to update card", "error", err, "card_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update card")
		return
	}

	slog.Info("card updated", "card_id", id, "user", user)

	middleware.JSONResponse(w, http.StatusOK, models.CardFromDomain(card))
}

// DeleteCard handles DELETE /cards/:id
// Host only; only NOT_ESTIMATED cards can be deleted.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	card, err := h.store.Card(id)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	if !card.IsHost(user) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Only the host may delete this card")
		return
	}
	if err := card.EnsureDeletable(); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	if err := h.store.DeleteCard(id); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	slog.Info("card deleted", "card_id", id, "user", user)

	w.WriteHeader(http.StatusNoContent)
}
