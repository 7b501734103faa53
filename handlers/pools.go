// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/domain"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/models"
	"github.com/mhowell/story-poker/store"
)

type PoolHandler struct {
	store  *store.Store
	tokens *auth.SessionStore
}

func NewPoolHandler(store *store.Store, tokens *auth.SessionStore) *PoolHandler {
	return &PoolHandler{store: store, tokens: tokens}
}

// CreatePool handles POST /pools
func (h *PoolHandler) CreatePool(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	var req models.CreatePoolRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate pool id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create pool")
		return
	}

	pool, err := domain.NewBacklogPool(id, req.Name, req.Description, user)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	if err := h.store.CreatePool(pool); err != nil {
		slog.Error("failed to insert pool", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create pool")
		return
	}

	slog.Info("pool created", "pool_id", pool.ID, "name", pool.Name, "created_by", user)

	middleware.JSONResponse(w, http.StatusCreated, models.PoolFromDomain(pool))
}

// ListPools handles GET /pools
func (h *PoolHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.store.Pools()
	if err != nil {
		slog.Error("failed to query pools", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]models.PoolResponse, 0, len(pools))
	for _, p := range pools {
		resp = append(resp, models.PoolFromDomain(p))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetPool handles GET /pools/:id
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	pool, err := h.store.Pool(id)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PoolFromDomain(pool))
}

// CreateCard handles POST /pools/:id/cards
// The creator becomes the card's host.
func (h *PoolHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	if poolID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	user := requireUser(w, r, h.tokens)
	if user == "" {
		return
	}

	var req models.CreateCardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if _, err := h.store.Pool(poolID); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate card id", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	card, err := domain.NewStoryCard(domain.StoryCardConfig{
		ID:          id,
		PoolID:      poolID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   user,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}
	if err := h.store.CreateCard(card); err != nil {
		slog.Error("failed to insert card", "error", err, "pool_id", poolID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	slog.Info("card created", "card_id", card.ID, "pool_id", poolID, "host", user)

	middleware.JSONResponse(w, http.StatusCreated, models.CardFromDomain(card))
}

// ListCards handles GET /pools/:id/cards
func (h *PoolHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	poolID := r.PathValue("id")
	if poolID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := h.store.Pool(poolID); err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	cards, err := h.store.CardsByPool(poolID)
	if err != nil {
		slog.Error("failed to query cards", "error", err, "pool_id", poolID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp := make([]models.CardResponse, 0, len(cards))
	for _, c := range cards {
		resp = append(resp, models.CardFromDomain(c))
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
