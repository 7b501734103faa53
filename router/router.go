// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/coordinator"
	"github.com/mhowell/story-poker/handlers"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/notify"
	"github.com/mhowell/story-poker/store"
)

func NewRouter(st *store.Store, coord *coordinator.Coordinator, hub *notify.Hub, tokens *auth.SessionStore) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(tokens)
	poolHandler := handlers.NewPoolHandler(st, tokens)
	cardHandler := handlers.NewCardHandler(st, tokens)
	sessionHandler := handlers.NewSessionHandler(coord, tokens)
	wsHandler := handlers.NewWSHandler(hub, coord)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /login", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("POST /logout", middleware.WithLogging(authHandler.Logout))

	// Estimation scale
	mux.HandleFunc("GET /story-points", middleware.WithLogging(handlers.StoryPoints))

	// Backlog pools and cards
	mux.HandleFunc("POST /pools", middleware.WithLogging(poolHandler.CreatePool))
	mux.HandleFunc("GET /pools", middleware.WithLogging(poolHandler.ListPools))
	mux.HandleFunc("GET /pools/{id}", middleware.WithLogging(poolHandler.GetPool))
	mux.HandleFunc("POST /pools/{id}/cards", middleware.WithLogging(poolHandler.CreateCard))
	mux.HandleFunc("GET /pools/{id}/cards", middleware.WithLogging(poolHandler.ListCards))
	mux.HandleFunc("GET /cards/{id}", middleware.WithLogging(cardHandler.GetCard))
	mux.HandleFunc("PUT /cards/{id}", middleware.WithLogging(cardHandler.UpdateCard))
	mux.HandleFunc("DELETE /cards/{id}", middleware.WithLogging(cardHandler.DeleteCard))

	// Voting sessions
	mux.HandleFunc("POST /cards/{id}/session", middleware.WithLogging(sessionHandler.StartSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions/{id}/join", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("POST /sessions/{id}/start-voting", middleware.WithLogging(sessionHandler.StartVoting))
	mux.HandleFunc("POST /sessions/{id}/votes", middleware.WithLogging(sessionHandler.SubmitVote))
	mux.HandleFunc("POST /sessions/{id}/complete", middleware.WithLogging(sessionHandler.CompleteSession))
	mux.HandleFunc("POST /sessions/{id}/cancel", middleware.WithLogging(sessionHandler.CancelSession))

	// Event subscriptions (no logging wrapper; the connection is long-lived)
	mux.HandleFunc("GET /sessions/{id}/ws", wsHandler.Subscribe)

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("story-poker API v1"))
	})

	return mux
}
