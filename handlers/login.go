// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/models"
)

type AuthHandler struct {
	tokens *auth.SessionStore
}

func NewAuthHandler(tokens *auth.SessionStore) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	token, err := h.tokens.Login(req.UserName)
	if err != nil {
		middleware.WriteDomainError(w, err)
		return
	}

	slog.Info("user logged in", "user", req.UserName, "online", h.tokens.OnlineCount())

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		Token:    token,
		UserName: req.UserName,
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Session-Token header required")
		return
	}

	h.tokens.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}

// requireUser resolves the X-Session-Token header to a user name.
// Writes the error response itself; callers just return on "".
func requireUser(w http.ResponseWriter, r *http.Request, tokens *auth.SessionStore) string {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Session-Token header required")
		return ""
	}
	user, ok := tokens.UserName(token)
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid session token")
		return ""
	}
	return user
}
