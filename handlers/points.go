// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/mhowell/story-poker/domain"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/models"
)

const defaultMaxStoryPoint = 100

// StoryPoints handles GET /story-points
// Returns the suggested estimation sequence, optionally capped by ?max=
func StoryPoints(w http.ResponseWriter, r *http.Request) {
	max := defaultMaxStoryPoint
	if raw := r.URL.Query().Get("max"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "max must be a positive integer")
			return
		}
		max = parsed
	}

	middleware.JSONResponse(w, http.StatusOK, models.StoryPointsResponse{
		Points: domain.SuggestedSequence(max),
	})
}
